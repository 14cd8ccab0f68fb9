package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/splitbook/splitbook-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, authHandler *AuthHandler, profileHandler *ProfileHandler, accountHandler *AccountHandler, journalHandler *JournalHandler, transactionHandler *TransactionHandler, payoffHandler *PayoffHandler, repaymentHandler *RepaymentHandler, reportingHandler *ReportingHandler, receiptHandler *ReceiptHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (protected)
	auth := api.Group("/auth")
	auth.Use(authMiddleware.Authenticate())
	auth.POST("/callback", authHandler.Callback)
	auth.GET("/me", authHandler.Me)
	auth.POST("/logout", authHandler.Logout)

	// Profile routes (protected)
	profile := api.Group("/profile")
	profile.Use(authMiddleware.Authenticate())
	profile.GET("", profileHandler.GetProfile)
	profile.PUT("", profileHandler.UpdateProfile)

	// Account routes (protected)
	accounts := api.Group("/accounts")
	accounts.Use(authMiddleware.Authenticate())
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PATCH("/:id/active", accountHandler.SetActive)
	accounts.GET("/:id/billing-cycle", accountHandler.GetBillingCycle)

	// Journal routes (protected)
	journals := api.Group("/journals")
	journals.Use(authMiddleware.Authenticate())
	journals.POST("", journalHandler.CreateJournal)
	journals.GET("", journalHandler.GetJournals)
	journals.GET("/:id", journalHandler.GetJournal)
	journals.POST("/:id/collaborators", journalHandler.InviteCollaborator)
	journals.DELETE("/:id/collaborators/:userId", journalHandler.RemoveCollaborator)
	journals.POST("/:id/accounts", journalHandler.LinkAccount)
	journals.DELETE("/:id/accounts/:accountId", journalHandler.UnlinkAccount)
	journals.PATCH("/:id/tags", journalHandler.UpdateTags)
	journals.PUT("/:id/approval-requirement", journalHandler.SetApprovalRequirement)
	journals.PUT("/:id/archive", journalHandler.SetArchived)

	// Journal-scoped transaction routes (protected)
	journals.POST("/:id/transactions", transactionHandler.CreateTransaction)
	journals.GET("/:id/transactions", transactionHandler.GetTransactions)

	// Repayment routes (protected)
	journals.GET("/:id/repayments", repaymentHandler.GetRepayments)
	journals.POST("/:id/repayments", repaymentHandler.CreateStatementRepayment)

	// Reporting routes (protected)
	journals.GET("/:id/reports/due-dates", reportingHandler.GetDueDateReport)
	journals.GET("/:id/reports/monthly-spend", reportingHandler.GetMonthlySpendReport)

	// Transaction routes (protected)
	transactions := api.Group("/transactions")
	transactions.Use(authMiddleware.Authenticate())
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PATCH("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/:id/approve", transactionHandler.ApproveTransaction)
	transactions.POST("/:id/reject", transactionHandler.RejectTransaction)

	// Payoff settlement routes (protected)
	transactions.POST("/:id/settlements", payoffHandler.SettleTransactions)
	transactions.DELETE("/:id/settlements/:settledId", payoffHandler.UnsettleTransaction)

	// Receipt routes (protected)
	transactions.POST("/:id/receipt", receiptHandler.UploadReceipt)
	transactions.GET("/:id/receipt", receiptHandler.GetReceipt)
	transactions.DELETE("/:id/receipt", receiptHandler.DeleteReceipt)

	// WebSocket endpoint (token authenticated via query parameter)
	e.GET("/ws", wsHandler.HandleWS)
}
