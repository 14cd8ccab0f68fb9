package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/middleware"
	"github.com/splitbook/splitbook-backend/internal/service"
)

// PayoffHandler handles payoff settlement HTTP requests. Access is checked
// through the transaction service so a caller can only settle transactions in
// journals they can see.
type PayoffHandler struct {
	payoffService      *service.PayoffService
	transactionService *service.TransactionService
}

// NewPayoffHandler creates a new PayoffHandler
func NewPayoffHandler(payoffService *service.PayoffService, transactionService *service.TransactionService) *PayoffHandler {
	return &PayoffHandler{
		payoffService:      payoffService,
		transactionService: transactionService,
	}
}

// SettleTransactionsRequest represents the settle request body
type SettleTransactionsRequest struct {
	TransactionIDs []string `json:"transactionIds"`
}

// SettleTransactions handles POST /api/v1/transactions/:id/settlements.
// The path transaction is the payoff; the body lists the transactions it
// settles.
func (h *PayoffHandler) SettleTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req SettleTransactionsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if len(req.TransactionIDs) == 0 {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "transactionIds", Message: "At least one transaction ID is required"},
		})
	}

	payoffID := domain.TransactionID(c.Param("id"))

	// Membership check: the payoff must be visible to the caller
	if _, err := h.transactionService.GetTransactionByID(userID, payoffID); err != nil {
		return transactionErrorResponse(c, err, userID, c.Param("id"), "Failed to settle transactions")
	}

	toBePaidOff := make([]domain.TransactionID, len(req.TransactionIDs))
	for i, id := range req.TransactionIDs {
		toBePaidOff[i] = domain.TransactionID(id)
	}

	payoff, err := h.payoffService.SettleTransactions(payoffID, toBePaidOff)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientPaidOff) {
			return NewConflictError(c, "Payoff amount does not cover the transactions to be paid off")
		}
		if errors.Is(err, domain.ErrCrossJournalPayoff) {
			return NewConflictError(c, "Payoff and settled transactions must belong to the same journal")
		}
		return transactionErrorResponse(c, err, userID, c.Param("id"), "Failed to settle transactions")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("payoff_id", payoff.ID.String()).
		Int("settled_count", len(toBePaidOff)).
		Msg("Transactions settled")

	return c.JSON(http.StatusOK, toTransactionResponse(payoff))
}

// UnsettleTransaction handles DELETE /api/v1/transactions/:id/settlements/:settledId
func (h *PayoffHandler) UnsettleTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	payoffID := domain.TransactionID(c.Param("id"))
	settledID := domain.TransactionID(c.Param("settledId"))

	if _, err := h.transactionService.GetTransactionByID(userID, payoffID); err != nil {
		return transactionErrorResponse(c, err, userID, c.Param("id"), "Failed to unsettle transaction")
	}

	if err := h.payoffService.UnsettleTransaction(payoffID, settledID); err != nil {
		return transactionErrorResponse(c, err, userID, c.Param("id"), "Failed to unsettle transaction")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("payoff_id", payoffID.String()).
		Str("settled_id", settledID.String()).
		Msg("Transaction unsettled")

	return c.NoContent(http.StatusNoContent)
}
