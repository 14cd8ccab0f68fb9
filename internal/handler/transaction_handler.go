package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/middleware"
	"github.com/splitbook/splitbook-backend/internal/service"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	Title     string   `json:"title"`
	Amount    string   `json:"amount"`
	Date      string   `json:"date"`
	AccountID string   `json:"accountId"`
	Type      string   `json:"type"`
	PaidBy    string   `json:"paidBy,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

// UpdateTransactionRequest represents the partial update request body.
// Omitted fields are left untouched.
type UpdateTransactionRequest struct {
	Title     *string  `json:"title,omitempty"`
	Amount    *string  `json:"amount,omitempty"`
	Date      *string  `json:"date,omitempty"`
	AccountID *string  `json:"accountId,omitempty"`
	Type      *string  `json:"type,omitempty"`
	PaidBy    *string  `json:"paidBy,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID                  string   `json:"id"`
	JournalID           string   `json:"journalId"`
	Title               string   `json:"title"`
	Amount              string   `json:"amount"`
	Date                string   `json:"date"`
	AccountID           string   `json:"accountId"`
	Type                string   `json:"type"`
	PaidBy              string   `json:"paidBy"`
	Tags                []string `json:"tags"`
	Status              string   `json:"status"`
	Notes               *string  `json:"notes,omitempty"`
	PaidOffBy           *string  `json:"paidOffBy,omitempty"`
	RelatedTransactions []string `json:"relatedTransactions,omitempty"`
	HasReceipt          bool     `json:"hasReceipt"`
	CreatedAt           string   `json:"createdAt"`
	UpdatedAt           string   `json:"updatedAt"`
}

// CreateTransaction handles POST /api/v1/journals/:id/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "date", Message: "Must be a date in YYYY-MM-DD format"},
		})
	}

	txn, err := h.transactionService.CreateTransaction(userID, domain.JournalID(c.Param("id")), domain.NewTransactionInput{
		Title:     req.Title,
		Amount:    amount,
		Date:      date,
		AccountID: domain.AccountID(req.AccountID),
		Type:      domain.TransactionType(req.Type),
		PaidBy:    domain.UserID(req.PaidBy),
		Tags:      req.Tags,
		Notes:     req.Notes,
	})
	if err != nil {
		if field, message, ok := transactionValidationDetail(err); ok {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: field, Message: message},
			})
		}
		if errors.Is(err, domain.ErrJournalArchived) {
			return NewConflictError(c, "Journal is archived")
		}
		return journalErrorResponse(c, err, userID, c.Param("id"), "Failed to create transaction")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("journal_id", txn.JournalID.String()).
		Str("transaction_id", txn.ID.String()).
		Str("status", string(txn.Status)).
		Msg("Transaction created")

	return c.JSON(http.StatusCreated, toTransactionResponse(txn))
}

// GetTransactions handles GET /api/v1/journals/:id/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "filters", Message: err.Error()},
		})
	}

	txns, err := h.transactionService.GetTransactions(userID, domain.JournalID(c.Param("id")), filters)
	if err != nil {
		return journalErrorResponse(c, err, userID, c.Param("id"), "Failed to get transactions")
	}

	response := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		response[i] = toTransactionResponse(txn)
	}
	return c.JSON(http.StatusOK, response)
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	txn, err := h.transactionService.GetTransactionByID(userID, domain.TransactionID(c.Param("id")))
	if err != nil {
		return transactionErrorResponse(c, err, userID, c.Param("id"), "Failed to get transaction")
	}
	return c.JSON(http.StatusOK, toTransactionResponse(txn))
}

// UpdateTransaction handles PATCH /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	update := domain.TransactionUpdate{
		Title: req.Title,
		Notes: req.Notes,
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Must be a valid decimal number"},
			})
		}
		update.Amount = &amount
	}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "date", Message: "Must be a date in YYYY-MM-DD format"},
			})
		}
		update.Date = &date
	}
	if req.AccountID != nil {
		accountID := domain.AccountID(*req.AccountID)
		update.AccountID = &accountID
	}
	if req.Type != nil {
		txnType := domain.TransactionType(*req.Type)
		if txnType != domain.TransactionTypeIncome && txnType != domain.TransactionTypeExpense && txnType != domain.TransactionTypeTransfer {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Type must be one of: income, expense, transfer"},
			})
		}
		update.Type = &txnType
	}
	if req.PaidBy != nil {
		paidBy := domain.UserID(*req.PaidBy)
		update.PaidBy = &paidBy
	}
	if req.Tags != nil {
		tags := make([]domain.TagID, 0, len(req.Tags))
		for _, name := range req.Tags {
			if tag := domain.NewTag(name); tag.ID != "" {
				tags = append(tags, tag.ID)
			}
		}
		update.Tags = tags
	}

	txn, err := h.transactionService.UpdateTransaction(userID, domain.TransactionID(c.Param("id")), update)
	if err != nil {
		return transactionErrorResponse(c, err, userID, c.Param("id"), "Failed to update transaction")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("transaction_id", txn.ID.String()).
		Msg("Transaction updated")

	return c.JSON(http.StatusOK, toTransactionResponse(txn))
}

// ApproveTransaction handles POST /api/v1/transactions/:id/approve
func (h *TransactionHandler) ApproveTransaction(c echo.Context) error {
	return h.reviewTransaction(c, true)
}

// RejectTransaction handles POST /api/v1/transactions/:id/reject
func (h *TransactionHandler) RejectTransaction(c echo.Context) error {
	return h.reviewTransaction(c, false)
}

func (h *TransactionHandler) reviewTransaction(c echo.Context, approve bool) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id := domain.TransactionID(c.Param("id"))
	var txn *domain.Transaction
	var err error
	if approve {
		txn, err = h.transactionService.ApproveTransaction(userID, id)
	} else {
		txn, err = h.transactionService.RejectTransaction(userID, id)
	}
	if err != nil {
		return transactionErrorResponse(c, err, userID, c.Param("id"), "Failed to review transaction")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("transaction_id", txn.ID.String()).
		Str("status", string(txn.Status)).
		Msg("Transaction reviewed")

	return c.JSON(http.StatusOK, toTransactionResponse(txn))
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if err := h.transactionService.DeleteTransaction(userID, domain.TransactionID(c.Param("id"))); err != nil {
		return transactionErrorResponse(c, err, userID, c.Param("id"), "Failed to delete transaction")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("transaction_id", c.Param("id")).
		Msg("Transaction deleted")

	return c.NoContent(http.StatusNoContent)
}

// parseTransactionFilters reads the optional list query parameters
func parseTransactionFilters(c echo.Context) (*domain.TransactionFilters, error) {
	filters := &domain.TransactionFilters{}
	hasFilter := false

	if raw := c.QueryParam("accountId"); raw != "" {
		accountID := domain.AccountID(raw)
		filters.AccountID = &accountID
		hasFilter = true
	}
	if raw := c.QueryParam("startDate"); raw != "" {
		start, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, errors.New("startDate must be a date in YYYY-MM-DD format")
		}
		filters.StartDate = &start
		hasFilter = true
	}
	if raw := c.QueryParam("endDate"); raw != "" {
		end, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, errors.New("endDate must be a date in YYYY-MM-DD format")
		}
		filters.EndDate = &end
		hasFilter = true
	}
	if raw := c.QueryParam("type"); raw != "" {
		txnType := domain.TransactionType(raw)
		filters.Type = &txnType
		hasFilter = true
	}
	if raw := c.QueryParam("status"); raw != "" {
		status := domain.TransactionStatus(raw)
		filters.Status = &status
		hasFilter = true
	}

	if !hasFilter {
		return nil, nil
	}
	return filters, nil
}

// transactionValidationDetail maps transaction construction errors to a
// response field and message
func transactionValidationDetail(err error) (field, message string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrTransactionTitleRequired):
		return "title", "Title is required", true
	case errors.Is(err, domain.ErrInvalidAmount):
		return "amount", "Amount must be positive", true
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return "type", "Type must be one of: income, expense, transfer", true
	}
	return "", "", false
}

// transactionErrorResponse maps the shared lookup/access errors every
// transaction operation can return
func transactionErrorResponse(c echo.Context, err error, userID domain.UserID, transactionID, detail string) error {
	if errors.Is(err, domain.ErrTransactionNotFound) {
		return NewNotFoundError(c, "Transaction not found")
	}
	if errors.Is(err, domain.ErrJournalNotFound) {
		return NewNotFoundError(c, "Journal not found")
	}
	if errors.Is(err, domain.ErrJournalNotAccessible) {
		return NewForbiddenError(c, "Journal is not accessible")
	}
	log.Error().Err(err).Str("user_id", userID.String()).Str("transaction_id", transactionID).Msg(detail)
	return NewInternalError(c, detail)
}

// Helper function to convert domain.Transaction to TransactionResponse
func toTransactionResponse(txn *domain.Transaction) TransactionResponse {
	tags := make([]string, len(txn.Tags))
	for i, tag := range txn.Tags {
		tags[i] = tag.String()
	}

	resp := TransactionResponse{
		ID:         txn.ID.String(),
		JournalID:  txn.JournalID.String(),
		Title:      txn.Title,
		Amount:     txn.Amount.StringFixed(2),
		Date:       txn.Date.Format(dateLayout),
		AccountID:  txn.AccountID.String(),
		Type:       string(txn.Type),
		PaidBy:     txn.PaidBy.String(),
		Tags:       tags,
		Status:     string(txn.Status),
		Notes:      txn.Notes,
		HasReceipt: txn.ReceiptPath != nil,
		CreatedAt:  txn.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  txn.UpdatedAt.Format(time.RFC3339),
	}
	if txn.PaidOffBy != nil {
		paidOffBy := txn.PaidOffBy.String()
		resp.PaidOffBy = &paidOffBy
	}
	if len(txn.RelatedTransactions) > 0 {
		related := make([]string, len(txn.RelatedTransactions))
		for i, id := range txn.RelatedTransactions {
			related[i] = id.String()
		}
		resp.RelatedTransactions = related
	}
	return resp
}
