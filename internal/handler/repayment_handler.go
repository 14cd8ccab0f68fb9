package handler

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/middleware"
	"github.com/splitbook/splitbook-backend/internal/service"
)

// RepaymentHandler handles statement repayment HTTP requests
type RepaymentHandler struct {
	repaymentService *service.RepaymentService
	journalService   *service.JournalService
}

// NewRepaymentHandler creates a new RepaymentHandler
func NewRepaymentHandler(repaymentService *service.RepaymentService, journalService *service.JournalService) *RepaymentHandler {
	return &RepaymentHandler{
		repaymentService: repaymentService,
		journalService:   journalService,
	}
}

// CreateStatementRepaymentRequest represents the statement repayment body
type CreateStatementRepaymentRequest struct {
	AccountID string `json:"accountId"`
	Ref       string `json:"ref,omitempty"`
}

// MoneyResponse represents a currency-tagged amount
type MoneyResponse struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// PeriodResponse represents a closed date interval
type PeriodResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RepaymentResponse represents a repayment in API responses
type RepaymentResponse struct {
	ID              string         `json:"id"`
	JournalID       string         `json:"journalId"`
	AccountID       string         `json:"accountId"`
	StatementPeriod PeriodResponse `json:"statementPeriod"`
	Date            string         `json:"date"`
	Amount          MoneyResponse  `json:"amount"`
}

// GetRepayments handles GET /api/v1/journals/:id/repayments
func (h *RepaymentHandler) GetRepayments(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	journal, err := h.journalService.GetJournal(userID, domain.JournalID(c.Param("id")))
	if err != nil {
		return journalErrorResponse(c, err, userID, c.Param("id"), "Failed to get repayments")
	}

	repayments := journal.Repayments()
	sort.Slice(repayments, func(i, j int) bool {
		return repayments[i].Date.Before(repayments[j].Date)
	})

	response := make([]RepaymentResponse, len(repayments))
	for i, repayment := range repayments {
		response[i] = toRepaymentResponse(repayment)
	}
	return c.JSON(http.StatusOK, response)
}

// CreateStatementRepayment handles POST /api/v1/journals/:id/repayments.
// The repayment covers the account's billing cycle containing the reference
// date, which defaults to today.
func (h *RepaymentHandler) CreateStatementRepayment(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateStatementRepaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.AccountID == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "accountId", Message: "Account ID is required"},
		})
	}

	ref := time.Now().UTC()
	if req.Ref != "" {
		parsed, err := time.Parse(dateLayout, req.Ref)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "ref", Message: "Must be a date in YYYY-MM-DD format"},
			})
		}
		ref = parsed
	}

	journalID := domain.JournalID(c.Param("id"))

	// Access check: the repayment is recorded on behalf of a writer
	journal, err := h.journalService.GetJournal(userID, journalID)
	if err != nil {
		return journalErrorResponse(c, err, userID, c.Param("id"), "Failed to create repayment")
	}
	if !journal.CanWrite(userID) {
		return NewForbiddenError(c, "Journal is not writable")
	}

	repayment, err := h.repaymentService.CreateStatementRepayment(journalID, domain.AccountID(req.AccountID), ref)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotLinked) {
			return NewNotFoundError(c, "Account is not linked to this journal")
		}
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		if errors.Is(err, domain.ErrNoBillingCycle) {
			return NewConflictError(c, "Account has no billing cycle at the reference date")
		}
		if errors.Is(err, domain.ErrEmptyRepayment) {
			return NewConflictError(c, "No transactions to repay in the statement period")
		}
		return journalErrorResponse(c, err, userID, c.Param("id"), "Failed to create repayment")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("journal_id", journalID.String()).
		Str("account_id", req.AccountID).
		Str("repayment_id", repayment.ID.String()).
		Msg("Statement repayment recorded")

	return c.JSON(http.StatusCreated, toRepaymentResponse(*repayment))
}

// Helper function to convert domain.Repayment to RepaymentResponse
func toRepaymentResponse(repayment domain.Repayment) RepaymentResponse {
	return RepaymentResponse{
		ID:        repayment.ID.String(),
		JournalID: repayment.JournalID.String(),
		AccountID: repayment.AccountID.String(),
		StatementPeriod: PeriodResponse{
			Start: repayment.StatementPeriod.Start.Format(dateLayout),
			End:   repayment.StatementPeriod.End.Format(dateLayout),
		},
		Date: repayment.Date.Format(dateLayout),
		Amount: MoneyResponse{
			Amount:   repayment.Amount.Amount.StringFixed(2),
			Currency: repayment.Amount.Currency,
		},
	}
}
