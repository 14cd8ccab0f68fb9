package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/middleware"
	"github.com/splitbook/splitbook-backend/internal/service"
)

// ReportingHandler handles reporting HTTP requests
type ReportingHandler struct {
	reportingService *service.ReportingService
}

// NewReportingHandler creates a new ReportingHandler
func NewReportingHandler(reportingService *service.ReportingService) *ReportingHandler {
	return &ReportingHandler{reportingService: reportingService}
}

// DueDateEntryResponse represents one account's statement obligation
type DueDateEntryResponse struct {
	AccountID   string               `json:"accountId"`
	AccountName string               `json:"accountName"`
	AccountType string               `json:"accountType"`
	Cycle       BillingCycleResponse `json:"cycle"`
	Outstanding MoneyResponse        `json:"outstanding"`
	Repaid      bool                 `json:"repaid"`
}

// MonthlySpendResponse represents one calendar month's totals
type MonthlySpendResponse struct {
	Year    int           `json:"year"`
	Month   int           `json:"month"`
	Income  MoneyResponse `json:"income"`
	Expense MoneyResponse `json:"expense"`
}

// GetDueDateReport handles GET /api/v1/journals/:id/reports/due-dates
func (h *ReportingHandler) GetDueDateReport(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	ref := time.Now().UTC()
	if raw := c.QueryParam("ref"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "ref", Message: "Must be a date in YYYY-MM-DD format"},
			})
		}
		ref = parsed
	}

	entries, err := h.reportingService.DueDateReport(userID, domain.JournalID(c.Param("id")), ref)
	if err != nil {
		return journalErrorResponse(c, err, userID, c.Param("id"), "Failed to build due date report")
	}

	response := make([]DueDateEntryResponse, len(entries))
	for i, entry := range entries {
		response[i] = DueDateEntryResponse{
			AccountID:   entry.AccountID.String(),
			AccountName: entry.AccountName,
			AccountType: string(entry.AccountType),
			Cycle:       toBillingCycleResponse(entry.Cycle),
			Outstanding: MoneyResponse{
				Amount:   entry.Outstanding.Amount.StringFixed(2),
				Currency: entry.Outstanding.Currency,
			},
			Repaid: entry.Repaid,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// GetMonthlySpendReport handles GET /api/v1/journals/:id/reports/monthly-spend
func (h *ReportingHandler) GetMonthlySpendReport(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	from, err := time.Parse(dateLayout, c.QueryParam("from"))
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "from", Message: "Must be a date in YYYY-MM-DD format"},
		})
	}
	to, err := time.Parse(dateLayout, c.QueryParam("to"))
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "to", Message: "Must be a date in YYYY-MM-DD format"},
		})
	}
	if to.Before(from) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "to", Message: "Must not be before from"},
		})
	}

	months, err := h.reportingService.MonthlySpendReport(userID, domain.JournalID(c.Param("id")), from, to)
	if err != nil {
		return journalErrorResponse(c, err, userID, c.Param("id"), "Failed to build monthly spend report")
	}

	response := make([]MonthlySpendResponse, len(months))
	for i, month := range months {
		response[i] = MonthlySpendResponse{
			Year:  month.Year,
			Month: int(month.Month),
			Income: MoneyResponse{
				Amount:   month.Income.Amount.StringFixed(2),
				Currency: month.Income.Currency,
			},
			Expense: MoneyResponse{
				Amount:   month.Expense.Amount.StringFixed(2),
				Currency: month.Expense.Currency,
			},
		}
	}
	return c.JSON(http.StatusOK, response)
}
