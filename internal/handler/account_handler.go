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

// dateLayout is the calendar-date format accepted in request fields and
// query parameters
const dateLayout = "2006-01-02"

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest represents the create account request body. Only the
// fields of the requested type are read; the rest are ignored.
type CreateAccountRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`

	// debit and credit
	BankName string `json:"bankName,omitempty"`
	Last4    string `json:"last4,omitempty"`

	// credit only
	StatementDay    int     `json:"statementDay,omitempty"`
	GracePeriodDays int     `json:"gracePeriodDays,omitempty"`
	Expiration      string  `json:"expiration,omitempty"`
	Limit           *string `json:"limit,omitempty"`

	// loan only
	StartDate      string `json:"startDate,omitempty"`
	EndDate        string `json:"endDate,omitempty"`
	OriginalAmount string `json:"originalAmount,omitempty"`
}

// SetAccountActiveRequest represents the activate/deactivate request body
type SetAccountActiveRequest struct {
	Active bool `json:"active"`
}

// DebitDetailsResponse represents a debit account's card details
type DebitDetailsResponse struct {
	BankName string `json:"bankName"`
	Last4    string `json:"last4"`
}

// CreditDetailsResponse represents a credit account's card details
type CreditDetailsResponse struct {
	BankName        string  `json:"bankName"`
	Last4           string  `json:"last4"`
	StatementDay    int     `json:"statementDay"`
	GracePeriodDays int     `json:"gracePeriodDays"`
	Expiration      string  `json:"expiration"`
	Limit           *string `json:"limit,omitempty"`
}

// LoanDetailsResponse represents a loan account's terms
type LoanDetailsResponse struct {
	BankName       string `json:"bankName"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	OriginalAmount string `json:"originalAmount"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Name      string                 `json:"name"`
	OwnerID   string                 `json:"ownerId"`
	Active    bool                   `json:"active"`
	CreatedAt string                 `json:"createdAt"`
	Debit     *DebitDetailsResponse  `json:"debit,omitempty"`
	Credit    *CreditDetailsResponse `json:"credit,omitempty"`
	Loan      *LoanDetailsResponse   `json:"loan,omitempty"`
}

// BillingCycleResponse represents a derived statement window
type BillingCycleResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Due   string `json:"due"`
}

// CreateAccount handles POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var account *domain.Account
	var err error

	switch domain.AccountType(req.Type) {
	case domain.AccountTypeCash:
		account, err = h.accountService.CreateCashAccount(userID, req.Name)
	case domain.AccountTypeDebit:
		account, err = h.accountService.CreateDebitAccount(userID, req.Name, req.BankName, req.Last4)
	case domain.AccountTypeCredit:
		var expiration time.Time
		if req.Expiration != "" {
			expiration, err = time.Parse(dateLayout, req.Expiration)
			if err != nil {
				return NewValidationError(c, "Validation failed", []ValidationError{
					{Field: "expiration", Message: "Must be a date in YYYY-MM-DD format"},
				})
			}
		}
		var limit *decimal.Decimal
		if req.Limit != nil {
			parsed, perr := decimal.NewFromString(*req.Limit)
			if perr != nil {
				return NewValidationError(c, "Validation failed", []ValidationError{
					{Field: "limit", Message: "Must be a valid decimal number"},
				})
			}
			limit = &parsed
		}
		account, err = h.accountService.CreateCreditAccount(domain.CreditAccountInput{
			Name:            req.Name,
			BankName:        req.BankName,
			Last4:           req.Last4,
			StatementDay:    req.StatementDay,
			GracePeriodDays: req.GracePeriodDays,
			Expiration:      expiration,
			Limit:           limit,
			OwnerID:         userID,
		})
	case domain.AccountTypeLoan:
		startDate, serr := time.Parse(dateLayout, req.StartDate)
		endDate, eerr := time.Parse(dateLayout, req.EndDate)
		if serr != nil || eerr != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "startDate", Message: "Loan dates must be in YYYY-MM-DD format"},
			})
		}
		amount, aerr := decimal.NewFromString(req.OriginalAmount)
		if aerr != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "originalAmount", Message: "Must be a valid decimal number"},
			})
		}
		account, err = h.accountService.CreateLoanAccount(domain.LoanAccountInput{
			Name:           req.Name,
			BankName:       req.BankName,
			StartDate:      startDate,
			EndDate:        endDate,
			OriginalAmount: amount,
			OwnerID:        userID,
		})
	default:
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Type must be one of: cash, debit, credit, loan"},
		})
	}

	if err != nil {
		if field, message, ok := accountValidationDetail(err); ok {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: field, Message: message},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("type", req.Type).Msg("Failed to create account")
		return NewInternalError(c, "Failed to create account")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("account_id", account.ID.String()).
		Str("type", string(account.Type)).
		Msg("Account created")

	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// GetAccounts handles GET /api/v1/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	includeInactive := c.QueryParam("includeInactive") == "true"

	accounts, err := h.accountService.GetAccounts(userID, includeInactive)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get accounts")
		return NewInternalError(c, "Failed to get accounts")
	}

	response := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		response[i] = toAccountResponse(account)
	}
	return c.JSON(http.StatusOK, response)
}

// GetAccount handles GET /api/v1/accounts/:id
func (h *AccountHandler) GetAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	account, err := h.accountService.GetAccount(userID, domain.AccountID(c.Param("id")))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", c.Param("id")).Msg("Failed to get account")
		return NewInternalError(c, "Failed to get account")
	}

	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// SetActive handles PATCH /api/v1/accounts/:id/active
func (h *AccountHandler) SetActive(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req SetAccountActiveRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	account, err := h.accountService.SetActive(userID, domain.AccountID(c.Param("id")), req.Active)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", c.Param("id")).Msg("Failed to update account state")
		return NewInternalError(c, "Failed to update account state")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("account_id", account.ID.String()).
		Bool("active", account.Active).
		Msg("Account state updated")

	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// GetBillingCycle handles GET /api/v1/accounts/:id/billing-cycle
func (h *AccountHandler) GetBillingCycle(c echo.Context) error {
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

	cycle, err := h.accountService.GetBillingCycle(userID, domain.AccountID(c.Param("id")), ref)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		if errors.Is(err, domain.ErrNoBillingCycle) {
			return NewNotFoundError(c, "Account has no billing cycle at the reference date")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", c.Param("id")).Msg("Failed to get billing cycle")
		return NewInternalError(c, "Failed to get billing cycle")
	}

	return c.JSON(http.StatusOK, toBillingCycleResponse(*cycle))
}

// accountValidationDetail maps account construction errors to a response field
// and message. The bool reports whether the error was a validation error.
func accountValidationDetail(err error) (field, message string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrAccountNameRequired):
		return "name", "Name is required", true
	case errors.Is(err, domain.ErrBankNameRequired):
		return "bankName", "Bank name is required", true
	case errors.Is(err, domain.ErrInvalidLast4):
		return "last4", "Last4 must be exactly 4 digits", true
	case errors.Is(err, domain.ErrStatementDayOutOfRange):
		return "statementDay", "Statement day must be between 1 and 28", true
	case errors.Is(err, domain.ErrGracePeriodInvalid):
		return "gracePeriodDays", "Grace period must be a positive number of days", true
	case errors.Is(err, domain.ErrCreditLimitNegative):
		return "limit", "Credit limit must not be negative", true
	case errors.Is(err, domain.ErrLoanPeriodInvalid):
		return "endDate", "Loan end date must be after loan start date", true
	case errors.Is(err, domain.ErrLoanDateInvalid):
		return "startDate", "Loan dates must be valid calendar dates", true
	case errors.Is(err, domain.ErrLoanAmountInvalid):
		return "originalAmount", "Loan original amount must be positive", true
	}
	return "", "", false
}

// Helper function to convert domain.Account to AccountResponse
func toAccountResponse(account *domain.Account) AccountResponse {
	resp := AccountResponse{
		ID:        account.ID.String(),
		Type:      string(account.Type),
		Name:      account.Name,
		OwnerID:   account.OwnerID.String(),
		Active:    account.Active,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
	}

	if account.Debit != nil {
		resp.Debit = &DebitDetailsResponse{
			BankName: account.Debit.BankName,
			Last4:    account.Debit.Last4,
		}
	}
	if account.Credit != nil {
		credit := &CreditDetailsResponse{
			BankName:        account.Credit.BankName,
			Last4:           account.Credit.Last4,
			StatementDay:    account.Credit.StatementDay,
			GracePeriodDays: account.Credit.GracePeriodDays,
			Expiration:      account.Credit.Expiration.Format(time.RFC3339),
		}
		if account.Credit.Limit != nil {
			limit := account.Credit.Limit.StringFixed(2)
			credit.Limit = &limit
		}
		resp.Credit = credit
	}
	if account.Loan != nil {
		resp.Loan = &LoanDetailsResponse{
			BankName:       account.Loan.BankName,
			StartDate:      account.Loan.StartDate.Format(dateLayout),
			EndDate:        account.Loan.EndDate.Format(dateLayout),
			OriginalAmount: account.Loan.OriginalAmount.StringFixed(2),
		}
	}
	return resp
}

// Helper function to convert domain.BillingCycle to BillingCycleResponse
func toBillingCycleResponse(cycle domain.BillingCycle) BillingCycleResponse {
	return BillingCycleResponse{
		Start: cycle.Start.Format(dateLayout),
		End:   cycle.End.Format(dateLayout),
		Due:   cycle.Due.Format(dateLayout),
	}
}
