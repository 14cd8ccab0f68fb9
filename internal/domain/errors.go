package domain

import (
	"errors"
	"fmt"
)

// Error is a domain invariant violation carrying a stable code so calling
// layers can map it to user-facing messages without string matching.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches two domain errors by code, so parameterized instances compare
// equal to their sentinel under errors.Is
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// State-invariant errors
var (
	ErrJournalArchived       = &Error{Code: "archivedJournal", Message: "journal is archived"}
	ErrAccountAlreadyLinked  = &Error{Code: "accountAlreadyLinked", Message: "account is already linked to this journal"}
	ErrAccountNotLinked      = &Error{Code: "accountNotLinked", Message: "account is not linked to this journal"}
	ErrSelfPermission        = &Error{Code: "selfPermission", Message: "cannot grant permission to yourself"}
	ErrOwnerPermissionGrant  = &Error{Code: "ownerPermissionGrant", Message: "cannot grant owner permission to others"}
	ErrOwnerRemoval          = &Error{Code: "ownerRemoval", Message: "cannot remove the journal owner"}
	ErrJournalNotAccessible  = &Error{Code: "journalNotAccessible", Message: "journal is not accessible"}
	ErrInsufficientPaidOff   = &Error{Code: "insufficientPaidOffTransaction", Message: "payoff transaction amount does not cover the transactions to be paid off"}
	ErrMixedAccountRepayment = &Error{Code: "mixedAccountRepayment", Message: "repayment transactions must all belong to the same account"}
	ErrEmptyRepayment        = &Error{Code: "emptyRepayment", Message: "repayment requires at least one transaction"}
	ErrCrossJournalPayoff    = &Error{Code: "crossJournalPayoff", Message: "payoff and settled transactions must belong to the same journal"}
	ErrNoBillingCycle        = &Error{Code: "noBillingCycle", Message: "account has no billing cycle at the reference date"}
)

// NewJournalNotAccessibleError reports which user was denied access
func NewJournalNotAccessibleError(userID UserID) *Error {
	return &Error{
		Code:    ErrJournalNotAccessible.Code,
		Message: fmt.Sprintf("journal is not accessible to user %s", userID),
	}
}

// Construction-time validation errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrJournalNotFound     = errors.New("journal not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	ErrAccountNameRequired    = errors.New("account name is required")
	ErrBankNameRequired       = errors.New("bank name is required")
	ErrInvalidLast4           = errors.New("last4 must be exactly 4 digits")
	ErrStatementDayOutOfRange = errors.New("statement day must be between 1 and 28")
	ErrGracePeriodInvalid     = errors.New("grace period must be a positive number of days")
	ErrCreditLimitNegative    = errors.New("credit limit must not be negative")
	ErrLoanPeriodInvalid      = errors.New("loan end date must be after loan start date")
	ErrLoanDateInvalid        = errors.New("loan dates must be valid calendar dates")
	ErrLoanAmountInvalid      = errors.New("loan original amount must be positive")

	ErrJournalTitleRequired = errors.New("journal title is required")
	ErrCurrencyRequired     = errors.New("currency code is required")
	ErrOwnerRequired        = errors.New("journal owner is required")

	ErrTransactionTitleRequired = errors.New("transaction title is required")
	ErrInvalidPermission        = errors.New("invalid collaborator permission")
	ErrInvalidAmount            = errors.New("amount must be positive")
	ErrInvalidTransactionType   = errors.New("invalid transaction type")
)
