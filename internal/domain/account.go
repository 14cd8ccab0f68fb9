package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitbook/splitbook-backend/internal/util"
)

type AccountType string

const (
	AccountTypeCash   AccountType = "cash"
	AccountTypeDebit  AccountType = "debit"
	AccountTypeCredit AccountType = "credit"
	AccountTypeLoan   AccountType = "loan"
)

var last4Pattern = regexp.MustCompile(`^\d{4}$`)

// DebitDetails is the type-specific payload of a debit account
type DebitDetails struct {
	BankName string `json:"bankName"`
	Last4    string `json:"last4"`
}

// CreditDetails is the type-specific payload of a credit account
type CreditDetails struct {
	BankName        string           `json:"bankName"`
	Last4           string           `json:"last4"`
	StatementDay    int              `json:"statementDay"`
	GracePeriodDays int              `json:"gracePeriodDays"`
	Expiration      time.Time        `json:"expiration"`
	Limit           *decimal.Decimal `json:"limit,omitempty"`
}

// LoanDetails is the type-specific payload of a loan account
type LoanDetails struct {
	BankName       string          `json:"bankName"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        time.Time       `json:"endDate"`
	OriginalAmount decimal.Decimal `json:"originalAmount"`
}

// Account is a money source/sink linkable to journals. Its type is data, not
// a class hierarchy: behavior dispatches on Type so a stored record restores
// without polymorphic reconstruction ambiguity. The type and its payload are
// fixed at construction and never change.
type Account struct {
	ID        AccountID      `json:"id"`
	Type      AccountType    `json:"type"`
	Name      string         `json:"name"`
	OwnerID   UserID         `json:"ownerId"`
	Active    bool           `json:"active"`
	CreatedAt time.Time      `json:"createdAt"`
	Debit     *DebitDetails  `json:"debit,omitempty"`
	Credit    *CreditDetails `json:"credit,omitempty"`
	Loan      *LoanDetails   `json:"loan,omitempty"`
}

// NewCashAccount creates a cash account
func NewCashAccount(name string, ownerID UserID) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrAccountNameRequired
	}
	return &Account{
		ID:        NewAccountID(),
		Type:      AccountTypeCash,
		Name:      name,
		OwnerID:   ownerID,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewDebitAccount creates a debit account tied to a bank card
func NewDebitAccount(name, bankName, last4 string, ownerID UserID) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrAccountNameRequired
	}
	if strings.TrimSpace(bankName) == "" {
		return nil, ErrBankNameRequired
	}
	if !last4Pattern.MatchString(last4) {
		return nil, ErrInvalidLast4
	}
	return &Account{
		ID:        NewAccountID(),
		Type:      AccountTypeDebit,
		Name:      name,
		OwnerID:   ownerID,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		Debit:     &DebitDetails{BankName: strings.TrimSpace(bankName), Last4: last4},
	}, nil
}

// CreditAccountInput carries the fields of a credit account factory call
type CreditAccountInput struct {
	Name            string
	BankName        string
	Last4           string
	StatementDay    int
	GracePeriodDays int
	Expiration      time.Time
	Limit           *decimal.Decimal
	OwnerID         UserID
}

// NewCreditAccount creates a credit-card account. Whatever expiration date is
// passed snaps forward to the last second of its calendar month.
func NewCreditAccount(in CreditAccountInput) (*Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrAccountNameRequired
	}
	if strings.TrimSpace(in.BankName) == "" {
		return nil, ErrBankNameRequired
	}
	if !last4Pattern.MatchString(in.Last4) {
		return nil, ErrInvalidLast4
	}
	if in.StatementDay < 1 || in.StatementDay > 28 {
		return nil, ErrStatementDayOutOfRange
	}
	if in.GracePeriodDays <= 0 {
		return nil, ErrGracePeriodInvalid
	}
	if in.Limit != nil && in.Limit.IsNegative() {
		return nil, ErrCreditLimitNegative
	}
	return &Account{
		ID:        NewAccountID(),
		Type:      AccountTypeCredit,
		Name:      name,
		OwnerID:   in.OwnerID,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		Credit: &CreditDetails{
			BankName:        strings.TrimSpace(in.BankName),
			Last4:           in.Last4,
			StatementDay:    in.StatementDay,
			GracePeriodDays: in.GracePeriodDays,
			Expiration:      util.EndOfMonth(in.Expiration),
			Limit:           in.Limit,
		},
	}, nil
}

// LoanAccountInput carries the fields of a loan account factory call
type LoanAccountInput struct {
	Name           string
	BankName       string
	StartDate      time.Time
	EndDate        time.Time
	OriginalAmount decimal.Decimal
	OwnerID        UserID
}

// NewLoanAccount creates a loan account
func NewLoanAccount(in LoanAccountInput) (*Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrAccountNameRequired
	}
	if strings.TrimSpace(in.BankName) == "" {
		return nil, ErrBankNameRequired
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, ErrLoanDateInvalid
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, ErrLoanPeriodInvalid
	}
	if in.OriginalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrLoanAmountInvalid
	}
	return &Account{
		ID:        NewAccountID(),
		Type:      AccountTypeLoan,
		Name:      name,
		OwnerID:   in.OwnerID,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		Loan: &LoanDetails{
			BankName:       strings.TrimSpace(in.BankName),
			StartDate:      in.StartDate,
			EndDate:        in.EndDate,
			OriginalAmount: in.OriginalAmount,
		},
	}, nil
}

// RestoreAccount rebuilds an account from a stored record. No validation is
// re-run; the persistence layer is trusted to hand back what a factory wrote.
func RestoreAccount(id AccountID, accountType AccountType, name string, ownerID UserID, active bool, createdAt time.Time, debit *DebitDetails, credit *CreditDetails, loan *LoanDetails) *Account {
	return &Account{
		ID:        id,
		Type:      accountType,
		Name:      name,
		OwnerID:   ownerID,
		Active:    active,
		CreatedAt: createdAt,
		Debit:     debit,
		Credit:    credit,
		Loan:      loan,
	}
}

// BillingCycle computes the statement window applying at the reference date.
// Cash and debit accounts have no statement concept and return nil. A loan
// returns its full term while the reference date falls inside it (date-only
// comparison), nil outside. A credit account always returns a trailing window
// ending on the most recent statement day relative to the reference date.
func (a *Account) BillingCycle(ref time.Time) *BillingCycle {
	switch a.Type {
	case AccountTypeCredit:
		return a.creditCycle(ref)
	case AccountTypeLoan:
		term := NewPeriod(a.Loan.StartDate, a.Loan.EndDate)
		if !term.Contains(ref) {
			return nil
		}
		return &BillingCycle{
			Start: a.Loan.StartDate,
			End:   a.Loan.EndDate,
			Due:   a.Loan.EndDate,
		}
	default:
		return nil
	}
}

func (a *Account) creditCycle(ref time.Time) *BillingCycle {
	statementDay := a.Credit.StatementDay

	endYear, endMonth := ref.Year(), ref.Month()
	if ref.Day() < statementDay {
		endYear, endMonth = util.PreviousMonth(endYear, endMonth)
	}
	end := util.EndOfDay(time.Date(endYear, endMonth, statementDay, 0, 0, 0, 0, ref.Location()))

	startYear, startMonth := util.PreviousMonth(endYear, endMonth)
	start := util.StartOfDay(time.Date(startYear, startMonth, statementDay, 0, 0, 0, 0, ref.Location()).AddDate(0, 0, 1))

	due := util.EndOfDay(end.AddDate(0, 0, a.Credit.GracePeriodDays))

	return &BillingCycle{Start: start, End: end, Due: due}
}

// IsCreditOrLoan reports whether the account participates in statement and
// due-date reporting
func (a *Account) IsCreditOrLoan() bool {
	return a.Type == AccountTypeCredit || a.Type == AccountTypeLoan
}

// DisplayName masks card-backed accounts with their last four digits
func (a *Account) DisplayName() string {
	switch a.Type {
	case AccountTypeDebit:
		return fmt.Sprintf("%s (**** %s)", a.Name, a.Debit.Last4)
	case AccountTypeCredit:
		return fmt.Sprintf("%s (**** %s)", a.Name, a.Credit.Last4)
	default:
		return a.Name
	}
}

// Deactivate marks the account inactive. Idempotent.
func (a *Account) Deactivate() {
	a.Active = false
}

// Activate marks the account active. Idempotent.
func (a *Account) Activate() {
	a.Active = true
}

// AccountRepository defines the interface for account persistence operations
type AccountRepository interface {
	Create(account *Account) (*Account, error)
	GetByID(id AccountID) (*Account, error)
	GetByIDs(ids []AccountID) ([]*Account, error)
	GetAllByOwner(ownerID UserID, includeInactive bool) ([]*Account, error)
	Update(account *Account) (*Account, error)
}
