package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/splitbook/splitbook-backend/internal/domain"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL.
// The type-specific payloads are flattened into nullable columns; the row is
// rebuilt through the domain restore factory on read.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

var _ domain.AccountRepository = (*AccountRepository)(nil)

const accountColumns = `id, type, name, owner_id, active, created_at,
	bank_name, last4, statement_day, grace_period_days, expiration, credit_limit,
	loan_start_date, loan_end_date, loan_original_amount`

type accountRow struct {
	id                 string
	accountType        string
	name               string
	ownerID            string
	active             bool
	createdAt          time.Time
	bankName           *string
	last4              *string
	statementDay       *int
	gracePeriodDays    *int
	expiration         *time.Time
	creditLimit        *decimal.Decimal
	loanStartDate      *time.Time
	loanEndDate        *time.Time
	loanOriginalAmount *decimal.Decimal
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a accountRow
	err := row.Scan(&a.id, &a.accountType, &a.name, &a.ownerID, &a.active, &a.createdAt,
		&a.bankName, &a.last4, &a.statementDay, &a.gracePeriodDays, &a.expiration, &a.creditLimit,
		&a.loanStartDate, &a.loanEndDate, &a.loanOriginalAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return rowToAccount(a), nil
}

func rowToAccount(a accountRow) *domain.Account {
	var debit *domain.DebitDetails
	var credit *domain.CreditDetails
	var loan *domain.LoanDetails

	switch domain.AccountType(a.accountType) {
	case domain.AccountTypeDebit:
		debit = &domain.DebitDetails{BankName: *a.bankName, Last4: *a.last4}
	case domain.AccountTypeCredit:
		credit = &domain.CreditDetails{
			BankName:        *a.bankName,
			Last4:           *a.last4,
			StatementDay:    *a.statementDay,
			GracePeriodDays: *a.gracePeriodDays,
			Expiration:      *a.expiration,
			Limit:           a.creditLimit,
		}
	case domain.AccountTypeLoan:
		loan = &domain.LoanDetails{
			BankName:       *a.bankName,
			StartDate:      *a.loanStartDate,
			EndDate:        *a.loanEndDate,
			OriginalAmount: *a.loanOriginalAmount,
		}
	}

	return domain.RestoreAccount(
		domain.AccountID(a.id),
		domain.AccountType(a.accountType),
		a.name,
		domain.UserID(a.ownerID),
		a.active,
		a.createdAt,
		debit, credit, loan,
	)
}

func accountArgs(account *domain.Account) []any {
	var bankName, last4 *string
	var statementDay, gracePeriodDays *int
	var expiration, loanStart, loanEnd *time.Time
	var creditLimit, loanAmount *decimal.Decimal

	switch account.Type {
	case domain.AccountTypeDebit:
		bankName = &account.Debit.BankName
		last4 = &account.Debit.Last4
	case domain.AccountTypeCredit:
		bankName = &account.Credit.BankName
		last4 = &account.Credit.Last4
		statementDay = &account.Credit.StatementDay
		gracePeriodDays = &account.Credit.GracePeriodDays
		expiration = &account.Credit.Expiration
		creditLimit = account.Credit.Limit
	case domain.AccountTypeLoan:
		bankName = &account.Loan.BankName
		loanStart = &account.Loan.StartDate
		loanEnd = &account.Loan.EndDate
		loanAmount = &account.Loan.OriginalAmount
	}

	return []any{
		account.ID, account.Type, account.Name, account.OwnerID, account.Active, account.CreatedAt,
		bankName, last4, statementDay, gracePeriodDays, expiration, creditLimit,
		loanStart, loanEnd, loanAmount,
	}
}

// Create stores a new account
func (r *AccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	if _, err := r.pool.Exec(context.Background(), query, accountArgs(account)...); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(id domain.AccountID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.pool.QueryRow(context.Background(), query, id))
}

// GetByIDs retrieves accounts by IDs, skipping unknown ones
func (r *AccountRepository) GetByIDs(ids []domain.AccountID) ([]*domain.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ANY($1)`
	rows, err := r.pool.Query(context.Background(), query, strs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// GetAllByOwner retrieves the user's accounts, newest first
func (r *AccountRepository) GetAllByOwner(ownerID domain.UserID, includeInactive bool) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1`
	if !includeInactive {
		query += ` AND active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(context.Background(), query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// Update updates an existing account. The type payload columns are rewritten
// wholesale; the type itself never changes after creation.
func (r *AccountRepository) Update(account *domain.Account) (*domain.Account, error) {
	args := accountArgs(account)
	// drop the immutable columns: type ($2), owner_id ($4), created_at ($6)
	updateArgs := append([]any{args[0], args[2], args[4]}, args[6:]...)
	query := `
		UPDATE accounts SET
			name = $2, active = $3,
			bank_name = $4, last4 = $5, statement_day = $6, grace_period_days = $7,
			expiration = $8, credit_limit = $9,
			loan_start_date = $10, loan_end_date = $11, loan_original_amount = $12
		WHERE id = $1`
	tag, err := r.pool.Exec(context.Background(), query, updateArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}
