package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/splitbook/splitbook-backend/internal/domain"
)

// TransactionRepository implements domain.TransactionRepository using
// PostgreSQL. Payoff links are stored on the settled side only (paid_off_by);
// the payoff's related-transactions list is derived from it on read.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

var _ domain.TransactionRepository = (*TransactionRepository)(nil)

const transactionColumns = `id, journal_id, title, amount, date, account_id, type, paid_by,
	tags, status, notes, paid_off_by, receipt_path, created_at, updated_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var journalID, accountID, paidBy string
	var tags []string
	var paidOffBy *string
	err := row.Scan(&t.ID, &journalID, &t.Title, &t.Amount, &t.Date, &accountID, &t.Type, &paidBy,
		&tags, &t.Status, &t.Notes, &paidOffBy, &t.ReceiptPath, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	t.JournalID = domain.JournalID(journalID)
	t.AccountID = domain.AccountID(accountID)
	t.PaidBy = domain.UserID(paidBy)
	t.Tags = make([]domain.TagID, len(tags))
	for i, tag := range tags {
		t.Tags[i] = domain.TagID(tag)
	}
	if paidOffBy != nil {
		id := domain.TransactionID(*paidOffBy)
		t.PaidOffBy = &id
	}
	return &t, nil
}

func transactionArgs(t *domain.Transaction) []any {
	tags := make([]string, len(t.Tags))
	for i, tag := range t.Tags {
		tags[i] = tag.String()
	}
	var paidOffBy *string
	if t.PaidOffBy != nil {
		s := t.PaidOffBy.String()
		paidOffBy = &s
	}
	return []any{
		t.ID, t.JournalID, t.Title, t.Amount, t.Date, t.AccountID, t.Type, t.PaidBy,
		tags, t.Status, t.Notes, paidOffBy, t.ReceiptPath, t.CreatedAt, t.UpdatedAt,
	}
}

// attachRelated fills the derived related-transactions list on each loaded
// transaction by looking up which rows point back at it
func (r *TransactionRepository) attachRelated(ctx context.Context, txns []*domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	byID := make(map[domain.TransactionID]*domain.Transaction, len(txns))
	ids := make([]string, 0, len(txns))
	for _, t := range txns {
		byID[t.ID] = t
		ids = append(ids, t.ID.String())
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, paid_off_by FROM transactions
		WHERE paid_off_by = ANY($1)
		ORDER BY date, created_at`, ids)
	if err != nil {
		return fmt.Errorf("failed to query payoff links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var settledID, payoffID string
		if err := rows.Scan(&settledID, &payoffID); err != nil {
			return err
		}
		if payoff, ok := byID[domain.TransactionID(payoffID)]; ok {
			payoff.RelatedTransactions = append(payoff.RelatedTransactions, domain.TransactionID(settledID))
		}
	}
	return rows.Err()
}

// Create stores a new transaction
func (r *TransactionRepository) Create(txn *domain.Transaction) (*domain.Transaction, error) {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	if _, err := r.pool.Exec(context.Background(), query, transactionArgs(txn)...); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return txn, nil
}

// CreateWithJournal stores a new transaction and rewrites the journal's tag
// set in one database transaction, since creating a transaction may register
// new tags on the journal
func (r *TransactionRepository) CreateWithJournal(txn *domain.Transaction, journal *domain.Journal) (*domain.Transaction, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	if _, err := tx.Exec(ctx, query, transactionArgs(txn)...); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_tags WHERE journal_id = $1`, journal.ID); err != nil {
		return nil, fmt.Errorf("failed to clear journal tags: %w", err)
	}
	for _, t := range journal.Tags() {
		_, err := tx.Exec(ctx, `
			INSERT INTO journal_tags (journal_id, tag_id, tag_name)
			VALUES ($1, $2, $3)`,
			journal.ID, t.ID, t.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to write journal tag: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return txn, nil
}

// GetByID retrieves a transaction by ID
func (r *TransactionRepository) GetByID(id domain.TransactionID) (*domain.Transaction, error) {
	ctx := context.Background()
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	txn, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.attachRelated(ctx, []*domain.Transaction{txn}); err != nil {
		return nil, err
	}
	return txn, nil
}

// GetByIDs retrieves transactions by IDs; any unknown ID is an error
func (r *TransactionRepository) GetByIDs(ids []domain.TransactionID) ([]*domain.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx := context.Background()
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, strs)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(txns) != len(ids) {
		return nil, domain.ErrTransactionNotFound
	}
	if err := r.attachRelated(ctx, txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// GetByJournal retrieves a journal's transactions, optionally filtered,
// newest first
func (r *TransactionRepository) GetByJournal(journalID domain.JournalID, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	ctx := context.Background()
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE journal_id = $1`
	args := []any{journalID}

	if filters != nil {
		if filters.AccountID != nil {
			args = append(args, *filters.AccountID)
			query += fmt.Sprintf(` AND account_id = $%d`, len(args))
		}
		if filters.StartDate != nil {
			args = append(args, *filters.StartDate)
			query += fmt.Sprintf(` AND date >= $%d`, len(args))
		}
		if filters.EndDate != nil {
			args = append(args, *filters.EndDate)
			query += fmt.Sprintf(` AND date <= $%d`, len(args))
		}
		if filters.Type != nil {
			args = append(args, *filters.Type)
			query += fmt.Sprintf(` AND type = $%d`, len(args))
		}
		if filters.Status != nil {
			args = append(args, *filters.Status)
			query += fmt.Sprintf(` AND status = $%d`, len(args))
		}
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachRelated(ctx, txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// GetByAccountInPeriod retrieves a journal's transactions on one account
// whose date falls inside the period
func (r *TransactionRepository) GetByAccountInPeriod(journalID domain.JournalID, accountID domain.AccountID, period domain.Period) ([]*domain.Transaction, error) {
	ctx := context.Background()
	query := `
		SELECT ` + transactionColumns + ` FROM transactions
		WHERE journal_id = $1 AND account_id = $2 AND date >= $3 AND date <= $4
		ORDER BY date, created_at`
	rows, err := r.pool.Query(ctx, query, journalID, accountID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachRelated(ctx, txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// Update updates an existing transaction
func (r *TransactionRepository) Update(txn *domain.Transaction) (*domain.Transaction, error) {
	args := transactionArgs(txn)
	// drop the immutable columns: journal_id ($2), created_at ($14)
	updateArgs := append(append([]any{args[0]}, args[2:13]...), args[14])
	query := `
		UPDATE transactions SET
			title = $2, amount = $3, date = $4, account_id = $5, type = $6, paid_by = $7,
			tags = $8, status = $9, notes = $10, paid_off_by = $11, receipt_path = $12,
			updated_at = $13
		WHERE id = $1`
	tag, err := r.pool.Exec(context.Background(), query, updateArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrTransactionNotFound
	}
	return txn, nil
}

// SavePayoffLinks persists a payoff link change: every settled transaction's
// paid_off_by column is rewritten in one database transaction. The payoff row
// itself carries no link state.
func (r *TransactionRepository) SavePayoffLinks(payoff *domain.Transaction, settled []*domain.Transaction) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, txn := range settled {
		var paidOffBy *string
		if txn.PaidOffBy != nil {
			s := txn.PaidOffBy.String()
			paidOffBy = &s
		}
		tag, err := tx.Exec(ctx, `
			UPDATE transactions SET paid_off_by = $2, updated_at = now()
			WHERE id = $1`, txn.ID, paidOffBy)
		if err != nil {
			return fmt.Errorf("failed to save payoff link: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrTransactionNotFound
		}
	}
	return tx.Commit(ctx)
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(id domain.TransactionID) error {
	tag, err := r.pool.Exec(context.Background(), `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	defer rows.Close()
	var txns []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}
