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

// JournalRepository implements domain.JournalRepository using PostgreSQL.
// The aggregate is stored across five tables (journal row plus collaborators,
// tags, account links and repayments) and always loaded and saved whole.
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new JournalRepository
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

var _ domain.JournalRepository = (*JournalRepository)(nil)

// Create stores a new journal aggregate
func (r *JournalRepository) Create(journal *domain.Journal) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO journals (id, owner_id, owner_email, title, currency, created_at, archived, requires_approval)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = tx.Exec(ctx, query,
		journal.ID, journal.OwnerID, journal.OwnerEmail, journal.Title, journal.Currency,
		journal.CreatedAt, journal.Archived, journal.RequiresApproval)
	if err != nil {
		return fmt.Errorf("failed to create journal: %w", err)
	}

	if err := writeCollections(ctx, tx, journal); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID loads a journal aggregate
func (r *JournalRepository) GetByID(id domain.JournalID) (*domain.Journal, error) {
	ctx := context.Background()

	var in domain.RestoreJournalInput
	var journalID, ownerID string
	query := `
		SELECT id, owner_id, owner_email, title, currency, created_at, archived, requires_approval
		FROM journals WHERE id = $1`
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&journalID, &ownerID, &in.OwnerEmail, &in.Title, &in.Currency,
		&in.CreatedAt, &in.Archived, &in.RequiresApproval)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJournalNotFound
		}
		return nil, err
	}
	in.ID = domain.JournalID(journalID)
	in.OwnerID = domain.UserID(ownerID)

	if err := r.loadCollections(ctx, &in); err != nil {
		return nil, err
	}
	return domain.RestoreJournal(in), nil
}

// GetAllForUser loads every journal the user collaborates on, newest first
func (r *JournalRepository) GetAllForUser(userID domain.UserID) ([]*domain.Journal, error) {
	ctx := context.Background()
	query := `
		SELECT j.id
		FROM journals j
		JOIN journal_collaborators c ON c.journal_id = j.id
		WHERE c.user_id = $1
		ORDER BY j.created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journals: %w", err)
	}
	defer rows.Close()

	var ids []domain.JournalID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, domain.JournalID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	journals := make([]*domain.Journal, 0, len(ids))
	for _, id := range ids {
		journal, err := r.GetByID(id)
		if err != nil {
			return nil, err
		}
		journals = append(journals, journal)
	}
	return journals, nil
}

// Save persists the whole aggregate: the journal row is updated and the owned
// collections are rewritten inside one database transaction
func (r *JournalRepository) Save(journal *domain.Journal) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE journals
		SET owner_email = $2, title = $3, currency = $4, archived = $5, requires_approval = $6
		WHERE id = $1`
	tag, err := tx.Exec(ctx, query,
		journal.ID, journal.OwnerEmail, journal.Title, journal.Currency,
		journal.Archived, journal.RequiresApproval)
	if err != nil {
		return fmt.Errorf("failed to update journal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJournalNotFound
	}

	for _, table := range []string{"journal_collaborators", "journal_tags", "journal_account_links", "journal_repayments"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE journal_id = $1`, journal.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := writeCollections(ctx, tx, journal); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func writeCollections(ctx context.Context, tx pgx.Tx, journal *domain.Journal) error {
	for _, c := range journal.Collaborators() {
		_, err := tx.Exec(ctx, `
			INSERT INTO journal_collaborators (journal_id, user_id, permission)
			VALUES ($1, $2, $3)`,
			journal.ID, c.UserID, c.Permission)
		if err != nil {
			return fmt.Errorf("failed to write collaborator: %w", err)
		}
	}
	for _, t := range journal.Tags() {
		_, err := tx.Exec(ctx, `
			INSERT INTO journal_tags (journal_id, tag_id, tag_name)
			VALUES ($1, $2, $3)`,
			journal.ID, t.ID, t.Name)
		if err != nil {
			return fmt.Errorf("failed to write tag: %w", err)
		}
	}
	for _, link := range journal.AccountLinks() {
		_, err := tx.Exec(ctx, `
			INSERT INTO journal_account_links (journal_id, account_id, owner_id, created_at)
			VALUES ($1, $2, $3, $4)`,
			journal.ID, link.AccountID, link.OwnerID, link.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to write account link: %w", err)
		}
	}
	for _, rep := range journal.Repayments() {
		_, err := tx.Exec(ctx, `
			INSERT INTO journal_repayments (id, journal_id, account_id, period_start, period_end, date, amount, currency)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			rep.ID, rep.JournalID, rep.AccountID,
			rep.StatementPeriod.Start, rep.StatementPeriod.End,
			rep.Date, rep.Amount.Amount, rep.Amount.Currency)
		if err != nil {
			return fmt.Errorf("failed to write repayment: %w", err)
		}
	}
	return nil
}

func (r *JournalRepository) loadCollections(ctx context.Context, in *domain.RestoreJournalInput) error {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, permission FROM journal_collaborators WHERE journal_id = $1`, in.ID)
	if err != nil {
		return fmt.Errorf("failed to query collaborators: %w", err)
	}
	for rows.Next() {
		var userID, permission string
		if err := rows.Scan(&userID, &permission); err != nil {
			rows.Close()
			return err
		}
		in.Collaborators = append(in.Collaborators, domain.Collaborator{
			UserID:     domain.UserID(userID),
			Permission: domain.Permission(permission),
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT tag_id, tag_name FROM journal_tags WHERE journal_id = $1`, in.ID)
	if err != nil {
		return fmt.Errorf("failed to query tags: %w", err)
	}
	for rows.Next() {
		var tagID, tagName string
		if err := rows.Scan(&tagID, &tagName); err != nil {
			rows.Close()
			return err
		}
		in.Tags = append(in.Tags, domain.Tag{ID: domain.TagID(tagID), Name: tagName})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT account_id, owner_id, created_at FROM journal_account_links WHERE journal_id = $1`, in.ID)
	if err != nil {
		return fmt.Errorf("failed to query account links: %w", err)
	}
	for rows.Next() {
		var accountID, ownerID string
		var createdAt time.Time
		if err := rows.Scan(&accountID, &ownerID, &createdAt); err != nil {
			rows.Close()
			return err
		}
		in.AccountLinks = append(in.AccountLinks, domain.AccountLink{
			AccountID: domain.AccountID(accountID),
			OwnerID:   domain.UserID(ownerID),
			CreatedAt: createdAt,
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT id, account_id, period_start, period_end, date, amount, currency
		FROM journal_repayments WHERE journal_id = $1`, in.ID)
	if err != nil {
		return fmt.Errorf("failed to query repayments: %w", err)
	}
	for rows.Next() {
		var id, accountID, currency string
		var periodStart, periodEnd, date time.Time
		var amount decimal.Decimal
		if err := rows.Scan(&id, &accountID, &periodStart, &periodEnd, &date, &amount, &currency); err != nil {
			rows.Close()
			return err
		}
		in.Repayments = append(in.Repayments, domain.Repayment{
			ID:              domain.RepaymentID(id),
			JournalID:       in.ID,
			AccountID:       domain.AccountID(accountID),
			StatementPeriod: domain.NewPeriod(periodStart, periodEnd),
			Date:            date,
			Amount:          domain.NewMoney(amount, currency),
		})
	}
	rows.Close()
	return rows.Err()
}
