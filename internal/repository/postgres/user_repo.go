package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/splitbook/splitbook-backend/internal/domain"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

var _ domain.UserRepository = (*UserRepository)(nil)

const userColumns = `id, auth0_id, email, name, picture_url, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Auth0ID, &u.Email, &u.Name, &u.PictureURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user by their ID
func (r *UserRepository) GetByID(id domain.UserID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(context.Background(), query, id))
}

// GetByAuth0ID retrieves a user by their Auth0 ID
func (r *UserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth0_id = $1`
	return scanUser(r.pool.QueryRow(context.Background(), query, auth0ID))
}

// GetByEmail retrieves a user by email address
func (r *UserRepository) GetByEmail(email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(context.Background(), query, email))
}

// GetByIDs retrieves users by IDs, skipping unknown ones
func (r *UserRepository) GetByIDs(ids []domain.UserID) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := r.pool.Query(context.Background(), query, userIDStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Create creates a new user
func (r *UserRepository) Create(user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		user.ID = domain.NewUserID()
	}
	query := `
		INSERT INTO users (id, auth0_id, email, name, picture_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(context.Background(), query,
		user.ID, user.Auth0ID, user.Email, user.Name, user.PictureURL))
}

// Update updates an existing user
func (r *UserRepository) Update(user *domain.User) (*domain.User, error) {
	query := `
		UPDATE users
		SET email = $2, name = $3, picture_url = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(context.Background(), query,
		user.ID, user.Email, user.Name, user.PictureURL))
}

// UpdateName updates only the user's name by Auth0 ID
func (r *UserRepository) UpdateName(auth0ID string, name string) (*domain.User, error) {
	query := `
		UPDATE users
		SET name = $2, updated_at = now()
		WHERE auth0_id = $1
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(context.Background(), query, auth0ID, name))
}

// CreateOrGetByAuth0ID creates a new user or returns the existing one
// (upsert on login)
func (r *UserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	query := `
		INSERT INTO users (id, auth0_id, email, name, picture_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (auth0_id) DO UPDATE SET
			email = EXCLUDED.email,
			updated_at = now()
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(context.Background(), query,
		domain.NewUserID(), auth0ID, email, name, pictureURL))
}

func userIDStrings(ids []domain.UserID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
