package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"fitpulse/internal/model"
)

// accountRepository implements AccountRepository using sqlx
type accountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts a new account. Emails are stored lower-cased.
func (r *accountRepository) Create(ctx context.Context, a *model.Account) error {
	query := `
		INSERT INTO accounts (id, name, email, password_hashed, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	a.Email = normalizeEmail(a.Email)
	err := r.db.QueryRowxContext(ctx, query,
		a.ID,
		a.Name,
		a.Email,
		a.PasswordHashed,
		a.AvatarURL,
	).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// GetByEmail retrieves an account by email
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `
		SELECT id, name, email, password_hashed, avatar_url, created_at
		FROM accounts
		WHERE email = $1
	`

	var a model.Account
	err := r.db.GetContext(ctx, &a, query, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return &a, nil
}

// ExistsByEmail checks if an email is already registered
func (r *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, normalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
