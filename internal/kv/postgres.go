package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// postgresStorage implements Storage on the kv_records table using sqlx.
type postgresStorage struct {
	db *sqlx.DB
}

// NewPostgresStorage creates a Storage backed by Postgres.
// The kv_records table is created by database.Migrate.
func NewPostgresStorage(db *sqlx.DB) Storage {
	return &postgresStorage{db: db}
}

// Get retrieves the JSON value stored under key
func (s *postgresStorage) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_records WHERE key = $1`

	var value []byte
	err := s.db.GetContext(ctx, &value, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get kv record: %w", err)
	}

	return value, nil
}

// Set upserts the JSON value under key
func (s *postgresStorage) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_records (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query, key, string(value))
	if err != nil {
		return fmt.Errorf("failed to set kv record: %w", err)
	}

	return nil
}

// Delete removes the record under key
func (s *postgresStorage) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_records WHERE key = $1`

	_, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("failed to delete kv record: %w", err)
	}

	return nil
}
