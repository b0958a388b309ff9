package kv

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStorage(t *testing.T) (Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStorage(sqlx.NewDb(db, "sqlmock")), mock
}

func TestPostgresStorage_Get(t *testing.T) {
	store, mock := newMockStorage(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_records WHERE key = $1`)).
		WithArgs("auth-storage:d1").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"user":null}`)))

	got, err := store.Get(ctx, "auth-storage:d1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":null}`, string(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_GetMissing(t *testing.T) {
	store, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_records WHERE key = $1`)).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_GetFailure(t *testing.T) {
	store, mock := newMockStorage(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_records`)).WillReturnError(boom)

	_, err := store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPostgresStorage_SetUpserts(t *testing.T) {
	store, mock := newMockStorage(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_records (key, value, updated_at)`)).
		WithArgs("recipe-storage:d1", `{"favorite_recipe_ids":["1"]}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Set(context.Background(), "recipe-storage:d1", []byte(`{"favorite_recipe_ids":["1"]}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_Delete(t *testing.T) {
	store, mock := newMockStorage(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_records WHERE key = $1`)).
		WithArgs("onboarding-storage:d1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Delete(context.Background(), "onboarding-storage:d1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
