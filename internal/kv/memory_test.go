package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "a", []byte(`{"x":1}`)))
	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(got))

	require.NoError(t, store.Set(ctx, "a", []byte(`{"x":2}`)))
	got, err = store.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":2}`, string(got))

	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Delete(ctx, "a"), "deleting twice is fine")
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	value := []byte(`"abc"`)
	require.NoError(t, store.Set(ctx, "k", value))
	value[1] = 'z'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(got))

	got[1] = 'q'
	again, _ := store.Get(ctx, "k")
	assert.Equal(t, `"abc"`, string(again))
}

func TestMemoryStorage_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStorage()
	assert.ErrorIs(t, store.Set(ctx, "k", []byte("1")), context.Canceled)
	assert.Equal(t, 0, store.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "recipe-storage:dev-1", Key(RecipeRecord, "dev-1"))
	assert.Len(t, RecordNames, 3)
}
