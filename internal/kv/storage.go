// Package kv is the durable key-value layer behind the state stores. Each
// record is one JSON snapshot under a named key.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("kv: key not found")

// Storage defines the operations every backend provides.
type Storage interface {
	// Get returns the raw JSON stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Record names, one per state store.
const (
	OnboardingRecord = "onboarding-storage"
	AuthRecord       = "auth-storage"
	RecipeRecord     = "recipe-storage"
)

// RecordNames lists every per-device record.
var RecordNames = []string{OnboardingRecord, AuthRecord, RecipeRecord}

// Key returns the storage key of a store record for a device.
func Key(record, deviceID string) string {
	return fmt.Sprintf("%s:%s", record, deviceID)
}
