// Package identity resolves login and signup requests into user profiles.
// Call sites depend on Provider only, so the simulated provider can be
// swapped for one that really verifies credentials.
package identity

import (
	"context"

	"fitpulse/internal/model"
)

// Provider authenticates or registers a user and returns the profile the
// auth session should hold.
type Provider interface {
	Login(ctx context.Context, email, password string) (*model.UserRecord, error)
	Signup(ctx context.Context, name, email, password string) (*model.UserRecord, error)
}

var (
	_ Provider = (*FakeProvider)(nil)
	_ Provider = (*AccountProvider)(nil)
)
