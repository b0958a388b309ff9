package store

import (
	"context"
	"log"
	"sync"

	"fitpulse/internal/identity"
	"fitpulse/internal/model"
	"fitpulse/internal/persist"
)

// CompletionFlag is the single source of truth for "onboarding completed".
// OnboardingStore implements it.
type CompletionFlag interface {
	HasCompletedOnboarding() bool
	SetHasCompletedOnboarding(completed bool) *persist.Pending
}

// authSnapshot is the persisted shape of the auth store.
type authSnapshot struct {
	User            *model.UserRecord `json:"user"`
	IsAuthenticated bool              `json:"is_authenticated"`
}

// AuthStore holds the signed-in user of a device. IsAuthenticated is derived
// from the user being present, so the two can never disagree.
//
// Login and Signup resolve outside the lock. Every auth operation bumps an
// epoch when it starts; a login or signup whose epoch is no longer current
// when it resolves is discarded with model.ErrSuperseded.
type AuthStore struct {
	mu    sync.Mutex
	user  *model.UserRecord
	epoch uint64

	provider   identity.Provider
	onboarding CompletionFlag
	key        string
	snap       persist.Snapshotter
}

func NewAuthStore(key string, snap persist.Snapshotter, provider identity.Provider, onboarding CompletionFlag) *AuthStore {
	return &AuthStore{
		provider:   provider,
		onboarding: onboarding,
		key:        key,
		snap:       orDiscard(snap),
	}
}

// Hydrate restores the persisted user, if a snapshot can be read.
func (s *AuthStore) Hydrate(ctx context.Context) bool {
	var loaded authSnapshot
	if !s.snap.Load(ctx, s.key, &loaded) {
		return false
	}
	if loaded.IsAuthenticated != (loaded.User != nil) {
		log.Printf("[AuthStore] Inconsistent snapshot key=%s is_authenticated=%t user_present=%t; trusting user",
			s.key, loaded.IsAuthenticated, loaded.User != nil)
	}

	s.mu.Lock()
	s.user = loaded.User
	s.mu.Unlock()
	return true
}

// Login resolves the credentials with the identity provider and, unless a
// newer auth operation started meanwhile, signs the user in.
func (s *AuthStore) Login(ctx context.Context, email, password string) (*persist.Pending, error) {
	epoch := s.begin()

	user, err := s.provider.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, epoch, user)
}

// Signup registers the user with the identity provider and signs them in.
func (s *AuthStore) Signup(ctx context.Context, name, email, password string) (*persist.Pending, error) {
	epoch := s.begin()

	user, err := s.provider.Signup(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, epoch, user)
}

// Logout clears the user. In-flight logins started before it are discarded.
func (s *AuthStore) Logout() *persist.Pending {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.user = nil
	return s.saveLocked()
}

// CompleteOnboarding marks onboarding as completed on the onboarding store.
func (s *AuthStore) CompleteOnboarding() *persist.Pending {
	return s.onboarding.SetHasCompletedOnboarding(true)
}

// OnboardingCompleted reads the onboarding store's flag.
func (s *AuthStore) OnboardingCompleted() bool {
	return s.onboarding.HasCompletedOnboarding()
}

// User returns a copy of the signed-in user, or nil.
func (s *AuthStore) User() *model.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

func (s *AuthStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Session returns the read model of the auth state.
func (s *AuthStore) Session() model.AuthSession {
	s.mu.Lock()
	user := s.user.Clone()
	s.mu.Unlock()

	return model.AuthSession{
		User:                user,
		IsAuthenticated:     user != nil,
		OnboardingCompleted: s.OnboardingCompleted(),
	}
}

func (s *AuthStore) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	return s.epoch
}

func (s *AuthStore) apply(ctx context.Context, epoch uint64, user *model.UserRecord) (*persist.Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The caller went away while the provider was resolving.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.epoch != epoch {
		log.Printf("[AuthStore] Discarding stale result key=%s epoch=%d current=%d", s.key, epoch, s.epoch)
		return nil, model.ErrSuperseded
	}

	s.user = user
	return s.saveLocked(), nil
}

func (s *AuthStore) saveLocked() *persist.Pending {
	return s.snap.Save(s.key, authSnapshot{
		User:            s.user,
		IsAuthenticated: s.user != nil,
	})
}
