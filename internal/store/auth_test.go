package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitpulse/internal/identity"
	"fitpulse/internal/model"
)

// mockProvider implements identity.Provider with overridable behavior.
type mockProvider struct {
	loginFn  func(ctx context.Context, email, password string) (*model.UserRecord, error)
	signupFn func(ctx context.Context, name, email, password string) (*model.UserRecord, error)
}

func (m *mockProvider) Login(ctx context.Context, email, password string) (*model.UserRecord, error) {
	return m.loginFn(ctx, email, password)
}

func (m *mockProvider) Signup(ctx context.Context, name, email, password string) (*model.UserRecord, error) {
	return m.signupFn(ctx, name, email, password)
}

func newAuthStore(provider identity.Provider) (*AuthStore, *OnboardingStore) {
	onboarding := NewOnboardingStore("onboarding-storage:d1", nil)
	return NewAuthStore("auth-storage:d1", nil, provider, onboarding), onboarding
}

func TestAuthStore_LoginThenLogout(t *testing.T) {
	s, _ := newAuthStore(identity.NewFakeProvider(0))

	_, err := s.Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)

	require.True(t, s.IsAuthenticated())
	assert.Equal(t, "John Doe", s.User().Name)
	assert.Equal(t, "a@b.com", s.User().Email)

	s.Logout()

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
}

func TestAuthStore_Signup(t *testing.T) {
	s, _ := newAuthStore(identity.NewFakeProvider(0))

	_, err := s.Signup(context.Background(), "Ana", "ana@example.com", "secret1")
	require.NoError(t, err)

	session := s.Session()
	assert.True(t, session.IsAuthenticated)
	assert.Equal(t, "Ana", session.User.Name)
	assert.Empty(t, session.User.FitnessGoals)
}

func TestAuthStore_ProviderErrorLeavesStateUntouched(t *testing.T) {
	s, _ := newAuthStore(&mockProvider{
		loginFn: func(ctx context.Context, email, password string) (*model.UserRecord, error) {
			return nil, model.ErrInvalidCredentials
		},
	})

	_, err := s.Login(context.Background(), "a@b.com", "wrong")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	assert.False(t, s.IsAuthenticated())
}

func TestAuthStore_CanceledLoginLeavesStateUntouched(t *testing.T) {
	s, _ := newAuthStore(identity.NewFakeProvider(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Login(ctx, "a@b.com", "x")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, s.IsAuthenticated())
}

func TestAuthStore_StaleLoginDiscardedAfterLogout(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	s, _ := newAuthStore(&mockProvider{
		loginFn: func(ctx context.Context, email, password string) (*model.UserRecord, error) {
			close(started)
			<-release
			return &model.UserRecord{ID: "1", Email: email}, nil
		},
	})

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Login(context.Background(), "a@b.com", "x")
		errCh <- err
	}()

	<-started
	s.Logout()
	close(release)

	assert.ErrorIs(t, <-errCh, model.ErrSuperseded)
	assert.False(t, s.IsAuthenticated(), "login resolved after logout must not sign in")
}

func TestAuthStore_LatestLoginWins(t *testing.T) {
	first := make(chan struct{})
	firstStarted := make(chan struct{})
	s, _ := newAuthStore(&mockProvider{
		loginFn: func(ctx context.Context, email, password string) (*model.UserRecord, error) {
			if email == "slow@b.com" {
				close(firstStarted)
				<-first
			}
			return &model.UserRecord{ID: email, Email: email}, nil
		},
	})

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Login(context.Background(), "slow@b.com", "x")
		errCh <- err
	}()
	<-firstStarted

	_, err := s.Login(context.Background(), "fast@b.com", "x")
	require.NoError(t, err)
	close(first)

	assert.ErrorIs(t, <-errCh, model.ErrSuperseded)
	assert.Equal(t, "fast@b.com", s.User().Email)
}

func TestAuthStore_OnboardingFlagIsShared(t *testing.T) {
	s, onboarding := newAuthStore(identity.NewFakeProvider(0))

	assert.False(t, s.OnboardingCompleted())

	s.CompleteOnboarding()
	assert.True(t, s.OnboardingCompleted())
	assert.True(t, onboarding.HasCompletedOnboarding())

	onboarding.Reset()
	assert.False(t, s.Session().OnboardingCompleted)
}

func TestAuthStore_UserIsACopy(t *testing.T) {
	s, _ := newAuthStore(identity.NewFakeProvider(0))
	_, err := s.Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)

	u := s.User()
	u.Name = "Mallory"
	u.Friends[0] = "99"

	assert.Equal(t, "John Doe", s.User().Name)
	assert.Equal(t, "2", s.User().Friends[0])
}

func TestAuthStore_PersistenceRoundTrip(t *testing.T) {
	w, _ := newTestWriter(t)
	onboarding := NewOnboardingStore("onboarding-storage:d1", w)
	s := NewAuthStore("auth-storage:d1", w, identity.NewFakeProvider(0), onboarding)

	p, err := s.Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	waitSaved(t, p)

	restored := NewAuthStore("auth-storage:d1", w, identity.NewFakeProvider(0), onboarding)
	require.True(t, restored.Hydrate(context.Background()))
	assert.True(t, restored.IsAuthenticated())
	assert.Equal(t, "a@b.com", restored.User().Email)

	waitSaved(t, restored.Logout())

	again := NewAuthStore("auth-storage:d1", w, identity.NewFakeProvider(0), onboarding)
	require.True(t, again.Hydrate(context.Background()))
	assert.False(t, again.IsAuthenticated())
}

func TestAuthStore_HydrateDerivesAuthenticatedFromUser(t *testing.T) {
	w, storage := newTestWriter(t)
	require.NoError(t, storage.Set(context.Background(), "auth-storage:d1",
		[]byte(`{"user":null,"is_authenticated":true}`)))

	s := NewAuthStore("auth-storage:d1", w, identity.NewFakeProvider(0), NewOnboardingStore("o", nil))
	require.True(t, s.Hydrate(context.Background()))
	assert.False(t, s.IsAuthenticated())
}
