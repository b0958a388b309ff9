// Package session groups the three state stores of one device and keeps them
// in memory once they have been hydrated from durable storage.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"fitpulse/internal/identity"
	"fitpulse/internal/kv"
	"fitpulse/internal/persist"
	"fitpulse/internal/store"
)

// HydrateTimeout bounds the reads that restore a device's stores.
const HydrateTimeout = 5 * time.Second

// Session is the state of one device.
type Session struct {
	DeviceID   string
	Onboarding *store.OnboardingStore
	Auth       *store.AuthStore
	Recipes    *store.RecipeStore
}

// Logout signs the user out and resets the onboarding wizard, as the settings
// screen does.
func (s *Session) Logout() *persist.Pending {
	return persist.Join(s.Auth.Logout(), s.Onboarding.Reset())
}

type entry struct {
	once     sync.Once
	session  *Session
	lastUsed time.Time
}

// Registry hands out one Session per device id and evicts sessions left idle.
type Registry struct {
	snap     persist.Snapshotter
	provider identity.Provider
	recipes  store.RecipeSource
	now      func() time.Time

	mu      sync.Mutex
	devices map[string]*entry
}

func NewRegistry(snap persist.Snapshotter, provider identity.Provider, recipes store.RecipeSource) *Registry {
	return &Registry{
		snap:     snap,
		provider: provider,
		recipes:  recipes,
		now:      time.Now,
		devices:  make(map[string]*entry),
	}
}

// Get returns the device's session, hydrating it on first access. Concurrent
// first calls for the same device hydrate once. Hydration is not tied to the
// caller's cancellation, so a dropped request can't leave a session stuck on
// defaults that would later overwrite the stored snapshots.
//
// A session evicted while it was hydrating is never returned: Get retries on
// the entry now registered, so a device has one live session at a time.
func (r *Registry) Get(ctx context.Context, deviceID string) *Session {
	for {
		e := r.touch(deviceID)
		e.once.Do(func() {
			hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), HydrateTimeout)
			defer cancel()
			e.session = r.hydrate(hctx, deviceID)
		})

		r.mu.Lock()
		current := r.devices[deviceID] == e
		if current {
			e.lastUsed = r.now()
		}
		r.mu.Unlock()
		if current {
			return e.session
		}
	}
}

// touch returns the device's entry, creating it, and marks it used.
func (r *Registry) touch(deviceID string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.devices[deviceID]
	if !ok {
		e = &entry{}
		r.devices[deviceID] = e
	}
	e.lastUsed = r.now()
	return e
}

// EvictIdle drops sessions not used for longer than maxIdle and returns how
// many were dropped. The next Get of an evicted device hydrates it again from
// storage.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, e := range r.devices {
		if e.lastUsed.Before(cutoff) {
			delete(r.devices, id)
			evicted++
		}
	}
	return evicted
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (r *Registry) RunEviction(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(maxIdle); n > 0 {
				log.Printf("[Session] Evicted %d idle sessions, cached=%d", n, r.Len())
			}
		}
	}
}

// Len returns the number of cached sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}

func (r *Registry) hydrate(ctx context.Context, deviceID string) *Session {
	onboarding := store.NewOnboardingStore(kv.Key(kv.OnboardingRecord, deviceID), r.snap)
	auth := store.NewAuthStore(kv.Key(kv.AuthRecord, deviceID), r.snap, r.provider, onboarding)
	recipes := store.NewRecipeStore(kv.Key(kv.RecipeRecord, deviceID), r.snap, r.recipes)

	restored := 0
	for _, ok := range []bool{
		onboarding.Hydrate(ctx),
		auth.Hydrate(ctx),
		recipes.Hydrate(ctx),
	} {
		if ok {
			restored++
		}
	}
	log.Printf("[Session] Hydrated device=%s restored=%d/3", deviceID, restored)

	return &Session{
		DeviceID:   deviceID,
		Onboarding: onboarding,
		Auth:       auth,
		Recipes:    recipes,
	}
}
