package store

import (
	"context"
	"sync"

	"fitpulse/internal/model"
	"fitpulse/internal/persist"
)

// OnboardingStore tracks the wizard cursor and the preferences it collects.
// The whole state is persisted on every mutation.
type OnboardingStore struct {
	mu    sync.RWMutex
	state model.OnboardingState
	key   string
	snap  persist.Snapshotter
}

// NewOnboardingStore creates a store with default state. A nil snapshotter
// keeps the store memory-only.
func NewOnboardingStore(key string, snap persist.Snapshotter) *OnboardingStore {
	return &OnboardingStore{
		state: model.DefaultOnboardingState(),
		key:   key,
		snap:  orDiscard(snap),
	}
}

// Hydrate replaces the state with the persisted snapshot, if one can be read.
// Out-of-range steps are clamped and duplicate set members dropped.
func (s *OnboardingStore) Hydrate(ctx context.Context) bool {
	var loaded model.OnboardingState
	if !s.snap.Load(ctx, s.key, &loaded) {
		return false
	}

	loaded.CurrentStep = model.ClampStep(loaded.CurrentStep)
	loaded.FitnessGoals = dedupe(loaded.FitnessGoals)
	loaded.DietaryPreferences = dedupe(loaded.DietaryPreferences)
	loaded.AvailableEquipment = dedupe(loaded.AvailableEquipment)

	s.mu.Lock()
	s.state = loaded
	s.mu.Unlock()
	return true
}

// State returns a copy of the current state.
func (s *OnboardingStore) State() model.OnboardingState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// HasCompletedOnboarding is the flag the app router reads to pick the first screen.
func (s *OnboardingStore) HasCompletedOnboarding() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.HasCompletedOnboarding
}

// SetHasCompletedOnboarding writes the completion flag.
func (s *OnboardingStore) SetHasCompletedOnboarding(completed bool) *persist.Pending {
	return s.update(func(st *model.OnboardingState) {
		st.HasCompletedOnboarding = completed
	})
}

// SetStep moves the cursor to step. Unlike a raw field write, out of range
// values are clamped to [0, model.LastOnboardingStep] rather than stored.
func (s *OnboardingStore) SetStep(step int) *persist.Pending {
	return s.update(func(st *model.OnboardingState) {
		st.CurrentStep = model.ClampStep(step)
	})
}

// NextStep advances the cursor; a no-op on the last step.
func (s *OnboardingStore) NextStep() *persist.Pending {
	return s.update(func(st *model.OnboardingState) {
		st.CurrentStep = model.ClampStep(st.CurrentStep + 1)
	})
}

// PreviousStep moves the cursor back; a no-op on the first step.
func (s *OnboardingStore) PreviousStep() *persist.Pending {
	return s.update(func(st *model.OnboardingState) {
		st.CurrentStep = model.ClampStep(st.CurrentStep - 1)
	})
}

func (s *OnboardingStore) ToggleFitnessGoal(goal model.FitnessGoal) *persist.Pending {
	return s.update(func(st *model.OnboardingState) {
		st.FitnessGoals = toggle(st.FitnessGoals, goal)
	})
}

func (s *OnboardingStore) ToggleDietaryPreference(pref model.DietaryPreference) *persist.Pending {
	return s.update(func(st *model.OnboardingState) {
		st.DietaryPreferences = toggle(st.DietaryPreferences, pref)
	})
}

func (s *OnboardingStore) ToggleEquipment(id string) *persist.Pending {
	return s.update(func(st *model.OnboardingState) {
		st.AvailableEquipment = toggle(st.AvailableEquipment, id)
	})
}

func (s *OnboardingStore) SetAllowLocationAccess(allow bool) *persist.Pending {
	return s.update(func(st *model.OnboardingState) {
		st.AllowLocationAccess = allow
	})
}

func (s *OnboardingStore) SetAvatarURL(url string) *persist.Pending {
	return s.update(func(st *model.OnboardingState) {
		st.AvatarURL = url
	})
}

// Reset restores every field to its default, including the completion flag.
func (s *OnboardingStore) Reset() *persist.Pending {
	return s.update(func(st *model.OnboardingState) {
		*st = model.DefaultOnboardingState()
	})
}

// update applies fn and schedules the snapshot while still holding the lock,
// so snapshots reach the writer in mutation order.
func (s *OnboardingStore) update(fn func(*model.OnboardingState)) *persist.Pending {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	return s.snap.Save(s.key, s.state)
}
