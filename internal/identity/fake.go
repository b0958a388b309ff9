package identity

import (
	"context"
	"log"
	"time"

	"fitpulse/internal/model"
)

// DefaultFakeDelay models the network round trip of a real identity service.
const DefaultFakeDelay = time.Second

// DemoAvatarURL is the avatar every simulated profile starts with.
const DemoAvatarURL = "https://images.unsplash.com/photo-1535713875002-d1d0cf377fde?w=200"

// FakeProvider accepts any credentials after Delay. It never verifies
// anything: login yields a fixed demo profile, signup a fresh empty one.
type FakeProvider struct {
	Delay time.Duration
	Now   func() time.Time
}

// NewFakeProvider creates a FakeProvider with the given simulated latency.
func NewFakeProvider(delay time.Duration) *FakeProvider {
	return &FakeProvider{Delay: delay, Now: time.Now}
}

// Login waits for the simulated delay and returns the demo profile for email.
// The only failure is ctx ending first.
func (p *FakeProvider) Login(ctx context.Context, email, password string) (*model.UserRecord, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	now := p.now()
	log.Printf("[Identity] Fake login accepted: email=%s", email)
	return &model.UserRecord{
		ID:                 "1",
		Name:               "John Doe",
		Email:              email,
		AvatarURL:          DemoAvatarURL,
		FitnessGoals:       []model.FitnessGoal{model.GoalWeightLoss, model.GoalMuscleGain},
		DietaryPreferences: []model.DietaryPreference{model.DietPrefNoRestrictions},
		AvailableEquipment: []string{"dumbbells", "yoga_mat"},
		ActivityLevel:      model.ActivityModeratelyActive,
		JoinDate:           now,
		WeeklyStats: model.WeeklyStats{
			WorkoutsCompleted: 3,
			CaloriesBurned:    1250,
			MinutesExercised:  145,
		},
		Friends: []string{"2", "3", "4"},
		Achievements: []model.Achievement{
			{ID: "1", Title: "First Workout", Description: "Completed your first workout", Date: now},
			{ID: "2", Title: "Workout Streak", Description: "Completed 3 workouts in a row", Date: now},
		},
		WorkoutHistory: []model.WorkoutHistory{
			{ID: "1", WorkoutID: "1", WorkoutName: "Full Body Strength", Date: now, Duration: 45, CaloriesBurned: 320},
		},
		NutritionHistory: []model.NutritionHistory{
			{ID: "1", RecipeName: "Protein Smoothie", Date: now, MealType: "breakfast", Calories: 350},
		},
	}, nil
}

// Signup waits for the simulated delay and returns an empty profile.
func (p *FakeProvider) Signup(ctx context.Context, name, email, password string) (*model.UserRecord, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	log.Printf("[Identity] Fake signup accepted: email=%s", email)
	return NewProfile("1", name, email, DemoAvatarURL, p.now()), nil
}

// NewProfile builds a profile with no goals, history or stats.
func NewProfile(id, name, email, avatarURL string, joined time.Time) *model.UserRecord {
	return &model.UserRecord{
		ID:                 id,
		Name:               name,
		Email:              email,
		AvatarURL:          avatarURL,
		FitnessGoals:       []model.FitnessGoal{},
		DietaryPreferences: []model.DietaryPreference{},
		AvailableEquipment: []string{},
		JoinDate:           joined,
		Friends:            []string{},
		Achievements:       []model.Achievement{},
		WorkoutHistory:     []model.WorkoutHistory{},
		NutritionHistory:   []model.NutritionHistory{},
	}
}

func (p *FakeProvider) wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *FakeProvider) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}
