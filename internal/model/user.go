package model

import (
	"errors"
	"time"
)

// ActivityLevel describes how active a user is day to day.
type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
	ActivityExtremelyActive  ActivityLevel = "extremely_active"
)

// UserRecord is the profile held by the auth session.
type UserRecord struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	Email               string              `json:"email"`
	AvatarURL           string              `json:"avatar_url"`
	Bio                 string              `json:"bio"`
	FitnessGoals        []FitnessGoal       `json:"fitness_goals"`
	DietaryPreferences  []DietaryPreference `json:"dietary_preferences"`
	AvailableEquipment  []string            `json:"available_equipment"`
	ActivityLevel       ActivityLevel       `json:"activity_level,omitempty"`
	JoinDate            time.Time           `json:"join_date"`
	WeeklyStats         WeeklyStats         `json:"weekly_stats"`
	Friends             []string            `json:"friends"`
	Achievements        []Achievement       `json:"achievements"`
	WorkoutHistory      []WorkoutHistory    `json:"workout_history"`
	NutritionHistory    []NutritionHistory  `json:"nutrition_history"`
	ChallengesCompleted int                 `json:"challenges_completed"`
	TotalPoints         int                 `json:"total_points"`
}

// WeeklyStats are the rolling counters shown on the profile screen.
type WeeklyStats struct {
	WorkoutsCompleted      int `json:"workouts_completed"`
	CaloriesBurned         int `json:"calories_burned"`
	MinutesExercised       int `json:"minutes_exercised"`
	AverageWorkoutDuration int `json:"average_workout_duration"`
	StreakDays             int `json:"streak_days"`
}

type Achievement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Points      int       `json:"points,omitempty"`
}

type WorkoutHistory struct {
	ID             string    `json:"id"`
	WorkoutID      string    `json:"workout_id,omitempty"`
	WorkoutName    string    `json:"workout_name"`
	Date           time.Time `json:"date"`
	Duration       int       `json:"duration"` // minutes
	CaloriesBurned int       `json:"calories_burned"`
}

type NutritionHistory struct {
	ID         string    `json:"id"`
	RecipeID   string    `json:"recipe_id,omitempty"`
	RecipeName string    `json:"recipe_name,omitempty"`
	Date       time.Time `json:"date"`
	MealType   string    `json:"meal_type"`
	Calories   int       `json:"calories"`
	Protein    int       `json:"protein,omitempty"` // grams
	Carbs      int       `json:"carbs,omitempty"`   // grams
	Fat        int       `json:"fat,omitempty"`     // grams
}

// Clone returns a deep copy of the record.
func (u *UserRecord) Clone() *UserRecord {
	if u == nil {
		return nil
	}
	out := *u
	out.FitnessGoals = append([]FitnessGoal{}, u.FitnessGoals...)
	out.DietaryPreferences = append([]DietaryPreference{}, u.DietaryPreferences...)
	out.AvailableEquipment = append([]string{}, u.AvailableEquipment...)
	out.Friends = append([]string{}, u.Friends...)
	out.Achievements = append([]Achievement{}, u.Achievements...)
	out.WorkoutHistory = append([]WorkoutHistory{}, u.WorkoutHistory...)
	out.NutritionHistory = append([]NutritionHistory{}, u.NutritionHistory...)
	return &out
}

// AuthSession is the read model of the auth store returned to clients.
type AuthSession struct {
	User                *UserRecord `json:"user"`
	IsAuthenticated     bool        `json:"is_authenticated"`
	OnboardingCompleted bool        `json:"onboarding_completed"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest represents the data needed to create an account
type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Account is a stored credential row used by the account identity provider.
type Account struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"`
	AvatarURL      string    `db:"avatar_url" json:"avatar_url"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

var (
	// ErrAccountNotFound is returned when no account matches
	ErrAccountNotFound = errors.New("account not found")

	// ErrEmailExists is returned when signing up with a taken email
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSuperseded is returned when a newer auth operation started before this one resolved
	ErrSuperseded = errors.New("auth operation superseded by a newer one")
)
