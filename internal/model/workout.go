package model

// WorkoutCategory groups workouts by training style.
type WorkoutCategory string

const (
	WorkoutStrength   WorkoutCategory = "strength"
	WorkoutCardio     WorkoutCategory = "cardio"
	WorkoutHIIT       WorkoutCategory = "hiit"
	WorkoutYoga       WorkoutCategory = "yoga"
	WorkoutStretching WorkoutCategory = "stretching"
)

type Exercise struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	Sets     int    `json:"sets" validate:"gte=1"`
	Reps     int    `json:"reps,omitempty"`
	Duration int    `json:"duration,omitempty"` // seconds
	RestTime int    `json:"rest_time"`          // seconds
	ImageURL string `json:"image_url,omitempty"`
}

// Workout is a read-only catalog entry.
type Workout struct {
	ID          string          `json:"id" validate:"required"`
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Category    WorkoutCategory `json:"category" validate:"oneof=strength cardio hiit yoga stretching"`
	Difficulty  string          `json:"difficulty" validate:"oneof=beginner intermediate advanced"`
	Duration    int             `json:"duration" validate:"gte=0"` // minutes
	Calories    int             `json:"calories" validate:"gte=0"`
	ImageURL    string          `json:"image_url"`
	Exercises   []Exercise      `json:"exercises" validate:"dive"`
}
