package model

type ChallengeType string

const (
	ChallengeWorkout    ChallengeType = "workout"
	ChallengeNutrition  ChallengeType = "nutrition"
	ChallengeCombined   ChallengeType = "combined"
	ChallengeSteps      ChallengeType = "steps"
	ChallengeMeditation ChallengeType = "meditation"
)

type ChallengeStatus string

const (
	ChallengeUpcoming  ChallengeStatus = "upcoming"
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeFailed    ChallengeStatus = "failed"
)

type ChallengeProgress struct {
	Current     int    `json:"current"`
	Target      int    `json:"target"`
	Unit        string `json:"unit"`
	LastUpdated string `json:"last_updated"`
}

type ChallengeParticipant struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	AvatarURL string            `json:"avatar_url"`
	Progress  ChallengeProgress `json:"progress"`
	Rank      int               `json:"rank,omitempty"`
}

type ChallengeRewards struct {
	Points int    `json:"points"`
	Badge  string `json:"badge,omitempty"`
}

// Challenge is a read-only catalog entry.
type Challenge struct {
	ID           string                 `json:"id" validate:"required"`
	Title        string                 `json:"title" validate:"required"`
	Description  string                 `json:"description"`
	Type         ChallengeType          `json:"type" validate:"oneof=workout nutrition combined steps meditation"`
	Status       ChallengeStatus        `json:"status" validate:"oneof=upcoming active completed failed"`
	StartDate    string                 `json:"start_date"`
	EndDate      string                 `json:"end_date"`
	ImageURL     string                 `json:"image_url"`
	Progress     ChallengeProgress      `json:"progress"`
	Participants []ChallengeParticipant `json:"participants"`
	Rules        []string               `json:"rules"`
	Rewards      ChallengeRewards       `json:"rewards"`
}
