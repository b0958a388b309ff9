package model

// FitnessGoal is one of the goals a user can pick during onboarding.
type FitnessGoal string

const (
	GoalWeightLoss     FitnessGoal = "weight_loss"
	GoalMuscleGain     FitnessGoal = "muscle_gain"
	GoalEndurance      FitnessGoal = "endurance"
	GoalFlexibility    FitnessGoal = "flexibility"
	GoalGeneralFitness FitnessGoal = "general_fitness"
)

// DietaryPreference is one of the diets a user can pick during onboarding.
type DietaryPreference string

const (
	DietPrefVegetarian     DietaryPreference = "vegetarian"
	DietPrefVegan          DietaryPreference = "vegan"
	DietPrefKeto           DietaryPreference = "keto"
	DietPrefPaleo          DietaryPreference = "paleo"
	DietPrefGlutenFree     DietaryPreference = "gluten_free"
	DietPrefNoRestrictions DietaryPreference = "no_restrictions"
)

// Onboarding wizard bounds. Steps are 0-indexed.
const (
	FirstOnboardingStep = 0
	LastOnboardingStep  = 5
)

// OnboardingState is everything the onboarding wizard collects.
// The set-valued fields never hold duplicates; their order is insertion order
// but callers must not rely on it.
type OnboardingState struct {
	HasCompletedOnboarding bool                `json:"has_completed_onboarding"`
	CurrentStep            int                 `json:"current_step"`
	FitnessGoals           []FitnessGoal       `json:"fitness_goals"`
	DietaryPreferences     []DietaryPreference `json:"dietary_preferences"`
	AvailableEquipment     []string            `json:"available_equipment"`
	AllowLocationAccess    bool                `json:"allow_location_access"`
	AvatarURL              string              `json:"avatar_url"`
}

// DefaultOnboardingState returns the state of a fresh installation.
func DefaultOnboardingState() OnboardingState {
	return OnboardingState{
		CurrentStep:        FirstOnboardingStep,
		FitnessGoals:       []FitnessGoal{},
		DietaryPreferences: []DietaryPreference{},
		AvailableEquipment: []string{},
	}
}

// Clone returns a deep copy so callers can't mutate store internals.
func (s OnboardingState) Clone() OnboardingState {
	out := s
	out.FitnessGoals = append([]FitnessGoal{}, s.FitnessGoals...)
	out.DietaryPreferences = append([]DietaryPreference{}, s.DietaryPreferences...)
	out.AvailableEquipment = append([]string{}, s.AvailableEquipment...)
	return out
}

// ClampStep keeps a wizard cursor inside [FirstOnboardingStep, LastOnboardingStep].
func ClampStep(step int) int {
	if step < FirstOnboardingStep {
		return FirstOnboardingStep
	}
	if step > LastOnboardingStep {
		return LastOnboardingStep
	}
	return step
}

// Request bodies for the onboarding endpoints.

type SetStepRequest struct {
	Step *int `json:"step" validate:"required"`
}

type ToggleFitnessGoalRequest struct {
	Goal FitnessGoal `json:"goal" validate:"required,oneof=weight_loss muscle_gain endurance flexibility general_fitness"`
}

type ToggleDietaryPreferenceRequest struct {
	Preference DietaryPreference `json:"preference" validate:"required,oneof=vegetarian vegan keto paleo gluten_free no_restrictions"`
}

type ToggleEquipmentRequest struct {
	Equipment string `json:"equipment" validate:"required,max=64"`
}

type SetLocationAccessRequest struct {
	Allow *bool `json:"allow" validate:"required"`
}

type SetAvatarRequest struct {
	URL string `json:"url" validate:"omitempty,url,max=2048"`
}

type SetCompletedRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}
