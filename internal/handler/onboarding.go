package handler

import (
	"net/http"

	"fitpulse/internal/httputil"
	"fitpulse/internal/model"
	"fitpulse/internal/service"
)

// OnboardingHandler exposes the onboarding wizard state of a device.
// Every mutation answers with the resulting state.
type OnboardingHandler struct {
	sessions service.Sessions
}

func NewOnboardingHandler(sessions service.Sessions) *OnboardingHandler {
	return &OnboardingHandler{sessions: sessions}
}

// Get handles GET /onboarding
func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.Onboarding.State())
}

// SetStep handles PUT /onboarding/step
// Out-of-range steps are clamped to the wizard bounds.
func (h *OnboardingHandler) SetStep(w http.ResponseWriter, r *http.Request) {
	var req model.SetStepRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Onboarding.SetStep(*req.Step)
	httputil.WriteJSON(w, http.StatusOK, s.Onboarding.State())
}

// NextStep handles POST /onboarding/next
func (h *OnboardingHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Onboarding.NextStep()
	httputil.WriteJSON(w, http.StatusOK, s.Onboarding.State())
}

// PreviousStep handles POST /onboarding/previous
func (h *OnboardingHandler) PreviousStep(w http.ResponseWriter, r *http.Request) {
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Onboarding.PreviousStep()
	httputil.WriteJSON(w, http.StatusOK, s.Onboarding.State())
}

// ToggleFitnessGoal handles POST /onboarding/fitness-goals/toggle
func (h *OnboardingHandler) ToggleFitnessGoal(w http.ResponseWriter, r *http.Request) {
	var req model.ToggleFitnessGoalRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Onboarding.ToggleFitnessGoal(req.Goal)
	httputil.WriteJSON(w, http.StatusOK, s.Onboarding.State())
}

// ToggleDietaryPreference handles POST /onboarding/dietary-preferences/toggle
func (h *OnboardingHandler) ToggleDietaryPreference(w http.ResponseWriter, r *http.Request) {
	var req model.ToggleDietaryPreferenceRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Onboarding.ToggleDietaryPreference(req.Preference)
	httputil.WriteJSON(w, http.StatusOK, s.Onboarding.State())
}

// ToggleEquipment handles POST /onboarding/equipment/toggle
func (h *OnboardingHandler) ToggleEquipment(w http.ResponseWriter, r *http.Request) {
	var req model.ToggleEquipmentRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Onboarding.ToggleEquipment(req.Equipment)
	httputil.WriteJSON(w, http.StatusOK, s.Onboarding.State())
}

// SetLocationAccess handles PUT /onboarding/location-access
func (h *OnboardingHandler) SetLocationAccess(w http.ResponseWriter, r *http.Request) {
	var req model.SetLocationAccessRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Onboarding.SetAllowLocationAccess(*req.Allow)
	httputil.WriteJSON(w, http.StatusOK, s.Onboarding.State())
}

// SetAvatar handles PUT /onboarding/avatar
// An empty URL clears the avatar.
func (h *OnboardingHandler) SetAvatar(w http.ResponseWriter, r *http.Request) {
	var req model.SetAvatarRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Onboarding.SetAvatarURL(req.URL)
	httputil.WriteJSON(w, http.StatusOK, s.Onboarding.State())
}

// SetCompleted handles PUT /onboarding/completed
func (h *OnboardingHandler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	var req model.SetCompletedRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Onboarding.SetHasCompletedOnboarding(*req.Completed)
	httputil.WriteJSON(w, http.StatusOK, s.Onboarding.State())
}

// Reset handles POST /onboarding/reset
func (h *OnboardingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Onboarding.Reset()
	httputil.WriteJSON(w, http.StatusOK, s.Onboarding.State())
}
