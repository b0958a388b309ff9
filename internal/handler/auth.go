package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"fitpulse/internal/httputil"
	"fitpulse/internal/model"
	"fitpulse/internal/service"
)

// AuthHandler groups the auth session endpoints of a device.
type AuthHandler struct {
	sessions service.Sessions
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(sessions service.Sessions) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Session returns the auth session of the device
// GET /auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.Auth.Session())
}

// Login handles user login
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}

	if _, err := s.Auth.Login(r.Context(), req.Email, req.Password); err != nil {
		writeAuthError(w, "login", s.DeviceID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.Auth.Session())
}

// Signup registers and signs in a user
// POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}

	if _, err := s.Auth.Signup(r.Context(), req.Name, req.Email, req.Password); err != nil {
		writeAuthError(w, "signup", s.DeviceID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, s.Auth.Session())
}

// Logout signs the user out and resets onboarding
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Logout()
	httputil.WriteJSON(w, http.StatusOK, s.Auth.Session())
}

// CompleteOnboarding marks onboarding as completed for the device
// POST /auth/complete-onboarding
func (h *AuthHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Auth.CompleteOnboarding()
	httputil.WriteJSON(w, http.StatusOK, s.Auth.Session())
}

func writeAuthError(w http.ResponseWriter, op, deviceID string, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		httputil.WriteUnauthorized(w, "Invalid email or password")
	case errors.Is(err, model.ErrEmailExists):
		httputil.WriteConflict(w, "Email already exists")
	case errors.Is(err, model.ErrSuperseded):
		httputil.WriteConflict(w, "A newer auth request replaced this one")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httputil.WriteRequestTimeout(w, "Request canceled")
	default:
		log.Printf("[ERROR] Auth %s handler: device=%s err=%v", op, deviceID, err)
		httputil.WriteInternalError(w, "Failed to "+op)
	}
}
