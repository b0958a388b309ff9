package handler

import (
	"log"
	"net/http"

	"fitpulse/internal/httputil"
	"fitpulse/internal/service"
	"fitpulse/internal/session"
	"fitpulse/internal/transport/http/middleware"
)

// DeviceHandler registers new installations.
type DeviceHandler struct {
	tokens *service.TokenService
}

func NewDeviceHandler(tokens *service.TokenService) *DeviceHandler {
	return &DeviceHandler{tokens: tokens}
}

// Register handles POST /devices
// Issues a device id and the token that identifies it on every other call.
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	token, err := h.tokens.RegisterDevice()
	if err != nil {
		log.Printf("[ERROR] Register device: err=%v", err)
		httputil.WriteInternalError(w, "Failed to register device")
		return
	}

	// Web clients authenticate with the cookie, mobile clients with the header.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token.AccessToken,
		Path:     "/",
		MaxAge:   token.ExpiresIn,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusCreated, token)
}

// deviceSession returns the session of the calling device, or writes a 401.
func deviceSession(w http.ResponseWriter, r *http.Request, sessions service.Sessions) (*session.Session, bool) {
	deviceID, ok := middleware.GetDeviceIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Device token required")
		return nil, false
	}
	return sessions.Get(r.Context(), deviceID), true
}
