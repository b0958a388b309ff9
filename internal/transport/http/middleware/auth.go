package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"fitpulse/internal/httputil"
	"fitpulse/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// DeviceIDKey is the context key for the authenticated device's ID
	DeviceIDKey contextKey = "device_id"

	// TokenCookieName is the cookie the device token is read from when no header is sent
	TokenCookieName = "access_token"
)

// TokenParser verifies a device token and returns its device id.
type TokenParser interface {
	ParseDeviceToken(token string) (string, error)
}

// DeviceMiddleware resolves the device id from its token.
// Checks Authorization header first (mobile), then falls back to cookie (web).
func DeviceMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				httputil.WriteUnauthorized(w, "Missing device token")
				return
			}

			deviceID, err := tokens.ParseDeviceToken(tokenString)
			if err != nil {
				if errors.Is(err, model.ErrTokenExpired) {
					httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Device token has expired")
					return
				}
				httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Invalid device token")
				return
			}

			ctx := WithDeviceID(r.Context(), deviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	// Expected format: "Bearer <token>"
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := r.Cookie(TokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// GetDeviceIDFromContext extracts the device ID set by DeviceMiddleware.
func GetDeviceIDFromContext(ctx context.Context) (string, bool) {
	deviceID, ok := ctx.Value(DeviceIDKey).(string)
	return deviceID, ok && deviceID != ""
}

// WithDeviceID returns ctx carrying deviceID, as DeviceMiddleware would set it.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, DeviceIDKey, deviceID)
}
