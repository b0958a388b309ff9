package model

import "errors"

// DeviceToken is returned when a device registers.
type DeviceToken struct {
	DeviceID    string `json:"device_id"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // Seconds until the token expires
}

// Token API error codes (used in HTTP responses)
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

var (
	ErrTokenExpired = errors.New("device token expired")
	ErrTokenInvalid = errors.New("device token invalid")
)
