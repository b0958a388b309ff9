package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"fitpulse/internal/model"
)

// TokenService issues and verifies device tokens. A device token carries the
// device id the server keys all per-installation state by.
type TokenService struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, maxAgeSeconds int) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		maxAge: time.Duration(maxAgeSeconds) * time.Second,
		now:    time.Now,
	}
}

// RegisterDevice assigns a new device id and signs a token for it.
func (s *TokenService) RegisterDevice() (*model.DeviceToken, error) {
	deviceID := uuid.NewString()

	token, err := s.generateDeviceToken(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate device token: %w", err)
	}

	return &model.DeviceToken{
		DeviceID:    deviceID,
		AccessToken: token,
		ExpiresIn:   int(s.maxAge / time.Second),
	}, nil
}

// ParseDeviceToken verifies the signature and expiry and returns the device id.
func (s *TokenService) ParseDeviceToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", model.ErrTokenExpired
		}
		return "", model.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", model.ErrTokenInvalid
	}

	deviceID, ok := claims["device_id"].(string)
	if !ok || uuid.Validate(deviceID) != nil {
		return "", model.ErrTokenInvalid
	}
	return deviceID, nil
}

func (s *TokenService) generateDeviceToken(deviceID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"device_id": deviceID,
		"exp":       now.Add(s.maxAge).Unix(),
		"iat":       now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
