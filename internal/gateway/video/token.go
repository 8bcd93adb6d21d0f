// Package video issues signed room tokens for the hosted video consultation
// SDK. Each appointment maps to one room.
package video

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds the SDK credentials.
type Config struct {
	APIKey    string
	APISecret string
	TokenTTL  time.Duration
}

// Issuer signs room tokens.
type Issuer struct {
	config Config
}

// NewIssuer creates a token issuer.
func NewIssuer(cfg Config) *Issuer {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 2 * time.Hour
	}
	return &Issuer{config: cfg}
}

// RoomID derives the video room id for an appointment.
func RoomID(aid string) string {
	return "appointment_" + aid
}

// RoomToken signs a join token scoped to one appointment's room.
func (i *Issuer) RoomToken(aid, userID string) (string, error) {
	if aid == "" || userID == "" {
		return "", fmt.Errorf("aid and user id are required")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"apikey":  i.config.APIKey,
		"room_id": RoomID(aid),
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(i.config.TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(i.config.APISecret))
	if err != nil {
		return "", fmt.Errorf("sign room token: %w", err)
	}
	return signed, nil
}
