package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Auth verifies and signs access tokens for authenticated principals.
type Auth interface {
	Sign(userID string) (string, error)
	Verify(tokenString string) (*Payload, error)
}

// Payload represents the access token payload
type Payload struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
