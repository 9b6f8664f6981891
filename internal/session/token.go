package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned when the token carries no exp claim or is not a JWT.
var ErrNoExpiry = errors.New("token has no expiry")

// ExpiresAt reads the exp claim of the token without verifying its signature.
// The client never holds the signing key; this is for display only.
func (s Session) ExpiresAt() (time.Time, error) {
	if s.Token == "" {
		return time.Time{}, ErrNoExpiry
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, &claims); err != nil {
		return time.Time{}, ErrNoExpiry
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}
