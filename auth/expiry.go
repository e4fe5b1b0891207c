package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryPolicy decides whether token is expired at now. A non-nil error
// means the token could not be inspected and the returned bool is the
// policy's fallback answer.
type ExpiryPolicy func(token string, now time.Time) (bool, error)

// PermissiveExpiry treats tokens it cannot decode as still valid.
func PermissiveExpiry(token string, now time.Time) (bool, error) {
	return checkExpiry(token, now, false)
}

// StrictExpiry treats tokens it cannot decode as expired.
func StrictExpiry(token string, now time.Time) (bool, error) {
	return checkExpiry(token, now, true)
}

// ExpiryPolicyByName maps the configured policy name, defaulting to permissive.
func ExpiryPolicyByName(name string) ExpiryPolicy {
	if name == "strict" {
		return StrictExpiry
	}
	return PermissiveExpiry
}

func checkExpiry(token string, now time.Time, undecodable bool) (bool, error) {
	if token == "" {
		return true, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return undecodable, fmt.Errorf("%w: %v", ErrUndecodableToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return undecodable, fmt.Errorf("%w: %v", ErrUndecodableToken, err)
	}
	if exp == nil {
		return false, nil
	}
	return !now.Before(exp.Time), nil
}
