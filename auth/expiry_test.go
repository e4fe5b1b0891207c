package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/fedteam/auth"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestExpiryPolicies(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	future := signedToken(t, jwt.MapClaims{"sub": "1", "exp": now.Add(time.Hour).Unix()})
	past := signedToken(t, jwt.MapClaims{"sub": "1", "exp": now.Add(-time.Hour).Unix()})
	exact := signedToken(t, jwt.MapClaims{"sub": "1", "exp": now.Unix()})
	noExp := signedToken(t, jwt.MapClaims{"sub": "1"})
	badExp := signedToken(t, jwt.MapClaims{"exp": "tomorrow"})

	tests := []struct {
		name       string
		token      string
		permissive bool
		strict     bool
		wantErr    bool
	}{
		{name: "empty token", token: "", permissive: true, strict: true},
		{name: "future exp", token: future},
		{name: "past exp", token: past, permissive: true, strict: true},
		{name: "exp equals now", token: exact, permissive: true, strict: true},
		{name: "no exp claim", token: noExp},
		{name: "opaque token", token: "opaque-backend-token", strict: true, wantErr: true},
		{name: "malformed exp", token: badExp, strict: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expired, err := auth.PermissiveExpiry(tt.token, now)
			require.Equal(t, tt.permissive, expired)
			if tt.wantErr {
				require.ErrorIs(t, err, auth.ErrUndecodableToken)
			} else {
				require.NoError(t, err)
			}

			expired, _ = auth.StrictExpiry(tt.token, now)
			require.Equal(t, tt.strict, expired)
		})
	}
}

func TestExpiryPolicyByName(t *testing.T) {
	now := time.Now()
	expired, _ := auth.ExpiryPolicyByName("strict")("garbage", now)
	require.True(t, expired)

	expired, _ = auth.ExpiryPolicyByName("anything-else")("garbage", now)
	require.False(t, expired)
}
