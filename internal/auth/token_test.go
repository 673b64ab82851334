package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/campus-auth/internal/domain"
)

func TestNewSessionTokenString(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token, err := NewSessionTokenString()
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err)
		require.Len(t, raw, 32)

		_, dup := seen[token]
		require.False(t, dup, "token collision")
		seen[token] = struct{}{}
	}
}

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)
	session := domain.NewSessionToken("opaque-token", "alice", domain.RoleInstructor, time.Now(), 30*time.Minute)

	bearer, err := tm.WrapSession(session)
	require.NoError(t, err)

	claims, err := tm.UnwrapSession(bearer)
	require.NoError(t, err)
	require.Equal(t, "opaque-token", claims.SessionToken)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, domain.RoleInstructor, claims.Role)
}

func TestTokenManagerRejectsForeignSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 30)
	other := NewTokenManager("secret-b", 30)
	session := domain.NewSessionToken("opaque-token", "alice", domain.RoleStudent, time.Now(), 30*time.Minute)

	bearer, err := tm.WrapSession(session)
	require.NoError(t, err)

	_, err = other.UnwrapSession(bearer)
	require.Error(t, err)
}

func TestTokenManagerBearerNeverOutlivesSession(t *testing.T) {
	tm := NewTokenManager("test-secret", 120)
	session := domain.NewSessionToken("opaque-token", "alice", domain.RoleStudent, time.Now(), 10*time.Minute)

	bearer, err := tm.WrapSession(session)
	require.NoError(t, err)

	claims, err := tm.UnwrapSession(bearer)
	require.NoError(t, err)
	require.True(t, claims.ExpiresAt.Time.Equal(session.ExpiresAt) || claims.ExpiresAt.Time.Before(session.ExpiresAt))
}
