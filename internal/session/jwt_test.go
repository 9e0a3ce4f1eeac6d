package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "unit-test-secret"
	testIssuer = "forum-auth"
)

func signToken(t *testing.T, secret, issuer string, userID int, username string, lifetime time.Duration) string {
	t.Helper()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestResolveValidToken(t *testing.T) {
	provider := NewJWTProvider(testSecret, testIssuer, NewMemoryCache(), time.Minute)
	token := signToken(t, testSecret, testIssuer, 7, "alice", time.Hour)

	ident, err := provider.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, Identity{UserID: 7, Username: "alice"}, ident)

	// Second resolve is served from the cache.
	ident, err = provider.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, 7, ident.UserID)
}

func TestResolveRejectsBadCredentials(t *testing.T) {
	provider := NewJWTProvider(testSecret, testIssuer, NewMemoryCache(), time.Minute)

	_, err := provider.Resolve(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidSession)

	wrongKey := signToken(t, "other-secret", testIssuer, 7, "alice", time.Hour)
	_, err = provider.Resolve(context.Background(), wrongKey)
	require.ErrorIs(t, err, ErrInvalidSession)

	wrongIssuer := signToken(t, testSecret, "someone-else", 7, "alice", time.Hour)
	_, err = provider.Resolve(context.Background(), wrongIssuer)
	require.ErrorIs(t, err, ErrInvalidSession)

	expired := signToken(t, testSecret, testIssuer, 7, "alice", -time.Minute)
	_, err = provider.Resolve(context.Background(), expired)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestLookupUsesDirectoryFromResolvedSessions(t *testing.T) {
	provider := NewJWTProvider(testSecret, testIssuer, NewMemoryCache(), time.Minute)

	_, err := provider.Lookup(context.Background(), 7)
	require.ErrorIs(t, err, ErrUnknownUser)

	token := signToken(t, testSecret, testIssuer, 7, "alice", time.Hour)
	_, err = provider.Resolve(context.Background(), token)
	require.NoError(t, err)

	ident, err := provider.Lookup(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "alice", ident.Username)
}
