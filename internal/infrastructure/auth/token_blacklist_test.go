package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimsFor(jti, userID string, issuedAt time.Time) *auth.Claims {
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: jti, IssuedAt: jwt.NewNumericDate(issuedAt)},
		UserID:           userID,
	}
}

func TestInMemoryTokenBlacklist_RevokeToken(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, blacklist.RevokeToken(ctx, "jti-1", time.Hour))

	revoked, err := blacklist.Revoked(ctx, claimsFor("jti-1", "user-1", now))
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.Revoked(ctx, claimsFor("jti-2", "user-1", now))
	require.NoError(t, err)
	assert.False(t, revoked)

	t.Run("entries expire with the token", func(t *testing.T) {
		require.NoError(t, blacklist.RevokeToken(ctx, "jti-short", time.Millisecond))
		time.Sleep(10 * time.Millisecond)

		revoked, err := blacklist.Revoked(ctx, claimsFor("jti-short", "user-1", now))
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}

func TestInMemoryTokenBlacklist_RevokeUser(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()
	issuedEarlier := time.Now().Add(-time.Hour)

	revoked, err := blacklist.Revoked(ctx, claimsFor("a", "user-1", issuedEarlier))
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, blacklist.RevokeUser(ctx, "user-1", 24*time.Hour))

	tests := []struct {
		name   string
		claims *auth.Claims
		want   bool
	}{
		{"issued before the reset", claimsFor("a", "user-1", issuedEarlier), true},
		{"issued after the reset", claimsFor("b", "user-1", time.Now().Add(2*time.Second)), false},
		{"other user", claimsFor("c", "user-2", issuedEarlier), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			revoked, err := blacklist.Revoked(ctx, tt.claims)
			require.NoError(t, err)
			assert.Equal(t, tt.want, revoked)
		})
	}
}
