package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "storefront-test",
		MaxRefreshCount:        2,
	})
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		UserID: uuid.New(),
		Email:  "asha@example.com",
		Role:   "CUSTOMER",
	}
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret"})
	assert.Equal(t, []byte("test-secret"), svc.refreshSecret)
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	t.Run("access token", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, "asha@example.com", claims.Email)
		assert.Equal(t, "CUSTOMER", claims.Role)
		assert.NotEmpty(t, claims.ID)

		id, err := claims.UserUUID()
		require.NoError(t, err)
		assert.Equal(t, input.UserID, id)
		assert.Greater(t, claims.RemainingTTL(), 14*time.Minute)
	})

	t.Run("refresh token carries no profile", func(t *testing.T) {
		claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Empty(t, claims.Email)
		assert.Empty(t, claims.Role)
		assert.Zero(t, claims.RefreshCount)
	})

	t.Run("token types are not interchangeable", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.Error(t, err)
		_, err = svc.ValidateRefreshToken(pair.AccessToken)
		assert.Error(t, err)
	})
}

func TestValidateAccessToken_Failures(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := newTestJWTService()
		later.now = func() time.Time { return time.Now().Add(time.Hour) }
		_, err := later.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "another-secret-key-of-32-chars!!",
			AccessTokenExpiration: time.Minute,
			Issuer:                "storefront-test",
		})
		_, err := other.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := newTestJWTService()
		other.issuer = "someone-else"
		_, err := other.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := svc.claims(uuid.New(), time.Now(), time.Minute)
		claims.TokenType = TokenTypeAccess
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRefreshTokenPair(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	t.Run("picks up the current role", func(t *testing.T) {
		promoted := input
		promoted.Role = "ADMIN"
		next, err := svc.RefreshTokenPair(refresh, promoted)
		require.NoError(t, err)

		access, err := svc.ValidateAccessToken(next.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "ADMIN", access.Role)

		nextRefresh, err := svc.ValidateRefreshToken(next.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, 1, nextRefresh.RefreshCount)
	})

	t.Run("limit", func(t *testing.T) {
		exhausted := *refresh
		exhausted.RefreshCount = 2
		_, err := svc.RefreshTokenPair(&exhausted, input)
		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})

	t.Run("user mismatch", func(t *testing.T) {
		_, err := svc.RefreshTokenPair(refresh, newTestInput())
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})

	t.Run("access claims are rejected", func(t *testing.T) {
		access, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		_, err = svc.RefreshTokenPair(access, input)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})
}
