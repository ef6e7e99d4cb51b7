package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "storefront-test",
		MaxRefreshCount:        10,
	})
}

func newTestTokenPair(t *testing.T, jwtService *auth.JWTService, role string) (*auth.TokenPair, auth.GenerateTokenInput) {
	t.Helper()
	input := auth.GenerateTokenInput{
		UserID: uuid.New(),
		Email:  "asha@example.com",
		Role:   role,
	}
	pair, err := jwtService.GenerateTokenPair(input)
	require.NoError(t, err)
	return pair, input
}

func serve(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestJWTAuthMiddleware(t *testing.T) {
	jwtService := newTestJWTService()

	newRouter := func(cfg JWTMiddlewareConfig) *gin.Engine {
		cfg.JWTService = jwtService
		router := gin.New()
		router.Use(RequestID(), JWTAuthMiddlewareWithConfig(cfg))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"user_id": GetJWTUserID(c), "role": GetJWTRole(c)})
		})
		router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	t.Run("valid token", func(t *testing.T) {
		pair, input := newTestTokenPair(t, jwtService, "CUSTOMER")
		rec := serve(newRouter(JWTMiddlewareConfig{}), pair.AccessToken)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), input.UserID.String())
		assert.Contains(t, rec.Body.String(), "CUSTOMER")
	})

	t.Run("missing header", func(t *testing.T) {
		rec := serve(newRouter(JWTMiddlewareConfig{}), "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, errorCode(t, rec))
	})

	t.Run("wrong scheme", func(t *testing.T) {
		router := newRouter(JWTMiddlewareConfig{})
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(AuthHeaderKey, "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		pair, _ := newTestTokenPair(t, jwtService, "CUSTOMER")
		rec := serve(newRouter(JWTMiddlewareConfig{}), pair.RefreshToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_INVALID", errorCode(t, rec))
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := serve(newRouter(JWTMiddlewareConfig{}), "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_INVALID", errorCode(t, rec))
	})

	t.Run("skip paths", func(t *testing.T) {
		router := newRouter(JWTMiddlewareConfig{SkipPaths: []string{"/health"}})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("blacklisted token", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		pair, _ := newTestTokenPair(t, jwtService, "CUSTOMER")
		claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, blacklist.RevokeToken(context.Background(), claims.ID, time.Minute))

		rec := serve(newRouter(JWTMiddlewareConfig{TokenBlacklist: blacklist}), pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_REVOKED", errorCode(t, rec))
	})

	t.Run("user tokens invalidated after issue", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		pair, input := newTestTokenPair(t, jwtService, "CUSTOMER")
		// invalidation is compared in whole seconds
		time.Sleep(1100 * time.Millisecond)
		require.NoError(t, blacklist.RevokeUser(context.Background(), input.UserID.String(), time.Hour))

		rec := serve(newRouter(JWTMiddlewareConfig{TokenBlacklist: blacklist}), pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOptionalJWTAuth(t *testing.T) {
	jwtService := newTestJWTService()
	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{JWTService: jwtService, Optional: true}))
	router.GET("/test", func(c *gin.Context) {
		if GetJWTClaims(c) == nil {
			c.String(http.StatusOK, "guest")
			return
		}
		c.String(http.StatusOK, GetJWTUserID(c))
	})

	t.Run("guest without header", func(t *testing.T) {
		rec := serve(router, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "guest", rec.Body.String())
	})

	t.Run("user with token", func(t *testing.T) {
		pair, input := newTestTokenPair(t, jwtService, "CUSTOMER")
		rec := serve(router, pair.AccessToken)
		assert.Equal(t, input.UserID.String(), rec.Body.String())
	})

	t.Run("invalid token is rejected instead of downgraded", func(t *testing.T) {
		rec := serve(router, "expired-or-garbage")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAuthAndRole(t *testing.T) {
	jwtService := newTestJWTService()
	router := gin.New()
	optional := JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{JWTService: jwtService, Optional: true})
	router.GET("/test", optional, RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/me", optional, RequireAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	customer, _ := newTestTokenPair(t, jwtService, "CUSTOMER")
	admin, _ := newTestTokenPair(t, jwtService, RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, serve(router, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, customer.AccessToken).Code)
	assert.Equal(t, http.StatusOK, serve(router, admin.AccessToken).Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+customer.AccessToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
