package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// asUser marks the request as authenticated the way the JWT middleware does
func asUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, id.String())
		c.Next()
	}
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(mw...)
	return engine
}

func perform(engine *gin.Engine, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return strings.NewReader(string(data))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// decodeData re-decodes the data member into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(t, resp.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

func TestGetBuyer(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name      string
		user      *uuid.UUID
		session   string
		wantOwner string
		wantErr   error
	}{
		{name: "signed-in user wins over session", user: &userID, session: "abc", wantOwner: "user:" + userID.String()},
		{name: "guest session", session: "abc", wantOwner: "guest:abc"},
		{name: "session is trimmed", session: "  abc  ", wantOwner: "guest:abc"},
		{name: "no identity", wantErr: errMissingCartSession},
		{name: "session too long", session: strings.Repeat("s", 129), wantErr: errMissingCartSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.session != "" {
				c.Request.Header.Set(middleware.CartSessionHeader, tt.session)
			}
			if tt.user != nil {
				c.Set(middleware.JWTUserIDKey, tt.user.String())
			}

			buyer, err := getBuyer(c)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, buyer.OwnerID)
			if tt.user != nil {
				assert.Equal(t, *tt.user, buyer.UserID)
			} else {
				assert.Equal(t, uuid.Nil, buyer.UserID)
			}
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"named not found", shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found"), http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"wrapped domain error", fmt.Errorf("apply: %w", shared.NewDomainError("INVALID_COUPON", "bad")), http.StatusBadRequest, "INVALID_COUPON"},
		{"unauthorized", shared.ErrUnauthorized, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"missing cart session", errMissingCartSession, http.StatusBadRequest, "CART_SESSION_REQUIRED"},
		{"deadline", fmt.Errorf("suggest: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			engine := newEngine()
			engine.GET("/err", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := perform(engine, http.MethodGet, "/err", nil, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}

	t.Run("internal errors do not leak the cause", func(t *testing.T) {
		h := &BaseHandler{}
		engine := newEngine()
		engine.GET("/err", func(c *gin.Context) { h.HandleError(c, errors.New("pq: password authentication failed")) })

		w := perform(engine, http.MethodGet, "/err", nil, nil)
		assert.NotContains(t, w.Body.String(), "password")
	})
}

func TestSuccessPage(t *testing.T) {
	engine := newEngine()
	engine.GET("/list", func(c *gin.Context) {
		SuccessPage(c, &shared.Paginated[string]{Items: []string{"a", "b"}, Total: 12, Page: 2, PageSize: 5})
	})

	resp := decode(t, perform(engine, http.MethodGet, "/list", nil, nil))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(12), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 5, resp.Meta.PageSize)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
