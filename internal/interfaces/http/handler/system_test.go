package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Health(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	t.Run("all dependencies up", func(t *testing.T) {
		h := NewSystemHandler("storefront", "1.0.0",
			HealthCheck{Name: "database", Check: ok},
			HealthCheck{Name: "redis", Check: ok},
		)
		engine := newEngine()
		engine.GET("/health", h.Health)

		w := perform(engine, http.MethodGet, "/health", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"healthy"`)
		assert.Contains(t, w.Body.String(), `"redis":"ok"`)
	})

	t.Run("one dependency down", func(t *testing.T) {
		h := NewSystemHandler("storefront", "1.0.0",
			HealthCheck{Name: "database", Check: ok},
			HealthCheck{Name: "redis", Check: down},
		)
		engine := newEngine()
		engine.GET("/health", h.Health)

		w := perform(engine, http.MethodGet, "/health", nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"unhealthy"`)
		assert.Contains(t, w.Body.String(), `"database":"ok"`)
		assert.Contains(t, w.Body.String(), `"redis":"error"`)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestSystemHandler_InfoAndPing(t *testing.T) {
	h := NewSystemHandler("storefront", "2.3.1")
	engine := newEngine()
	engine.GET("/system/info", h.Info)
	engine.GET("/ping", h.Ping)

	var info SystemInfoResponse
	decodeData(t, perform(engine, http.MethodGet, "/system/info", nil, nil), &info)
	assert.Equal(t, "storefront", info.Name)
	assert.Equal(t, "2.3.1", info.Version)
	assert.True(t, strings.HasPrefix(info.GoVersion, "go"))

	var pong MessageData
	decodeData(t, perform(engine, http.MethodGet, "/ping", nil, nil), &pong)
	assert.Equal(t, "pong", pong.Message)
}

func TestUploadsHandler_Serve(t *testing.T) {
	images := storage.NewMemoryImageStorage("/uploads")
	url, err := images.Put(context.Background(), "products/p1/a.png", strings.NewReader("png-bytes"), 9, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/products/p1/a.png", url)

	engine := newEngine()
	engine.GET(images.Prefix()+"/*key", NewUploadsHandler(images).Serve)

	w := perform(engine, http.MethodGet, url, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", w.Body.String())

	assert.Equal(t, http.StatusNotFound, perform(engine, http.MethodGet, "/uploads/products/p1/missing.png", nil, nil).Code)
}
