package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/storage"
)

// UploadsHandler serves images kept by the in-memory image storage
type UploadsHandler struct {
	BaseHandler
	storage *storage.MemoryImageStorage
}

// NewUploadsHandler creates a new UploadsHandler
func NewUploadsHandler(s *storage.MemoryImageStorage) *UploadsHandler {
	return &UploadsHandler{storage: s}
}

// Serve godoc
// @Summary      Uploaded image
// @Tags         uploads
// @Produce      image/jpeg,image/png,image/webp
// @Param        key path string true "Object key"
// @Success      200 {file} file
// @Failure      404 {object} ErrorResponse
// @Router       /uploads/{key} [get]
func (h *UploadsHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	body, contentType, ok := h.storage.Open(key)
	if !ok {
		h.NotFound(c, "Image not found")
		return
	}
	if contentType != "" {
		c.Header("Content-Type", contentType)
	}
	c.Header("Cache-Control", "public, max-age=86400")
	http.ServeContent(c.Writer, c.Request, key, time.Time{}, body)
}
