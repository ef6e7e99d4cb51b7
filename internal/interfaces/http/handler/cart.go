package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// CartHandler serves the caller's cart. Signed-in customers own their cart by
// user id, guests by the X-Cart-Session header.
type CartHandler struct {
	BaseHandler
	store      *cartapp.Store
	logger     *zap.Logger
	heartbeat  time.Duration
	maxStreams int64
	streams    atomic.Int64
}

// CartHandlerOption configures a CartHandler
type CartHandlerOption func(*CartHandler)

// WithCartLogger sets the logger for the handler
func WithCartLogger(logger *zap.Logger) CartHandlerOption {
	return func(h *CartHandler) {
		h.logger = logger
	}
}

// WithStreamHeartbeat sets the interval of stream keep-alive events
func WithStreamHeartbeat(interval time.Duration) CartHandlerOption {
	return func(h *CartHandler) {
		h.heartbeat = interval
	}
}

// WithMaxStreams caps concurrent cart streams; 0 means unlimited
func WithMaxStreams(n int) CartHandlerOption {
	return func(h *CartHandler) {
		h.maxStreams = int64(n)
	}
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(store *cartapp.Store, opts ...CartHandlerOption) *CartHandler {
	h := &CartHandler{
		store:      store,
		logger:     zap.NewNop(),
		heartbeat:  30 * time.Second,
		maxStreams: 10000,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Get godoc
// @Summary      Get cart
// @Tags         cart
// @Produce      json
// @Param        X-Cart-Session header string false "Guest cart session"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	current, err := h.store.Get(c.Request.Context(), buyer.OwnerID)
	h.respond(c, current, err)
}

// Add godoc
// @Summary      Add item
// @Description  Adds a variant; an existing line of the same variant grows instead. Quantity is clamped to stock.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string false "Guest cart session"
// @Param        request body cartapp.AddItemRequest true "Variant and quantity"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /cart/items [post]
func (h *CartHandler) Add(c *gin.Context) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req cartapp.AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	updated, err := h.store.Add(c.Request.Context(), buyer.OwnerID, req)
	h.respond(c, updated, err)
}

// Increase godoc
// @Summary      Increase quantity by one
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string false "Guest cart session"
// @Param        request body cartapp.ItemKeyRequest true "Line key"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Router       /cart/items/increase [post]
func (h *CartHandler) Increase(c *gin.Context) {
	h.mutateLine(c, h.store.Increase)
}

// Decrease godoc
// @Summary      Decrease quantity by one
// @Description  A line at quantity one is removed
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string false "Guest cart session"
// @Param        request body cartapp.ItemKeyRequest true "Line key"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Router       /cart/items/decrease [post]
func (h *CartHandler) Decrease(c *gin.Context) {
	h.mutateLine(c, h.store.Decrease)
}

// Remove godoc
// @Summary      Remove line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string false "Guest cart session"
// @Param        request body cartapp.ItemKeyRequest true "Line key"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /cart/items [delete]
func (h *CartHandler) Remove(c *gin.Context) {
	h.mutateLine(c, h.store.Remove)
}

type lineMutation func(ctx context.Context, ownerID string, key cart.Key) (*cart.Cart, error)

func (h *CartHandler) mutateLine(c *gin.Context, mutate lineMutation) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req cartapp.ItemKeyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	updated, err := mutate(c.Request.Context(), buyer.OwnerID, req.Key())
	h.respond(c, updated, err)
}

// Clear godoc
// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Param        X-Cart-Session header string false "Guest cart session"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	updated, err := h.store.Clear(c.Request.Context(), buyer.OwnerID)
	h.respond(c, updated, err)
}

// Merge godoc
// @Summary      Merge guest cart
// @Description  Folds the guest cart of the given session into the signed-in customer's cart and empties it
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cartapp.MergeRequest true "Guest session"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/merge [post]
func (h *CartHandler) Merge(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req cartapp.MergeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	guest, ok := checkout.GuestOwner(req.GuestSession)
	if !ok {
		h.BadRequest(c, "Invalid guest session")
		return
	}
	merged, err := h.store.Merge(c.Request.Context(), guest, checkout.UserOwner(userID))
	h.respond(c, merged, err)
}

func (h *CartHandler) respond(c *gin.Context, current *cart.Cart, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cartapp.ToCartResponse(current))
}

// Stream godoc
// @Summary      Cart updates
// @Description  Server-sent events: "cart" with the full cart on connect and after every change, "heartbeat" to keep the connection open
// @Tags         cart
// @Produce      text/event-stream
// @Param        X-Cart-Session header string false "Guest cart session"
// @Success      200 {string} string "SSE stream"
// @Failure      503 {object} ErrorResponse
// @Router       /cart/stream [get]
func (h *CartHandler) Stream(c *gin.Context) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if n := h.streams.Add(1); h.maxStreams > 0 && n > h.maxStreams {
		h.streams.Add(-1)
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "Too many open cart streams")
		return
	}
	defer h.streams.Add(-1)

	ctx := c.Request.Context()

	// one slot; a newer cart replaces one the client has not read yet
	updates := make(chan *cart.Cart, 1)
	unsubscribe := h.store.Subscribe(func(ch cartapp.Change) {
		if ch.OwnerID != buyer.OwnerID {
			return
		}
		for {
			select {
			case updates <- ch.Cart:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unsubscribe()

	// snapshot after subscribing: a change in between may arrive twice but is never lost
	current, err := h.store.Get(ctx, buyer.OwnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	h.logger.Debug("cart stream opened", zap.String("owner_id", buyer.OwnerID))
	defer h.logger.Debug("cart stream closed", zap.String("owner_id", buyer.OwnerID))

	if err := writeCartEvent(c.Writer, current); err != nil {
		return
	}
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case next := <-updates:
			if err := writeCartEvent(c.Writer, next); err != nil {
				return
			}
		case now := <-ticker.C:
			if _, err := fmt.Fprintf(c.Writer, "event: heartbeat\ndata: {\"timestamp\":%d}\n\n", now.Unix()); err != nil {
				return
			}
		}
		c.Writer.Flush()
	}
}

func writeCartEvent(w io.Writer, current *cart.Cart) error {
	data, err := json.Marshal(cartapp.ToCartResponse(current))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: cart\nid: %d\ndata: %s\n\n", current.Version, data)
	return err
}
