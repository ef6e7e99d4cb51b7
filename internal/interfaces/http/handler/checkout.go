package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/checkout"
)

// CheckoutHandler serves coupon eligibility, the coupon session and the
// authoritative price of the caller's cart
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkout.Service
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Available godoc
// @Summary      Available coupons
// @Description  Every currently available coupon with the eligibility verdict for the caller's cart
// @Tags         discounts
// @Produce      json
// @Param        X-Cart-Session header string false "Guest cart session"
// @Success      200 {object} APIResponse[[]checkout.AvailableDiscountResponse]
// @Router       /discounts/available [get]
func (h *CheckoutHandler) Available(c *gin.Context) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	discounts, err := h.checkoutService.Available(c.Request.Context(), buyer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, discounts)
}

// Apply godoc
// @Summary      Apply coupon
// @Description  Select a coupon by discount_id, or by the code the customer typed
// @Tags         discounts
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string false "Guest cart session"
// @Param        request body checkout.ApplyRequest true "Coupon"
// @Success      200 {object} APIResponse[checkout.ApplyResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /discounts/apply [post]
func (h *CheckoutHandler) Apply(c *gin.Context) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req checkout.ApplyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.DiscountID == nil && req.Code == "" {
		h.BadRequest(c, "discount_id or code is required")
		return
	}
	result, err := h.checkoutService.Apply(c.Request.Context(), buyer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Remove godoc
// @Summary      Remove coupon
// @Tags         discounts
// @Produce      json
// @Param        X-Cart-Session header string false "Guest cart session"
// @Success      200 {object} APIResponse[checkout.SessionResponse]
// @Router       /discounts/apply [delete]
func (h *CheckoutHandler) Remove(c *gin.Context) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	session, err := h.checkoutService.Remove(c.Request.Context(), buyer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// Calculate godoc
// @Summary      Price the cart
// @Description  Subtotal, discount, shipping and total computed from the stored cart and coupon session. A coupon that no longer applies is dropped and explained in notice.
// @Tags         discounts
// @Produce      json
// @Param        X-Cart-Session header string false "Guest cart session"
// @Success      200 {object} APIResponse[checkout.Quote]
// @Router       /discounts/calculate [post]
func (h *CheckoutHandler) Calculate(c *gin.Context) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	quote, err := h.checkoutService.Quote(c.Request.Context(), buyer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// Session godoc
// @Summary      Coupon session
// @Tags         discounts
// @Produce      json
// @Param        X-Cart-Session header string false "Guest cart session"
// @Success      200 {object} APIResponse[checkout.SessionResponse]
// @Router       /discounts/session [get]
func (h *CheckoutHandler) Session(c *gin.Context) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	session, err := h.checkoutService.Session(c.Request.Context(), buyer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}
