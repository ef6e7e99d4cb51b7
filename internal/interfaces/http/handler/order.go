package handler

import (
	"github.com/gin-gonic/gin"
	orderapp "github.com/storefront/backend/internal/application/order"
)

// OrderHandler handles checkout payment and order history endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// InitiatePayment godoc
// @Summary      Start payment
// @Description  Builds a PENDING_PAYMENT order from the stored cart and its server-side quote and opens a gateway order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body orderapp.InitiatePaymentRequest true "Shipping details"
// @Success      201 {object} APIResponse[orderapp.InitiatePaymentResponse]
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/initiate-payment [post]
func (h *OrderHandler) InitiatePayment(c *gin.Context) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req orderapp.InitiatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.orderService.InitiatePayment(c.Request.Context(), buyer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// VerifyPayment godoc
// @Summary      Verify payment
// @Description  Checks the gateway signature and marks the order paid. Repeating a verified payment is harmless.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body orderapp.VerifyPaymentRequest true "Gateway callback"
// @Success      200 {object} APIResponse[orderapp.VerifyPaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/verify-payment [post]
func (h *OrderHandler) VerifyPayment(c *gin.Context) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req orderapp.VerifyPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.orderService.VerifyPayment(c.Request.Context(), buyer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ReportFailure godoc
// @Summary      Report a payment failure
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body orderapp.PaymentFailureRequest true "Failure"
// @Success      200 {object} APIResponse[orderapp.OrderResponse]
// @Security     BearerAuth
// @Router       /orders/{id}/payment-failure [post]
func (h *OrderHandler) ReportFailure(c *gin.Context) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "order ID")
		return
	}
	var req orderapp.PaymentFailureRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.orderService.ReportFailure(c.Request.Context(), buyer, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Pending godoc
// @Summary      Pending payment
// @Description  The order awaiting payment for the caller, if any
// @Tags         orders
// @Produce      json
// @Success      200 {object} APIResponse[order.PendingPayment]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/pending [get]
func (h *OrderHandler) Pending(c *gin.Context) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	pending, err := h.orderService.Pending(c.Request.Context(), buyer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pending)
}

// MyOrders godoc
// @Summary      Order history
// @Tags         orders
// @Produce      json
// @Param        status query string false "Order status"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10)
// @Success      200 {object} APIResponse[[]orderapp.OrderResponse]
// @Security     BearerAuth
// @Router       /orders/my [get]
func (h *OrderHandler) MyOrders(c *gin.Context) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var filter orderapp.ListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.orderService.MyOrders(c.Request.Context(), buyer, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Get godoc
// @Summary      Get own order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} APIResponse[orderapp.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	buyer, err := getBuyer(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "order ID")
		return
	}
	result, err := h.orderService.Get(c.Request.Context(), buyer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List godoc
// @Summary      List orders (admin)
// @Tags         admin-orders
// @Produce      json
// @Param        search query string false "Order number or customer"
// @Param        status query string false "Order status"
// @Param        user_id query string false "Customer ID"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10)
// @Param        sort_by query string false "Sort field"
// @Param        sort_order query string false "asc or desc"
// @Success      200 {object} APIResponse[[]orderapp.OrderResponse]
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter orderapp.ListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// AdminGet godoc
// @Summary      Get order (admin)
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} APIResponse[orderapp.OrderResponse]
// @Security     BearerAuth
// @Router       /admin/orders/{id} [get]
func (h *OrderHandler) AdminGet(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "order ID")
		return
	}
	result, err := h.orderService.AdminGet(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// UpdateStatus godoc
// @Summary      Change order status
// @Description  PAID to PROCESSING to SHIPPED to DELIVERED, or CANCELLED before shipping
// @Tags         admin-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body orderapp.UpdateStatusRequest true "New status"
// @Success      200 {object} APIResponse[orderapp.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "order ID")
		return
	}
	var req orderapp.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.orderService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
