package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	orderapp "github.com/storefront/backend/internal/application/order"
)

// Webhook signature headers, one per gateway
const (
	WebhookSignatureHeader       = "X-Razorpay-Signature"
	StripeWebhookSignatureHeader = "Stripe-Signature"
)

// PaymentWebhookHandler receives gateway notifications
type PaymentWebhookHandler struct {
	BaseHandler
	orderService *orderapp.Service
}

// NewPaymentWebhookHandler creates a new PaymentWebhookHandler
func NewPaymentWebhookHandler(orderService *orderapp.Service) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{orderService: orderService}
}

// Handle godoc
// @Summary      Payment gateway webhook
// @Description  Signed with the webhook secret over the raw body. payment.captured marks the order paid.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Razorpay-Signature header string false "HMAC-SHA256 of the body"
// @Param        Stripe-Signature header string false "Stripe webhook signature"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} ErrorResponse
// @Router       /payments/webhook [post]
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Webhook body cannot be read")
		return
	}
	if err := h.orderService.HandleWebhook(c.Request.Context(), body, webhookSignature(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "ok"})
}

func webhookSignature(c *gin.Context) string {
	if sig := c.GetHeader(WebhookSignatureHeader); sig != "" {
		return sig
	}
	return c.GetHeader(StripeWebhookSignatureHeader)
}
