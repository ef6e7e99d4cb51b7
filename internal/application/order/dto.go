package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// InitiatePaymentRequest starts checkout for the caller's stored cart.
// Amounts are never taken from the client.
type InitiatePaymentRequest struct {
	ShippingAddress valueobject.AddressDTO `json:"shipping_address" binding:"required"`
	Notes           string                 `json:"notes" binding:"max=500"`
}

// InitiatePaymentResponse carries what the client needs to open the hosted checkout
type InitiatePaymentResponse struct {
	OrderID        uuid.UUID       `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	GatewayOrderID string          `json:"gateway_order_id"`
	Amount         decimal.Decimal `json:"amount"`
	AmountMinor    int64           `json:"amount_minor"`
	Currency       string          `json:"currency"`
	KeyID          string          `json:"key_id"`
	Gateway        string          `json:"gateway"`
	ClientSecret   string          `json:"client_secret,omitempty"`
	// Notice explains why a previously applied coupon was not used
	Notice string `json:"notice,omitempty"`
}

// VerifyPaymentRequest is the hosted checkout's success callback forwarded by the client
type VerifyPaymentRequest struct {
	OrderID          uuid.UUID `json:"order_id" binding:"required"`
	GatewayOrderID   string    `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string    `json:"gateway_payment_id" binding:"required"`
	Signature        string    `json:"signature" binding:"required"`
}

// VerifyPaymentResponse is returned once the order is paid
type VerifyPaymentResponse struct {
	Order                OrderResponse `json:"order"`
	AlreadyPaid          bool          `json:"already_paid"`
	RedirectAfterSeconds int           `json:"redirect_after_seconds"`
}

// PaymentFailureRequest reports a non-fatal client-side payment failure
type PaymentFailureRequest struct {
	Kind   order.FailureKind `json:"kind" binding:"required,oneof=GATEWAY_LOAD_FAILED INITIATION_FAILED VERIFICATION_FAILED DISMISSED"`
	Reason string            `json:"reason" binding:"max=500"`
}

// UpdateStatusRequest is an admin status change
type UpdateStatusRequest struct {
	Status order.Status `json:"status" binding:"required"`
	Reason string       `json:"reason" binding:"max=500"`
}

// ListFilter holds the list query of orders
type ListFilter struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	UserID    string `form:"user_id"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

func (f ListFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.Limit,
		OrderBy:  f.SortBy,
		OrderDir: f.SortOrder,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if id, err := uuid.Parse(f.UserID); err == nil {
		filter.Filters["user_id"] = id
	}
	return filter.Normalize()
}

// ItemResponse is an order line
type ItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	VariantID uuid.UUID       `json:"variant_id"`
	Name      string          `json:"name"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID               uuid.UUID              `json:"id"`
	OrderNumber      string                 `json:"order_number"`
	UserID           uuid.UUID              `json:"user_id"`
	Items            []ItemResponse         `json:"items"`
	ItemCount        int                    `json:"item_count"`
	ShippingAddress  valueobject.AddressDTO `json:"shipping_address"`
	Notes            string                 `json:"notes,omitempty"`
	Subtotal         decimal.Decimal        `json:"subtotal"`
	DiscountAmount   decimal.Decimal        `json:"discount_amount"`
	ShippingFee      decimal.Decimal        `json:"shipping_fee"`
	Total            decimal.Decimal        `json:"total"`
	DiscountID       *uuid.UUID             `json:"discount_id,omitempty"`
	CouponCode       string                 `json:"coupon_code,omitempty"`
	Status           order.Status           `json:"status"`
	Gateway          string                 `json:"gateway,omitempty"`
	GatewayOrderID   string                 `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string                 `json:"gateway_payment_id,omitempty"`
	PaymentAttempts  int                    `json:"payment_attempts"`
	LastPaymentError string                 `json:"last_payment_error,omitempty"`
	PaidAt           *time.Time             `json:"paid_at,omitempty"`
	ShippedAt        *time.Time             `json:"shipped_at,omitempty"`
	DeliveredAt      *time.Time             `json:"delivered_at,omitempty"`
	CancelledAt      *time.Time             `json:"cancelled_at,omitempty"`
	CancelReason     string                 `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	Version          int                    `json:"version"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]ItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.Name,
			Color:     it.Color,
			Size:      it.Size,
			Image:     it.Image,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Amount:    it.Amount,
		}
	}
	return OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		UserID:           o.UserID,
		Items:            items,
		ItemCount:        o.ItemCount(),
		ShippingAddress:  o.ShippingAddress.ToDTO(),
		Notes:            o.Notes,
		Subtotal:         o.Subtotal,
		DiscountAmount:   o.DiscountAmount,
		ShippingFee:      o.ShippingFee,
		Total:            o.Total,
		DiscountID:       o.DiscountID,
		CouponCode:       o.CouponCode,
		Status:           o.Status,
		Gateway:          o.Gateway,
		GatewayOrderID:   o.GatewayOrderID,
		GatewayPaymentID: o.GatewayPaymentID,
		PaymentAttempts:  o.PaymentAttempts,
		LastPaymentError: o.LastPaymentError,
		PaidAt:           o.PaidAt,
		ShippedAt:        o.ShippedAt,
		DeliveredAt:      o.DeliveredAt,
		CancelledAt:      o.CancelledAt,
		CancelReason:     o.CancelReason,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Version:          o.Version,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}
