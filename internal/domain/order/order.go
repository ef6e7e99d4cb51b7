// Package order holds storefront orders and their payment lifecycle.
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Status represents the status of an order
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusPaid           Status = "PAID"
	StatusPaymentFailed  Status = "PAYMENT_FAILED"
	StatusProcessing     Status = "PROCESSING"
	StatusShipped        Status = "SHIPPED"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusPaid, StatusPaymentFailed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if an admin may move an order from s to target.
// Payment states are driven by the payment flow, not by admins.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPendingPayment, StatusPaymentFailed:
		return target == StatusCancelled
	case StatusPaid:
		return target == StatusProcessing || target == StatusCancelled
	case StatusProcessing:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered
	case StatusDelivered, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// FailureKind classifies a non-fatal payment failure reported by the client
type FailureKind string

const (
	FailureGatewayLoad  FailureKind = "GATEWAY_LOAD_FAILED"
	FailureInitiation   FailureKind = "INITIATION_FAILED"
	FailureVerification FailureKind = "VERIFICATION_FAILED"
	FailureDismissed    FailureKind = "DISMISSED"
	// FailureDeclined is reported by the gateway webhook, never by clients
	FailureDeclined FailureKind = "PAYMENT_DECLINED"
)

// IsValid checks if the kind is known
func (k FailureKind) IsValid() bool {
	switch k {
	case FailureGatewayLoad, FailureInitiation, FailureVerification, FailureDismissed, FailureDeclined:
		return true
	}
	return false
}

// Order errors
var (
	ErrNotFound     = shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
	ErrCartEmpty    = shared.NewDomainError("CART_EMPTY", "Your cart is empty")
	ErrAlreadyPaid  = shared.NewDomainError("ORDER_ALREADY_PAID", "Order is already paid")
	ErrNotPayable   = shared.NewDomainError("ORDER_NOT_PAYABLE", "Order is not awaiting payment")
	ErrPaymentMatch = shared.NewDomainError("PAYMENT_MISMATCH", "Payment does not belong to this order")
)

// Item is a line of an order, a snapshot of the cart line at checkout
type Item struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	VariantID uuid.UUID
	Name      string
	Color     string
	Size      string
	Image     string
	UnitPrice decimal.Decimal
	Quantity  int
	Amount    decimal.Decimal
}

// Pricing is the server-computed quote an order is placed at
type Pricing struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingFee    decimal.Decimal
	DiscountID     *uuid.UUID
	CouponCode     string
}

// Order represents a customer order aggregate root
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber      string
	UserID           uuid.UUID
	Items            []Item
	ShippingAddress  valueobject.ShippingAddress
	Notes            string
	Subtotal         decimal.Decimal
	DiscountAmount   decimal.Decimal
	ShippingFee      decimal.Decimal
	Total            decimal.Decimal
	DiscountID       *uuid.UUID
	CouponCode       string
	Status           Status
	Gateway          string
	GatewayOrderID   string
	GatewayPaymentID string
	PaymentAttempts  int
	LastPaymentError string
	PaidAt           *time.Time
	ShippedAt        *time.Time
	DeliveredAt      *time.Time
	CancelledAt      *time.Time
	CancelReason     string
}

// GenerateOrderNumber returns a human-readable order number such as ORD-20260310-1A2B3C4D
func GenerateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

// NewOrder creates a PENDING_PAYMENT order
func NewOrder(orderNumber string, userID uuid.UUID, address valueobject.ShippingAddress, notes string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if address.IsEmpty() {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Shipping address is required")
	}
	if len(notes) > 500 {
		return nil, shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 500 characters")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		UserID:            userID,
		Items:             make([]Item, 0),
		ShippingAddress:   address,
		Notes:             strings.TrimSpace(notes),
		Subtotal:          decimal.Zero,
		DiscountAmount:    decimal.Zero,
		ShippingFee:       decimal.Zero,
		Total:             decimal.Zero,
		Status:            StatusPendingPayment,
	}, nil
}

// AddItem appends a line to a pending order
func (o *Order) AddItem(productID, variantID uuid.UUID, name, color, size, image string, unitPrice decimal.Decimal, quantity int) error {
	if o.Status != StatusPendingPayment {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify an order after payment started")
	}
	if productID == uuid.Nil || variantID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product and variant are required")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	o.Items = append(o.Items, Item{
		ID:        uuid.New(),
		OrderID:   o.ID,
		ProductID: productID,
		VariantID: variantID,
		Name:      name,
		Color:     color,
		Size:      size,
		Image:     image,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Amount:    unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	})
	return nil
}

// Place fixes the order amounts and records the OrderPlaced event
func (o *Order) Place(p Pricing) error {
	if len(o.Items) == 0 {
		return ErrCartEmpty
	}
	if p.Subtotal.IsNegative() || p.DiscountAmount.IsNegative() || p.ShippingFee.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amounts cannot be negative")
	}
	total := p.Subtotal.Sub(p.DiscountAmount).Add(p.ShippingFee)
	if !total.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Order total must be positive")
	}

	o.Subtotal = p.Subtotal
	o.DiscountAmount = p.DiscountAmount
	o.ShippingFee = p.ShippingFee
	o.Total = total
	o.DiscountID = p.DiscountID
	o.CouponCode = p.CouponCode
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewPlacedEvent(o))
	return nil
}

// AttachGatewayOrder records the gateway order opened for this order
func (o *Order) AttachGatewayOrder(gateway, gatewayOrderID string) error {
	if o.Status != StatusPendingPayment {
		return ErrNotPayable
	}
	if gatewayOrderID == "" {
		return shared.NewDomainError("INVALID_GATEWAY_ORDER", "Gateway order ID cannot be empty")
	}
	o.Gateway = gateway
	o.GatewayOrderID = gatewayOrderID
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// MarkInitiationFailed records that the gateway order could not be created
func (o *Order) MarkInitiationFailed(reason string) error {
	if o.Status != StatusPendingPayment {
		return ErrNotPayable
	}
	o.Status = StatusPaymentFailed
	o.recordAttempt(FailureInitiation, reason)
	return nil
}

// RecordPaymentFailure records a failed attempt. The order stays awaiting payment.
func (o *Order) RecordPaymentFailure(kind FailureKind, reason string) error {
	if !kind.IsValid() {
		return shared.NewDomainError("INVALID_FAILURE_KIND", "Unknown payment failure kind")
	}
	if o.Status != StatusPendingPayment && o.Status != StatusPaymentFailed {
		return ErrNotPayable
	}
	o.recordAttempt(kind, reason)
	return nil
}

func (o *Order) recordAttempt(kind FailureKind, reason string) {
	o.PaymentAttempts++
	o.LastPaymentError = string(kind)
	if reason = strings.TrimSpace(reason); reason != "" {
		if len(reason) > 500 {
			reason = reason[:500]
		}
		o.LastPaymentError += ": " + reason
	}
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewPaymentFailedEvent(o, kind, reason))
}

// MarkPaid marks the order paid by the given gateway payment.
// Paying an already-paid order again with the same payment returns ErrAlreadyPaid.
func (o *Order) MarkPaid(gatewayOrderID, paymentID string, now time.Time) error {
	if o.Status == StatusPaid && o.GatewayPaymentID == paymentID {
		return ErrAlreadyPaid
	}
	if o.Status != StatusPendingPayment && o.Status != StatusPaymentFailed {
		return ErrNotPayable
	}
	if o.GatewayOrderID != gatewayOrderID {
		return ErrPaymentMatch
	}
	if paymentID == "" {
		return shared.NewDomainError("INVALID_PAYMENT_ID", "Payment ID cannot be empty")
	}

	o.Status = StatusPaid
	o.GatewayPaymentID = paymentID
	o.LastPaymentError = ""
	o.PaidAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	o.AddDomainEvent(NewPaidEvent(o))
	return nil
}

// TransitionTo applies an admin status change
func (o *Order) TransitionTo(target Status, reason string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change order status from %s to %s", o.Status, target))
	}

	from := o.Status
	now := time.Now()
	switch target {
	case StatusShipped:
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
		o.CancelReason = strings.TrimSpace(reason)
	}
	o.Status = target
	o.UpdatedAt = now
	o.IncrementVersion()
	o.AddDomainEvent(NewStatusChangedEvent(o, from))
	return nil
}

// IsAwaitingPayment reports whether the order can still be paid
func (o *Order) IsAwaitingPayment() bool {
	return o.Status == StatusPendingPayment || o.Status == StatusPaymentFailed
}

// IsPaid reports whether payment has been captured
func (o *Order) IsPaid() bool {
	return o.PaidAt != nil
}

// TotalMoney returns the payable total as Money
func (o *Order) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyINR(o.Total)
}

// ItemCount returns the number of units ordered
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
