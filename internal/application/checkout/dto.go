package checkout

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/discount"
)

// Buyer identifies whose cart and checkout session an operation works on.
// UserID is uuid.Nil for guests.
type Buyer struct {
	OwnerID string
	UserID  uuid.UUID
}

// IsGuest reports whether the buyer is not signed in
func (b Buyer) IsGuest() bool {
	return b.UserID == uuid.Nil
}

// Cart owner key prefixes. A signed-in customer owns "user:<id>", a guest
// owns "guest:<session>".
const (
	userOwnerPrefix  = "user:"
	guestOwnerPrefix = "guest:"

	maxGuestSessionLength = 128
)

// UserOwner is the cart owner key of a signed-in customer
func UserOwner(id uuid.UUID) string {
	return userOwnerPrefix + id.String()
}

// GuestOwner is the cart owner key of a guest session. It reports false for
// an empty or oversized session.
func GuestOwner(session string) (string, bool) {
	session = strings.TrimSpace(session)
	if session == "" || len(session) > maxGuestSessionLength {
		return "", false
	}
	return guestOwnerPrefix + session, true
}

// UserBuyer is the buyer of a signed-in customer
func UserBuyer(id uuid.UUID) Buyer {
	return Buyer{OwnerID: UserOwner(id), UserID: id}
}

// ApplyRequest selects a coupon by its stable id or by the code the customer typed.
// DiscountID wins when both are present.
type ApplyRequest struct {
	DiscountID *uuid.UUID `json:"discount_id"`
	Code       string     `json:"code" binding:"omitempty,max=50"`
}

// AvailableDiscountResponse is one coupon of the available list, annotated with
// the verdict for the caller's cart
type AvailableDiscountResponse struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	DiscountType    discount.Type    `json:"discount_type"`
	DiscountValue   decimal.Decimal  `json:"discount_value"`
	MinOrderAmount  decimal.Decimal  `json:"min_order_amount"`
	MinQuantity     int              `json:"min_quantity"`
	MaxDiscount     decimal.Decimal  `json:"max_discount"`
	ValidUntil      time.Time        `json:"valid_until"`
	Eligible        bool             `json:"eligible"`
	Reason          discount.Reason  `json:"reason,omitempty"`
	Message         string           `json:"message"`
	Shortfall       *decimal.Decimal `json:"shortfall,omitempty"`
	MissingQuantity int              `json:"missing_quantity,omitempty"`
	Preview         decimal.Decimal  `json:"preview_amount"`
}

// SessionResponse is the checkout coupon session
type SessionResponse struct {
	State          discount.SessionState `json:"state"`
	Code           string                `json:"code,omitempty"`
	DiscountID     *uuid.UUID            `json:"discount_id,omitempty"`
	DiscountName   string                `json:"discount_name,omitempty"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	ErrorCode      string                `json:"error_code,omitempty"`
	ErrorMessage   string                `json:"error_message,omitempty"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// AppliedDiscount describes the coupon included in a quote
type AppliedDiscount struct {
	ID     uuid.UUID       `json:"id"`
	Name   string          `json:"name"`
	Type   discount.Type   `json:"discount_type"`
	Amount decimal.Decimal `json:"amount"`
}

// Quote is the server-side price of the buyer's cart. It is the only amount
// payment initiation charges.
type Quote struct {
	Subtotal        decimal.Decimal  `json:"subtotal"`
	Discount        decimal.Decimal  `json:"discount"`
	Shipping        decimal.Decimal  `json:"shipping"`
	Total           decimal.Decimal  `json:"total"`
	ItemCount       int              `json:"item_count"`
	AppliedDiscount *AppliedDiscount `json:"applied_discount"`
	// Notice explains why a previously applied coupon was dropped
	Notice string `json:"notice,omitempty"`

	Cart *cart.Cart `json:"-"`
}

// ApplyResponse is returned by a successful apply
type ApplyResponse struct {
	Session SessionResponse `json:"session"`
	Quote   Quote           `json:"quote"`
}

func toSessionResponse(s *discount.Session, now time.Time) SessionResponse {
	resp := SessionResponse{
		State:          s.EffectiveState(now),
		Code:           s.Code,
		DiscountID:     s.DiscountID,
		DiscountName:   s.DiscountName,
		DiscountAmount: s.DiscountAmount,
		ErrorCode:      s.ErrorCode,
		ErrorMessage:   s.ErrorMessage,
		UpdatedAt:      s.UpdatedAt,
	}
	if resp.State == discount.StateNoCoupon {
		resp.Code = ""
		resp.DiscountID = nil
		resp.DiscountName = ""
		resp.DiscountAmount = decimal.Zero
	}
	return resp
}

func toAvailableResponse(d *discount.Discount, e discount.Eligibility) AvailableDiscountResponse {
	resp := AvailableDiscountResponse{
		ID:              d.ID,
		Name:            d.Name,
		Description:     d.Description,
		DiscountType:    d.Type,
		DiscountValue:   d.Value,
		MinOrderAmount:  d.MinOrderAmount,
		MinQuantity:     d.MinQuantity,
		MaxDiscount:     d.MaxDiscount,
		ValidUntil:      d.ValidUntil,
		Eligible:        e.Eligible,
		Reason:          e.Reason,
		Message:         e.Message,
		MissingQuantity: e.MissingQuantity,
		Preview:         e.Preview.Amount(),
	}
	if e.Shortfall != nil {
		shortfall := e.Shortfall.Amount()
		resp.Shortfall = &shortfall
	}
	return resp
}
