package discount

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// SessionState is the coupon state of one checkout
type SessionState string

const (
	StateNoCoupon SessionState = "NO_COUPON"
	StateApplying SessionState = "APPLYING"
	StateApplied  SessionState = "APPLIED"
	StateError    SessionState = "ERROR"
)

// ApplyingTimeout is how long an APPLYING session blocks other applies
const ApplyingTimeout = 30 * time.Second

// Session errors
var (
	ErrApplyInProgress      = shared.NewDomainError("COUPON_APPLY_IN_PROGRESS", "A coupon is already being applied")
	ErrCouponAlreadyApplied = shared.NewDomainError("COUPON_ALREADY_APPLIED", "Remove the applied coupon before applying another")
	ErrNotApplying          = shared.NewDomainError("INVALID_STATE", "No coupon is being applied")
)

// Session tracks the coupon applied to one owner's checkout
type Session struct {
	OwnerID        string          `json:"owner_id"`
	State          SessionState    `json:"state"`
	Code           string          `json:"code,omitempty"`
	DiscountID     *uuid.UUID      `json:"discount_id,omitempty"`
	DiscountName   string          `json:"discount_name,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	ErrorCode      string          `json:"error_code,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	StartedAt      time.Time       `json:"started_at,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewSession returns an empty NO_COUPON session
func NewSession(ownerID string) *Session {
	return &Session{OwnerID: ownerID, State: StateNoCoupon, UpdatedAt: time.Now()}
}

// EffectiveState resolves stale APPLYING sessions to NO_COUPON
func (s *Session) EffectiveState(now time.Time) SessionState {
	if s.State == StateApplying && now.Sub(s.StartedAt) > ApplyingTimeout {
		return StateNoCoupon
	}
	if s.State == "" {
		return StateNoCoupon
	}
	return s.State
}

// HasCoupon reports whether a coupon is applied
func (s *Session) HasCoupon() bool {
	return s.State == StateApplied && s.DiscountID != nil
}

// BeginApply moves the session to APPLYING. ERROR behaves as NO_COUPON.
func (s *Session) BeginApply(code string, now time.Time) error {
	switch s.EffectiveState(now) {
	case StateApplying:
		return ErrApplyInProgress
	case StateApplied:
		return ErrCouponAlreadyApplied
	}
	s.reset()
	s.State = StateApplying
	s.Code = strings.TrimSpace(code)
	s.StartedAt = now
	s.UpdatedAt = now
	return nil
}

// MarkApplied completes an apply
func (s *Session) MarkApplied(d *Discount, amount decimal.Decimal, now time.Time) error {
	if s.EffectiveState(now) != StateApplying {
		return ErrNotApplying
	}
	id := d.ID
	s.State = StateApplied
	s.DiscountID = &id
	s.DiscountName = d.Name
	s.DiscountAmount = amount
	s.ErrorCode = ""
	s.ErrorMessage = ""
	s.UpdatedAt = now
	return nil
}

// MarkFailed ends an apply in ERROR with the reason shown to the customer
func (s *Session) MarkFailed(code, message string, now time.Time) error {
	if s.EffectiveState(now) != StateApplying {
		return ErrNotApplying
	}
	s.State = StateError
	s.DiscountID = nil
	s.DiscountName = ""
	s.DiscountAmount = decimal.Zero
	s.ErrorCode = code
	s.ErrorMessage = message
	s.UpdatedAt = now
	return nil
}

// Remove clears any applied coupon. Removing during a live apply is a conflict.
func (s *Session) Remove(now time.Time) error {
	if s.EffectiveState(now) == StateApplying {
		return ErrApplyInProgress
	}
	s.reset()
	s.UpdatedAt = now
	return nil
}

func (s *Session) reset() {
	s.State = StateNoCoupon
	s.Code = ""
	s.DiscountID = nil
	s.DiscountName = ""
	s.DiscountAmount = decimal.Zero
	s.ErrorCode = ""
	s.ErrorMessage = ""
	s.StartedAt = time.Time{}
}

// SessionStore persists checkout sessions per owner
type SessionStore interface {
	// Load returns the owner's session, or a fresh NO_COUPON session when none exists
	Load(ctx context.Context, ownerID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, ownerID string) error
}
