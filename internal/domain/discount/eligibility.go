package discount

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Reason is a stable code explaining why a discount does not apply
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonInactive       Reason = "INACTIVE"
	ReasonNotStarted     Reason = "NOT_STARTED"
	ReasonExpired        Reason = "EXPIRED"
	ReasonUserType       Reason = "USER_TYPE"
	ReasonUsageLimit     Reason = "USAGE_LIMIT"
	ReasonPerUserLimit   Reason = "PER_USER_LIMIT"
	ReasonScope          Reason = "SCOPE"
	ReasonMinQuantity    Reason = "MIN_QUANTITY"
	ReasonMinOrderAmount Reason = "MIN_ORDER_AMOUNT"
)

// Line is one cart line as seen by discount rules
type Line struct {
	ProductID     uuid.UUID
	CategoryID    uuid.UUID
	SubcategoryID *uuid.UUID
	UnitPrice     valueobject.Money
	Quantity      int
}

// Total returns unit price times quantity
func (l Line) Total() valueobject.Money {
	return l.UnitPrice.MultiplyByInt(int64(l.Quantity))
}

// EligibilityContext is everything the rules need to judge a discount against a cart
type EligibilityContext struct {
	Lines       []Line
	ShippingFee valueobject.Money
	// PriorOrders is the number of paid orders the customer already has
	PriorOrders int
	// UserUsage is how many times the customer already redeemed the discount
	UserUsage int
	Now       time.Time
}

// Subtotal sums every line
func (c EligibilityContext) Subtotal() valueobject.Money {
	total := valueobject.ZeroINR()
	for _, l := range c.Lines {
		total = total.MustAdd(l.Total())
	}
	return total
}

// Eligibility is the verdict of Evaluate
type Eligibility struct {
	Eligible bool
	Reason   Reason
	Message  string
	// Shortfall is set for MIN_ORDER_AMOUNT
	Shortfall *valueobject.Money
	// MissingQuantity is set for MIN_QUANTITY
	MissingQuantity int
	// Preview is the amount the discount would take off when eligible
	Preview valueobject.Money
}

func ineligible(reason Reason, msg string) Eligibility {
	return Eligibility{Reason: reason, Message: msg, Preview: valueobject.ZeroINR()}
}

// Evaluate runs the eligibility checks in order and reports the first failure.
// The same verdict drives both the available-coupon listing and apply.
func Evaluate(d *Discount, ctx EligibilityContext) Eligibility {
	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}

	if !d.IsActive {
		return ineligible(ReasonInactive, "This coupon is not active")
	}
	if now.Before(d.ValidFrom) {
		return ineligible(ReasonNotStarted, "This coupon is not valid yet")
	}
	if d.IsExpired(now) {
		return ineligible(ReasonExpired, "This coupon has expired")
	}

	switch d.UserType {
	case UserTypeNew:
		if ctx.PriorOrders > 0 {
			return ineligible(ReasonUserType, "This coupon is only for first orders")
		}
	case UserTypeExisting:
		if ctx.PriorOrders == 0 {
			return ineligible(ReasonUserType, "This coupon is only for returning customers")
		}
	}

	if d.UsageLimit > 0 && d.UsageCount >= d.UsageLimit {
		return ineligible(ReasonUsageLimit, "This coupon has reached its usage limit")
	}
	if d.PerUserLimit > 0 && ctx.UserUsage >= d.PerUserLimit {
		return ineligible(ReasonPerUserLimit, "You have already used this coupon")
	}

	scoped := d.ScopedLines(ctx.Lines)
	if len(scoped) == 0 {
		return ineligible(ReasonScope, "No items in your cart qualify for this coupon")
	}

	if missing := requiredUnits(d) - units(scoped); missing > 0 {
		e := ineligible(ReasonMinQuantity, fmt.Sprintf("Add %d more item(s) to use this coupon", missing))
		e.MissingQuantity = missing
		return e
	}

	subtotal := ctx.Subtotal()
	minimum := valueobject.NewMoneyINR(d.MinOrderAmount)
	if d.MinOrderAmount.IsPositive() && subtotal.LessThan(minimum) {
		shortfall := minimum.MustSubtract(subtotal)
		e := ineligible(ReasonMinOrderAmount, fmt.Sprintf("%s more needed", shortfall.Display()))
		e.Shortfall = &shortfall
		return e
	}

	return Eligibility{
		Eligible: true,
		Message:  "Coupon can be applied",
		Preview:  Calculate(d, ctx),
	}
}

// InScope reports whether l falls within the discount's product/category scope.
// A sitewide discount matches every line.
func (d *Discount) InScope(l Line) bool {
	if d.ProductID != nil && *d.ProductID != l.ProductID {
		return false
	}
	if d.CategoryID != nil && *d.CategoryID != l.CategoryID {
		return false
	}
	if d.SubcategoryID != nil && (l.SubcategoryID == nil || *d.SubcategoryID != *l.SubcategoryID) {
		return false
	}
	return true
}

// ScopedLines returns the lines the discount applies to
func (d *Discount) ScopedLines(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Quantity > 0 && d.InScope(l) {
			out = append(out, l)
		}
	}
	return out
}

// requiredUnits is the number of in-scope units a discount needs.
// Buy-X-get-Y needs a full group of X+Y units.
func requiredUnits(d *Discount) int {
	if d.Type == TypeBuyXGetY {
		return buyQuantity(d) + freeQuantity(d)
	}
	return d.MinQuantity
}

func units(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func buyQuantity(d *Discount) int {
	if d.MinQuantity < 1 {
		return 1
	}
	return d.MinQuantity
}

func freeQuantity(d *Discount) int {
	return int(d.Value.Floor().IntPart())
}

func capAt(amount decimal.Decimal, max decimal.Decimal) decimal.Decimal {
	if max.IsPositive() && amount.GreaterThan(max) {
		return max
	}
	return amount
}
