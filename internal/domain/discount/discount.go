// Package discount models coupons and the rules that decide whether a coupon
// applies to a cart and how much it takes off.
package discount

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Type is the kind of reduction a discount grants
type Type string

const (
	TypePercentage   Type = "PERCENTAGE"
	TypeFixedAmount  Type = "FIXED_AMOUNT"
	TypeBuyXGetY     Type = "BUY_X_GET_Y"
	TypeFreeShipping Type = "FREE_SHIPPING"
)

// IsValid reports whether t is a known discount type
func (t Type) IsValid() bool {
	switch t {
	case TypePercentage, TypeFixedAmount, TypeBuyXGetY, TypeFreeShipping:
		return true
	}
	return false
}

// UserType restricts a discount to a class of customers
type UserType string

const (
	UserTypeAll      UserType = "ALL"
	UserTypeNew      UserType = "NEW"
	UserTypeExisting UserType = "EXISTING"
)

// IsValid reports whether u is a known user type
func (u UserType) IsValid() bool {
	switch u {
	case UserTypeAll, UserTypeNew, UserTypeExisting:
		return true
	}
	return false
}

// Discount errors
var (
	ErrNotFound        = shared.NewDomainError("DISCOUNT_NOT_FOUND", "Coupon not found")
	ErrAmbiguousCoupon = shared.NewDomainError("AMBIGUOUS_COUPON", "More than one coupon matches this code")
	ErrDuplicateName   = shared.NewDomainError("ALREADY_EXISTS", "A coupon with this name already exists")
)

// Discount is a coupon. Customers refer to it by Name, which acts as the code.
type Discount struct {
	shared.BaseAggregateRoot
	Name           string
	Description    string
	Type           Type
	Value          decimal.Decimal
	MinOrderAmount decimal.Decimal
	MinQuantity    int
	MaxDiscount    decimal.Decimal
	ProductID      *uuid.UUID
	CategoryID     *uuid.UUID
	SubcategoryID  *uuid.UUID
	UserType       UserType
	UsageLimit     int
	PerUserLimit   int
	UsageCount     int
	ValidFrom      time.Time
	ValidUntil     time.Time
	IsActive       bool
}

// Input carries the admin-editable fields of a discount
type Input struct {
	Name           string
	Description    string
	Type           Type
	Value          decimal.Decimal
	MinOrderAmount decimal.Decimal
	MinQuantity    int
	MaxDiscount    decimal.Decimal
	ProductID      *uuid.UUID
	CategoryID     *uuid.UUID
	SubcategoryID  *uuid.UUID
	UserType       UserType
	UsageLimit     int
	PerUserLimit   int
	ValidFrom      time.Time
	ValidUntil     time.Time
	IsActive       bool
}

// New validates in and creates a discount
func New(in Input) (*Discount, error) {
	d := &Discount{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := d.apply(in); err != nil {
		return nil, err
	}
	d.AddDomainEvent(NewCreatedEvent(d))
	return d, nil
}

// Update replaces the editable fields of the discount
func (d *Discount) Update(in Input) error {
	if err := d.apply(in); err != nil {
		return err
	}
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

func (d *Discount) apply(in Input) error {
	if err := validate(&in); err != nil {
		return err
	}
	d.Name = in.Name
	d.Description = in.Description
	d.Type = in.Type
	d.Value = in.Value
	d.MinOrderAmount = in.MinOrderAmount
	d.MinQuantity = in.MinQuantity
	d.MaxDiscount = in.MaxDiscount
	d.ProductID = in.ProductID
	d.CategoryID = in.CategoryID
	d.SubcategoryID = in.SubcategoryID
	d.UserType = in.UserType
	d.UsageLimit = in.UsageLimit
	d.PerUserLimit = in.PerUserLimit
	d.ValidFrom = in.ValidFrom
	d.ValidUntil = in.ValidUntil
	d.IsActive = in.IsActive
	return nil
}

func validate(in *Input) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Coupon name cannot be empty")
	}
	if len(in.Name) > 50 {
		return shared.NewDomainError("INVALID_NAME", "Coupon name cannot exceed 50 characters")
	}
	if !in.Type.IsValid() {
		return shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Unknown discount type")
	}
	if in.UserType == "" {
		in.UserType = UserTypeAll
	}
	if !in.UserType.IsValid() {
		return shared.NewDomainError("INVALID_USER_TYPE", "Unknown user type")
	}
	if in.Value.IsNegative() || in.MinOrderAmount.IsNegative() || in.MaxDiscount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amounts cannot be negative")
	}
	if in.MinQuantity < 0 || in.UsageLimit < 0 || in.PerUserLimit < 0 {
		return shared.NewDomainError("INVALID_LIMIT", "Limits cannot be negative")
	}

	switch in.Type {
	case TypePercentage:
		if !in.Value.IsPositive() || in.Value.GreaterThan(decimal.NewFromInt(100)) {
			return shared.NewDomainError("INVALID_AMOUNT", "Percentage must be greater than 0 and at most 100")
		}
	case TypeFixedAmount:
		if !in.Value.IsPositive() {
			return shared.NewDomainError("INVALID_AMOUNT", "Discount value must be positive")
		}
	case TypeBuyXGetY:
		if !in.Value.IsInteger() || in.Value.LessThan(decimal.NewFromInt(1)) {
			return shared.NewDomainError("INVALID_AMOUNT", "Free quantity must be a whole number of at least 1")
		}
	}

	if in.ValidFrom.IsZero() || in.ValidUntil.IsZero() {
		return shared.NewDomainError("INVALID_VALIDITY", "Validity window is required")
	}
	if !in.ValidUntil.After(in.ValidFrom) {
		return shared.NewDomainError("INVALID_VALIDITY", "Valid until must be after valid from")
	}
	return nil
}

// ToggleStatus flips the active flag
func (d *Discount) ToggleStatus() {
	d.IsActive = !d.IsActive
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	d.AddDomainEvent(NewStatusChangedEvent(d))
}

// IsExpired reports whether the validity window has closed at now
func (d *Discount) IsExpired(now time.Time) bool {
	return now.After(d.ValidUntil)
}

// IsAvailable reports whether customers can see the discount at now
func (d *Discount) IsAvailable(now time.Time) bool {
	return d.IsActive && !now.Before(d.ValidFrom) && !d.IsExpired(now)
}

// IsSitewide reports whether the discount has no product or category scope
func (d *Discount) IsSitewide() bool {
	return d.ProductID == nil && d.CategoryID == nil && d.SubcategoryID == nil
}

// MatchesCode reports whether code refers to this discount (case-insensitive name match)
func (d *Discount) MatchesCode(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), d.Name)
}

// RecordRedemption counts one use of the discount
func (d *Discount) RecordRedemption(userID, orderID uuid.UUID, amount decimal.Decimal) {
	d.UsageCount++
	d.UpdatedAt = time.Now()
	d.AddDomainEvent(NewRedeemedEvent(d, userID, orderID, amount))
}

// StatusFilter selects discounts by lifecycle state in admin listings
type StatusFilter string

const (
	StatusAll      StatusFilter = "ALL"
	StatusActive   StatusFilter = "ACTIVE"
	StatusInactive StatusFilter = "INACTIVE"
	StatusExpired  StatusFilter = "EXPIRED"
)

// ParseStatusFilter parses s case-insensitively; empty means ALL
func ParseStatusFilter(s string) (StatusFilter, bool) {
	f := StatusFilter(strings.ToUpper(strings.TrimSpace(s)))
	switch f {
	case "":
		return StatusAll, true
	case StatusAll, StatusActive, StatusInactive, StatusExpired:
		return f, true
	}
	return "", false
}

// Matches reports whether d falls in the status bucket at now.
// ACTIVE means active and not expired, INACTIVE means switched off, EXPIRED means past ValidUntil.
func (f StatusFilter) Matches(d *Discount, now time.Time) bool {
	switch f {
	case StatusActive:
		return d.IsActive && !d.IsExpired(now)
	case StatusInactive:
		return !d.IsActive
	case StatusExpired:
		return d.IsExpired(now)
	}
	return true
}
