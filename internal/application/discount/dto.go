package discount

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/shared"
)

// DiscountRequest creates or replaces a coupon
type DiscountRequest struct {
	Name           string            `json:"name" binding:"required,min=1,max=50"`
	Description    string            `json:"description" binding:"max=500"`
	Type           discount.Type     `json:"discount_type" binding:"required,oneof=PERCENTAGE FIXED_AMOUNT BUY_X_GET_Y FREE_SHIPPING"`
	Value          decimal.Decimal   `json:"value"`
	MinOrderAmount decimal.Decimal   `json:"min_order_amount"`
	MinQuantity    int               `json:"min_quantity" binding:"min=0"`
	MaxDiscount    decimal.Decimal   `json:"max_discount"`
	ProductID      *uuid.UUID        `json:"product_id"`
	CategoryID     *uuid.UUID        `json:"category_id"`
	SubcategoryID  *uuid.UUID        `json:"subcategory_id"`
	UserType       discount.UserType `json:"user_type" binding:"omitempty,oneof=ALL NEW EXISTING"`
	UsageLimit     int               `json:"usage_limit" binding:"min=0"`
	PerUserLimit   int               `json:"per_user_limit" binding:"min=0"`
	ValidFrom      time.Time         `json:"valid_from" binding:"required"`
	ValidUntil     time.Time         `json:"valid_until" binding:"required"`
	IsActive       *bool             `json:"is_active"`
}

func (r DiscountRequest) toInput() discount.Input {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return discount.Input{
		Name:           r.Name,
		Description:    r.Description,
		Type:           r.Type,
		Value:          r.Value,
		MinOrderAmount: r.MinOrderAmount,
		MinQuantity:    r.MinQuantity,
		MaxDiscount:    r.MaxDiscount,
		ProductID:      r.ProductID,
		CategoryID:     r.CategoryID,
		SubcategoryID:  r.SubcategoryID,
		UserType:       r.UserType,
		UsageLimit:     r.UsageLimit,
		PerUserLimit:   r.PerUserLimit,
		ValidFrom:      r.ValidFrom,
		ValidUntil:     r.ValidUntil,
		IsActive:       active,
	}
}

// ListFilter holds the admin list query of discounts
type ListFilter struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	Type      string `form:"discount_type"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// DiscountResponse represents a coupon in admin responses
type DiscountResponse struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Type           discount.Type     `json:"discount_type"`
	Value          decimal.Decimal   `json:"value"`
	MinOrderAmount decimal.Decimal   `json:"min_order_amount"`
	MinQuantity    int               `json:"min_quantity"`
	MaxDiscount    decimal.Decimal   `json:"max_discount"`
	ProductID      *uuid.UUID        `json:"product_id,omitempty"`
	CategoryID     *uuid.UUID        `json:"category_id,omitempty"`
	SubcategoryID  *uuid.UUID        `json:"subcategory_id,omitempty"`
	UserType       discount.UserType `json:"user_type"`
	UsageLimit     int               `json:"usage_limit"`
	PerUserLimit   int               `json:"per_user_limit"`
	UsageCount     int               `json:"usage_count"`
	ValidFrom      time.Time         `json:"valid_from"`
	ValidUntil     time.Time         `json:"valid_until"`
	IsActive       bool              `json:"is_active"`
	IsExpired      bool              `json:"is_expired"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Version        int               `json:"version"`
}

// ToDiscountResponse converts a domain Discount, judging expiry at now
func ToDiscountResponse(d *discount.Discount, now time.Time) DiscountResponse {
	return DiscountResponse{
		ID:             d.ID,
		Name:           d.Name,
		Description:    d.Description,
		Type:           d.Type,
		Value:          d.Value,
		MinOrderAmount: d.MinOrderAmount,
		MinQuantity:    d.MinQuantity,
		MaxDiscount:    d.MaxDiscount,
		ProductID:      d.ProductID,
		CategoryID:     d.CategoryID,
		SubcategoryID:  d.SubcategoryID,
		UserType:       d.UserType,
		UsageLimit:     d.UsageLimit,
		PerUserLimit:   d.PerUserLimit,
		UsageCount:     d.UsageCount,
		ValidFrom:      d.ValidFrom,
		ValidUntil:     d.ValidUntil,
		IsActive:       d.IsActive,
		IsExpired:      d.IsExpired(now),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		Version:        d.Version,
	}
}

func toDomainFilter(f ListFilter, status discount.StatusFilter, now time.Time) shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.Limit,
		OrderBy:  f.SortBy,
		OrderDir: f.SortOrder,
		Search:   f.Search,
		Filters: map[string]any{
			"status": status,
			"now":    now,
		},
	}
	if f.Type != "" {
		filter.Filters["discount_type"] = f.Type
	}
	return filter.Normalize()
}
