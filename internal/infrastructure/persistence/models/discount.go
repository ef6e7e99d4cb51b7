package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/discount"
)

// DiscountModel is the persistence model for the Discount aggregate
type DiscountModel struct {
	AggregateModel
	Name           string            `gorm:"type:varchar(50);not null;index"`
	Description    string            `gorm:"type:text"`
	DiscountType   discount.Type     `gorm:"column:discount_type;type:varchar(20);not null;index"`
	DiscountValue  decimal.Decimal   `gorm:"column:discount_value;type:decimal(12,2);not null"`
	MinOrderAmount decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0"`
	MinQuantity    int               `gorm:"not null;default:0"`
	MaxDiscount    decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0"`
	ProductID      *uuid.UUID        `gorm:"type:uuid;index"`
	CategoryID     *uuid.UUID        `gorm:"type:uuid;index"`
	SubcategoryID  *uuid.UUID        `gorm:"type:uuid;index"`
	UserType       discount.UserType `gorm:"type:varchar(10);not null;default:'ALL'"`
	UsageLimit     int               `gorm:"not null;default:0"`
	PerUserLimit   int               `gorm:"not null;default:0"`
	UsageCount     int               `gorm:"not null;default:0"`
	ValidFrom      time.Time         `gorm:"not null;index"`
	ValidUntil     time.Time         `gorm:"not null;index"`
	IsActive       bool              `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (DiscountModel) TableName() string {
	return "discounts"
}

// ToDomain converts the persistence model to a domain Discount
func (m *DiscountModel) ToDomain() *discount.Discount {
	return &discount.Discount{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Type:              m.DiscountType,
		Value:             m.DiscountValue,
		MinOrderAmount:    m.MinOrderAmount,
		MinQuantity:       m.MinQuantity,
		MaxDiscount:       m.MaxDiscount,
		ProductID:         m.ProductID,
		CategoryID:        m.CategoryID,
		SubcategoryID:     m.SubcategoryID,
		UserType:          m.UserType,
		UsageLimit:        m.UsageLimit,
		PerUserLimit:      m.PerUserLimit,
		UsageCount:        m.UsageCount,
		ValidFrom:         m.ValidFrom,
		ValidUntil:        m.ValidUntil,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Discount
func (m *DiscountModel) FromDomain(d *discount.Discount) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.Name = d.Name
	m.Description = d.Description
	m.DiscountType = d.Type
	m.DiscountValue = d.Value
	m.MinOrderAmount = d.MinOrderAmount
	m.MinQuantity = d.MinQuantity
	m.MaxDiscount = d.MaxDiscount
	m.ProductID = d.ProductID
	m.CategoryID = d.CategoryID
	m.SubcategoryID = d.SubcategoryID
	m.UserType = d.UserType
	m.UsageLimit = d.UsageLimit
	m.PerUserLimit = d.PerUserLimit
	m.UsageCount = d.UsageCount
	m.ValidFrom = d.ValidFrom
	m.ValidUntil = d.ValidUntil
	m.IsActive = d.IsActive
}

// RedemptionModel records one use of a discount by a paid order
type RedemptionModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DiscountID uuid.UUID       `gorm:"type:uuid;not null;index:idx_redemption_discount_user,priority:1"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_redemption_discount_user,priority:2"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RedeemedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RedemptionModel) TableName() string {
	return "discount_redemptions"
}

// ToDomain converts the persistence model to a domain Redemption
func (m *RedemptionModel) ToDomain() *discount.Redemption {
	return &discount.Redemption{
		ID:         m.ID,
		DiscountID: m.DiscountID,
		UserID:     m.UserID,
		OrderID:    m.OrderID,
		Amount:     m.Amount,
		RedeemedAt: m.RedeemedAt,
	}
}

// FromDomain populates the persistence model from a domain Redemption
func (m *RedemptionModel) FromDomain(r *discount.Redemption) {
	m.ID = r.ID
	m.DiscountID = r.DiscountID
	m.UserID = r.UserID
	m.OrderID = r.OrderID
	m.Amount = r.Amount
	m.RedeemedAt = r.RedeemedAt
}
