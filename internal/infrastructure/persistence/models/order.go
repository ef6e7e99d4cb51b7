package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// OrderModel is the persistence model for the Order aggregate
type OrderModel struct {
	AggregateModel
	OrderNumber      string                      `gorm:"type:varchar(32);not null;uniqueIndex"`
	UserID           uuid.UUID                   `gorm:"type:uuid;not null;index"`
	ShippingAddress  valueobject.ShippingAddress `gorm:"type:jsonb"`
	Notes            string                      `gorm:"type:text"`
	Subtotal         decimal.Decimal             `gorm:"type:decimal(12,2);not null"`
	DiscountAmount   decimal.Decimal             `gorm:"type:decimal(12,2);not null;default:0"`
	ShippingFee      decimal.Decimal             `gorm:"type:decimal(12,2);not null;default:0"`
	Total            decimal.Decimal             `gorm:"type:decimal(12,2);not null"`
	DiscountID       *uuid.UUID                  `gorm:"type:uuid;index"`
	CouponCode       string                      `gorm:"type:varchar(50)"`
	Status           order.Status                `gorm:"type:varchar(20);not null;index"`
	Gateway          string                      `gorm:"type:varchar(20)"`
	GatewayOrderID   string                      `gorm:"type:varchar(64);index"`
	GatewayPaymentID string                      `gorm:"type:varchar(64)"`
	PaymentAttempts  int                         `gorm:"not null;default:0"`
	LastPaymentError string                      `gorm:"type:text"`
	PaidAt           *time.Time
	ShippedAt        *time.Time
	DeliveredAt      *time.Time
	CancelledAt      *time.Time
	CancelReason     string           `gorm:"type:varchar(500)"`
	Items            []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		UserID:            m.UserID,
		ShippingAddress:   m.ShippingAddress,
		Notes:             m.Notes,
		Subtotal:          m.Subtotal,
		DiscountAmount:    m.DiscountAmount,
		ShippingFee:       m.ShippingFee,
		Total:             m.Total,
		DiscountID:        m.DiscountID,
		CouponCode:        m.CouponCode,
		Status:            m.Status,
		Gateway:           m.Gateway,
		GatewayOrderID:    m.GatewayOrderID,
		GatewayPaymentID:  m.GatewayPaymentID,
		PaymentAttempts:   m.PaymentAttempts,
		LastPaymentError:  m.LastPaymentError,
		PaidAt:            m.PaidAt,
		ShippedAt:         m.ShippedAt,
		DeliveredAt:       m.DeliveredAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		Items:             make([]order.Item, 0, len(m.Items)),
	}
	for _, it := range m.Items {
		o.Items = append(o.Items, it.ToDomain())
	}
	return o
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.UserID = o.UserID
	m.ShippingAddress = o.ShippingAddress
	m.Notes = o.Notes
	m.Subtotal = o.Subtotal
	m.DiscountAmount = o.DiscountAmount
	m.ShippingFee = o.ShippingFee
	m.Total = o.Total
	m.DiscountID = o.DiscountID
	m.CouponCode = o.CouponCode
	m.Status = o.Status
	m.Gateway = o.Gateway
	m.GatewayOrderID = o.GatewayOrderID
	m.GatewayPaymentID = o.GatewayPaymentID
	m.PaymentAttempts = o.PaymentAttempts
	m.LastPaymentError = o.LastPaymentError
	m.PaidAt = o.PaidAt
	m.ShippedAt = o.ShippedAt
	m.DeliveredAt = o.DeliveredAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, it := range o.Items {
		m.Items[i].FromDomain(it)
	}
}

// OrderItemModel is the persistence model for an order line
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Color     string          `gorm:"type:varchar(50)"`
	Size      string          `gorm:"type:varchar(20)"`
	Image     string          `gorm:"type:varchar(500)"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity  int             `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain order Item
func (m *OrderItemModel) ToDomain() order.Item {
	return order.Item{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ProductID: m.ProductID,
		VariantID: m.VariantID,
		Name:      m.Name,
		Color:     m.Color,
		Size:      m.Size,
		Image:     m.Image,
		UnitPrice: m.UnitPrice,
		Quantity:  m.Quantity,
		Amount:    m.Amount,
	}
}

// FromDomain populates the persistence model from a domain order Item
func (m *OrderItemModel) FromDomain(it order.Item) {
	m.ID = it.ID
	m.OrderID = it.OrderID
	m.ProductID = it.ProductID
	m.VariantID = it.VariantID
	m.Name = it.Name
	m.Color = it.Color
	m.Size = it.Size
	m.Image = it.Image
	m.UnitPrice = it.UnitPrice
	m.Quantity = it.Quantity
	m.Amount = it.Amount
}
