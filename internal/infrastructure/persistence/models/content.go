package models

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/content"
)

// FAQModel is the persistence model for a FAQ entry
type FAQModel struct {
	BaseModel
	Question  string              `gorm:"type:varchar(500);not null"`
	Answer    string              `gorm:"type:text;not null"`
	Category  content.FAQCategory `gorm:"type:varchar(20);not null;index"`
	SortOrder int                 `gorm:"not null;default:0"`
	IsActive  bool                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FAQModel) TableName() string {
	return "faqs"
}

// ToDomain converts the persistence model to a domain FAQ
func (m *FAQModel) ToDomain() *content.FAQ {
	return &content.FAQ{
		BaseEntity: m.BaseModel.ToDomain(),
		Question:   m.Question,
		Answer:     m.Answer,
		Category:   m.Category,
		SortOrder:  m.SortOrder,
		IsActive:   m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain FAQ
func (m *FAQModel) FromDomain(f *content.FAQ) {
	m.FromDomainBaseEntity(f.BaseEntity)
	m.Question = f.Question
	m.Answer = f.Answer
	m.Category = f.Category
	m.SortOrder = f.SortOrder
	m.IsActive = f.IsActive
}

// InquiryModel is the persistence model for a design inquiry
type InquiryModel struct {
	BaseModel
	Name            string                `gorm:"type:varchar(100);not null"`
	Email           string                `gorm:"type:varchar(255);not null;index"`
	Phone           string                `gorm:"type:varchar(20)"`
	ProductType     string                `gorm:"type:varchar(50);not null;index"`
	Description     string                `gorm:"type:text;not null"`
	ReferenceImages StringList            `gorm:"type:jsonb"`
	Budget          decimal.Decimal       `gorm:"type:decimal(12,2);not null;default:0"`
	Status          content.InquiryStatus `gorm:"type:varchar(20);not null;index"`
	AdminNotes      string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InquiryModel) TableName() string {
	return "design_inquiries"
}

// ToDomain converts the persistence model to a domain DesignInquiry
func (m *InquiryModel) ToDomain() *content.DesignInquiry {
	return &content.DesignInquiry{
		BaseEntity:      m.BaseModel.ToDomain(),
		Name:            m.Name,
		Email:           m.Email,
		Phone:           m.Phone,
		ProductType:     m.ProductType,
		Description:     m.Description,
		ReferenceImages: append([]string(nil), m.ReferenceImages...),
		Budget:          m.Budget,
		Status:          m.Status,
		AdminNotes:      m.AdminNotes,
	}
}

// FromDomain populates the persistence model from a domain DesignInquiry
func (m *InquiryModel) FromDomain(i *content.DesignInquiry) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.Name = i.Name
	m.Email = i.Email
	m.Phone = i.Phone
	m.ProductType = i.ProductType
	m.Description = i.Description
	m.ReferenceImages = StringList(i.ReferenceImages)
	m.Budget = i.Budget
	m.Status = i.Status
	m.AdminNotes = i.AdminNotes
}

// All lists every model for schema setup in tests
func All() []any {
	return []any{
		&UserModel{}, &PasswordResetModel{},
		&CategoryModel{}, &SubcategoryModel{}, &ProductModel{}, &VariantModel{}, &RatingModel{},
		&DiscountModel{}, &RedemptionModel{},
		&OrderModel{}, &OrderItemModel{},
		&FAQModel{}, &InquiryModel{},
	}
}
