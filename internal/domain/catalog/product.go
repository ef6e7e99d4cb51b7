package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// MaxVariantImages bounds the gallery of a single variant
const MaxVariantImages = 10

// Variant is a color/size combination of a product with its own stock and images
type Variant struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	SKU       string
	Color     string
	Size      string
	Price     decimal.Decimal
	Stock     int
	Images    []string
}

// Label returns a human readable "Color / Size" label
func (v Variant) Label() string {
	parts := make([]string, 0, 2)
	if v.Color != "" {
		parts = append(parts, v.Color)
	}
	if v.Size != "" {
		parts = append(parts, v.Size)
	}
	return strings.Join(parts, " / ")
}

// PrimaryImage returns the first image of the variant, if any
func (v Variant) PrimaryImage() string {
	if len(v.Images) == 0 {
		return ""
	}
	return v.Images[0]
}

// Product is the aggregate root of the catalog. Variants are owned by the product.
type Product struct {
	shared.BaseAggregateRoot
	Name          string
	Slug          string
	Description   string
	CategoryID    uuid.UUID
	SubcategoryID *uuid.UUID
	BasePrice     decimal.Decimal
	IsActive      bool
	AverageRating decimal.Decimal
	RatingCount   int
	Variants      []Variant
}

// NewProduct creates a new active product without variants
func NewProduct(name, description string, categoryID uuid.UUID, subcategoryID *uuid.UUID, basePrice valueobject.Money) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if basePrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Slug:              Slugify(name),
		Description:       description,
		CategoryID:        categoryID,
		SubcategoryID:     subcategoryID,
		BasePrice:         basePrice.Amount(),
		IsActive:          true,
		AverageRating:     decimal.Zero,
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update updates the product's descriptive fields and base price
func (p *Product) Update(name, description string, categoryID uuid.UUID, subcategoryID *uuid.UUID, basePrice valueobject.Money) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if basePrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	p.Name = strings.TrimSpace(name)
	p.Slug = Slugify(name)
	p.Description = description
	p.CategoryID = categoryID
	p.SubcategoryID = subcategoryID
	p.BasePrice = basePrice.Amount()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// AddVariant adds a color/size variant. A zero price inherits the base price.
func (p *Product) AddVariant(sku, color, size string, price decimal.Decimal, stock int) (*Variant, error) {
	if color == "" && size == "" {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant needs a color or a size")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	for _, v := range p.Variants {
		if strings.EqualFold(v.Color, color) && strings.EqualFold(v.Size, size) {
			return nil, shared.NewDomainError("VARIANT_EXISTS", "A variant with this color and size already exists")
		}
	}
	if price.IsZero() {
		price = p.BasePrice
	}
	v := Variant{
		ID:        uuid.New(),
		ProductID: p.ID,
		SKU:       strings.ToUpper(strings.TrimSpace(sku)),
		Color:     strings.TrimSpace(color),
		Size:      strings.TrimSpace(size),
		Price:     price,
		Stock:     stock,
	}
	p.Variants = append(p.Variants, v)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return &p.Variants[len(p.Variants)-1], nil
}

// Variant returns the variant with the given ID
func (p *Product) Variant(id uuid.UUID) (*Variant, error) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], nil
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Variant not found")
}

// SetVariantStock overwrites the available stock of a variant
func (p *Product) SetVariantStock(variantID uuid.UUID, stock int) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	v, err := p.Variant(variantID)
	if err != nil {
		return err
	}
	old := v.Stock
	v.Stock = stock
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewVariantStockChangedEvent(p, variantID, old, stock))
	return nil
}

// AddVariantImage appends an image URL to a variant gallery
func (p *Product) AddVariantImage(variantID uuid.UUID, url string) error {
	v, err := p.Variant(variantID)
	if err != nil {
		return err
	}
	if len(v.Images) >= MaxVariantImages {
		return shared.NewDomainError("TOO_MANY_IMAGES", "Variant image limit reached")
	}
	v.Images = append(v.Images, url)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// TotalStock sums the stock of every variant
func (p *Product) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// ToggleStatus flips the product between active and inactive
func (p *Product) ToggleStatus() {
	p.IsActive = !p.IsActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStatusChangedEvent(p))
}

// SetRatingSummary stores the aggregated rating of the product
func (p *Product) SetRatingSummary(average decimal.Decimal, count int) {
	p.AverageRating = average.Round(1)
	p.RatingCount = count
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
