package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
)

// AddItemRequest adds a variant to the cart. Name, price, stock and image are
// resolved from the catalog, never taken from the client.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"omitempty,min=1,max=100"`
}

// ItemKeyRequest identifies a cart line
type ItemKeyRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
}

// Key converts the request into a cart line key
func (r ItemKeyRequest) Key() cart.Key {
	return cart.Key{ProductID: r.ProductID, VariantID: r.VariantID}
}

// MergeRequest folds a guest cart into the caller's cart
type MergeRequest struct {
	GuestSession string `json:"guest_session" binding:"required,max=128"`
}

// ItemResponse is a cart line in API responses
type ItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	VariantID uuid.UUID       `json:"variant_id"`
	Name      string          `json:"name"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
	Image     string          `json:"image,omitempty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartResponse is the cart in API responses
type CartResponse struct {
	Items     []ItemResponse  `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Version   int             `json:"version"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// ToCartResponse converts a domain cart to its response form
func ToCartResponse(c *cart.Cart) CartResponse {
	resp := CartResponse{
		Items:     make([]ItemResponse, 0, len(c.Items)),
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal().Amount(),
		Version:   c.Version,
	}
	if !c.UpdatedAt.IsZero() {
		updated := c.UpdatedAt
		resp.UpdatedAt = &updated
	}
	for _, item := range c.Items {
		resp.Items = append(resp.Items, ItemResponse{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			Color:     item.Color,
			Size:      item.Size,
			Price:     item.Price.Amount(),
			Quantity:  item.Quantity,
			Stock:     item.Stock,
			Image:     item.Image,
			LineTotal: item.LineTotal().Amount(),
		})
	}
	return resp
}
