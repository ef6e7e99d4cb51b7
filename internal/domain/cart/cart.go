// Package cart holds the shopping cart aggregate. A cart is a list of lines keyed
// by (product, variant); every mutation rewrites the whole list and bumps the version.
package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// UnknownStock marks a line whose available stock is not known. Such lines are not clamped.
const UnknownStock = -1

var ownerNamespace = uuid.MustParse("6f1d2c3e-8a4b-4e5f-9c0d-1a2b3c4d5e6f")

// Cart errors
var (
	ErrItemNotFound = shared.NewDomainError("CART_ITEM_NOT_FOUND", "Item is not in the cart")
	ErrOutOfStock   = shared.NewDomainError("INSUFFICIENT_STOCK", "This variant is out of stock")
	ErrInvalidItem  = shared.NewDomainError("INVALID_INPUT", "Cart item must reference a product and a variant")
	ErrEmptyOwner   = shared.NewDomainError("INVALID_INPUT", "Cart owner is required")
)

// Key identifies a cart line
type Key struct {
	ProductID uuid.UUID `json:"product_id"`
	VariantID uuid.UUID `json:"variant_id"`
}

// Item is a denormalized cart line
type Item struct {
	ProductID     uuid.UUID         `json:"product_id"`
	VariantID     uuid.UUID         `json:"variant_id"`
	CategoryID    uuid.UUID         `json:"category_id"`
	SubcategoryID *uuid.UUID        `json:"subcategory_id,omitempty"`
	Name          string            `json:"name"`
	Color         string            `json:"color,omitempty"`
	Size          string            `json:"size,omitempty"`
	Price         valueobject.Money `json:"price"`
	Quantity      int               `json:"quantity"`
	Stock         int               `json:"stock"`
	Image         string            `json:"image,omitempty"`
}

// Key returns the uniqueness key of the line
func (i Item) Key() Key {
	return Key{ProductID: i.ProductID, VariantID: i.VariantID}
}

// LineTotal returns price × quantity
func (i Item) LineTotal() valueobject.Money {
	return i.Price.MultiplyByInt(int64(i.Quantity))
}

// StockKnown reports whether quantity must be clamped to Stock
func (i Item) StockKnown() bool {
	return i.Stock >= 0
}

func (i Item) clamp(quantity int) int {
	if i.StockKnown() && quantity > i.Stock {
		return i.Stock
	}
	return quantity
}

// Cart is the shopping cart of one owner (a user id or a guest session id)
type Cart struct {
	OwnerID   string    `json:"owner_id"`
	Items     []Item    `json:"items"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty cart for owner
func New(ownerID string) (*Cart, error) {
	if ownerID == "" {
		return nil, ErrEmptyOwner
	}
	return &Cart{OwnerID: ownerID, Items: []Item{}}, nil
}

// AggregateID derives a stable UUID from the owner key for event envelopes
func (c *Cart) AggregateID() uuid.UUID {
	return uuid.NewSHA1(ownerNamespace, []byte(c.OwnerID))
}

func (c *Cart) index(k Key) int {
	for i := range c.Items {
		if c.Items[i].Key() == k {
			return i
		}
	}
	return -1
}

func (c *Cart) touch() {
	c.Version++
	c.UpdatedAt = time.Now()
}

// Find returns the line with key k
func (c *Cart) Find(k Key) (Item, bool) {
	if i := c.index(k); i >= 0 {
		return c.Items[i], true
	}
	return Item{}, false
}

// Add merges item into the cart. An existing line gets its quantity increased and
// its denormalized fields refreshed; otherwise a new line is appended.
// Quantity is clamped to stock when stock is known.
func (c *Cart) Add(item Item) error {
	if item.ProductID == uuid.Nil || item.VariantID == uuid.Nil {
		return ErrInvalidItem
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.Stock == 0 {
		return ErrOutOfStock
	}

	if i := c.index(item.Key()); i >= 0 {
		quantity := c.Items[i].Quantity + item.Quantity
		c.Items[i] = item
		c.Items[i].Quantity = item.clamp(quantity)
	} else {
		item.Quantity = item.clamp(item.Quantity)
		c.Items = append(c.Items, item)
	}
	c.touch()
	return nil
}

// Increase adds one unit to a line, clamped to stock
func (c *Cart) Increase(k Key) error {
	i := c.index(k)
	if i < 0 {
		return ErrItemNotFound
	}
	c.Items[i].Quantity = c.Items[i].clamp(c.Items[i].Quantity + 1)
	c.touch()
	return nil
}

// Decrease removes one unit from a line. The last unit removes the line.
func (c *Cart) Decrease(k Key) error {
	i := c.index(k)
	if i < 0 {
		return ErrItemNotFound
	}
	if c.Items[i].Quantity <= 1 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	} else {
		c.Items[i].Quantity--
	}
	c.touch()
	return nil
}

// Remove deletes a line
func (c *Cart) Remove(k Key) error {
	i := c.index(k)
	if i < 0 {
		return ErrItemNotFound
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.touch()
	return nil
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []Item{}
	c.touch()
}

// Merge folds every line of other into c with the same rules as Add.
// Out-of-stock lines of other are dropped.
func (c *Cart) Merge(other *Cart) {
	if other == nil {
		return
	}
	for _, item := range other.Items {
		_ = c.Add(item)
	}
}

// Subtotal is the sum of all line totals
func (c *Cart) Subtotal() valueobject.Money {
	total := valueobject.ZeroINR()
	for _, item := range c.Items {
		total = total.MustAdd(item.LineTotal())
	}
	return total
}

// ItemCount is the number of units in the cart
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
