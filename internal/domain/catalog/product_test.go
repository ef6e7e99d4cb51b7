package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T) *Product {
	t.Helper()
	p, err := NewProduct("Linen Kurta", "Handwoven", uuid.New(), nil, valueobject.NewMoneyINRFromInt(1499))
	require.NoError(t, err)
	return p
}

func TestNewProduct(t *testing.T) {
	t.Run("creates active product with slug and event", func(t *testing.T) {
		p := newTestProduct(t)
		assert.Equal(t, "linen-kurta", p.Slug)
		assert.True(t, p.IsActive)
		require.Len(t, p.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeProductCreated, p.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProduct("  ", "", uuid.New(), nil, valueobject.ZeroINR())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("requires category", func(t *testing.T) {
		_, err := NewProduct("Shirt", "", uuid.Nil, nil, valueobject.ZeroINR())
		require.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct("Shirt", "", uuid.New(), nil, valueobject.NewMoneyINRFromInt(-1))
		require.Error(t, err)
	})
}

func TestProduct_AddVariant(t *testing.T) {
	p := newTestProduct(t)

	v, err := p.AddVariant("lk-red-m", "Red", "M", decimal.Zero, 5)
	require.NoError(t, err)
	assert.Equal(t, "LK-RED-M", v.SKU)
	assert.True(t, v.Price.Equal(decimal.NewFromInt(1499)), "zero price inherits base price")
	assert.Equal(t, "Red / M", v.Label())

	_, err = p.AddVariant("dup", "red", "m", decimal.Zero, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = p.AddVariant("x", "", "", decimal.Zero, 1)
	require.Error(t, err)

	_, err = p.AddVariant("y", "Blue", "L", decimal.Zero, -1)
	require.Error(t, err)

	_, err = p.AddVariant("z", "Blue", "L", decimal.NewFromInt(1599), 3)
	require.NoError(t, err)
	assert.Equal(t, 8, p.TotalStock())
}

func TestProduct_SetVariantStock(t *testing.T) {
	p := newTestProduct(t)
	v, err := p.AddVariant("a", "Red", "S", decimal.Zero, 2)
	require.NoError(t, err)
	id := v.ID
	p.ClearDomainEvents()

	require.NoError(t, p.SetVariantStock(id, 9))
	got, err := p.Variant(id)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Stock)
	require.Len(t, p.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeVariantStockChanged, p.GetDomainEvents()[0].EventType())

	assert.Error(t, p.SetVariantStock(id, -2))
	assert.Error(t, p.SetVariantStock(uuid.New(), 1))
}

func TestProduct_AddVariantImage(t *testing.T) {
	p := newTestProduct(t)
	v, err := p.AddVariant("a", "Red", "S", decimal.Zero, 2)
	require.NoError(t, err)
	id := v.ID

	for i := 0; i < MaxVariantImages; i++ {
		require.NoError(t, p.AddVariantImage(id, "https://cdn/img.jpg"))
	}
	err = p.AddVariantImage(id, "https://cdn/one-too-many.jpg")
	require.Error(t, err)

	got, _ := p.Variant(id)
	assert.Equal(t, "https://cdn/img.jpg", got.PrimaryImage())
}

func TestProduct_ToggleStatus(t *testing.T) {
	p := newTestProduct(t)
	p.ToggleStatus()
	assert.False(t, p.IsActive)
	p.ToggleStatus()
	assert.True(t, p.IsActive)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "men-s-t-shirts", Slugify("  Men's T-Shirts "))
	assert.Equal(t, "a-b", Slugify("A & B"))
}

func TestNewRating(t *testing.T) {
	r, err := NewRating(uuid.New(), uuid.New(), 4, " nice ")
	require.NoError(t, err)
	assert.Equal(t, "nice", r.Review)

	_, err = NewRating(uuid.New(), uuid.New(), 6, "")
	require.Error(t, err)
	_, err = NewRating(uuid.New(), uuid.New(), 0, "")
	require.Error(t, err)
}
