package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(productID, variantID uuid.UUID, price int64, quantity, stock int) Item {
	return Item{
		ProductID:  productID,
		VariantID:  variantID,
		CategoryID: uuid.New(),
		Name:       "Cotton Tee",
		Price:      valueobject.NewMoneyINRFromInt(price),
		Quantity:   quantity,
		Stock:      stock,
	}
}

func newCart(t *testing.T) *Cart {
	t.Helper()
	c, err := New("user-1")
	require.NoError(t, err)
	return c
}

func assertUniqueKeys(t *testing.T, c *Cart) {
	t.Helper()
	seen := make(map[Key]bool)
	for _, item := range c.Items {
		assert.False(t, seen[item.Key()], "duplicate line for %v", item.Key())
		seen[item.Key()] = true
		assert.Greater(t, item.Quantity, 0)
	}
}

func TestNew(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyOwner)

	c := newCart(t)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, c.AggregateID(), newCart(t).AggregateID())
}

func TestCart_Add(t *testing.T) {
	productID := uuid.New()
	red, blue := uuid.New(), uuid.New()

	t.Run("same product and variant twice increments quantity", func(t *testing.T) {
		c := newCart(t)
		require.NoError(t, c.Add(newItem(productID, red, 500, 1, 10)))
		require.NoError(t, c.Add(newItem(productID, red, 500, 1, 10)))
		require.Len(t, c.Items, 1)
		assert.Equal(t, 2, c.Items[0].Quantity)
		assertUniqueKeys(t, c)
	})

	t.Run("two variants of the same product yield two lines", func(t *testing.T) {
		c := newCart(t)
		require.NoError(t, c.Add(newItem(productID, red, 500, 1, 10)))
		require.NoError(t, c.Add(newItem(productID, blue, 500, 1, 10)))
		assert.Len(t, c.Items, 2)
		assertUniqueKeys(t, c)
	})

	t.Run("quantity clamps to known stock", func(t *testing.T) {
		c := newCart(t)
		require.NoError(t, c.Add(newItem(productID, red, 500, 3, 4)))
		require.NoError(t, c.Add(newItem(productID, red, 500, 3, 4)))
		assert.Equal(t, 4, c.Items[0].Quantity)
	})

	t.Run("unknown stock is unguarded", func(t *testing.T) {
		c := newCart(t)
		require.NoError(t, c.Add(newItem(productID, red, 500, 50, UnknownStock)))
		assert.Equal(t, 50, c.Items[0].Quantity)
	})

	t.Run("zero stock is rejected", func(t *testing.T) {
		c := newCart(t)
		err := c.Add(newItem(productID, red, 500, 1, 0))
		assert.ErrorIs(t, err, ErrOutOfStock)
		assert.True(t, c.IsEmpty())
	})

	t.Run("missing keys are rejected", func(t *testing.T) {
		c := newCart(t)
		assert.ErrorIs(t, c.Add(newItem(uuid.Nil, red, 1, 1, 1)), ErrInvalidItem)
	})

	t.Run("non-positive quantity defaults to one", func(t *testing.T) {
		c := newCart(t)
		require.NoError(t, c.Add(newItem(productID, red, 500, 0, 5)))
		assert.Equal(t, 1, c.Items[0].Quantity)
	})

	t.Run("each mutation bumps the version", func(t *testing.T) {
		c := newCart(t)
		require.NoError(t, c.Add(newItem(productID, red, 500, 1, 5)))
		require.NoError(t, c.Add(newItem(productID, blue, 500, 1, 5)))
		assert.Equal(t, 2, c.Version)
	})
}

func TestCart_IncreaseDecrease(t *testing.T) {
	productID, variantID := uuid.New(), uuid.New()
	key := Key{ProductID: productID, VariantID: variantID}

	c := newCart(t)
	require.NoError(t, c.Add(newItem(productID, variantID, 250, 1, 2)))

	require.NoError(t, c.Increase(key))
	require.NoError(t, c.Increase(key))
	item, ok := c.Find(key)
	require.True(t, ok)
	assert.Equal(t, 2, item.Quantity, "increase stops at stock")

	require.NoError(t, c.Decrease(key))
	item, _ = c.Find(key)
	assert.Equal(t, 1, item.Quantity)

	require.NoError(t, c.Decrease(key))
	_, ok = c.Find(key)
	assert.False(t, ok, "decreasing the last unit removes the line")
	assert.True(t, c.IsEmpty())

	assert.ErrorIs(t, c.Decrease(key), ErrItemNotFound)
	assert.ErrorIs(t, c.Increase(key), ErrItemNotFound)
}

func TestCart_RemoveAndClear(t *testing.T) {
	productID := uuid.New()
	a, b := uuid.New(), uuid.New()

	c := newCart(t)
	require.NoError(t, c.Add(newItem(productID, a, 100, 1, 5)))
	require.NoError(t, c.Add(newItem(productID, b, 100, 1, 5)))

	require.NoError(t, c.Remove(Key{ProductID: productID, VariantID: a}))
	assert.Len(t, c.Items, 1)
	err := c.Remove(Key{ProductID: productID, VariantID: a})
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.NotNil(t, c.Items)
}

func TestCart_Totals(t *testing.T) {
	c := newCart(t)
	require.NoError(t, c.Add(newItem(uuid.New(), uuid.New(), 300, 2, 10)))
	require.NoError(t, c.Add(newItem(uuid.New(), uuid.New(), 200, 1, 10)))

	assert.True(t, c.Subtotal().Equals(valueobject.NewMoneyINRFromInt(800)))
	assert.Equal(t, 3, c.ItemCount())
}

func TestCart_Merge(t *testing.T) {
	productID, variantID := uuid.New(), uuid.New()

	user := newCart(t)
	require.NoError(t, user.Add(newItem(productID, variantID, 100, 2, 3)))

	guest, err := New("guest-abc")
	require.NoError(t, err)
	require.NoError(t, guest.Add(newItem(productID, variantID, 100, 2, 3)))
	require.NoError(t, guest.Add(newItem(uuid.New(), uuid.New(), 100, 1, 3)))

	user.Merge(guest)
	assert.Len(t, user.Items, 2)
	item, _ := user.Find(Key{ProductID: productID, VariantID: variantID})
	assert.Equal(t, 3, item.Quantity)
	assertUniqueKeys(t, user)
}

func TestNewUpdatedEvent(t *testing.T) {
	c := newCart(t)
	require.NoError(t, c.Add(newItem(uuid.New(), uuid.New(), 100, 2, 3)))

	evt := NewUpdatedEvent(c, OpAdd)
	assert.Equal(t, EventTypeCartUpdated, evt.EventType())
	assert.Equal(t, c.AggregateID(), evt.AggregateID())
	assert.Equal(t, 2, evt.ItemCount)
	assert.Equal(t, 1, evt.Version)
}
