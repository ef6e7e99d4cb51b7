//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_DownAndUp(t *testing.T) {
	tdb := NewTestDB(t)
	m := tdb.Migrator()

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.NotZero(t, version)
	assert.True(t, tdb.TableExists("discount_redemptions"))

	require.NoError(t, m.Down())
	assert.False(t, tdb.TableExists("orders"))
	assert.False(t, tdb.TableExists("users"))

	require.NoError(t, m.Up())
	assert.True(t, tdb.TableExists("orders"))
	again, _, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, version, again)
}

func seedCatalog(t *testing.T, tdb *TestDB, names ...string) []*catalog.Product {
	t.Helper()
	ctx := context.Background()
	categories := persistence.NewGormCategoryRepository(tdb.DB)
	products := persistence.NewGormProductRepository(tdb.DB)

	category, err := catalog.NewCategory("Apparel", "Everyday wear")
	require.NoError(t, err)
	require.NoError(t, categories.Save(ctx, category))

	out := make([]*catalog.Product, 0, len(names))
	for _, name := range names {
		p, err := catalog.NewProduct(name, name+" in cotton", category.ID, nil, valueobject.NewMoneyINRFromInt(799))
		require.NoError(t, err)
		_, err = p.AddVariant("", "Black", "M", decimal.Zero, 5)
		require.NoError(t, err)
		require.NoError(t, products.Save(ctx, p))
		out = append(out, p)
	}
	return out
}

func TestProductRepository_Suggest(t *testing.T) {
	tdb := NewTestDB(t)
	seedCatalog(t, tdb, "Linen Shirt", "Shirt Dress", "Oversized Tee", "100% Cotton Tee")
	repo := persistence.NewGormProductRepository(tdb.DB)
	ctx := context.Background()

	found, err := repo.Suggest(ctx, "shirt", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Shirt Dress", found[0].Name, "prefix matches rank first")
	assert.Equal(t, "Linen Shirt", found[1].Name)

	found, err = repo.Suggest(ctx, "100%", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "100% Cotton Tee", found[0].Name)

	found, err = repo.Suggest(ctx, "%", 10)
	require.NoError(t, err)
	assert.Len(t, found, 1, "a wildcard is matched literally")
}

func TestDiscountRepository_ConcurrentUsage(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormDiscountRepository(tdb.DB)
	ctx := context.Background()

	now := time.Now()
	d, err := discount.New(discount.Input{
		Name:       "FESTIVE15",
		Type:       discount.TypePercentage,
		Value:      decimal.NewFromInt(15),
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: now.Add(time.Hour),
		IsActive:   true,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, d))

	const buyers = 20
	var wg sync.WaitGroup
	for range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.IncrementUsage(ctx, d.ID))
		}()
	}
	wg.Wait()

	found, err := repo.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, buyers, found.UsageCount)
}

func TestOrderAndRedemption(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	users := persistence.NewGormUserRepository(tdb.DB)
	orders := persistence.NewGormOrderRepository(tdb.DB)
	discounts := persistence.NewGormDiscountRepository(tdb.DB)
	redemptions := persistence.NewGormRedemptionRepository(tdb.DB)
	product := seedCatalog(t, tdb, "Block Print Kurta")[0]

	user, err := identity.NewUser("asha@example.com", "Asha Rao", "Sup3r-secret!")
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, user))

	address, err := valueobject.NewShippingAddress(valueobject.AddressDTO{
		FullName:   "Asha Rao",
		Phone:      "9876543210",
		Line1:      "12 MG Road",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560001",
	})
	require.NoError(t, err)

	o, err := order.NewOrder("ORD-20260301-INT00001", user.ID, address, "")
	require.NoError(t, err)
	variant := product.Variants[0]
	require.NoError(t, o.AddItem(product.ID, variant.ID, product.Name, variant.Color, variant.Size, "", decimal.NewFromInt(799), 2))
	require.NoError(t, o.Place(order.Pricing{Subtotal: decimal.NewFromInt(1598)}))
	require.NoError(t, o.AttachGatewayOrder("mock", "order_int_1"))
	require.NoError(t, orders.Save(ctx, o))

	byGateway, err := orders.FindByGatewayOrderID(ctx, "order_int_1")
	require.NoError(t, err)
	require.NoError(t, byGateway.MarkPaid("order_int_1", "pay_int_1", time.Now()))
	require.NoError(t, orders.Save(ctx, byGateway))

	paid, err := orders.CountPaidByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, paid)

	now := time.Now()
	d, err := discount.New(discount.Input{
		Name:       "FIRST100",
		Type:       discount.TypeFixedAmount,
		Value:      decimal.NewFromInt(100),
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: now.Add(time.Hour),
		IsActive:   true,
	})
	require.NoError(t, err)
	require.NoError(t, discounts.Save(ctx, d))

	redemption := &discount.Redemption{
		ID:         uuid.New(),
		DiscountID: d.ID,
		UserID:     user.ID,
		OrderID:    o.ID,
		Amount:     decimal.NewFromInt(100),
		RedeemedAt: now,
	}
	require.NoError(t, redemptions.Save(ctx, redemption))

	redemption.ID = uuid.New()
	assert.Error(t, redemptions.Save(ctx, redemption), "an order redeems at most once")

	count, err := redemptions.CountByUser(ctx, d.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
