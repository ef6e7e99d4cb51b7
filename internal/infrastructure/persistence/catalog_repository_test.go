package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T, name string, categoryID uuid.UUID, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, name+" description", categoryID, nil, valueobject.NewMoneyINRFromInt(500))
	require.NoError(t, err)
	_, err = p.AddVariant("", "Black", "M", decimal.Zero, stock)
	require.NoError(t, err)
	return p
}

func TestGormProductRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	p := newTestProduct(t, "Oversized Tee", uuid.New(), 4)
	_, err := p.AddVariant("tee-w-l", "White", "L", decimal.NewFromInt(550), 2)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oversized Tee", found.Name)
	assert.Equal(t, "oversized-tee", found.Slug)
	require.Len(t, found.Variants, 2)
	assert.Equal(t, 6, found.TotalStock())

	t.Run("replaces the variant set on update", func(t *testing.T) {
		found.Variants = found.Variants[:1]
		require.NoError(t, found.SetVariantStock(found.Variants[0].ID, 9))
		require.NoError(t, found.AddVariantImage(found.Variants[0].ID, "https://cdn.example.com/a.jpg"))
		require.NoError(t, repo.Save(ctx, found))

		again, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, again.Variants, 1)
		assert.Equal(t, 9, again.Variants[0].Stock)
		assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, again.Variants[0].Images)
	})

	t.Run("stale write is a concurrency conflict", func(t *testing.T) {
		stale := *p
		stale.Variants = nil
		err := repo.Save(ctx, &stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, errProductNotFound)
	})
}

func TestGormProductRepository_FindAllFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	shirts, hoodies := uuid.New(), uuid.New()
	require.NoError(t, repo.Save(ctx, newTestProduct(t, "Linen Shirt", shirts, 3)))
	require.NoError(t, repo.Save(ctx, newTestProduct(t, "Denim Shirt", shirts, 0)))
	hidden := newTestProduct(t, "Zip Hoodie", hoodies, 5)
	hidden.ToggleStatus()
	require.NoError(t, repo.Save(ctx, hidden))

	count := func(filters map[string]any, search string) int64 {
		f := shared.DefaultFilter()
		f.Filters = filters
		f.Search = search
		n, err := repo.Count(ctx, f)
		require.NoError(t, err)
		return n
	}

	assert.Equal(t, int64(3), count(nil, ""))
	assert.Equal(t, int64(2), count(map[string]any{"category_id": shirts}, ""))
	assert.Equal(t, int64(2), count(map[string]any{"is_active": true}, ""))
	assert.Equal(t, int64(2), count(map[string]any{"in_stock": true}, ""))
	assert.Equal(t, int64(1), count(map[string]any{"category_id": shirts, "in_stock": true}, "linen"))
	assert.Equal(t, int64(0), count(nil, "100%"))

	f := shared.DefaultFilter()
	f.OrderBy, f.OrderDir, f.PageSize = "name", "asc", 2
	page, err := repo.FindAll(ctx, f)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Denim Shirt", page[0].Name)
	assert.Equal(t, "Linen Shirt", page[1].Name)
}

func TestGormProductRepository_Suggest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	category := uuid.New()
	for _, name := range []string{"Classic Tee", "Tee Dress", "Graphic Tee", "Cargo Pants"} {
		require.NoError(t, repo.Save(ctx, newTestProduct(t, name, category, 1)))
	}

	got, err := repo.Suggest(ctx, "tee", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Tee Dress", got[0].Name, "prefix matches come first")

	got, err = repo.Suggest(ctx, "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGormCategoryRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCategoryRepository(db)
	products := NewGormProductRepository(db)
	ctx := context.Background()

	tops, err := catalog.NewCategory("Tops", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, tops))
	sub, err := catalog.NewSubcategory(tops.ID, "T-Shirts")
	require.NoError(t, err)
	require.NoError(t, repo.SaveSubcategory(ctx, sub))

	exists, err := repo.ExistsBySlug(ctx, "tops", nil)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsBySlug(ctx, "tops", &tops.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	subs, err := repo.FindSubcategories(ctx, &tops.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "t-shirts", subs[0].Slug)

	require.NoError(t, products.Save(ctx, newTestProduct(t, "Crop Top", tops.ID, 1)))
	err = repo.Delete(ctx, tops.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CATEGORY_IN_USE", domainErr.Code)
}

func TestGormRatingRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRatingRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	alice, bob := uuid.New(), uuid.New()

	avg, n, err := repo.Summary(ctx, productID)
	require.NoError(t, err)
	assert.True(t, avg.IsZero())
	assert.Zero(t, n)

	r1, err := catalog.NewRating(productID, alice, 5, "love it")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, r1))
	r2, err := catalog.NewRating(productID, bob, 2, "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, r2))

	// a second rating by alice replaces her first
	r3, err := catalog.NewRating(productID, alice, 4, "still good")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, r3))

	avg, n, err = repo.Summary(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, avg.Equal(decimal.NewFromInt(3)), "got %s", avg)

	mine, err := repo.FindByProductAndUser(ctx, productID, alice)
	require.NoError(t, err)
	assert.Equal(t, 4, mine.Score)

	page, total, err := repo.FindByProduct(ctx, productID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, page, 2)
}
