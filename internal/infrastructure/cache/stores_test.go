package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRepository_InMemory(t *testing.T) {
	repo := NewInMemoryCartRepository(time.Hour)
	ctx := context.Background()

	t.Run("missing cart loads empty", func(t *testing.T) {
		c, err := repo.Load(ctx, "guest-1")
		require.NoError(t, err)
		assert.Equal(t, "guest-1", c.OwnerID)
		assert.Empty(t, c.Items)
		assert.NotNil(t, c.Items)
	})

	t.Run("round trip keeps lines and version", func(t *testing.T) {
		c, err := cart.New("user-1")
		require.NoError(t, err)
		require.NoError(t, c.Add(cart.Item{
			ProductID: uuid.New(),
			VariantID: uuid.New(),
			Name:      "Oversized Tee",
			Price:     valueobject.NewMoneyINRFromInt(499),
			Quantity:  2,
			Stock:     5,
		}))
		require.NoError(t, repo.Save(ctx, c))

		loaded, err := repo.Load(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, loaded.Items, 1)
		assert.Equal(t, 2, loaded.Items[0].Quantity)
		assert.True(t, loaded.Items[0].Price.Equals(valueobject.NewMoneyINRFromInt(499)))
		assert.Equal(t, c.Version, loaded.Version)
	})

	t.Run("loaded carts are copies", func(t *testing.T) {
		first, err := repo.Load(ctx, "user-1")
		require.NoError(t, err)
		first.Items[0].Quantity = 99

		second, err := repo.Load(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 2, second.Items[0].Quantity)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "user-1"))
		c, err := repo.Load(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, c.Items)
	})

	t.Run("owner is required", func(t *testing.T) {
		assert.ErrorIs(t, repo.Save(ctx, &cart.Cart{}), cart.ErrEmptyOwner)
	})
}

func TestMemoryKV_Expiry(t *testing.T) {
	kv := newMemoryKV()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, kv.set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, kv.set(ctx, "b", []byte("2"), 0))

	now = now.Add(2 * time.Minute)
	_, ok, err := kv.get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	data, ok, err := kv.get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", string(data))
	assert.Equal(t, 1, kv.size())
}

func TestSessionStore_InMemory(t *testing.T) {
	store := NewInMemorySessionStore(time.Hour)
	ctx := context.Background()

	s, err := store.Load(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, discount.StateNoCoupon, s.State)

	now := time.Now()
	require.NoError(t, s.BeginApply("SUMMER10", now))
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Load(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, discount.StateApplying, loaded.State)
	assert.Equal(t, "SUMMER10", loaded.Code)

	require.NoError(t, store.Delete(ctx, "owner-1"))
	loaded, err = store.Load(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, discount.StateNoCoupon, loaded.State)
}

func TestPendingPaymentStore_InMemory(t *testing.T) {
	store := NewInMemoryPendingPaymentStore(time.Hour)
	ctx := context.Background()

	p, err := store.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.Nil(t, p)

	pending := &order.PendingPayment{
		OrderID:        uuid.New(),
		OrderNumber:    "ORD-20260301-AAAA0001",
		GatewayOrderID: "order_gw_1",
		Amount:         decimal.RequireFromString("1347.00"),
		Currency:       "INR",
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Put(ctx, "owner-1", pending))

	got, err := store.Get(ctx, "owner-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, pending.OrderID, got.OrderID)
	assert.True(t, pending.Amount.Equal(got.Amount))
	assert.True(t, pending.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, store.Delete(ctx, "owner-1"))
	got, err = store.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoreFactory_Create(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			App:      config.AppConfig{Env: "development"},
			Cart:     config.CartConfig{Store: "redis", TTL: time.Hour},
			Checkout: config.CheckoutConfig{SessionTTL: time.Hour, PendingOrderTTL: time.Hour},
		}
	}
	unreachable := func(config.RedisConfig) (*redis.Client, error) {
		return nil, errors.New("connection refused")
	}

	t.Run("memory store configured", func(t *testing.T) {
		cfg := base()
		cfg.Cart.Store = "memory"
		stores, err := NewStoreFactory(cfg).Create()
		require.NoError(t, err)
		defer stores.Close()
		assert.Nil(t, stores.Client)
		assert.IsType(t, &InMemoryIdempotencyStore{}, stores.Idempotency)
		assert.IsType(t, &LocalCartRelay{}, stores.Relay)
	})

	t.Run("falls back when redis is down", func(t *testing.T) {
		f := NewStoreFactory(base())
		f.connect = unreachable
		stores, err := f.Create()
		require.NoError(t, err)
		defer stores.Close()
		assert.Nil(t, stores.Client)
		assert.NotNil(t, stores.Carts)
	})

	t.Run("production refuses to fall back", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		f := NewStoreFactory(cfg)
		f.connect = unreachable
		_, err := f.Create()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("redis stores share the client", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
		f := NewStoreFactory(base(), WithInMemoryFallback(false))
		f.connect = func(config.RedisConfig) (*redis.Client, error) { return client, nil }
		stores, err := f.Create()
		require.NoError(t, err)
		assert.Same(t, client, stores.Client)
		assert.IsType(t, &RedisIdempotencyStore{}, stores.Idempotency)
		assert.IsType(t, &RedisCartRelay{}, stores.Relay)
		assert.NoError(t, stores.Close())
	})
}

func TestLocalCartRelay(t *testing.T) {
	relay := NewLocalCartRelay()
	ctx, cancel := context.WithCancel(context.Background())

	received := make(chan cart.Notice, 1)
	done := make(chan error, 1)
	go func() { done <- relay.Listen(ctx, func(n cart.Notice) { received <- n }) }()

	require.Eventually(t, func() bool {
		relay.mu.RLock()
		defer relay.mu.RUnlock()
		return len(relay.listeners) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, relay.Publish(ctx, cart.Notice{OwnerID: "u1", Version: 3, Op: cart.OpAdd, Origin: "a"}))
	select {
	case n := <-received:
		assert.Equal(t, "u1", n.OwnerID)
		assert.Equal(t, 3, n.Version)
	case <-time.After(time.Second):
		t.Fatal("notice not delivered")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Empty(t, relay.listeners)
}
