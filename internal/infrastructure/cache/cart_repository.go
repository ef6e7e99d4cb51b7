package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/cart"
)

const cartKeyPrefix = "cart:"

// CartRepository stores each cart as one JSON document keyed by owner.
// Saves overwrite the whole document; the last writer wins.
type CartRepository struct {
	kv  kvStore
	ttl time.Duration
}

// NewRedisCartRepository creates a cart repository on Redis. Carts expire ttl after their last write.
func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{kv: redisKV{client: client}, ttl: ttl}
}

// NewInMemoryCartRepository creates a process-local cart repository
func NewInMemoryCartRepository(ttl time.Duration) *CartRepository {
	return &CartRepository{kv: newMemoryKV(), ttl: ttl}
}

// Load returns the owner's cart, or an empty cart when none is stored
func (r *CartRepository) Load(ctx context.Context, ownerID string) (*cart.Cart, error) {
	data, ok, err := r.kv.get(ctx, cartKeyPrefix+ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if !ok {
		return cart.New(ownerID)
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	c.OwnerID = ownerID
	if c.Items == nil {
		c.Items = []cart.Item{}
	}
	return &c, nil
}

// Save writes the whole cart
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	if c.OwnerID == "" {
		return cart.ErrEmptyOwner
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := r.kv.set(ctx, cartKeyPrefix+c.OwnerID, data, r.ttl); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the owner's cart
func (r *CartRepository) Delete(ctx context.Context, ownerID string) error {
	if err := r.kv.del(ctx, cartKeyPrefix+ownerID); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

var _ cart.Repository = (*CartRepository)(nil)
