package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Stores bundles the key-value backed stores of the storefront
type Stores struct {
	Carts           *CartRepository
	Sessions        *SessionStore
	PendingPayments *PendingPaymentStore
	Idempotency     shared.IdempotencyStore
	Relay           CartRelay
	// Client is nil when the stores are in-memory
	Client *redis.Client
}

// CartRelay is a cart.Relay that can be stopped
type CartRelay interface {
	cart.Relay
	Close() error
}

// Close stops the relay and releases the idempotency store and the Redis client
func (s *Stores) Close() error {
	if err := s.Relay.Close(); err != nil {
		return err
	}
	if err := s.Idempotency.Close(); err != nil {
		return err
	}
	if s.Client != nil {
		return s.Client.Close()
	}
	return nil
}

// StoreFactory creates the stores based on configuration
type StoreFactory struct {
	cfg                   *config.Config
	logger                *zap.Logger
	allowInMemoryFallback bool
	connect               func(config.RedisConfig) (*redis.Client, error)
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable.
// Default is true outside production.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg *config.Config, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: !cfg.App.IsProduction(),
		connect:               NewRedisClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds Redis stores when cart.store is "redis" and Redis answers,
// otherwise in-memory stores
func (f *StoreFactory) Create() (*Stores, error) {
	if f.cfg.Cart.Store != "redis" {
		f.logger.Info("using in-memory cart and checkout stores")
		return f.inMemory(), nil
	}

	client, err := f.connect(f.cfg.Redis)
	if err == nil {
		f.logger.Info("using Redis cart and checkout stores", zap.String("addr", f.cfg.Redis.Addr()))
		return f.onRedis(client), nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for cart store but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
		"Carts and checkout sessions will not be shared between instances.",
		zap.Error(err),
	)
	return f.inMemory(), nil
}

func (f *StoreFactory) onRedis(client *redis.Client) *Stores {
	return &Stores{
		Carts:           NewRedisCartRepository(client, f.cfg.Cart.TTL),
		Sessions:        NewRedisSessionStore(client, f.cfg.Checkout.SessionTTL),
		PendingPayments: NewRedisPendingPaymentStore(client, f.cfg.Checkout.PendingOrderTTL),
		Idempotency:     NewRedisIdempotencyStore(client, ""),
		Relay:           NewRedisCartRelay(client, "", f.logger),
		Client:          client,
	}
}

func (f *StoreFactory) inMemory() *Stores {
	return &Stores{
		Carts:           NewInMemoryCartRepository(f.cfg.Cart.TTL),
		Sessions:        NewInMemorySessionStore(f.cfg.Checkout.SessionTTL),
		PendingPayments: NewInMemoryPendingPaymentStore(f.cfg.Checkout.PendingOrderTTL),
		Idempotency:     NewInMemoryIdempotencyStore(),
		Relay:           NewLocalCartRelay(),
	}
}
