package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/cart"
	"go.uber.org/zap"
)

const (
	defaultCartChannel  = "storefront:cart:changes"
	defaultCloseTimeout = 5 * time.Second
)

// RedisCartRelay implements cart.Relay using Redis Pub/Sub, so cart streams
// served by one instance see mutations made on another.
type RedisCartRelay struct {
	client    *redis.Client
	channel   string
	logger    *zap.Logger
	mu        sync.Mutex
	cancelFn  context.CancelFunc
	doneCh    chan struct{}
	isRunning bool
}

// NewRedisCartRelay creates a relay on an existing client. The caller keeps
// ownership of the client.
func NewRedisCartRelay(client *redis.Client, channel string, logger *zap.Logger) *RedisCartRelay {
	if channel == "" {
		channel = defaultCartChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCartRelay{client: client, channel: channel, logger: logger}
}

// Publish sends a change notice to every instance
func (r *RedisCartRelay) Publish(ctx context.Context, n cart.Notice) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal cart notice: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish cart notice: %w", err)
	}
	return nil
}

// Listen subscribes to the channel and blocks until ctx is done or Close is called
func (r *RedisCartRelay) Listen(ctx context.Context, fn func(cart.Notice)) error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return fmt.Errorf("cart relay already listening")
	}
	subCtx, cancel := context.WithCancel(ctx)
	r.isRunning = true
	r.cancelFn = cancel
	r.doneCh = make(chan struct{})
	done := r.doneCh
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.isRunning = false
		r.mu.Unlock()
		close(done)
	}()

	pubsub := r.client.Subscribe(subCtx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	r.logger.Info("listening for cart changes", zap.String("channel", r.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var n cart.Notice
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				r.logger.Warn("malformed cart notice", zap.String("payload", msg.Payload), zap.Error(err))
				continue
			}
			r.deliver(fn, n)
		}
	}
}

func (r *RedisCartRelay) deliver(fn func(cart.Notice), n cart.Notice) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("panic in cart notice callback", zap.Any("panic", p))
		}
	}()
	fn(n)
}

// Close stops a running Listen and waits for it to return
func (r *RedisCartRelay) Close() error {
	r.mu.Lock()
	cancel, done := r.cancelFn, r.doneCh
	r.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
	case <-time.After(defaultCloseTimeout):
		r.logger.Warn("timeout waiting for cart relay to stop")
	}
	return nil
}

// LocalCartRelay delivers notices to listeners in the same process
type LocalCartRelay struct {
	mu        sync.RWMutex
	listeners map[int]func(cart.Notice)
	next      int
}

func NewLocalCartRelay() *LocalCartRelay {
	return &LocalCartRelay{listeners: make(map[int]func(cart.Notice))}
}

func (r *LocalCartRelay) Publish(_ context.Context, n cart.Notice) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, fn := range r.listeners {
		fn(n)
	}
	return nil
}

func (r *LocalCartRelay) Listen(ctx context.Context, fn func(cart.Notice)) error {
	r.mu.Lock()
	id := r.next
	r.next++
	r.listeners[id] = fn
	r.mu.Unlock()

	<-ctx.Done()

	r.mu.Lock()
	delete(r.listeners, id)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *LocalCartRelay) Close() error { return nil }

var (
	_ cart.Relay = (*RedisCartRelay)(nil)
	_ cart.Relay = (*LocalCartRelay)(nil)
)
