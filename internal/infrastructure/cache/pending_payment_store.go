package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/order"
)

const pendingPaymentKeyPrefix = "order:pending:"

// PendingPaymentStore remembers the order an owner is paying for between
// payment initiation and verification
type PendingPaymentStore struct {
	kv  kvStore
	ttl time.Duration
}

// NewRedisPendingPaymentStore creates a pending payment store on Redis
func NewRedisPendingPaymentStore(client *redis.Client, ttl time.Duration) *PendingPaymentStore {
	return &PendingPaymentStore{kv: redisKV{client: client}, ttl: ttl}
}

// NewInMemoryPendingPaymentStore creates a process-local pending payment store
func NewInMemoryPendingPaymentStore(ttl time.Duration) *PendingPaymentStore {
	return &PendingPaymentStore{kv: newMemoryKV(), ttl: ttl}
}

// Put replaces the owner's pending payment
func (s *PendingPaymentStore) Put(ctx context.Context, ownerID string, p *order.PendingPayment) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode pending payment: %w", err)
	}
	if err := s.kv.set(ctx, pendingPaymentKeyPrefix+ownerID, data, s.ttl); err != nil {
		return fmt.Errorf("failed to save pending payment: %w", err)
	}
	return nil
}

// Get returns the owner's pending payment, or nil when there is none
func (s *PendingPaymentStore) Get(ctx context.Context, ownerID string) (*order.PendingPayment, error) {
	data, ok, err := s.kv.get(ctx, pendingPaymentKeyPrefix+ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending payment: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var p order.PendingPayment
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode pending payment: %w", err)
	}
	return &p, nil
}

// Delete clears the owner's pending payment
func (s *PendingPaymentStore) Delete(ctx context.Context, ownerID string) error {
	if err := s.kv.del(ctx, pendingPaymentKeyPrefix+ownerID); err != nil {
		return fmt.Errorf("failed to delete pending payment: %w", err)
	}
	return nil
}

var _ order.PendingPaymentStore = (*PendingPaymentStore)(nil)
