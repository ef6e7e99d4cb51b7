package cache

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

var processedMarker = []byte{1}

// InMemoryIdempotencyStore keeps processed keys in process memory. Keys are
// not shared between instances, so it only guards single-instance deployments.
type InMemoryIdempotencyStore struct {
	kv *memoryKV
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{kv: newMemoryKV()}
}

// MarkProcessed returns false when key is already marked and not yet expired
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.kv.setNX(ctx, key, processedMarker, ttl)
}

func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.kv.get(ctx, key)
	return ok, err
}

func (s *InMemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.kv.del(ctx, key)
}

// Close is a no-op; expired keys are swept on write
func (s *InMemoryIdempotencyStore) Close() error { return nil }

// Size counts stored keys, expired ones included until the next sweep
func (s *InMemoryIdempotencyStore) Size() int {
	return s.kv.size()
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
