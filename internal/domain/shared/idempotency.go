package shared

import (
	"context"
	"time"
)

// IdempotencyStore records keys of operations that must run at most once
// within a TTL (payment verifications, webhook deliveries).
type IdempotencyStore interface {
	// MarkProcessed returns true if the key was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release forgets a key so a failed operation can be attempted again
	Release(ctx context.Context, key string) error

	Close() error
}
