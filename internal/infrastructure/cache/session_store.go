package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/discount"
)

const sessionKeyPrefix = "checkout:session:"

// SessionStore keeps one checkout coupon session per owner
type SessionStore struct {
	kv  kvStore
	ttl time.Duration
}

// NewRedisSessionStore creates a session store on Redis
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{kv: redisKV{client: client}, ttl: ttl}
}

// NewInMemorySessionStore creates a process-local session store
func NewInMemorySessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{kv: newMemoryKV(), ttl: ttl}
}

// Load returns the owner's session, or a fresh NO_COUPON session
func (s *SessionStore) Load(ctx context.Context, ownerID string) (*discount.Session, error) {
	data, ok, err := s.kv.get(ctx, sessionKeyPrefix+ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}
	if !ok {
		return discount.NewSession(ownerID), nil
	}

	var session discount.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	session.OwnerID = ownerID
	return &session, nil
}

// Save writes the session
func (s *SessionStore) Save(ctx context.Context, session *discount.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}
	if err := s.kv.set(ctx, sessionKeyPrefix+session.OwnerID, data, s.ttl); err != nil {
		return fmt.Errorf("failed to save checkout session: %w", err)
	}
	return nil
}

// Delete removes the owner's session
func (s *SessionStore) Delete(ctx context.Context, ownerID string) error {
	if err := s.kv.del(ctx, sessionKeyPrefix+ownerID); err != nil {
		return fmt.Errorf("failed to delete checkout session: %w", err)
	}
	return nil
}

var _ discount.SessionStore = (*SessionStore)(nil)
