package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes JWTs before they expire. Logout revokes single
// tokens by jti; a password reset revokes every token of the user issued up
// to that second, the precision of the iat claim.
type TokenBlacklist interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error
	// Revoked reports whether claims were revoked by either rule
	Revoked(ctx context.Context, claims *Claims) (bool, error)
}

func revokedBefore(issuedAt time.Time, cutoffUnix int64) bool {
	return issuedAt.Unix() < cutoffUnix
}

const blacklistKeyPrefix = "auth:revoked:"

// RedisTokenBlacklist keeps revocations in Redis so every instance sees them.
// Entries expire with the tokens they cover.
type RedisTokenBlacklist struct {
	client *redis.Client
}

func NewRedisTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

func tokenKey(jti string) string     { return blacklistKeyPrefix + "jti:" + jti }
func userCutoffKey(id string) string { return blacklistKeyPrefix + "user:" + id }

func (b *RedisTokenBlacklist) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, tokenKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, userCutoffKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

// Revoked reads both keys in one round trip
func (b *RedisTokenBlacklist) Revoked(ctx context.Context, claims *Claims) (bool, error) {
	pipe := b.client.Pipeline()
	var jti *redis.IntCmd
	if claims.ID != "" {
		jti = pipe.Exists(ctx, tokenKey(claims.ID))
	}
	var cutoff *redis.StringCmd
	if claims.UserID != "" {
		cutoff = pipe.Get(ctx, userCutoffKey(claims.UserID))
	}
	if jti == nil && cutoff == nil {
		return false, nil
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("check revocation: %w", err)
	}

	if jti != nil && jti.Val() > 0 {
		return true, nil
	}
	if cutoff == nil {
		return false, nil
	}
	at, err := cutoff.Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read user revocation: %w", err)
	}
	return revokedBefore(claims.IssuedAtTime(), at), nil
}

// InMemoryTokenBlacklist serves a single instance when Redis is not configured
type InMemoryTokenBlacklist struct {
	mu      sync.Mutex
	tokens  map[string]time.Time // jti -> expiry
	cutoffs map[string]int64     // user id -> unix second of the reset
}

func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		tokens:  make(map[string]time.Time),
		cutoffs: make(map[string]int64),
	}
}

func (b *InMemoryTokenBlacklist) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	b.tokens[jti] = time.Now().Add(ttl)
	b.mu.Unlock()
	return nil
}

func (b *InMemoryTokenBlacklist) RevokeUser(_ context.Context, userID string, _ time.Duration) error {
	b.mu.Lock()
	b.cutoffs[userID] = time.Now().Unix()
	b.mu.Unlock()
	return nil
}

func (b *InMemoryTokenBlacklist) Revoked(_ context.Context, claims *Claims) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if expiry, ok := b.tokens[claims.ID]; ok {
		if time.Now().Before(expiry) {
			return true, nil
		}
		delete(b.tokens, claims.ID)
	}
	if at, ok := b.cutoffs[claims.UserID]; ok {
		return revokedBefore(claims.IssuedAtTime(), at), nil
	}
	return false, nil
}

var (
	_ TokenBlacklist = (*RedisTokenBlacklist)(nil)
	_ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
)
