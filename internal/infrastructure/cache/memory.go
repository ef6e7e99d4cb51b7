package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// memoryKV keeps serialized values in a map so callers never share state with
// the store, the same as they would with Redis. Expired entries are dropped lazily.
type memoryKV struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func newMemoryKV() *memoryKV {
	return &memoryKV{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *memoryKV) get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return e.data, true, nil
}

func (s *memoryKV) set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := memoryEntry{data: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	s.entries[key] = e
	s.maybeSweep(now)
	return nil
}

// setNX stores value only when key is absent or expired and reports whether it did
func (s *memoryKV) setNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && !e.expired(now) {
		return false, nil
	}
	e := memoryEntry{data: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	s.entries[key] = e
	s.maybeSweep(now)
	return true, nil
}

// maybeSweep drops expired entries every 256 writes; callers hold mu
func (s *memoryKV) maybeSweep(now time.Time) {
	if len(s.entries)%256 == 0 {
		s.sweepLocked(now)
	}
}

func (s *memoryKV) sweepLocked(now time.Time) {
	for k, v := range s.entries {
		if v.expired(now) {
			delete(s.entries, k)
		}
	}
}

func (s *memoryKV) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.now())
}

func (s *memoryKV) del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *memoryKV) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
