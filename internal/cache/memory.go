package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store. It is concurrency-safe and intended
// for tests and single-instance deployments.
type MemoryStore struct {
	mu    sync.Mutex
	data  map[string]memoryEntry
	clock func() time.Time
}

type memoryEntry struct {
	value     []byte
	count     int64
	expiresAt time.Time // zero means no expiry
}

// MemoryOption customises the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryClock injects a custom time source for tests.
func WithMemoryClock(clock func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewMemoryStore constructs an in-memory Store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	store := &MemoryStore{
		data:  make(map[string]memoryEntry),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Set stores a value with the supplied TTL.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = s.clock().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = entry
	return nil
}

// Get retrieves a value by key, respecting expiry.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	if s.expired(entry) {
		delete(s.data, key)
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

// Delete removes one or more keys, ignoring missing keys.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

// IncrementWithTTL increments a counter, starting a fresh window when the
// prior one has lapsed.
func (s *MemoryStore) IncrementWithTTL(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}

	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data[key]
	if !ok || s.expired(entry) {
		entry = memoryEntry{expiresAt: now.Add(window)}
	}
	entry.count++
	s.data[key] = entry

	return entry.count, entry.expiresAt.Sub(now), nil
}

// Sweep removes expired entries. The maintenance job calls this periodically
// so long-running processes stay bounded.
func (s *MemoryStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.data {
		if s.expired(entry) {
			delete(s.data, key)
		}
	}
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && s.clock().After(entry.expiresAt)
}
