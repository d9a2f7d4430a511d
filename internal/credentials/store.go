// Package credentials provides the expiring key-value cache that holds
// serialized OAuth token records. Keys are opaque to the store.
package credentials

import (
	"context"
	"sync"
	"time"
)

// Store is an expiring key-value cache
type Store interface {
	// Get returns the value at key; found is false when it is absent or expired
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set stores value at key for ttl. A non-positive ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key; missing keys are not an error
	Delete(ctx context.Context, key string) error
}

// KeyValueClient is the subset of a Redis client RedisStore needs
type KeyValueClient interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisStore keeps values in Redis so every instance of the service sees the
// same credentials. Expiry is delegated to Redis TTLs.
type RedisStore struct {
	client KeyValueClient
	prefix string
}

// NewRedisStore returns a store that prepends prefix to every key.
// An empty prefix stores keys verbatim.
func NewRedisStore(client KeyValueClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get reads the prefixed key
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.client.Get(ctx, s.prefix+key)
}

// Set writes the prefixed key with a Redis TTL. A negative ttl is treated as none.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, s.prefix+key, value, ttl)
}

// Delete removes the prefixed key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Delete(ctx, s.prefix+key)
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-process Store for tests and single-instance development
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the value at key, dropping it if it has expired
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		s.mu.Lock()
		if current, ok := s.entries[key]; ok && current.expiresAt.Equal(entry.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set stores value at key; a non-positive ttl never expires
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

// Delete removes key
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}
