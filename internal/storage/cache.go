package storage

import (
	"fmt"
	"time"

	"github.com/maypok86/otter"
)

// Cache is a size-capped in-memory cache with per-entry TTL.
type Cache[K comparable, V any] struct {
	c otter.Cache[K, V]
}

// NewCache creates a Cache holding at most capacity entries, each living for ttl.
func NewCache[K comparable, V any](capacity int, ttl time.Duration) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}

	c, err := otter.MustBuilder[K, V](capacity).WithTTL(ttl).Build()
	if err != nil {
		return nil, fmt.Errorf("build cache with capacity %d: %w", capacity, err)
	}

	return &Cache[K, V]{c: c}, nil
}

// Get returns the cached value for key.
func (s *Cache[K, V]) Get(key K) (V, bool) {
	return s.c.Get(key)
}

// Store saves value under key. Eviction may reject it, which only costs a later lookup.
func (s *Cache[K, V]) Store(key K, value V) {
	s.c.Set(key, value)
}

// Close stops the cache background workers.
func (s *Cache[K, V]) Close() {
	s.c.Close()
}
