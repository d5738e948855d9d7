// Package cache provides a thread-safe cache with whole-cache time-based
// expiration, used for settings reads that tolerate briefly stale data.
package cache

import (
	"sync"
	"time"
)

// TTLCache stores key-value pairs behind a single freshness timestamp. When
// the TTL elapses every entry is considered stale at once; any Set renews
// the whole cache.
type TTLCache[K comparable, V any] struct {
	mu        sync.RWMutex
	data      map[K]V
	timestamp time.Time
	ttl       time.Duration
}

// New creates a TTLCache with the given TTL. The cache starts empty with a
// zero timestamp, so it reads as expired until the first Set.
func New[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		data: make(map[K]V),
		ttl:  ttl,
	}
}

// Get retrieves a value. It misses when the key is absent or the cache as a
// whole has expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.expiredLocked() {
		var zero V
		return zero, false
	}

	value, ok := c.data[key]
	return value, ok
}

// Set stores a value and renews the freshness timestamp for the entire
// cache.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data == nil {
		c.data = make(map[K]V)
	}
	c.data[key] = value
	c.timestamp = time.Now()
}

// IsExpired reports whether the cache has passed its TTL.
func (c *TTLCache[K, V]) IsExpired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiredLocked()
}

// expiredLocked must be called with at least a read lock held.
func (c *TTLCache[K, V]) expiredLocked() bool {
	return c.timestamp.IsZero() || time.Since(c.timestamp) >= c.ttl
}

// Invalidate drops all cached data and forces the cache to read as expired
// until the next Set.
func (c *TTLCache[K, V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[K]V)
	c.timestamp = time.Time{}
}

// Len returns the entry count without checking expiration.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
