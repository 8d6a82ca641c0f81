// Package cache implements the store's two TTL-aware caches: an object
// cache keyed by UUID holding reconstructed
// composites, and a metadata cache keyed by UUID holding decoded
// Metadata. Both are backed by hashicorp's expirable LRU so stale
// entries fall out on their own without a separate sweep goroutine.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a generic TTL-bounded, size-bounded cache keyed by UUID. The
// object cache and metadata cache are both instances of this type
// parameterized over their respective value type.
type Cache[V any] struct {
	lru *lru.LRU[string, V]
}

// New creates a Cache holding up to size entries, each evicted ttl after
// insertion. A zero ttl means entries never expire from age (size-based
// eviction still applies).
func New[V any](size int, ttl time.Duration) *Cache[V] {
	if size <= 0 {
		size = 4096
	}
	return &Cache[V]{lru: lru.NewLRU[string, V](size, nil, ttl)}
}

// Get returns the cached value for id, if present and unexpired.
func (c *Cache[V]) Get(id string) (V, bool) {
	return c.lru.Get(id)
}

// Put inserts or refreshes the cached value for id.
func (c *Cache[V]) Put(id string, v V) {
	c.lru.Add(id, v)
}

// Evict removes id from the cache, if present.
func (c *Cache[V]) Evict(id string) {
	c.lru.Remove(id)
}

// Clear empties the cache entirely.
func (c *Cache[V]) Clear() {
	c.lru.Purge()
}

// Len returns the number of entries currently cached.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}
