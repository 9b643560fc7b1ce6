// Package lru provides a small thread-safe cache with a soft size limit.
//
// When an insertion takes the cache over its limit, the least recently used
// quarter of the entries is evicted in one sweep, so eviction cost is paid
// rarely rather than on every insert.
package lru

import (
	"cmp"
	"slices"
	"sync"
)

// Cache is a least-recently-used cache. A limit of 0 means unlimited.
//
// Cache is safe for concurrent use and must not be copied.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
	limit   int
	tick    uint64
	hits    uint64
	misses  uint64
}

type entry[V any] struct {
	value V
	used  uint64
}

// New creates a cache holding about limit entries.
func New[K comparable, V any](limit int) *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]*entry[V]), limit: limit}
}

// Get returns the value for key and marks it used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.tick++
	e.used = c.tick
	return e.value, true
}

// Set stores value under key.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(key, value)
}

// GetOrCreate returns the value for key, calling create on a miss. create
// runs under the cache lock, so concurrent callers never create the same
// key twice. Errors are returned and not cached.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.hits++
		c.tick++
		e.used = c.tick
		return e.value, nil
	}
	c.misses++
	v, err := create()
	if err != nil {
		return v, err
	}
	c.store(key, v)
	return v, nil
}

// Delete removes key and reports whether it was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counts of Get and GetOrCreate.
func (c *Cache[K, V]) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// store inserts under c.mu and evicts if the limit is exceeded.
func (c *Cache[K, V]) store(key K, value V) {
	c.tick++
	c.entries[key] = &entry[V]{value: value, used: c.tick}
	if c.limit > 0 && len(c.entries) > c.limit {
		c.evict()
	}
}

// evict drops the oldest entries until the cache is at three quarters of
// its limit.
func (c *Cache[K, V]) evict() {
	keep := max(c.limit*3/4, 1)
	drop := len(c.entries) - keep
	if drop <= 0 {
		return
	}
	type aged struct {
		key  K
		used uint64
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e.used})
	}
	slices.SortFunc(all, func(a, b aged) int { return cmp.Compare(a.used, b.used) })
	for _, a := range all[:drop] {
		delete(c.entries, a.key)
	}
}
