// Package cache provides the versioned cache that reconciles CPU-side
// resources with their GPU-side materializations.
//
// A Cache stores one Entry per resource ID together with the resource version
// the entry reflects. Sync compares versions and drives a Mapper: Create on
// first sight, Update when the version moved, nothing at all when it did not.
// The cache never evicts; entries live until the owner calls Release.
//
// Cache is NOT thread-safe. One cache belongs to one render context and is
// used from the goroutine that records the frame.
package cache

import (
	"fmt"

	"github.com/gogpu/rgraph"
	"github.com/gogpu/rgraph/resource"
)

//go:generate mockgen -source=cache.go -destination=mocks/mock_mapper.go -package=mocks

// Mapper materializes one kind of resource on the GPU.
//
// Update receives the current value and returns the value to keep. It may
// mutate the object in place or dispose it and create a new one. If Update
// fails, current must still be valid, because the cache keeps it.
type Mapper[R resource.Versioned, V any] interface {
	Create(r R) (V, error)
	Update(r R, current V) (V, error)
	Dispose(v V)
}

// Entry pairs a cached GPU object with the resource version it reflects.
type Entry[V any] struct {
	Version uint64
	Value   V
}

// Stats reports what a cache has done since it was created.
type Stats struct {
	Len      int
	Creates  uint64
	Updates  uint64
	Hits     uint64
	Disposes uint64
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Len:      s.Len + o.Len,
		Creates:  s.Creates + o.Creates,
		Updates:  s.Updates + o.Updates,
		Hits:     s.Hits + o.Hits,
		Disposes: s.Disposes + o.Disposes,
	}
}

// String formats the stats for logs and CLI output.
func (s Stats) String() string {
	return fmt.Sprintf("entries=%d creates=%d updates=%d hits=%d disposes=%d",
		s.Len, s.Creates, s.Updates, s.Hits, s.Disposes)
}

// Cache maps resource IDs to GPU objects of type V.
type Cache[R resource.Versioned, V any] struct {
	name    string
	mapper  Mapper[R, V]
	entries map[resource.ID]*Entry[V]
	stats   Stats
}

// New creates an empty cache that uses m to materialize resources.
// name appears in log records.
func New[R resource.Versioned, V any](name string, m Mapper[R, V]) *Cache[R, V] {
	return &Cache[R, V]{
		name:    name,
		mapper:  m,
		entries: make(map[resource.ID]*Entry[V]),
	}
}

// Sync returns the GPU object for r, creating or updating it as needed.
//
// Calling Sync again without a version change returns the same value and
// performs no mapper calls.
func (c *Cache[R, V]) Sync(r R) (V, error) {
	id, version := r.ID(), r.Version()

	e, ok := c.entries[id]
	if !ok {
		v, err := c.mapper.Create(r)
		if err != nil {
			var zero V
			return zero, fmt.Errorf("cache %s: create %q: %w", c.name, r.Label(), err)
		}
		c.entries[id] = &Entry[V]{Version: version, Value: v}
		c.stats.Creates++
		rgraph.Logger().Debug("cache: create",
			"cache", c.name, "label", r.Label(), "id", uint64(id), "version", version)
		return v, nil
	}

	if e.Version == version {
		c.stats.Hits++
		return e.Value, nil
	}

	v, err := c.mapper.Update(r, e.Value)
	if err != nil {
		return e.Value, fmt.Errorf("cache %s: update %q: %w", c.name, r.Label(), err)
	}
	rgraph.Logger().Debug("cache: update",
		"cache", c.name, "label", r.Label(), "id", uint64(id), "from", e.Version, "to", version)
	e.Value = v
	e.Version = version
	c.stats.Updates++
	return v, nil
}

// Get returns the entry for id without synchronizing it.
func (c *Cache[R, V]) Get(id resource.ID) (Entry[V], bool) {
	e, ok := c.entries[id]
	if !ok {
		return Entry[V]{}, false
	}
	return *e, true
}

// Release disposes the GPU object for id and frees its slot.
// It reports whether an entry existed.
func (c *Cache[R, V]) Release(id resource.ID) bool {
	e, ok := c.entries[id]
	if !ok {
		return false
	}
	delete(c.entries, id)
	c.mapper.Dispose(e.Value)
	c.stats.Disposes++
	return true
}

// Len returns the number of cached entries.
func (c *Cache[R, V]) Len() int {
	return len(c.entries)
}

// Stats returns the cache counters.
func (c *Cache[R, V]) Stats() Stats {
	s := c.stats
	s.Len = len(c.entries)
	return s
}

// DisposeAll disposes every cached GPU object and empties the cache.
func (c *Cache[R, V]) DisposeAll() {
	for id, e := range c.entries {
		c.mapper.Dispose(e.Value)
		c.stats.Disposes++
		delete(c.entries, id)
	}
}
