package geo

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// memCache is the small interface both Geocoder and DistanceOracle use for
// their in-process caches. Memory caches never expire within a process
// lifetime — the only knob is whether they're bounded.
type memCache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, value V)
}

// unboundedCache is a plain map-backed cache for when PlanningConfig leaves
// MemoryCacheCap at 0, the default (no eviction).
// Writes use last-write-wins; a single mutex protects the map
// against concurrent writes corrupting it.
type unboundedCache[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

func newUnboundedCache[K comparable, V any]() *unboundedCache[K, V] {
	return &unboundedCache[K, V]{data: make(map[K]V)}
}

func (c *unboundedCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *unboundedCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// boundedCache wraps hashicorp's LRU (already safe for concurrent use) as
// an LRU cap as an operational knob for memory-constrained deployments.
type boundedCache[K comparable, V any] struct {
	lru *lru.Cache[K, V]
}

func newBoundedCache[K comparable, V any](size int) *boundedCache[K, V] {
	c, err := lru.New[K, V](size)
	if err != nil {
		// size <= 0 is a caller bug; fall back to a 1-entry cache rather
		// than panicking mid-planning-run.
		c, _ = lru.New[K, V](1)
	}
	return &boundedCache[K, V]{lru: c}
}

func (c *boundedCache[K, V]) Get(key K) (V, bool) {
	return c.lru.Get(key)
}

func (c *boundedCache[K, V]) Put(key K, value V) {
	c.lru.Add(key, value)
}

// newMemCache builds either an unbounded or bounded cache depending on cap.
func newMemCache[K comparable, V any](cap int) memCache[K, V] {
	if cap <= 0 {
		return newUnboundedCache[K, V]()
	}
	return newBoundedCache[K, V](cap)
}
