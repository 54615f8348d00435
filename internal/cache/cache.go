package cache

import (
	"slices"
	"sync"
)

// Cache is a generic thread-safe cache bounded by the total cost of its
// entries.
type Cache[K comparable, V any] struct {
	mu        sync.Mutex
	entries   map[K]*cacheEntry[V]
	softLimit int
	cost      int
	tick      int64 // Monotonic access counter
}

// cacheEntry holds a cached value with its cost and access time.
type cacheEntry[V any] struct {
	value V
	cost  int
	atime int64 // Access time (tick value)
}

// New creates a new cache with the given soft cost limit.
// A softLimit of 0 means unlimited.
func New[K comparable, V any](softLimit int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:   make(map[K]*cacheEntry[V]),
		softLimit: softLimit,
	}
}

// Get retrieves a value from the cache.
// Returns (value, true) if found, (zero, false) otherwise.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.tick++
	entry.atime = c.tick
	return entry.value, true
}

// Set stores a value with the given cost.
func (c *Cache[K, V]) Set(key K, value V, cost int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.set(key, value, cost)
}

// GetOrLoad returns the cached value or loads and stores it.
// The load function runs without the cache lock held, so concurrent
// callers for the same key may load it more than once; the last result is
// kept. A failed load is not cached.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, int, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	value, cost, err := load()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value, cost)
	return value, nil
}

// set stores a value. Caller must hold c.mu.
func (c *Cache[K, V]) set(key K, value V, cost int) {
	if old, ok := c.entries[key]; ok {
		c.cost -= old.cost
	}
	c.tick++
	c.entries[key] = &cacheEntry[V]{
		value: value,
		cost:  cost,
		atime: c.tick,
	}
	c.cost += cost

	if c.softLimit > 0 && c.cost > c.softLimit {
		c.evictOldest(key)
	}
}

// Delete removes an entry from the cache.
// Returns true if the entry was found and removed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.cost -= e.cost
		delete(c.entries, key)
		return true
	}
	return false
}

// Clear removes all entries from the cache.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*cacheEntry[V])
	c.cost = 0
	c.tick = 0
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Cost returns the total cost of all entries.
func (c *Cache[K, V]) Cost() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cost
}

// Capacity returns the soft limit of the cache.
func (c *Cache[K, V]) Capacity() int {
	return c.softLimit
}

// evictOldest removes least recently used entries until the total cost is
// at most 3/4 of the soft limit. The entry under keep is never removed, so
// a single oversized value is still returned to its loader.
// Caller must hold c.mu.
func (c *Cache[K, V]) evictOldest(keep K) {
	target := c.softLimit * 3 / 4

	type aged struct {
		key   K
		atime int64
	}
	order := make([]aged, 0, len(c.entries))
	for key, e := range c.entries {
		if key != keep {
			order = append(order, aged{key: key, atime: e.atime})
		}
	}
	slices.SortFunc(order, func(a, b aged) int {
		switch {
		case a.atime < b.atime:
			return -1
		case a.atime > b.atime:
			return 1
		}
		return 0
	})

	for _, a := range order {
		if c.cost <= target {
			return
		}
		c.cost -= c.entries[a.key].cost
		delete(c.entries, a.key)
	}
}
