// Package cache provides a small generic LRU cache used to share decoded
// assets between scene builds.
package cache

import "sync"

// Cache is a thread-safe LRU cache. When it holds more than its limit the
// least recently used entries are evicted.
//
// Cache must not be copied after creation.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*node[K, V]
	lru     list[K, V]
	limit   int

	hits, misses, evictions uint64
}

// New creates a cache holding at most limit entries. A limit of 0 means
// unlimited.
func New[K comparable, V any](limit int) *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]*node[K, V]), limit: limit}
}

// Get returns the value for key and marks it recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.lru.moveToFront(n)
	return n.value, true
}

// Set stores value under key.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

// GetOrLoad returns the cached value for key, calling load on a miss.
// Errors from load are returned and nothing is cached. load runs under the
// cache lock, so concurrent callers never load the same key twice.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.entries[key]; ok {
		c.hits++
		c.lru.moveToFront(n)
		return n.value, nil
	}
	c.misses++
	v, err := load()
	if err != nil {
		var zero V
		return zero, err
	}
	c.set(key, v)
	return v, nil
}

// Delete removes key and reports whether it was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.entries[key]
	if ok {
		c.lru.remove(n)
		delete(c.entries, key)
	}
	return ok
}

// Clear removes every entry. Counters are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*node[K, V])
	c.lru = list[K, V]{}
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{Len: len(c.entries), Limit: c.limit, Hits: c.hits, Misses: c.misses, Evictions: c.evictions}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Caller must hold c.mu.
func (c *Cache[K, V]) set(key K, value V) {
	if n, ok := c.entries[key]; ok {
		n.value = value
		c.lru.moveToFront(n)
		return
	}
	n := &node[K, V]{key: key, value: value}
	c.entries[key] = n
	c.lru.pushFront(n)
	for c.limit > 0 && len(c.entries) > c.limit {
		old := c.lru.tail
		c.lru.remove(old)
		delete(c.entries, old.key)
		c.evictions++
	}
}

// Stats contains cache counters.
type Stats struct {
	Len       int
	Limit     int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	// HitRate is Hits / (Hits + Misses), or 0 before the first lookup.
	HitRate float64
}
