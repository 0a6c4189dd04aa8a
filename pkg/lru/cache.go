// Package lru provides a generic thread-safe LRU cache bounded by entry count
// and, optionally, by the summed size of its values.
package lru

import (
	"sync"
	"sync/atomic"
)

// entry is a doubly-linked list node holding a key-value pair.
type entry[K comparable, V any] struct {
	key   K
	value V
	size  int64
	prev  *entry[K, V]
	next  *entry[K, V]
}

// Cache is a thread-safe generic LRU cache.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	head    *entry[K, V] // Most recently used.
	tail    *entry[K, V] // Least recently used.

	maxEntries int
	maxSize    int64
	curSize    int64
	sizeFunc   func(V) int64

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithMaxBytes bounds the summed size of all values; sizeFunc measures one value.
func WithMaxBytes[K comparable, V any](maxBytes int64, sizeFunc func(V) int64) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.maxSize = maxBytes
		c.sizeFunc = sizeFunc
	}
}

// New creates a cache holding at most maxEntries values. It panics when
// maxEntries is not positive.
func New[K comparable, V any](maxEntries int, opts ...Option[K, V]) *Cache[K, V] {
	if maxEntries <= 0 {
		panic("lru: maxEntries must be positive")
	}

	c := &Cache[K, V]{
		entries:    make(map[K]*entry[K, V]),
		maxEntries: maxEntries,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Get returns the value stored under key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		var zero V

		return zero, false
	}

	c.hits.Add(1)
	c.unlink(ent)
	c.pushFront(ent)

	return ent.value, true
}

// Put stores value under key, evicting least recently used entries until it
// fits. A value larger than the whole byte budget is not stored.
func (c *Cache[K, V]) Put(key K, value V) {
	var size int64
	if c.sizeFunc != nil {
		size = c.sizeFunc(value)
	}

	if c.maxSize > 0 && size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.curSize += size - ent.size
		ent.value = value
		ent.size = size
		c.unlink(ent)
		c.pushFront(ent)
		c.evict()

		return
	}

	ent := &entry[K, V]{key: key, value: value, size: size}
	c.entries[key] = ent
	c.curSize += size
	c.pushFront(ent)
	c.evict()
}

// Clear removes every entry. Counters are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.head, c.tail = nil, nil
	c.curSize = 0
}

// evict drops tail entries while a limit is exceeded. The head entry is
// never evicted.
func (c *Cache[K, V]) evict() {
	for c.tail != c.head && (len(c.entries) > c.maxEntries || (c.maxSize > 0 && c.curSize > c.maxSize)) {
		victim := c.tail
		c.unlink(victim)
		delete(c.entries, victim.key)
		c.curSize -= victim.size
		c.evictions.Add(1)
	}
}

func (c *Cache[K, V]) pushFront(ent *entry[K, V]) {
	ent.prev = nil
	ent.next = c.head

	if c.head != nil {
		c.head.prev = ent
	}

	c.head = ent

	if c.tail == nil {
		c.tail = ent
	}
}

func (c *Cache[K, V]) unlink(ent *entry[K, V]) {
	if ent.prev != nil {
		ent.prev.next = ent.next
	} else {
		c.head = ent.next
	}

	if ent.next != nil {
		ent.next.prev = ent.prev
	} else {
		c.tail = ent.prev
	}

	ent.prev, ent.next = nil, nil
}
