package cache

import (
	"container/list"
	"sync"
)

type entry[K comparable, V any] struct {
	key     K
	value   V
	element *list.Element
}

// LRU is a bounded map that evicts the least recently used key first.
// It is safe for concurrent use.
type LRU[K comparable, V any] struct {
	capacity int
	entries  map[K]*entry[K, V]
	order    *list.List
	mu       sync.Mutex

	hits   int
	misses int
}

// NewLRU creates a cache holding at most capacity entries.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[K, V]{
		capacity: capacity,
		entries:  make(map[K]*entry[K, V]),
		order:    list.New(),
	}
}

// Get returns the value stored under key and marks it recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.MoveToFront(e.element)
	return e.value, true
}

// Put stores value under key, evicting the oldest entry when full.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.order.MoveToFront(e.element)
		return
	}

	e := &entry[K, V]{key: key, value: value}
	e.element = c.order.PushFront(e)
	c.entries[key] = e

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.remove(oldest.Value.(*entry[K, V]))
	}
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. compute runs without the lock held.
func (c *LRU[K, V]) GetOrCompute(key K, compute func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute()
	c.Put(key, v)
	return v
}

// Delete removes key.
func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.remove(e)
	}
}

// Purge drops every entry.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*entry[K, V])
	c.order.Init()
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counts since creation.
func (c *LRU[K, V]) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *LRU[K, V]) remove(e *entry[K, V]) {
	c.order.Remove(e.element)
	delete(c.entries, e.key)
}
