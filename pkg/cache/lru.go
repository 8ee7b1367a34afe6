// This module implements a fixed-capacity LRU cache.
// Eviction Policy (Least Recently Used):
// The cache keeps every entry on a doubly linked list ordered by recency: the most recently touched entry sits at the
// front, the coldest at the back. Get and Add both move the touched entry to the front. When the cache is full and a
// new key arrives, the entry at the back of the list is evicted to make room.

package cache

import (
	"maps"
	"slices"
	"sync"

	"github.com/nobletooth/pomelo/pkg/utils"
)

// lruEntry is the key-value pair stored on the recency list. The key is kept alongside the value so the eviction path
// can delete the index entry of the list's back node without a reverse lookup.
type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a thread-safe, fixed-capacity, in-memory cache with least-recently-used eviction.
type LRU[K comparable, V any] struct { // Implements Layer.
	capacity int // Maximum number of entries the cache can hold.
	// index provides lookup for an entry's list node by its key.
	index map[K]*linkedListNode[lruEntry[K, V]]
	// order is the recency list; front is hottest, back is the eviction victim.
	order *linkedList[lruEntry[K, V]]
	// evictionCallback is an optional callback function that is executed when an entry is evicted. This function is
	// run on key eviction in Add or Purge, so it must not be calling any of the cache methods to avoid deadlocks.
	evictionCallback func(K, V)
	mux              sync.Mutex // Provides thread-safety for concurrent operations on the cache.
}

var _ Layer[int, int] = (*LRU[int, int])(nil)

// NewLRU is the constructor for LRU. It initializes the cache with the given capacity and eviction callback.
// NOTE: eviction callback function must not call any of the cache methods or else we'll be having a deadlock.
func NewLRU[K comparable, V any](capacity int, evictionCallback func(K, V)) *LRU[K, V] {
	// Ensure capacity is at least 1.
	if capacity <= 0 {
		utils.RaiseInvariant("lru", "invalid_cache_capacity",
			"Invalid capacity has been given to LRU cache.", "capacity", capacity)
		capacity = 1
	}
	return &LRU[K, V]{
		capacity:         capacity,
		index:            make(map[K]*linkedListNode[lruEntry[K, V]], capacity),
		order:            new(linkedList[lruEntry[K, V]]),
		evictionCallback: evictionCallback,
	}
}

// Get retrieves a value from the cache for a given key. A hit marks the entry as the most recently used.
// The recency move mutates the list, so even reads take the full lock.
func (c *LRU[K, V]) Get(key K) (V, bool /*found*/) {
	c.mux.Lock()
	defer c.mux.Unlock()

	entry, keyExists := c.index[key]
	if !keyExists {
		return *new(V), false
	}
	c.order.MoveToFront(entry)
	return entry.Value.value, true
}

// Add inserts or updates a key-value pair in the cache. Both paths leave the entry at the front of the recency order.
// If the insert pushes the cache past its capacity, the least recently used entry is evicted. It returns true if an
// eviction occurred, and false otherwise.
func (c *LRU[K, V]) Add(key K, value V) /*evictionOccurred*/ bool {
	c.mux.Lock()
	defer c.mux.Unlock()

	// Update existing entry.
	if entry, keyExists := c.index[key]; keyExists {
		entry.Value.value = value
		c.order.MoveToFront(entry)
		return false
	}

	c.index[key] = c.order.PushFront(lruEntry[K, V]{key: key, value: value})
	if c.order.Len() <= c.capacity {
		return false
	}

	// Evict the coldest entry to restore capacity.
	victim := c.order.Back()
	delete(c.index, victim.Value.key)
	c.order.Remove(victim)
	if c.evictionCallback != nil {
		c.evictionCallback(victim.Value.key, victim.Value.value)
	}
	return true
}

// Remove drops the key from the cache and reports whether it was present. An explicit remove is a caller decision,
// not an eviction, so the eviction callback is not run.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mux.Lock()
	defer c.mux.Unlock()

	entry, keyExists := c.index[key]
	if !keyExists {
		return false
	}
	delete(c.index, key)
	c.order.Remove(entry)
	return true
}

// Len returns the number of entries currently held.
func (c *LRU[K, V]) Len() int {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.order.Len()
}

// Keys returns all keys currently in the cache, in no particular order.
func (c *LRU[K, V]) Keys() []K {
	c.mux.Lock()
	defer c.mux.Unlock()
	return slices.Collect(maps.Keys(c.index))
}

// Purge removes every entry, running the eviction callback for each one.
func (c *LRU[K, V]) Purge() {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.evictionCallback != nil {
		for node := c.order.Front(); node != nil; node = node.Next() {
			c.evictionCallback(node.Value.key, node.Value.value)
		}
	}
	c.index = make(map[K]*linkedListNode[lruEntry[K, V]], c.capacity)
	c.order = new(linkedList[lruEntry[K, V]])
}
