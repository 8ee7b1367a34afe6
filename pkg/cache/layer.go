// Pomelo keeps a key-value side surface next to the ordered set, backed by a
// bounded in-memory cache. This module defines the interface all cache
// implementations share, so a single LRU, a sharded assembly of them, or a
// disabled cache can be swapped behind the same API.

package cache

// Layer defines the interface for a generic key-value cache. This allows different cache implementations
// (e.g., LRU, NoOp) to be used directly or as shards within a Sharded.
type Layer[K comparable, V any] interface {
	// Get returns value from cache for given key and a boolean indicating whether key was found.
	Get(key K) (V, bool)
	// Add inserts or updates a key-value pair. It returns true if an item was evicted to make room.
	Add(key K, value V) bool
	// Remove drops the key from the cache and reports whether it was present.
	Remove(key K) bool
	Len() int  // Returns the number of items currently in the cache.
	Keys() []K // Returns a slice of all keys currently in the cache.
	Purge()    // Removes all items from the cache.
}

// NoOp is a cache layer that doesn't store any items.
// It is used when cache is disabled.
type NoOp[K comparable, V any] struct { // Implements Layer.
}

var _ Layer[int, int] = (*NoOp[int, int])(nil)

// NewNoOp returns a no-operation cache layer that does not store any items.
func NewNoOp[K comparable, V any]() *NoOp[K, V] {
	return &NoOp[K, V]{}
}

// Get always returns false, indicating the key is not found.
func (n *NoOp[K, V]) Get(key K) (V, bool) {
	var zero V
	return zero, false
}

// Add does nothing and always returns false, indicating no item was evicted.
func (n *NoOp[K, V]) Add(key K, value V) bool {
	return false
}

// Remove does nothing and always returns false, as no key is ever present.
func (n *NoOp[K, V]) Remove(key K) bool {
	return false
}

// Len always returns zero, as nothing is ever stored.
func (n *NoOp[K, V]) Len() int {
	return 0
}

// Keys always returns nil, as there are no keys stored.
func (n *NoOp[K, V]) Keys() []K {
	return nil
}

// Purge does nothing, as there are no items to remove.
func (n *NoOp[K, V]) Purge() {}
