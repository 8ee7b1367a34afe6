// Pomelo's Redis port runs on a single in-memory store: one ordered string set backed by the skip list, with a bloom
// filter in front of membership reads, plus a key-value side surface backed by a flag-configured cache layer.
// The skip list does no locking of its own, so the store serializes set access behind a RWMutex; the cache layers
// are thread-safe on their own.

package port

import (
	"errors"
	"flag"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/nobletooth/pomelo/pkg/bloom"
	"github.com/nobletooth/pomelo/pkg/cache"
	"github.com/nobletooth/pomelo/pkg/scan"
	"github.com/nobletooth/pomelo/pkg/skiplist"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filterExpectedMembers = flag.Int("filter_expected_members", 100_000,
		"The expected number of distinct set members; sizes the membership bloom filter.")
	filterFpRate = flag.Float64("filter_fp_rate", 0.01,
		"The target false positive rate of the membership bloom filter.")
	kvCacheEnabled  = flag.Bool("enable_kv_cache", true, "Enable the key-value cache surface.")
	kvCacheCapacity = flag.Int("kv_cache_capacity", 10_000,
		"The maximum number of entries each key-value cache shard holds; 0 or negative disables the cache.")
	kvCacheShardCount = flag.Int("kv_cache_shard_count", runtime.NumCPU(),
		"The number of shards in the key-value cache; 0 or negative disables the cache.")

	filterChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "set_filter_checks_total",
		Help: "Total number of membership reads answered by the bloom filter first.",
	}, []string{"outcome" /* absent | maybe */})
	kvLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kv_cache_lookups_total",
		Help: "Total number of key-value cache lookups.",
	}, []string{"status" /* hit | miss */})
	kvEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kv_cache_evictions_total",
		Help: "Total number of key-value cache evictions.",
	})
)

// newKvCache builds the key-value cache layer according to the configured flags: disabled means NoOp, one shard
// means a single LRU, more means a Sharded assembly of LRUs.
func newKvCache() cache.Layer[string, string] {
	newLayer := func() cache.Layer[string, string] {
		return cache.NewLRU[string, string](*kvCacheCapacity, func(string, string) { kvEvictions.Inc() })
	}

	var cacheLayer cache.Layer[string, string] = cache.NewNoOp[string, string]()
	if *kvCacheEnabled && *kvCacheCapacity > 0 && *kvCacheShardCount > 0 {
		if *kvCacheShardCount > 1 { // Sharded cache.
			cacheLayer = cache.NewSharded(newLayer, *kvCacheShardCount)
		} else { // Single shard cache.
			cacheLayer = newLayer()
		}
	}
	return cacheLayer
}

// SetStore is the Pomelo storage backend used by Pomelo ports, e.g. Redis.
type SetStore struct {
	mux     sync.RWMutex
	members *skiplist.SkipList[string]
	// filter answers membership reads first. A definite-absent answer skips the skip list descent entirely. The
	// filter never unlearns removed members, which stays sound because it only short-circuits the negative path.
	filter *bloom.Filter
	kv     cache.Layer[string, string]
}

// NewSetStore creates a new SetStore configured by the filter and cache flags.
func NewSetStore() (*SetStore, error) {
	members, err := skiplist.New[string]()
	if err != nil {
		return nil, fmt.Errorf("failed to create the member list: %w", err)
	}
	filter, err := bloom.NewWithEstimates(*filterExpectedMembers, *filterFpRate)
	if err != nil {
		return nil, fmt.Errorf("failed to create the membership filter: %w", err)
	}
	return &SetStore{members: members, filter: filter, kv: newKvCache()}, nil
}

// AddMember inserts the member into the ordered set and reports whether it was newly added.
func (ss *SetStore) AddMember(member string) /*added*/ bool {
	ss.mux.Lock()
	defer ss.mux.Unlock()

	if err := ss.members.Insert(member); errors.Is(err, skiplist.ErrDuplicateKey) {
		return false
	}
	ss.filter.AddString(member)
	return true
}

// RemoveMember drops the member from the ordered set and reports whether it was present.
func (ss *SetStore) RemoveMember(member string) /*removed*/ bool {
	ss.mux.Lock()
	defer ss.mux.Unlock()

	_, removed := ss.members.Remove(member)
	return removed
}

// IsMember reports whether the member is in the ordered set. The bloom filter answers first; only a maybe-present
// answer pays for the skip list descent.
func (ss *SetStore) IsMember(member string) bool {
	ss.mux.RLock()
	defer ss.mux.RUnlock()

	if !ss.filter.MightContainString(member) {
		filterChecks.WithLabelValues("absent").Inc()
		return false
	}
	filterChecks.WithLabelValues("maybe").Inc()
	return ss.members.Contains(member)
}

// Card returns the number of members in the ordered set.
func (ss *SetStore) Card() int {
	ss.mux.RLock()
	defer ss.mux.RUnlock()
	return ss.members.Len()
}

// Members returns every member in ascending order.
func (ss *SetStore) Members() []string {
	ss.mux.RLock()
	defer ss.mux.RUnlock()
	return slices.Collect(ss.members.Iterate())
}

// PopMin removes and returns the smallest member; false when the set is empty.
func (ss *SetStore) PopMin() (string, bool) {
	ss.mux.Lock()
	defer ss.mux.Unlock()
	return ss.members.PopFront()
}

// Scan walks the ordered set from the given absolute offset, examining up to `count` members, and returns the ones
// matching `pattern` plus the cursor for the next call (zero once the walk reached the end). An empty pattern
// matches everything; a non-positive count examines nothing and leaves the cursor in place.
func (ss *SetStore) Scan(cursor int, pattern string, count int) (int /*nextCursor*/, []string) {
	ss.mux.RLock()
	defer ss.mux.RUnlock()

	count = max(count, 0)
	// Collect the page first; the MATCH filter applies to examined members, not to the cursor arithmetic.
	page := make([]string, 0, count)
	position := 0
	for member := range ss.members.Iterate() {
		if position < cursor {
			position++
			continue
		}
		if len(page) == count {
			break
		}
		page = append(page, member)
		position++
	}

	nextCursor := 0
	if position < ss.members.Len() {
		nextCursor = position
	}
	if pattern == "" {
		return nextCursor, page
	}
	return nextCursor, slices.Collect(scan.MatchGlob(pattern, slices.Values(page)))
}

// SetKV stores the key-value pair on the cache surface.
func (ss *SetStore) SetKV(key, value string) {
	ss.kv.Add(key, value)
}

// GetKV looks up the key on the cache surface.
func (ss *SetStore) GetKV(key string) (string, bool) {
	value, found := ss.kv.Get(key)
	if found {
		kvLookups.WithLabelValues("hit").Inc()
	} else {
		kvLookups.WithLabelValues("miss").Inc()
	}
	return value, found
}

// DelKV drops the given keys from the cache surface and returns how many were present.
func (ss *SetStore) DelKV(keys ...string) int {
	deleted := 0
	for _, key := range keys {
		if ss.kv.Remove(key) {
			deleted++
		}
	}
	return deleted
}

// FlushAll clears the ordered set, the membership filter and the key-value surface.
func (ss *SetStore) FlushAll() {
	ss.mux.Lock()
	defer ss.mux.Unlock()

	ss.members.Clear()
	ss.filter.Clear()
	ss.kv.Purge()
}

// Close releases the store's memory. The store is memory-only, so this is a flush rather than a resource teardown.
func (ss *SetStore) Close() error {
	ss.FlushAll()
	return nil
}
