package port

import (
	"fmt"
	"testing"

	"github.com/nobletooth/pomelo/pkg/cache"
	"github.com/nobletooth/pomelo/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKvCache(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		utils.SetTestFlag(t, "enable_kv_cache", "false")
		_, isNoOp := newKvCache().(*cache.NoOp[string, string])
		assert.True(t, isNoOp, "Expected a no-op cache when the key-value surface is disabled")
	})
	t.Run("zero_capacity", func(t *testing.T) {
		utils.SetTestFlag(t, "kv_cache_capacity", "0")
		_, isNoOp := newKvCache().(*cache.NoOp[string, string])
		assert.True(t, isNoOp, "Expected a no-op cache when the capacity is zero")
	})
	t.Run("single_shard", func(t *testing.T) {
		utils.SetTestFlag(t, "kv_cache_shard_count", "1")
		_, isSingleShard := newKvCache().(*cache.LRU[string, string])
		assert.True(t, isSingleShard, "Expected a single shard cache")
	})
	t.Run("multi_shard", func(t *testing.T) {
		utils.SetTestFlag(t, "kv_cache_shard_count", "8")
		_, isMultiShard := newKvCache().(*cache.Sharded[string, string])
		assert.True(t, isMultiShard, "Expected a multi shard cache")
	})
}

func TestNewSetStore_RejectsBadFilterFlags(t *testing.T) {
	t.Run("zero_fp_rate", func(t *testing.T) {
		utils.SetTestFlag(t, "filter_fp_rate", "0")
		_, err := NewSetStore()
		assert.Error(t, err)
	})
	t.Run("zero_expected_members", func(t *testing.T) {
		utils.SetTestFlag(t, "filter_expected_members", "0")
		_, err := NewSetStore()
		assert.Error(t, err)
	})
}

func TestSetStore_OrderedSet(t *testing.T) {
	store, err := NewSetStore()
	require.NoError(t, err)

	t.Run("add", func(t *testing.T) {
		assert.True(t, store.AddMember("banana"))
		assert.True(t, store.AddMember("apple"))
		assert.True(t, store.AddMember("cherry"))
		assert.False(t, store.AddMember("apple"), "A duplicate member must not be re-added")
	})
	t.Run("membership", func(t *testing.T) {
		assert.True(t, store.IsMember("apple"))
		assert.False(t, store.IsMember("durian"))
	})
	t.Run("cardinality", func(t *testing.T) {
		assert.Equal(t, 3, store.Card())
	})
	t.Run("members_are_ascending", func(t *testing.T) {
		assert.Equal(t, []string{"apple", "banana", "cherry"}, store.Members())
	})
	t.Run("remove", func(t *testing.T) {
		assert.True(t, store.RemoveMember("banana"))
		assert.False(t, store.RemoveMember("banana"), "A removed member must not be removed twice")
		assert.False(t, store.IsMember("banana"))
		assert.Equal(t, 2, store.Card())
	})
	t.Run("re_add_removed_member", func(t *testing.T) {
		assert.True(t, store.AddMember("banana"))
		assert.True(t, store.IsMember("banana"))
	})
	t.Run("pop_min", func(t *testing.T) {
		member, found := store.PopMin()
		assert.True(t, found)
		assert.Equal(t, "apple", member)
		member, found = store.PopMin()
		assert.True(t, found)
		assert.Equal(t, "banana", member)
		member, found = store.PopMin()
		assert.True(t, found)
		assert.Equal(t, "cherry", member)
		_, found = store.PopMin()
		assert.False(t, found, "Popping an empty set must report absence")
	})
	t.Run("flush_all", func(t *testing.T) {
		assert.True(t, store.AddMember("apple"))
		store.SetKV("color", "red")
		store.FlushAll()
		assert.Equal(t, 0, store.Card())
		assert.Empty(t, store.Members())
		_, found := store.GetKV("color")
		assert.False(t, found)
	})
}

func TestSetStore_KeyValue(t *testing.T) {
	store, err := NewSetStore()
	require.NoError(t, err)

	t.Run("set_and_get", func(t *testing.T) {
		store.SetKV("k1", "v1")
		store.SetKV("k2", "v2")
		value, found := store.GetKV("k1")
		assert.True(t, found)
		assert.Equal(t, "v1", value)
	})
	t.Run("overwrite", func(t *testing.T) {
		store.SetKV("k1", "v1-updated")
		value, found := store.GetKV("k1")
		assert.True(t, found)
		assert.Equal(t, "v1-updated", value)
	})
	t.Run("missing_key", func(t *testing.T) {
		_, found := store.GetKV("missing")
		assert.False(t, found)
	})
	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, 2, store.DelKV("k1", "k2", "missing"))
		_, found := store.GetKV("k1")
		assert.False(t, found)
	})
}

func TestSetStore_Scan(t *testing.T) {
	store, err := NewSetStore()
	require.NoError(t, err)
	for i := 0; i < 26; i++ {
		require.True(t, store.AddMember(fmt.Sprintf("member-%02d", i)))
	}

	t.Run("pages_walk_the_whole_set", func(t *testing.T) {
		nextCursor, page := store.Scan(0 /*cursor*/, "" /*pattern*/, 10 /*count*/)
		assert.Equal(t, 10, nextCursor)
		assert.Len(t, page, 10)
		assert.Equal(t, "member-00", page[0])
		assert.Equal(t, "member-09", page[9])

		nextCursor, page = store.Scan(nextCursor, "", 10)
		assert.Equal(t, 20, nextCursor)
		assert.Equal(t, "member-10", page[0])

		nextCursor, page = store.Scan(nextCursor, "", 10)
		assert.Equal(t, 0, nextCursor, "An exhausted walk must return the zero cursor")
		assert.Len(t, page, 6)
		assert.Equal(t, "member-25", page[5])
	})
	t.Run("count_larger_than_set", func(t *testing.T) {
		nextCursor, page := store.Scan(0, "", 100)
		assert.Equal(t, 0, nextCursor)
		assert.Len(t, page, 26)
	})
	t.Run("cursor_beyond_the_end", func(t *testing.T) {
		nextCursor, page := store.Scan(100, "", 10)
		assert.Equal(t, 0, nextCursor)
		assert.Empty(t, page)
	})
	t.Run("match_filters_the_page", func(t *testing.T) {
		nextCursor, page := store.Scan(0, "member-0?", 100)
		assert.Equal(t, 0, nextCursor)
		assert.Len(t, page, 10)
	})
	t.Run("match_does_not_change_cursor_arithmetic", func(t *testing.T) {
		// The pattern filters examined members only; a page can come back empty while the walk continues.
		nextCursor, page := store.Scan(0, "member-1*", 10)
		assert.Equal(t, 10, nextCursor)
		assert.Empty(t, page)

		var matches []string
		cursor := 0
		for {
			var page []string
			cursor, page = store.Scan(cursor, "member-1*", 10)
			matches = append(matches, page...)
			if cursor == 0 {
				break
			}
		}
		assert.Len(t, matches, 10)
		assert.Equal(t, "member-10", matches[0])
		assert.Equal(t, "member-19", matches[9])
	})
	t.Run("invalid_pattern_matches_nothing", func(t *testing.T) {
		nextCursor, page := store.Scan(0, "[", 10)
		assert.Equal(t, 10, nextCursor, "A bad pattern must not stall the walk")
		assert.Empty(t, page)
	})
	t.Run("non_positive_count_examines_nothing", func(t *testing.T) {
		nextCursor, page := store.Scan(5 /*cursor*/, "" /*pattern*/, -3 /*count*/)
		assert.Equal(t, 5, nextCursor, "A non-positive count must leave the cursor in place")
		assert.Empty(t, page)

		nextCursor, page = store.Scan(5, "", 0)
		assert.Equal(t, 5, nextCursor)
		assert.Empty(t, page)
	})
}
