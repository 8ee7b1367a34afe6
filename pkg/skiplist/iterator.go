// Iteration walks level-0 links from the head, yielding elements in ascending
// comparator order. Walks are lazy and restartable but borrow the list: they
// must not outlive a mutation. Staleness is caught through the list's
// structural version, bumped by every successful mutation; arena generations
// additionally guard against a recycled slot masquerading as the captured one.

package skiplist

import (
	"iter"

	"github.com/nobletooth/pomelo/pkg/utils"
)

// Iterate returns a lazy forward walk over the set in ascending order. Each
// call starts a fresh walk from the front. Mutating the list while ranging is
// a caller bug: the walk notices the version change before touching another
// slot, raises an invariant, and stops.
func (s *SkipList[T]) Iterate() iter.Seq[T] {
	return func(yield func(T) bool) {
		version := s.version
		for idx := s.arena.head().links[0]; idx != nilLink; {
			if s.version != version {
				utils.RaiseInvariant("skiplist", "mutated_during_range",
					"List changed underneath an active range; stopping the walk.")
				return
			}
			n := s.arena.node(idx)
			// Capture the successor before yielding; yield may run caller code.
			next := n.links[0]
			if !yield(n.value) {
				return
			}
			idx = next
		}
	}
}

// Iterator is an explicit forward cursor over the set in ascending order. A
// cursor is pinned to the list version it was created at: once the list
// mutates, Next reports false and Err returns ErrStaleIterator. The zero value
// is not usable; obtain cursors from SkipList.Iterator.
type Iterator[T any] struct {
	list    *SkipList[T]
	current int32  // Slot of the last yielded node; headSlot before the first Next.
	gen     uint32 // Generation of `current` when it was captured.
	version uint64 // List version the cursor was created at.
	err     error
}

// Iterator returns a cursor positioned before the first element.
func (s *SkipList[T]) Iterator() *Iterator[T] {
	return &Iterator[T]{list: s, current: headSlot, gen: s.arena.head().gen, version: s.version}
}

// ensureFresh runs the staleness checks shared by Next and Value. The version
// check must come first: a mutation may have truncated the arena, so the slot
// cannot be touched until the versions are known to match.
func (it *Iterator[T]) ensureFresh() bool {
	if it.err != nil {
		return false
	}
	if it.list.version != it.version {
		it.err = ErrStaleIterator
		return false
	}
	if it.list.arena.node(it.current).gen != it.gen {
		// An unchanged version with a rebound slot means the engine recycled
		// a slot without bumping the version.
		utils.RaiseInvariant("skiplist", "cursor_slot_rebound",
			"Cursor slot generation changed while the list version did not.", "slot", it.current)
		it.err = ErrStaleIterator
		return false
	}
	return true
}

// Next advances to the next element and reports whether one exists. It fails
// fast once the list has mutated since the cursor was created; Err then
// returns ErrStaleIterator.
func (it *Iterator[T]) Next() bool {
	if !it.ensureFresh() {
		return false
	}
	next := it.list.arena.node(it.current).links[0]
	if next == nilLink {
		return false
	}
	it.current = next
	it.gen = it.list.arena.node(next).gen
	return true
}

// Value returns the element under the cursor; valid only after Next returned
// true. Value applies the same staleness checks as Next: once the list has
// mutated, it yields the zero value and Err reports ErrStaleIterator.
func (it *Iterator[T]) Value() T {
	var zero T
	if it.current == headSlot {
		utils.RaiseInvariant("skiplist", "cursor_value_before_next",
			"Cursor read before the first Next call.")
		return zero
	}
	if !it.ensureFresh() {
		return zero
	}
	return it.list.arena.node(it.current).value
}

// Err explains an early stop, or returns nil after a clean exhaustion.
func (it *Iterator[T]) Err() error {
	return it.err
}
