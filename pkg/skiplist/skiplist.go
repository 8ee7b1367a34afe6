// Package skiplist provides a probabilistic ordered set backed by a skip list.
//
// A skip list maintains multiple forward-link layers over a sorted chain of
// nodes. Each element is promoted to higher levels with probability p, forming
// express lanes that let searches skip over large ranges. Every operation
// starts at the head sentinel's highest level and descends: it advances while
// the next element is still smaller than the target, then drops one level, so
// contains, insert, and remove all share the same descent.
//
// Properties
// - Expected time for Contains/Insert/Remove: O(log n), worst case O(n)
// - Space: O(n); nodes live in a dense arena addressed by slot indices
// - Probabilistic balancing controlled by continuation probability p (default 0.5)
// - Elements are unique under the injected comparator; iteration is ascending
//
// The structure is not internally synchronized. It is single-owner: concurrent
// mutation without external locking is undefined, and callers wanting shared
// access must serialize the whole structure themselves.
package skiplist

import (
	"cmp"
	"errors"
	"fmt"
	"iter"

	"github.com/nobletooth/pomelo/pkg/utils"
)

var (
	// ErrInvalidParameter rejects bad construction inputs before any node is
	// allocated; it is never returned after construction succeeds.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDuplicateKey rejects inserting an element already in the set; the
	// structure is left untouched and the caller may treat it as a no-op.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrStaleIterator reports a cursor outliving a mutation of its list.
	ErrStaleIterator = errors.New("iterator invalidated by a later mutation")
)

// settings collects construction options before the list is built.
type settings struct {
	levelBound    int  // Only meaningful when levelBoundSet.
	levelBoundSet bool // An explicit bound, however invalid, never falls back to the default.
	generator     LevelGenerator
}

// Option configures a list at construction time.
type Option func(*settings)

// WithLevelBound caps tower heights at `bound` levels. Mutually exclusive with
// WithLevelGenerator, whose generator carries its own bound.
func WithLevelBound(bound int) Option {
	return func(s *settings) { s.levelBound, s.levelBoundSet = bound, true }
}

// WithLevelGenerator substitutes the level distribution; the generator's
// LevelBound replaces the default bound.
func WithLevelGenerator(generator LevelGenerator) Option {
	return func(s *settings) { s.generator = generator }
}

// SkipList is an ordered set of unique elements with logarithmic expected
// lookup, insertion, and removal. The zero value is not usable; construct with
// New or NewFunc. Not safe for concurrent use.
type SkipList[T any] struct {
	arena     *arena[T]
	compare   utils.CompareFn[T]
	generator LevelGenerator
	length    int    // Count of real nodes, maintained incrementally.
	version   uint64 // Bumped on every successful mutation; outstanding iterators notice.
}

// New builds an empty set ordered by the element type's natural order.
func New[T cmp.Ordered](opts ...Option) (*SkipList[T], error) {
	return NewFunc[T](cmp.Compare, opts...)
}

// NewFunc builds an empty set ordered by `compare`, which must be a total
// order over T. Construction is the only point where ErrInvalidParameter can
// surface; every later operation works on a validated structure.
func NewFunc[T any](compare utils.CompareFn[T], opts ...Option) (*SkipList[T], error) {
	if compare == nil {
		return nil, fmt.Errorf("%w: nil comparator", ErrInvalidParameter)
	}
	var conf settings
	for _, opt := range opts {
		opt(&conf)
	}
	if conf.generator != nil && conf.levelBoundSet {
		return nil, fmt.Errorf("%w: level bound and level generator are mutually exclusive", ErrInvalidParameter)
	}
	generator := conf.generator
	if generator == nil {
		bound := DefaultLevelBound
		if conf.levelBoundSet {
			bound = conf.levelBound
		}
		var err error
		if generator, err = NewGeometricLevelGenerator(bound, DefaultP); err != nil {
			return nil, err
		}
	}
	bound := generator.LevelBound()
	if bound < 1 {
		return nil, fmt.Errorf("%w: level generator reports bound %d", ErrInvalidParameter, bound)
	}
	return &SkipList[T]{arena: newArena[T](bound), compare: compare, generator: generator}, nil
}

// levelBound is the head tower's height; descents start one level below it.
func (s *SkipList[T]) levelBound() int {
	return len(s.arena.head().links)
}

// Len returns the number of elements in the set.
func (s *SkipList[T]) Len() int {
	return s.length
}

// IsEmpty reports whether the set holds no elements.
func (s *SkipList[T]) IsEmpty() bool {
	return s.length == 0
}

// Contains reports whether `value` is in the set. The descent advances at each
// level while the next element is smaller than the target, probes the next
// element for equality, and otherwise drops a level.
func (s *SkipList[T]) Contains(value T) bool {
	currentIdx := headSlot
	for level := s.levelBound() - 1; level >= 0; level-- {
		for next := s.arena.node(currentIdx).links[level]; next != nilLink &&
			s.compare(s.arena.node(next).value, value) < 0; next = s.arena.node(currentIdx).links[level] {
			currentIdx = next
		}
		if next := s.arena.node(currentIdx).links[level]; next != nilLink &&
			s.compare(s.arena.node(next).value, value) == 0 {
			return true
		}
	}
	return false
}

// findPredecessors runs the shared descent while recording the last slot
// visited per level, i.e. the node immediately preceding the target position
// at that level. The returned slice has one slot index per level.
func (s *SkipList[T]) findPredecessors(value T) []int32 {
	preds := make([]int32, s.levelBound())
	currentIdx := headSlot
	for level := s.levelBound() - 1; level >= 0; level-- {
		for next := s.arena.node(currentIdx).links[level]; next != nilLink &&
			s.compare(s.arena.node(next).value, value) < 0; next = s.arena.node(currentIdx).links[level] {
			currentIdx = next
		}
		preds[level] = currentIdx
	}
	return preds
}

// Insert adds `value` to the set or fails with ErrDuplicateKey if an equal
// element is already present, leaving the structure unchanged. A successful
// insert draws the node's level exactly once, re-runs the descent to record a
// predecessor per level, and splices the node in at every level from 0 up to
// and including its drawn level.
func (s *SkipList[T]) Insert(value T) error {
	if s.Contains(value) {
		return fmt.Errorf("%w: equal element already present", ErrDuplicateKey)
	}

	drawnLevel := s.generator.Random()
	bound := s.levelBound()
	// In-contract draws are 1..bound-1, or exactly 1 on a single-level list.
	if maxDraw := max(1, bound-1); drawnLevel < 1 || drawnLevel > maxDraw {
		utils.RaiseInvariant("skiplist", "level_out_of_contract",
			"Level generator drew outside its contract.", "drawn", drawnLevel, "bound", bound)
		drawnLevel = max(1, min(drawnLevel, maxDraw))
	}
	// The node occupies every level from 0 through its drawn level, so the
	// tower height is drawnLevel+1, never exceeding the head's height.
	height := min(drawnLevel+1, bound)

	preds := s.findPredecessors(value)
	newIdx := s.arena.alloc(value, height)
	// Resolve slot pointers only after alloc; growing the arena moves slots.
	for level := 0; level < height; level++ {
		pred := s.arena.node(preds[level])
		s.arena.node(newIdx).links[level] = pred.links[level]
		pred.links[level] = newIdx
	}
	s.length++
	s.version++
	return nil
}

// Remove takes `value` out of the set and returns the stored element. Absence
// is an expected outcome, reported as (zero, false), never as an error. The
// node is unlinked at exactly the levels where the recorded predecessor still
// points at it, which are the levels of its own tower.
func (s *SkipList[T]) Remove(value T) (T, bool) {
	var zero T
	preds := s.findPredecessors(value)
	targetIdx := s.arena.node(preds[0]).links[0]
	if targetIdx == nilLink || s.compare(s.arena.node(targetIdx).value, value) != 0 {
		return zero, false
	}
	target := s.arena.node(targetIdx)
	for level := range preds {
		if pred := s.arena.node(preds[level]); pred.links[level] == targetIdx {
			pred.links[level] = target.links[level]
		}
	}
	removed := target.value
	s.arena.release(targetIdx)
	s.length--
	s.version++
	return removed, true
}

// PeekFront returns the smallest element without removing it, in O(1).
func (s *SkipList[T]) PeekFront() (T, bool) {
	if front := s.arena.head().links[0]; front != nilLink {
		return s.arena.node(front).value, true
	}
	var zero T
	return zero, false
}

// PopFront removes and returns the smallest element, equivalent to removing
// the PeekFront result.
func (s *SkipList[T]) PopFront() (T, bool) {
	front, ok := s.PeekFront()
	if !ok {
		return front, false
	}
	return s.Remove(front)
}

// Clear drops every element. The arena is reset in one pass and the head tower
// relinked to nothing; clearing never loops PopFront, which would re-descend
// once per element.
func (s *SkipList[T]) Clear() {
	s.arena.reset()
	head := s.arena.head()
	for level := range head.links {
		head.links[level] = nilLink
	}
	s.length = 0
	s.version++
}

// Extend inserts every element of `values` in order, stopping at the first
// failed insert and returning its error.
func (s *SkipList[T]) Extend(values iter.Seq[T]) error {
	for value := range values {
		if err := s.Insert(value); err != nil {
			return err
		}
	}
	return nil
}

// Collect builds a naturally ordered set from the given sequence.
func Collect[T cmp.Ordered](values iter.Seq[T]) (*SkipList[T], error) {
	list, err := New[T]()
	if err != nil {
		return nil, err
	}
	if err := list.Extend(values); err != nil {
		return nil, err
	}
	return list, nil
}
