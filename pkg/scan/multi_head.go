// Pomelo's ordered containers all expose lazy ascending streams, and callers sometimes hold several of them (one per
// list, one per shard). Materializing every stream just to merge them would defeat the point of lazy iteration; this
// module implements a heap-based multi-way merge that yields from all of them using constant memory.
//
// Elements pulled from multiple sequences are interleaved in ascending order. When the same element appears in more
// than one sequence, only the copy from the lowest sequence index (the highest priority) is yielded; the rest are
// discarded.

package scan

import (
	"container/heap"
	"errors"
	"iter"

	"github.com/nobletooth/pomelo/pkg/utils"
)

// heapElement represents a pulled item from sequences inside iterHeap.
type heapElement[T any] struct {
	value  T
	seqIdx int // The sequence index inside MultiHead's sequences that produced this element.
}

// iterHeap holds the iteration state over multiple sequences.
type iterHeap[T any] struct { // Implements heap.Interface.
	compare  utils.CompareFn[T]
	elements []*heapElement[T] // The latest elements pulled from sequences; one slot per live sequence.
}

var _ heap.Interface = (*iterHeap[int])(nil)

func (ih *iterHeap[T]) Len() int {
	return len(ih.elements)
}

// Less returns true when element[i] has a lesser value, or a lesser sequence index with equal values.
func (ih *iterHeap[T]) Less(i, j int) bool {
	e1, e2 := ih.elements[i], ih.elements[j]
	if cmp := ih.compare(e1.value, e2.value); cmp == 0 {
		return e1.seqIdx < e2.seqIdx
	} else if cmp < 0 {
		return true
	} else {
		return false
	}
}

// Swap changes positions of elements at i and j.
func (ih *iterHeap[T]) Swap(i, j int) {
	ih.elements[i], ih.elements[j] = ih.elements[j], ih.elements[i]
}

// Push will add the given element `x` to the heap if it matches the desired type.
func (ih *iterHeap[T]) Push(x any) {
	if element, ok := x.(*heapElement[T]); !ok {
		utils.RaiseInvariant("multi_head", "pushed_invalid_type", "An item with invalid type was pushed to heap.")
	} else if element == nil {
		utils.RaiseInvariant("multi_head", "pushed_nil_element", "A nil element was pushed to iteration heap.")
		return
	} else if len(ih.elements) == cap(ih.elements) {
		utils.RaiseInvariant("multi_head", "exceeded_capacity",
			"An element was pushed while the capacity was full.", "cap", cap(ih.elements))
	} else {
		ih.elements = append(ih.elements, element)
	}
}

// Pop returns and removes the last element in the heap.
func (ih *iterHeap[T]) Pop() any {
	lastElement := ih.elements[len(ih.elements)-1]
	ih.elements = ih.elements[:len(ih.elements)-1]
	return lastElement
}

// top returns the min-heap's minimum value without removing it. If the heap is empty, returns the zero value.
func (ih *iterHeap[T]) top() T {
	if len(ih.elements) > 0 {
		return ih.elements[0].value
	}
	return *new(T)
}

// MultiHead allows multi-way iteration over a list of ascending sequences with different priorities. Elements from
// all sequences are merged in ascending order; when sequences carry an equal element, the copy from the lowest
// sequence index wins and the rest are discarded. Note: Sequences are expected to be ascending.
func MultiHead[T any](compare utils.CompareFn[T], sequences []iter.Seq[T]) (iter.Seq[T], error) {
	if compare == nil {
		return nil, errors.New("expected a non-nil comparison function")
	}
	if len(sequences) == 0 {
		return nil, errors.New("expected non-empty sequences")
	}

	// Seed the heap with the first element of every non-empty sequence. Sequences are pulled lazily afterwards,
	// one element per yield, which keeps memory constant regardless of the sequence lengths.
	it := &iterHeap[T]{compare: compare, elements: make([]*heapElement[T], 0, len(sequences))}
	pull := make([]func() (T, bool), 0)
	stop := make([]func(), 0)
	for _, seq := range sequences {
		pullFn, stopFn := iter.Pull(seq)
		firstElem, hasAny := pullFn()
		if !hasAny { // Sequence has no elements. Would be skipped entirely.
			stopFn()
			continue
		}
		heap.Push(it, &heapElement[T]{value: firstElem, seqIdx: len(pull)})
		pull = append(pull, pullFn)
		stop = append(stop, stopFn)
	}

	// next moves the merge forward: it pops the minimum and refills the heap from the sequence that produced it.
	next := func() T {
		topElement := heap.Pop(it).(*heapElement[T])
		nextElement, hasNext := pull[topElement.seqIdx]()
		if hasNext { // Next element in the sequence enters the heap.
			heap.Push(it, &heapElement[T]{value: nextElement, seqIdx: topElement.seqIdx})
		} else { // No elements left in the sequence, stop pulling.
			stop[topElement.seqIdx]()
		}
		return topElement.value
	}

	return func(yield func(T) bool) {
		if it.Len() == 0 {
			return
		}
		// Stop all underlying sequences once iteration is done.
		defer func() {
			for _, stopFn := range stop {
				stopFn()
			}
		}()
		// Yield the first element (minimum value with the highest priority).
		nextElement := next()
		if !yield(nextElement) {
			return
		}
		for it.Len() > 0 {
			// Discard lower priority copies of the same value.
			if it.compare(it.top(), nextElement) == 0 {
				next()
				continue
			}
			// New values should be streamed.
			nextElement = next()
			if !yield(nextElement) {
				return
			}
		}
	}, nil
}
