// Package sorting implements the classic in-place comparison sorts over slices with an injected comparator:
// Bubble, Insertion, Selection, Heap, Merge and Quick, plus an IsSorted check.
//
// These exist for callers that need an explicit, predictable algorithm (or a teaching reference); for everything else
// the standard library's slices.SortFunc is the right tool and the tests here hold every algorithm to its output.
package sorting

import (
	"github.com/nobletooth/pomelo/pkg/utils"
)

// IsSorted reports whether `items` is in ascending order under `compare`.
func IsSorted[T any](items []T, compare utils.CompareFn[T]) bool {
	for i := 1; i < len(items); i++ {
		if compare(items[i], items[i-1]) < 0 {
			return false
		}
	}
	return true
}

// Bubble sorts `items` by repeatedly sweeping adjacent pairs, stopping early once a sweep makes no swap.
// O(n^2) worst case, O(n) on sorted input. Stable.
func Bubble[T any](items []T, compare utils.CompareFn[T]) {
	for end := len(items); end > 1; end-- {
		swapped := false
		for i := 1; i < end; i++ {
			if compare(items[i], items[i-1]) < 0 {
				items[i-1], items[i] = items[i], items[i-1]
				swapped = true
			}
		}
		if !swapped {
			return
		}
	}
}

// Insertion sorts `items` by growing a sorted prefix one element at a time. O(n^2) worst case, excellent on small or
// nearly sorted input. Stable.
func Insertion[T any](items []T, compare utils.CompareFn[T]) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i
		for j > 0 && compare(key, items[j-1]) < 0 {
			items[j] = items[j-1]
			j--
		}
		items[j] = key
	}
}

// Selection sorts `items` by repeatedly swapping the minimum of the unsorted tail into place.
// O(n^2) always, minimal number of swaps. Not stable.
func Selection[T any](items []T, compare utils.CompareFn[T]) {
	for i := range items {
		minIdx := i
		for j := i + 1; j < len(items); j++ {
			if compare(items[j], items[minIdx]) < 0 {
				minIdx = j
			}
		}
		if minIdx != i {
			items[i], items[minIdx] = items[minIdx], items[i]
		}
	}
}

// Heap sorts `items` by building a max-heap in place and repeatedly moving the maximum behind the shrinking heap
// boundary. O(n log n) always, constant extra memory. Not stable.
func Heap[T any](items []T, compare utils.CompareFn[T]) {
	for start := len(items)/2 - 1; start >= 0; start-- {
		siftDown(items, start, len(items), compare)
	}
	for end := len(items) - 1; end > 0; end-- {
		items[0], items[end] = items[end], items[0]
		siftDown(items, 0, end, compare)
	}
}

// siftDown restores the max-heap property for the tree rooted at `root`, treating `end` as the heap boundary.
func siftDown[T any](items []T, root, end int, compare utils.CompareFn[T]) {
	for {
		child := 2*root + 1
		if child >= end {
			return
		}
		// Pick the greater child.
		if child+1 < end && compare(items[child], items[child+1]) < 0 {
			child++
		}
		if compare(items[root], items[child]) >= 0 {
			return
		}
		items[root], items[child] = items[child], items[root]
		root = child
	}
}

// Merge sorts `items` top-down with one auxiliary buffer of the input's size. O(n log n) always. Stable.
func Merge[T any](items []T, compare utils.CompareFn[T]) {
	if len(items) < 2 {
		return
	}
	mergeSort(items, make([]T, len(items)), compare)
}

func mergeSort[T any](items, buf []T, compare utils.CompareFn[T]) {
	if len(items) < 2 {
		return
	}
	mid := len(items) / 2
	mergeSort(items[:mid], buf[:mid], compare)
	mergeSort(items[mid:], buf[mid:], compare)

	// Merge the two sorted halves into the buffer, then copy back. Ties take from the left half to keep the sort
	// stable.
	i, j, k := 0, mid, 0
	for i < mid && j < len(items) {
		if compare(items[j], items[i]) < 0 {
			buf[k] = items[j]
			j++
		} else {
			buf[k] = items[i]
			i++
		}
		k++
	}
	for i < mid {
		buf[k] = items[i]
		i++
		k++
	}
	for j < len(items) {
		buf[k] = items[j]
		j++
		k++
	}
	copy(items, buf)
}

// Quick sorts `items` with Hoare partitioning around the middle element. O(n log n) expected, O(n^2) degenerate
// worst case; the middle pivot keeps sorted and reversed inputs off the degenerate path. Not stable.
func Quick[T any](items []T, compare utils.CompareFn[T]) {
	if len(items) < 2 {
		return
	}
	p := partition(items, compare)
	Quick(items[:p+1], compare)
	Quick(items[p+1:], compare)
}

// partition splits `items` around the middle element's value and returns the boundary index: everything at or below
// it is <= the pivot value, everything above is >= it. The pivot must come from the floor midpoint; the ceiling can
// return the full range on two elements and stall the recursion.
func partition[T any](items []T, compare utils.CompareFn[T]) int {
	pivot := items[(len(items)-1)/2]
	i, j := -1, len(items)
	for {
		for i++; compare(items[i], pivot) < 0; i++ {
		}
		for j--; compare(items[j], pivot) > 0; j-- {
		}
		if i >= j {
			return j
		}
		items[i], items[j] = items[j], items[i]
	}
}
