// Nodes live in a dense slot arena instead of being linked by pointers. Every
// link between nodes is a slot index, the head sentinel permanently occupies
// slot 0, and released slots go through a free list before reuse. Each slot
// carries a generation counter bumped on release, so an index captured before a
// removal can never silently rebind to an unrelated node that later lands in
// the same slot.

package skiplist

// nilLink marks the end of a level; no node occupies a negative slot.
const nilLink int32 = -1

// headSlot is the arena slot of the valueless head sentinel.
const headSlot int32 = 0

// node is one tower: a value plus one successor link per level it occupies.
// The tower is contiguous from level 0, so len(links) is the node's height.
// The head sentinel holds the zero value and a links slice sized to the level
// bound; it is never released and never the target of a link.
type node[T any] struct {
	value T
	gen   uint32  // Incarnation of this slot; release bumps it.
	links []int32 // Successor slot per level, nilLink where a level ends.
}

// arena is the dense slot store backing one skip list. Index-based links make
// teardown trivial and remove the dangling-reference hazards of a pointer
// tower: a released slot is recycled through the free list, and its bumped
// generation invalidates any index captured beforehand.
type arena[T any] struct {
	slots []node[T]
	free  []int32 // Released slot indices, reused before the arena grows.
}

// newArena builds an arena holding only the head sentinel with a tower of
// `levelBound` empty levels.
func newArena[T any](levelBound int) *arena[T] {
	a := &arena[T]{slots: make([]node[T], 1, 16)}
	a.slots[headSlot].links = newLinks(levelBound)
	return a
}

// newLinks allocates a tower of `height` levels, all ending immediately.
func newLinks(height int) []int32 {
	links := make([]int32, height)
	for i := range links {
		links[i] = nilLink
	}
	return links
}

// alloc places `value` in a recycled or fresh slot with a tower of `height`
// levels and returns the slot index. The slot's generation survives reuse so
// indices captured before the previous release stay detectable.
func (a *arena[T]) alloc(value T, height int) int32 {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		slot := &a.slots[idx]
		slot.value = value
		slot.links = newLinks(height)
		return idx
	}
	a.slots = append(a.slots, node[T]{value: value, links: newLinks(height)})
	return int32(len(a.slots) - 1)
}

// release clears the slot at `idx` and queues it for reuse. The value is
// zeroed so the element it held can be collected.
func (a *arena[T]) release(idx int32) {
	slot := &a.slots[idx]
	var zero T
	slot.value = zero
	slot.links = nil
	slot.gen++
	a.free = append(a.free, idx)
}

// node resolves a slot index. Callers must not hold the returned pointer
// across an alloc; growing the arena may move every slot.
func (a *arena[T]) node(idx int32) *node[T] {
	return &a.slots[idx]
}

// head resolves the sentinel slot.
func (a *arena[T]) head() *node[T] {
	return &a.slots[headSlot]
}

// reset drops every node above the head in a single pass and empties the free
// list. Callers own relinking the surviving head tower.
func (a *arena[T]) reset() {
	clear(a.slots[1:]) // Zero the slots so the dropped elements can be collected.
	a.slots = a.slots[:1]
	a.free = a.free[:0]
}
