package types

import "slices"

// BoundedSet is a hash set with a fixed capacity and FIFO eviction.
//
// Elements are tracked in insertion order; once the capacity is exceeded,
// the oldest-inserted elements are discarded. Re-adding an element that is
// already present is a no-op and does not refresh its position, so eviction
// follows insertion order rather than access order.
//
// BoundedSet is not safe for concurrent use.
type BoundedSet[T comparable] struct {
	capacity int
	members  Set[T]
	order    []T // insertion order queue, kept in sync with members
}

// NewBoundedSet creates an empty BoundedSet holding at most capacity elements.
//
// A non-positive capacity is treated as unbounded.
func NewBoundedSet[T comparable](capacity int) *BoundedSet[T] {
	return &BoundedSet[T]{
		capacity: capacity,
		members:  NewSet[T](),
	}
}

// Add inserts the given element, evicting the oldest-inserted elements if the
// capacity would otherwise be exceeded. Adding an element already present has
// no effect.
func (b *BoundedSet[T]) Add(value T) {
	if b.members.Contains(value) {
		return
	}

	b.members.Add(value)
	b.order = append(b.order, value)
	b.evict()
}

// Contains reports whether the given element is present.
func (b *BoundedSet[T]) Contains(value T) bool {
	return b.members.Contains(value)
}

// Delete removes the given element if present, including its entry in the
// insertion-order queue, so the queue never outgrows the set.
func (b *BoundedSet[T]) Delete(value T) {
	if !b.members.Contains(value) {
		return
	}

	b.members.Delete(value)
	if i := slices.Index(b.order, value); i >= 0 {
		b.order = slices.Delete(b.order, i, i+1)
	}
}

// Len returns the number of elements currently in the set.
func (b *BoundedSet[T]) Len() int {
	return len(b.members)
}

// evict discards oldest-inserted elements until the set fits its capacity.
func (b *BoundedSet[T]) evict() {
	if b.capacity <= 0 {
		return
	}

	for len(b.members) > b.capacity && len(b.order) > 0 {
		oldest := b.order[0]
		b.order = b.order[1:]
		b.members.Delete(oldest)
	}
}
