package core

// Ring is a fixed-capacity FIFO that evicts its oldest item when full.
// It is not safe for concurrent use; owners guard it with their own lock.
type Ring[T any] struct {
	buf     []T
	head    int
	size    int
	dropped int64
}

// NewRing allocates a ring holding at most capacity items. A non-positive
// capacity is treated as 1.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends item, evicting the oldest one when the ring is full. It
// reports whether an item was evicted.
func (r *Ring[T]) Push(item T) bool {
	capacity := len(r.buf)
	if r.size < capacity {
		r.buf[(r.head+r.size)%capacity] = item
		r.size++
		return false
	}
	r.buf[r.head] = item
	r.head = (r.head + 1) % capacity
	r.dropped++
	return true
}

// Pop removes and returns the oldest item.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	item := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) % len(r.buf)
	r.size--
	return item, true
}

// Last returns the most recently pushed item.
func (r *Ring[T]) Last() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.buf[(r.head+r.size-1)%len(r.buf)], true
}

// Items returns a copy of the retained items, oldest first.
func (r *Ring[T]) Items() []T {
	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of retained items.
func (r *Ring[T]) Len() int { return r.size }

// Cap returns the ring capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Dropped returns how many items have been evicted since creation.
func (r *Ring[T]) Dropped() int64 { return r.dropped }
