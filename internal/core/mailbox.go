package core

import (
	"context"
	"sync"
)

// Mailbox is a bounded FIFO shared between producers and a single consumer.
// When full, Put evicts the oldest item instead of blocking the producer.
type Mailbox[T any] struct {
	mu     sync.Mutex
	ring   *Ring[T]
	notify chan struct{}
	closed bool
}

// NewMailbox allocates a mailbox holding at most capacity items.
func NewMailbox[T any](capacity int) *Mailbox[T] {
	return &Mailbox[T]{ring: NewRing[T](capacity), notify: make(chan struct{}, 1)}
}

// Put enqueues item and reports whether an older item was dropped. Items
// put after Close are discarded and reported as dropped.
func (m *Mailbox[T]) Put(item T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return true
	}
	evicted := m.ring.Push(item)
	m.mu.Unlock()
	select {
	case m.notify <- struct{}{}:
	default:
	}
	return evicted
}

// Take blocks until an item is available. It returns false once ctx is done
// or the mailbox is closed and drained.
func (m *Mailbox[T]) Take(ctx context.Context) (T, bool) {
	for {
		m.mu.Lock()
		item, ok := m.ring.Pop()
		closed := m.closed
		m.mu.Unlock()
		if ok {
			return item, true
		}
		if closed {
			var zero T
			return zero, false
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, false
		case <-m.notify:
		}
	}
}

// Close stops accepting items. Items already queued can still be taken.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Len returns the number of queued items.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Len()
}

// Dropped returns how many items were evicted to make room.
func (m *Mailbox[T]) Dropped() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Dropped()
}
