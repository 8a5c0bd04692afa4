package queue

import (
	"sync"
)

// Queue is a thread-safe FIFO of records waiting to be written in batches.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// New creates a new empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends items to the queue.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// Pop removes and returns the first item. ok is false if the queue is empty.
func (q *Queue[T]) Pop() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return item, false
	}
	item = q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty returns true if the queue has no items.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Drain removes and returns up to limit items from the front, or every item
// when limit <= 0. The returned slice is owned by the caller.
func (q *Queue[T]) Drain(limit int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	if limit > 0 && limit < n {
		n = limit
	}
	if n == 0 {
		return nil
	}

	batch := make([]T, n)
	copy(batch, q.items[:n])
	rest := make([]T, len(q.items)-n)
	copy(rest, q.items[n:])
	q.items = rest
	return batch
}
