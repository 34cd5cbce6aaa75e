// Package queue provides the bounded FIFO buffer backing both telemetry
// subsystems. Overflow is handled by drop-oldest eviction so capture never
// blocks and never fails.
package queue

// Ring is a fixed-capacity FIFO ring buffer. It is not safe for concurrent
// use; the owning pipeline serializes access.
type Ring[T any] struct {
	buf     []T
	head    int
	length  int
	dropped uint64
}

// New creates a ring holding at most capacity elements. Capacities below one
// are raised to one.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v at the tail. When the ring is full the oldest element is
// evicted to make room; the evicted element is returned.
func (r *Ring[T]) Push(v T) (evicted T, wasEvicted bool) {
	if r.length == len(r.buf) {
		evicted = r.buf[r.head]
		r.buf[r.head] = v
		r.head = (r.head + 1) % len(r.buf)
		r.dropped++
		return evicted, true
	}
	r.buf[(r.head+r.length)%len(r.buf)] = v
	r.length++
	return evicted, false
}

// PopBatch removes and returns up to n elements from the head, oldest first.
func (r *Ring[T]) PopBatch(n int) []T {
	if n > r.length {
		n = r.length
	}
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	var zero T
	for i := 0; i < n; i++ {
		out[i] = r.buf[r.head]
		r.buf[r.head] = zero
		r.head = (r.head + 1) % len(r.buf)
	}
	r.length -= n
	return out
}

// PushFront reinserts a previously popped batch at the head in its original
// order, so a failed delivery sorts ahead of anything enqueued meanwhile.
// If the batch no longer fits, elements are dropped from the batch's own
// front, keeping the drop-oldest policy intact.
func (r *Ring[T]) PushFront(batch []T) {
	if overflow := r.length + len(batch) - len(r.buf); overflow > 0 {
		batch = batch[overflow:]
		r.dropped += uint64(overflow)
	}
	for i := len(batch) - 1; i >= 0; i-- {
		r.head = (r.head - 1 + len(r.buf)) % len(r.buf)
		r.buf[r.head] = batch[i]
		r.length++
	}
}

// Len returns the number of buffered elements.
func (r *Ring[T]) Len() int {
	return r.length
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// Dropped returns how many elements eviction has discarded so far.
func (r *Ring[T]) Dropped() uint64 {
	return r.dropped
}

// Snapshot returns a copy of the buffered elements, oldest first.
func (r *Ring[T]) Snapshot() []T {
	out := make([]T, r.length)
	for i := 0; i < r.length; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// Each visits buffered elements oldest first until fn returns false.
func (r *Ring[T]) Each(fn func(v T) bool) {
	for i := 0; i < r.length; i++ {
		if !fn(r.buf[(r.head+i)%len(r.buf)]) {
			return
		}
	}
}
