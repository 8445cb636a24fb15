package ring

import (
	"github.com/danmuck/antbuffers/internal/buffers"
)

// Buffer is a fixed-capacity FIFO queue.
//
// Slots are allocated once in New and never resized. Consumed and cleared
// slots are zeroed so the values they referenced can be collected.
type Buffer[T any] struct {
	slots []T
	head  int // next push
	tail  int // next pop
	count int
}

// New returns an empty Buffer with n slots. It panics if n < 1.
func New[T any](n int) *Buffer[T] {
	if n < 1 {
		panic("ring: capacity must be at least 1")
	}
	return &Buffer[T]{slots: make([]T, n)}
}

// Push stores v at the head. It returns buffers.ErrOverflow when full.
func (r *Buffer[T]) Push(v T) error {
	if r.count == len(r.slots) {
		return buffers.ErrOverflow
	}
	r.slots[r.head] = v
	r.head = (r.head + 1) % len(r.slots)
	r.count++
	return nil
}

// Pop removes and returns the oldest element. It returns
// buffers.ErrUnderflow when empty.
func (r *Buffer[T]) Pop() (T, error) {
	var zero T
	if r.count == 0 {
		return zero, buffers.ErrUnderflow
	}
	v := r.slots[r.tail]
	r.slots[r.tail] = zero
	r.tail = (r.tail + 1) % len(r.slots)
	r.count--
	return v, nil
}

// Peek returns the oldest element without removing it.
func (r *Buffer[T]) Peek() (T, bool) {
	if r.count == 0 {
		var zero T
		return zero, false
	}
	return r.slots[r.tail], true
}

func (r *Buffer[T]) Len() int    { return r.count }
func (r *Buffer[T]) Cap() int    { return len(r.slots) }
func (r *Buffer[T]) Empty() bool { return r.count == 0 }
func (r *Buffer[T]) Full() bool  { return r.count == len(r.slots) }

// Clear empties the buffer and zeroes every slot.
func (r *Buffer[T]) Clear() {
	clear(r.slots)
	r.head, r.tail, r.count = 0, 0, 0
}
