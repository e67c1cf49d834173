package canopy

import (
	"sync"

	"gopkg.in/eapache/queue.v1"
)

// fifo is a mutex-guarded ring buffer safe for any number of producers.
// Consumers take the whole backlog at once so work runs outside the lock.
type fifo[T any] struct {
	mu sync.Mutex
	q  *queue.Queue
}

func newFIFO[T any]() *fifo[T] {
	return &fifo[T]{q: queue.New()}
}

func (f *fifo[T]) push(v T) {
	f.mu.Lock()
	f.q.Add(v)
	f.mu.Unlock()
}

// pushFunc builds the element while holding the queue lock, so values that
// depend on arrival order (such as sequence numbers) match queue order.
func (f *fifo[T]) pushFunc(build func() T) T {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := build()
	f.q.Add(v)
	return v
}

// drain appends every queued element to dst in insertion order and empties
// the queue.
func (f *fifo[T]) drain(dst []T) []T {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.q.Length() > 0 {
		dst = append(dst, f.q.Remove().(T))
	}
	return dst
}

func (f *fifo[T]) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.q.Length()
}
