package buffer

import "sync"

// Queue is a thread-safe FIFO ring buffer that doubles its capacity when full.
type Queue[T any] struct {
	mu     sync.Mutex
	buf    []T
	head   int // read position
	count  int
	closed bool

	// ready holds at most one pending wakeup for the consumer.
	ready chan struct{}

	// Stats
	totalPushed  int64
	totalDrained int64
	resizeCount  int
}

// Stats contains queue statistics.
type Stats struct {
	Count        int
	Capacity     int
	TotalPushed  int64
	TotalDrained int64
	ResizeCount  int
}

// NewQueue creates a queue with the given initial capacity.
func NewQueue[T any](initialCapacity int) *Queue[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &Queue[T]{
		buf:   make([]T, initialCapacity),
		ready: make(chan struct{}, 1),
	}
}

// Push appends an item and wakes the consumer. Returns false if the queue is closed.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if q.count == len(q.buf) {
		q.grow(q.count + 1)
	}
	q.buf[(q.head+q.count)%len(q.buf)] = item
	q.count++
	q.totalPushed++
	q.mu.Unlock()

	q.signal()
	return true
}

// Requeue puts items back at the head of the queue, preserving their order,
// so they are drained before anything pushed after them.
func (q *Queue[T]) Requeue(items []T) {
	if len(items) == 0 {
		return
	}

	q.mu.Lock()
	if q.count+len(items) > len(q.buf) {
		q.grow(q.count + len(items))
	}
	for i := len(items) - 1; i >= 0; i-- {
		q.head = (q.head - 1 + len(q.buf)) % len(q.buf)
		q.buf[q.head] = items[i]
		q.count++
	}
	q.totalDrained -= int64(len(items))
	q.mu.Unlock()

	q.signal()
}

// TryPop removes and returns the oldest item without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.count == 0 {
		return zero, false
	}
	item := q.buf[q.head]
	q.buf[q.head] = zero // Clear reference for GC
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	q.totalDrained++
	return item, true
}

// Drain removes up to max items (all items if max <= 0) in FIFO order.
func (q *Queue[T]) Drain(max int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return nil
	}

	n := q.count
	if max > 0 && max < n {
		n = max
	}

	var zero T
	result := make([]T, n)
	for i := 0; i < n; i++ {
		result[i] = q.buf[q.head]
		q.buf[q.head] = zero
		q.head = (q.head + 1) % len(q.buf)
	}
	q.count -= n
	q.totalDrained += int64(n)

	// More left than we took: keep the consumer awake.
	if q.count > 0 {
		select {
		case q.ready <- struct{}{}:
		default:
		}
	}
	return result
}

// Ready returns a channel that receives a value after items have been pushed.
// A single receive may stand for many pushes.
func (q *Queue[T]) Ready() <-chan struct{} {
	return q.ready
}

// Close stops the queue from accepting new items. Queued items can still be drained.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Stats returns queue statistics.
func (q *Queue[T]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Count:        q.count,
		Capacity:     len(q.buf),
		TotalPushed:  q.totalPushed,
		TotalDrained: q.totalDrained,
		ResizeCount:  q.resizeCount,
	}
}

func (q *Queue[T]) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// grow doubles capacity until it fits need items. Must be called with lock held.
func (q *Queue[T]) grow(need int) {
	newCapacity := len(q.buf) * 2
	for newCapacity < need {
		newCapacity *= 2
	}
	newBuf := make([]T, newCapacity)

	if q.count > 0 {
		end := q.head + q.count
		if end <= len(q.buf) {
			copy(newBuf, q.buf[q.head:end])
		} else {
			// Wrapped: [head...len) + [0...rest)
			n := copy(newBuf, q.buf[q.head:])
			copy(newBuf[n:], q.buf[:q.count-n])
		}
	}

	q.buf = newBuf
	q.head = 0
	q.resizeCount++
}
