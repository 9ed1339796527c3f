package mirror

import "sync"

// eventQueue is a thread-safe FIFO queue of change events.
//
// The queue is unbounded so that a burst of remote changes never blocks the
// collection's broadcast path; the subscription pump drains it at the
// consumer's pace.
//
// The queue uses a signal channel to enable context-aware waiting in the
// pump loop (prevents goroutine hangs on cancellation).
type eventQueue struct {
	mu     sync.Mutex
	events []ChangeEvent
	closed bool
	signal chan struct{} // Signals event availability (buffered, size 1)
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]ChangeEvent, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) enqueue(ev ChangeEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, ev)

	// Non-blocking signal - buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// tryDequeue attempts to dequeue without blocking.
// Returns (ChangeEvent{}, false) if the queue is empty.
func (q *eventQueue) tryDequeue() (ChangeEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return ChangeEvent{}, false
	}

	ev := q.events[0]

	// Nil out the slot so the backing array releases the Fields map.
	q.events[0] = ChangeEvent{}

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return ev, true
}

// drained reports whether the queue is closed with no events remaining.
func (q *eventQueue) drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.events) == 0
}

// wait returns a channel that signals when events may be available.
// The channel is closed when the queue closes, waking all waiters.
func (q *eventQueue) wait() <-chan struct{} {
	return q.signal
}

// close marks the queue closed and wakes any blocked waiters.
func (q *eventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
