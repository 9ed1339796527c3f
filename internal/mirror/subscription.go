package mirror

import (
	"context"
	"sync"
)

// Subscription is a cancellable change stream handle.
//
// Events are delivered strictly in arrival order on the channel returned by
// Events. The channel is closed when the subscription ends, whether by
// Close, by context cancellation, or by the collection shutting down.
// Closing is guaranteed to deregister the underlying listener: no events
// are delivered afterwards.
type Subscription struct {
	q      *eventQueue
	out    chan ChangeEvent
	cancel func()        // deregisters from the collection
	done   chan struct{} // closed by Close; unblocks a mid-send pump
	once   sync.Once
}

func newSubscription(cancel func()) *Subscription {
	return &Subscription{
		q:      newEventQueue(),
		out:    make(chan ChangeEvent),
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Events returns the ordered change stream.
func (s *Subscription) Events() <-chan ChangeEvent {
	return s.out
}

// Close deregisters the listener and ends the stream, even if the consumer
// has stopped receiving: the pump goroutine always terminates. Safe to call
// multiple times. Events queued but not yet received may be dropped.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		s.cancel()
		s.q.close()
		close(s.done)
	})
	return nil
}

// pump moves events from the internal queue to the out channel until the
// subscription closes or ctx is cancelled. Runs on its own goroutine,
// started by Subscribe.
func (s *Subscription) pump(ctx context.Context) {
	defer close(s.out)

	for {
		if ev, ok := s.q.tryDequeue(); ok {
			select {
			case s.out <- ev:
				continue
			case <-s.done:
				return
			case <-ctx.Done():
				s.Close()
				return
			}
		}

		if s.q.drained() {
			return
		}

		select {
		case <-s.done:
			return
		case <-ctx.Done():
			s.Close()
			return
		case <-s.q.wait():
		}
	}
}
