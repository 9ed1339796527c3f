package store

import (
	"sync"

	"github.com/smartshop/smartshop/internal/product"
)

// Subscription delivers full product snapshots after each store mutation.
//
// The channel has a buffer of one and coalesces: if a subscriber is slow,
// intermediate snapshots are replaced by the latest one rather than queued.
// Subscribers therefore always converge on the current state but may not
// observe every intermediate state.
type Subscription struct {
	ch     chan []product.Product
	cancel func()
	once   sync.Once
}

// C returns the snapshot channel. It is closed when the subscription is
// closed, either by Close or by the store shutting down.
func (sub *Subscription) C() <-chan []product.Product {
	return sub.ch
}

// Close cancels the subscription and releases its channel.
// Safe to call multiple times.
func (sub *Subscription) Close() {
	sub.once.Do(sub.cancel)
}

// watcher fans mutations out to watch subscriptions.
//
// Thread-safety: publish may be called from any goroutine; only the
// publisher sends on subscription channels (subscribers only receive), so
// the drain-then-send coalescing under the mutex is race-free.
type watcher struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

func newWatcher() *watcher {
	return &watcher{subs: make(map[*Subscription]struct{})}
}

// Watch registers a new subscription and primes it with nothing: the first
// snapshot arrives on the next mutation. Callers that need the current state
// immediately should call ListAll first.
func (s *Store) Watch() *Subscription {
	return s.watcher.subscribe()
}

func (w *watcher) subscribe() *Subscription {
	w.mu.Lock()
	defer w.mu.Unlock()

	sub := &Subscription{ch: make(chan []product.Product, 1)}
	sub.cancel = func() { w.remove(sub) }

	if w.closed {
		close(sub.ch)
		sub.cancel = func() {}
		return sub
	}

	w.subs[sub] = struct{}{}
	return sub
}

func (w *watcher) remove(sub *Subscription) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.subs[sub]; !ok {
		return
	}
	delete(w.subs, sub)
	close(sub.ch)
}

// publish delivers a snapshot to every subscription, replacing any
// undelivered previous snapshot.
func (w *watcher) publish(snap []product.Product) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	for sub := range w.subs {
		// Coalesce: drop the stale buffered snapshot, then send the new one.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- snap:
		default:
		}
	}
}

// close terminates all subscriptions. Subsequent Watch calls return an
// already-closed subscription.
func (w *watcher) close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.closed = true

	for sub := range w.subs {
		delete(w.subs, sub)
		close(sub.ch)
	}
}
