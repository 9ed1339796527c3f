// Package stats derives aggregate statistics from the live product
// collection. Purely reactive: no state of its own beyond the latest
// computed totals.
package stats

import (
	"context"
	"sync"

	"github.com/smartshop/smartshop/internal/product"
	"github.com/smartshop/smartshop/internal/store"
)

// Totals holds the derived statistics for a product set.
type Totals struct {
	// Count is the number of products.
	Count int
	// Value is the total stock value, the sum of price times quantity.
	Value float64
}

// Compute derives totals from a product snapshot. An empty or nil set
// yields zero totals.
func Compute(products []product.Product) Totals {
	t := Totals{Count: len(products)}
	for _, p := range products {
		t.Value += p.Value()
	}
	return t
}

// Aggregator recomputes totals on every store mutation.
//
// Consumers read Totals() at any time; the value is a copy and must not be
// treated as a live view. Run owns the store subscription and recomputes on
// each snapshot until ctx is cancelled.
type Aggregator struct {
	store *store.Store

	mu     sync.Mutex
	totals Totals
}

// NewAggregator creates an aggregator primed with the store's current
// contents.
func NewAggregator(ctx context.Context, s *store.Store) (*Aggregator, error) {
	snap, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Aggregator{store: s, totals: Compute(snap)}, nil
}

// Totals returns the most recently computed statistics.
func (a *Aggregator) Totals() Totals {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totals
}

// Run consumes store snapshots until ctx is cancelled or the store closes.
// Always returns nil; there are no error conditions in derived statistics.
func (a *Aggregator) Run(ctx context.Context) error {
	sub := a.store.Watch()
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-sub.C():
			if !ok {
				return nil
			}
			t := Compute(snap)
			a.mu.Lock()
			a.totals = t
			a.mu.Unlock()
		}
	}
}
