package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/smartshop/smartshop/internal/mirror"
	"github.com/smartshop/smartshop/internal/product"
)

// Run subscribes to the mirror's change stream and reconciles events into
// the local store until ctx is cancelled or the stream ends. Events are
// applied one at a time, in delivery order; a bad event is logged and
// skipped, never allowed to terminate the loop.
//
// Returns nil on cancellation and on normal stream termination; the only
// error case is a failed subscription.
func (e *Engine) Run(ctx context.Context) error {
	sub, err := e.client.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to mirror: %w", err)
	}
	defer sub.Close()

	e.log.Info("sync engine starting")

	for {
		select {
		case <-ctx.Done():
			e.log.Info("sync engine stopping: context cancelled")
			return nil
		case ev, ok := <-sub.Events():
			if !ok {
				e.log.Info("sync engine stopping: change stream closed")
				return nil
			}
			e.apply(ctx, ev)
		}
	}
}

// apply reconciles a single inbound event against the local store.
//
// The remote key is the only join key: local ids from other devices mean
// nothing here. Reconciliation failures are logged and dropped so that one
// bad event cannot stall the stream.
func (e *Engine) apply(ctx context.Context, ev mirror.ChangeEvent) {
	if ev.LocalEcho {
		e.log.Debug("discarding local echo", "type", ev.Type, "doc_id", ev.DocID)
		return
	}

	existing, err := e.store.GetByRemoteID(ctx, ev.DocID)
	if err != nil && !errors.Is(err, product.ErrNotFound) {
		e.log.Error("reconcile lookup failed", "doc_id", ev.DocID, "error", err)
		return
	}
	found := err == nil

	switch ev.Type {
	case mirror.Added, mirror.Modified:
		incoming := mirror.DecodeProduct(ev.DocID, ev.Fields)
		if found {
			// Merge inbound fields into the existing row, preserving its
			// local key. Never insert: that would duplicate the product.
			incoming.LocalID = existing.LocalID
			if err := e.store.Update(ctx, incoming); err != nil {
				e.log.Error("reconcile update failed", "doc_id", ev.DocID, "error", err)
				return
			}
			e.log.Debug("reconciled remote change", "type", ev.Type, "doc_id", ev.DocID, "local_id", incoming.LocalID)
			return
		}
		localID, err := e.store.Insert(ctx, incoming)
		if err != nil {
			e.log.Error("reconcile insert failed", "doc_id", ev.DocID, "error", err)
			return
		}
		e.log.Debug("reconciled remote add", "doc_id", ev.DocID, "local_id", localID)

	case mirror.Removed:
		if !found {
			// Already gone locally; removal is idempotent.
			return
		}
		if err := e.store.Delete(ctx, existing); err != nil {
			e.log.Error("reconcile delete failed", "doc_id", ev.DocID, "error", err)
			return
		}
		e.log.Debug("reconciled remote removal", "doc_id", ev.DocID, "local_id", existing.LocalID)

	default:
		e.log.Warn("ignoring unknown change type", "type", int(ev.Type), "doc_id", ev.DocID)
	}
}
