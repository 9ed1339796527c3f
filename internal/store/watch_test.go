package store

import (
	"context"
	"testing"
	"time"

	"github.com/smartshop/smartshop/internal/product"
)

func recvSnapshot(t *testing.T, sub *Subscription) []product.Product {
	t.Helper()
	select {
	case snap, ok := <-sub.C():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestWatch_NotifiesOnInsert(t *testing.T) {
	s := openTestStore(t)
	sub := s.Watch()
	defer sub.Close()

	if _, err := s.Insert(context.Background(), product.Product{RemoteID: "r1", Name: "Widget"}); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	snap := recvSnapshot(t, sub)
	if len(snap) != 1 || snap[0].Name != "Widget" {
		t.Errorf("snapshot = %+v, want single Widget", snap)
	}
}

func TestWatch_CoalescesToLatest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sub := s.Watch()
	defer sub.Close()

	// No receiver between mutations: the buffered snapshot must be replaced,
	// not queued.
	for _, name := range []string{"A", "B", "C"} {
		if _, err := s.Insert(ctx, product.Product{RemoteID: name, Name: name}); err != nil {
			t.Fatalf("Insert(%q) failed: %v", name, err)
		}
	}

	snap := recvSnapshot(t, sub)
	if len(snap) != 3 {
		t.Errorf("coalesced snapshot has %d products, want 3 (latest state)", len(snap))
	}
}

func TestWatch_CloseStopsDelivery(t *testing.T) {
	s := openTestStore(t)
	sub := s.Watch()
	sub.Close()
	sub.Close() // safe to call twice

	if _, ok := <-sub.C(); ok {
		t.Error("channel should be closed after Close()")
	}

	// Mutations after close must not panic.
	if _, err := s.Insert(context.Background(), product.Product{RemoteID: "r1", Name: "W"}); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
}

func TestWatch_StoreCloseTerminatesSubscriptions(t *testing.T) {
	s, err := Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	sub := s.Watch()
	s.Close()

	if _, ok := <-sub.C(); ok {
		t.Error("channel should be closed after store Close()")
	}

	late := s.Watch()
	if _, ok := <-late.C(); ok {
		t.Error("subscription after store close should be pre-closed")
	}
}
