package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartshop/smartshop/internal/mirror"
	"github.com/smartshop/smartshop/internal/product"
	"github.com/smartshop/smartshop/internal/store"
)

// startEngine runs the inbound loop until the test ends.
func startEngine(t *testing.T, eng *Engine) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("engine did not stop after cancellation")
		}
	})
	return cancel
}

// waitForRemote polls until the row with the given remote key is present.
func waitForRemote(t *testing.T, s *store.Store, remoteID string) product.Product {
	t.Helper()
	var got product.Product
	require.Eventually(t, func() bool {
		p, err := s.GetByRemoteID(context.Background(), remoteID)
		if err != nil {
			return false
		}
		got = p
		return true
	}, 2*time.Second, 5*time.Millisecond, "row with remote key %s never appeared", remoteID)
	return got
}

// fence writes a marker document from the given device and waits for it to
// reconcile locally. Because events are applied in delivery order, all
// writes issued before the marker have been processed once it lands.
func fence(t *testing.T, otherDevice *mirror.Conn, s *store.Store, markerID string) {
	t.Helper()
	require.NoError(t, otherDevice.Set(context.Background(), markerID, map[string]any{
		mirror.FieldName: "marker-" + markerID,
	}))
	waitForRemote(t, s, markerID)
}

func TestRun_InboundAddedCreatesRow(t *testing.T) {
	s := openTestStore(t)
	coll := mirror.NewCollection()
	eng := New(s, coll.Connect())
	startEngine(t, eng)

	other := coll.Connect()
	require.NoError(t, other.Set(context.Background(), "r1", map[string]any{
		mirror.FieldName:     "Gadget",
		mirror.FieldQuantity: 3,
		mirror.FieldPrice:    4.0,
	}))

	got := waitForRemote(t, s, "r1")
	assert.Equal(t, "Gadget", got.Name)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, 4.0, got.Price)
	assert.NotZero(t, got.LocalID)
}

func TestRun_InboundModifiedPreservesLocalKey(t *testing.T) {
	s := openTestStore(t)
	coll := mirror.NewCollection()
	conn := coll.Connect(mirror.WithIDGenerator(mirror.NewFixedIDGenerator("r1")))
	eng := New(s, conn)
	ctx := context.Background()

	p, err := eng.CreateProduct(ctx, "Widget", 10, 2.5)
	require.NoError(t, err)

	startEngine(t, eng)

	other := coll.Connect()
	require.NoError(t, other.Set(ctx, "r1", map[string]any{
		mirror.FieldName:     "Widget v2",
		mirror.FieldQuantity: 7,
		mirror.FieldPrice:    3.0,
	}))

	require.Eventually(t, func() bool {
		got, err := s.GetByRemoteID(ctx, "r1")
		return err == nil && got.Name == "Widget v2"
	}, 2*time.Second, 5*time.Millisecond)

	got, err := s.GetByRemoteID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, p.LocalID, got.LocalID, "local key must survive inbound modification")
	assert.Equal(t, 7, got.Quantity)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "modification must never duplicate the row")
}

func TestRun_EchoSuppression(t *testing.T) {
	s := openTestStore(t)
	coll := mirror.NewCollection()
	conn := coll.Connect(mirror.WithIDGenerator(mirror.NewFixedIDGenerator("r1")))
	eng := New(s, conn)
	ctx := context.Background()

	startEngine(t, eng)

	// The engine's own create produces an echo on its own subscription.
	p, err := eng.CreateProduct(ctx, "Widget", 10, 2.5)
	require.NoError(t, err)

	other := coll.Connect()
	fence(t, other, s, "fence-1")

	// Echo processed (fence landed after it); the row must be untouched and
	// not duplicated.
	got, err := s.GetByRemoteID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, p.LocalID, got.LocalID)
	assert.Equal(t, "Widget", got.Name)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "only the product and the fence marker should exist")
}

func TestRun_EditThenEchoKeepsEditedState(t *testing.T) {
	s := openTestStore(t)
	coll := mirror.NewCollection()
	conn := coll.Connect(mirror.WithIDGenerator(mirror.NewFixedIDGenerator("r1")))
	eng := New(s, conn)
	ctx := context.Background()

	p, err := eng.CreateProduct(ctx, "Widget", 10, 2.5)
	require.NoError(t, err)

	startEngine(t, eng)

	p.Name = "Widget mk2"
	p.Quantity = 4
	require.NoError(t, eng.EditProduct(ctx, p))

	other := coll.Connect()
	fence(t, other, s, "fence-1")

	got, err := s.GetByRemoteID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Widget mk2", got.Name, "echo of the edit must not revert it")
	assert.Equal(t, 4, got.Quantity)
	assert.Equal(t, p.LocalID, got.LocalID)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRun_InboundRemovedDeletesRow(t *testing.T) {
	s := openTestStore(t)
	coll := mirror.NewCollection()
	eng := New(s, coll.Connect())
	ctx := context.Background()

	startEngine(t, eng)

	other := coll.Connect()
	require.NoError(t, other.Set(ctx, "r1", map[string]any{mirror.FieldName: "Gadget"}))
	waitForRemote(t, s, "r1")

	require.NoError(t, other.Delete(ctx, "r1"))

	require.Eventually(t, func() bool {
		_, err := s.GetByRemoteID(ctx, "r1")
		return err != nil
	}, 2*time.Second, 5*time.Millisecond, "row should disappear after remote removal")
}

func TestRun_InboundRemovedForAbsentKeyIsNoOp(t *testing.T) {
	s := openTestStore(t)
	coll := mirror.NewCollection()
	eng := New(s, coll.Connect())
	ctx := context.Background()

	startEngine(t, eng)

	other := coll.Connect()
	// Establish and remove a doc the local store never saw: subscribe-time
	// snapshot plus delete of an unknown key.
	require.NoError(t, other.Set(ctx, "seen", map[string]any{mirror.FieldName: "Seen"}))
	waitForRemote(t, s, "seen")

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, other.Delete(ctx, "seen"))
	fence(t, other, s, "fence-1")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the fence marker should exist; absent removal is a no-op")
}

func TestRun_MalformedFieldsDefaulted(t *testing.T) {
	s := openTestStore(t)
	coll := mirror.NewCollection()
	eng := New(s, coll.Connect())
	ctx := context.Background()

	startEngine(t, eng)

	other := coll.Connect()
	require.NoError(t, other.Set(ctx, "bad", map[string]any{
		mirror.FieldName:     12345,
		mirror.FieldQuantity: "many",
		mirror.FieldPrice:    []string{"?"},
	}))

	got := waitForRemote(t, s, "bad")
	assert.Empty(t, got.Name)
	assert.Zero(t, got.Quantity)
	assert.Zero(t, got.Price)
}

func TestRun_CancellationStopsReconciliation(t *testing.T) {
	s := openTestStore(t)
	coll := mirror.NewCollection()
	eng := New(s, coll.Connect())
	ctx := context.Background()

	cancel := startEngine(t, eng)
	cancel()

	// Give the loop a moment to exit, then write remotely.
	time.Sleep(20 * time.Millisecond)
	other := coll.Connect()
	require.NoError(t, other.Set(ctx, "late", map[string]any{mirror.FieldName: "Late"}))
	time.Sleep(50 * time.Millisecond)

	_, err := s.GetByRemoteID(ctx, "late")
	assert.ErrorIs(t, err, product.ErrNotFound, "no reconciliation after cancellation")
}

func TestRun_TwoDevicesConverge(t *testing.T) {
	coll := mirror.NewCollection()

	storeA := openTestStore(t)
	connA := coll.Connect(mirror.WithIDGenerator(mirror.NewFixedIDGenerator("rA")))
	engA := New(storeA, connA)

	storeB := openTestStore(t)
	connB := coll.Connect()
	engB := New(storeB, connB)

	startEngine(t, engA)
	startEngine(t, engB)
	ctx := context.Background()

	// Device A creates; device B observes.
	pA, err := engA.CreateProduct(ctx, "Widget", 10, 2.5)
	require.NoError(t, err)

	gotB := waitForRemote(t, storeB, "rA")
	assert.Equal(t, "Widget", gotB.Name)
	assert.NotEqual(t, int64(0), gotB.LocalID)

	// Device B edits; device A observes without duplicating.
	gotB.Price = 5.0
	require.NoError(t, engB.EditProduct(ctx, gotB))

	require.Eventually(t, func() bool {
		p, err := storeA.GetByRemoteID(ctx, "rA")
		return err == nil && p.Price == 5.0
	}, 2*time.Second, 5*time.Millisecond)

	p, err := storeA.GetByRemoteID(ctx, "rA")
	require.NoError(t, err)
	assert.Equal(t, pA.LocalID, p.LocalID, "device A keeps its own local key")

	nA, err := storeA.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, nA)
}
