package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartshop/smartshop/internal/mirror"
	"github.com/smartshop/smartshop/internal/product"
	"github.com/smartshop/smartshop/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// failingClient wraps a working client but fails every write, to verify the
// fire-and-forget contract of the outbound path.
type failingClient struct {
	mirror.Client
}

func (f *failingClient) Set(ctx context.Context, docID string, fields map[string]any) error {
	return &mirror.WriteError{Op: "set", DocID: docID, Err: errors.New("network unreachable")}
}

func (f *failingClient) Delete(ctx context.Context, docID string) error {
	return &mirror.WriteError{Op: "delete", DocID: docID, Err: errors.New("network unreachable")}
}

func TestCreateProduct_AssignsBothKeys(t *testing.T) {
	s := openTestStore(t)
	coll := mirror.NewCollection()
	conn := coll.Connect(mirror.WithIDGenerator(mirror.NewFixedIDGenerator("r1")))
	eng := New(s, conn)

	p, err := eng.CreateProduct(context.Background(), "Widget", 10, 2.5)
	require.NoError(t, err)

	assert.Equal(t, "r1", p.RemoteID, "remote key must be minted before persist")
	assert.NotZero(t, p.LocalID, "local key must be assigned by the store")

	got, err := s.GetByLocalID(context.Background(), p.LocalID)
	require.NoError(t, err)
	assert.Equal(t, "r1", got.RemoteID, "persisted row must already carry the remote key")
}

func TestCreateProduct_PushesToMirror(t *testing.T) {
	s := openTestStore(t)
	coll := mirror.NewCollection()
	conn := coll.Connect(mirror.WithIDGenerator(mirror.NewFixedIDGenerator("r1")))
	eng := New(s, conn)

	p, err := eng.CreateProduct(context.Background(), "Widget", 10, 2.5)
	require.NoError(t, err)

	doc, ok := coll.Get("r1")
	require.True(t, ok, "document should exist in the mirror")
	assert.Equal(t, "Widget", doc[mirror.FieldName])
	assert.Equal(t, 10, doc[mirror.FieldQuantity])
	assert.Equal(t, 2.5, doc[mirror.FieldPrice])
	// The remote write uses the completed record, local key included.
	assert.Equal(t, p.LocalID, doc[mirror.FieldLocalID])
}

func TestCreateProduct_RejectsInvalidInput(t *testing.T) {
	s := openTestStore(t)
	eng := New(s, mirror.NewCollection().Connect())
	ctx := context.Background()

	_, err := eng.CreateProduct(ctx, "", 1, 1)
	assert.ErrorIs(t, err, product.ErrEmptyName)

	_, err = eng.CreateProduct(ctx, "W", -1, 1)
	assert.ErrorIs(t, err, product.ErrNegativeQuantity)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "rejected input must not reach the store")
}

func TestCreateProduct_MirrorFailureDoesNotRollBack(t *testing.T) {
	s := openTestStore(t)
	conn := mirror.NewCollection().Connect(mirror.WithIDGenerator(mirror.NewFixedIDGenerator("r1")))
	eng := New(s, &failingClient{Client: conn})

	p, err := eng.CreateProduct(context.Background(), "Widget", 10, 2.5)
	require.NoError(t, err, "remote write failures must not surface")

	got, err := s.GetByLocalID(context.Background(), p.LocalID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, "r1", got.RemoteID)
}

func TestEditProduct_NotPersisted(t *testing.T) {
	eng := New(openTestStore(t), mirror.NewCollection().Connect())

	err := eng.EditProduct(context.Background(), product.Product{RemoteID: "r1", Name: "W"})
	assert.ErrorIs(t, err, ErrNotPersisted)
}

func TestEditProduct_NotFound(t *testing.T) {
	eng := New(openTestStore(t), mirror.NewCollection().Connect())

	err := eng.EditProduct(context.Background(), product.Product{LocalID: 99, RemoteID: "r1", Name: "W"})
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestEditProduct_UpdatesLocalAndRemote(t *testing.T) {
	s := openTestStore(t)
	coll := mirror.NewCollection()
	conn := coll.Connect(mirror.WithIDGenerator(mirror.NewFixedIDGenerator("r1")))
	eng := New(s, conn)
	ctx := context.Background()

	p, err := eng.CreateProduct(ctx, "Widget", 10, 2.5)
	require.NoError(t, err)

	p.Name = "Gadget"
	p.Quantity = 3
	require.NoError(t, eng.EditProduct(ctx, p))

	got, err := s.GetByLocalID(ctx, p.LocalID)
	require.NoError(t, err)
	assert.Equal(t, "Gadget", got.Name)
	assert.Equal(t, 3, got.Quantity)

	doc, ok := coll.Get("r1")
	require.True(t, ok)
	assert.Equal(t, "Gadget", doc[mirror.FieldName])
}

func TestEditProduct_MirrorFailureDoesNotSurface(t *testing.T) {
	s := openTestStore(t)
	conn := mirror.NewCollection().Connect(mirror.WithIDGenerator(mirror.NewFixedIDGenerator("r1")))
	eng := New(s, conn)
	ctx := context.Background()

	p, err := eng.CreateProduct(ctx, "Widget", 10, 2.5)
	require.NoError(t, err)

	failing := New(s, &failingClient{Client: conn})
	p.Price = 9.9
	require.NoError(t, failing.EditProduct(ctx, p))

	got, err := s.GetByLocalID(ctx, p.LocalID)
	require.NoError(t, err)
	assert.Equal(t, 9.9, got.Price)
}

func TestRemoveProduct_DeletesLocalAndRemote(t *testing.T) {
	s := openTestStore(t)
	coll := mirror.NewCollection()
	conn := coll.Connect(mirror.WithIDGenerator(mirror.NewFixedIDGenerator("r1")))
	eng := New(s, conn)
	ctx := context.Background()

	p, err := eng.CreateProduct(ctx, "Widget", 10, 2.5)
	require.NoError(t, err)

	require.NoError(t, eng.RemoveProduct(ctx, p))

	_, err = s.GetByLocalID(ctx, p.LocalID)
	assert.ErrorIs(t, err, product.ErrNotFound)
	_, ok := coll.Get("r1")
	assert.False(t, ok, "remote document should be deleted")

	// Removing again is a no-op, locally and remotely.
	require.NoError(t, eng.RemoveProduct(ctx, p))
}

func TestRemoveProduct_SkipsRemoteWithoutKey(t *testing.T) {
	s := openTestStore(t)
	coll := mirror.NewCollection()
	eng := New(s, &failingClient{Client: coll.Connect()})
	ctx := context.Background()

	// A row without a remote key never triggers a remote delete, so even a
	// failing client stays silent.
	localID, err := s.Insert(ctx, product.Product{Name: "Orphan"})
	require.NoError(t, err)

	require.NoError(t, eng.RemoveProduct(ctx, product.Product{LocalID: localID}))
}
