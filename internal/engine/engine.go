package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/smartshop/smartshop/internal/mirror"
	"github.com/smartshop/smartshop/internal/product"
	"github.com/smartshop/smartshop/internal/store"
)

// ErrNotPersisted indicates an edit of a product that was never persisted
// locally. Editing requires an assigned local key; hitting this is a
// programming error in the caller, not a data condition.
var ErrNotPersisted = errors.New("product has no local key")

// Engine orchestrates writes from the local store outward to the mirror and
// inbound change events from the mirror into the local store.
//
// Thread-safety model:
//   - CreateProduct / EditProduct / RemoveProduct: safe from any goroutine;
//     the store serializes row access.
//   - Run: must be called from exactly one goroutine. All inbound
//     reconciliation happens there, in delivery order.
type Engine struct {
	store  *store.Store
	client mirror.Client
	log    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an Engine bound to an explicitly owned store and mirror
// client. The engine does not own either: the caller controls their
// lifetimes (typically tied to the signed-in session).
func New(s *store.Store, client mirror.Client, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		client: client,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateProduct persists a new product locally and pushes it to the mirror.
//
// The remote key is minted before the first local persist, so the returned
// product always carries both keys. A mirror write failure does not roll
// back the local insert; only local store failures surface to the caller.
func (e *Engine) CreateProduct(ctx context.Context, name string, quantity int, price float64) (product.Product, error) {
	p := product.Product{Name: name, Quantity: quantity, Price: price}
	if err := p.Validate(); err != nil {
		return product.Product{}, err
	}

	p.RemoteID = e.client.MintID()

	localID, err := e.store.Insert(ctx, p)
	if err != nil {
		return product.Product{}, fmt.Errorf("create product: %w", err)
	}
	p.LocalID = localID

	e.log.Info("product created", "local_id", p.LocalID, "remote_id", p.RemoteID, "name", p.Name)
	e.pushSet(ctx, p)
	return p, nil
}

// EditProduct overwrites an existing local row and pushes the new state to
// the mirror. Returns ErrNotPersisted for a product without a local key and
// product.ErrNotFound if the row no longer exists.
func (e *Engine) EditProduct(ctx context.Context, p product.Product) error {
	if !p.Persisted() {
		return ErrNotPersisted
	}
	if err := p.Validate(); err != nil {
		return err
	}

	if err := e.store.Update(ctx, p); err != nil {
		return fmt.Errorf("edit product: %w", err)
	}

	e.log.Info("product updated", "local_id", p.LocalID, "remote_id", p.RemoteID)
	if p.RemoteID != "" {
		e.pushSet(ctx, p)
	}
	return nil
}

// RemoveProduct deletes the local row (idempotent) and best-effort removes
// the remote document.
func (e *Engine) RemoveProduct(ctx context.Context, p product.Product) error {
	if err := e.store.Delete(ctx, p); err != nil {
		return fmt.Errorf("remove product: %w", err)
	}

	e.log.Info("product removed", "local_id", p.LocalID, "remote_id", p.RemoteID)
	if p.RemoteID != "" {
		if err := e.client.Delete(ctx, p.RemoteID); err != nil {
			e.logDroppedWrite(err)
		}
	}
	return nil
}

// pushSet issues the outbound mirror write for the product's current state.
// Failures are logged and dropped: the local row is already the
// authoritative result of the operation.
func (e *Engine) pushSet(ctx context.Context, p product.Product) {
	if err := e.client.Set(ctx, p.RemoteID, mirror.ProductFields(p)); err != nil {
		e.logDroppedWrite(err)
	}
}

func (e *Engine) logDroppedWrite(err error) {
	var werr *mirror.WriteError
	if errors.As(err, &werr) {
		e.log.Warn("mirror write dropped, remote stale until next sync",
			"op", werr.Op, "doc_id", werr.DocID, "error", werr.Err)
		return
	}
	e.log.Warn("mirror write dropped, remote stale until next sync", "error", err)
}
