package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/smartshop/smartshop/internal/product"
)

// Insert adds a new product row and returns the assigned local key.
// The product's remote key (possibly empty for rows still being
// reconciled) is stored as-is; the table enforces no uniqueness beyond the
// local key.
func (s *Store) Insert(ctx context.Context, p product.Product) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO products (remote_id, name, quantity, price)
		VALUES (?, ?, ?, ?)
	`, nullableRemoteID(p.RemoteID), p.Name, p.Quantity, p.Price)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}

	localID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert product: last insert id: %w", err)
	}

	s.notifyWatchers(ctx)
	return localID, nil
}

// Update overwrites the row matching the product's local key.
// Returns product.ErrNotFound if the row does not exist.
func (s *Store) Update(ctx context.Context, p product.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET remote_id = ?, name = ?, quantity = ?, price = ?
		WHERE id = ?
	`, nullableRemoteID(p.RemoteID), p.Name, p.Quantity, p.Price, p.LocalID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product: rows affected: %w", err)
	}
	if n == 0 {
		return product.ErrNotFound
	}

	s.notifyWatchers(ctx)
	return nil
}

// Delete removes the row matching the product's local key.
// Deleting an absent row is a no-op, not an error (idempotent).
func (s *Store) Delete(ctx context.Context, p product.Product) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, p.LocalID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: rows affected: %w", err)
	}
	if n > 0 {
		s.notifyWatchers(ctx)
	}
	return nil
}

// Clear removes all rows. Used for full resets, e.g. sign-out.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}

	s.notifyWatchers(ctx)
	return nil
}

// notifyWatchers publishes the current full snapshot to all watch
// subscriptions. A listing failure here drops the notification; the next
// mutation publishes again, so watchers converge regardless.
func (s *Store) notifyWatchers(ctx context.Context) {
	snap, err := s.ListAll(ctx)
	if err != nil {
		return
	}
	s.watcher.publish(snap)
}

func nullableRemoteID(remoteID string) sql.NullString {
	return sql.NullString{String: remoteID, Valid: remoteID != ""}
}
