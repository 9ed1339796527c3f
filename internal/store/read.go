package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/smartshop/smartshop/internal/product"
)

// ListAll returns every product, ordered by name ascending with French
// collation, local id as tiebreaker. The SQL ORDER BY gives a coarse
// byte-wise order; the collator refines it so accented names sort the way
// the UI presents them.
//
// Returns an empty slice (not nil) when the table is empty.
func (s *Store) ListAll(ctx context.Context) ([]product.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, remote_id, name, quantity, price
		FROM products
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	if products == nil {
		products = []product.Product{}
	}

	c := collate.New(language.French)
	sort.SliceStable(products, func(i, j int) bool {
		if cmp := c.CompareString(products[i].Name, products[j].Name); cmp != 0 {
			return cmp < 0
		}
		return products[i].LocalID < products[j].LocalID
	})

	return products, nil
}

// GetByLocalID returns the product with the given local key.
// Returns product.ErrNotFound if no such row exists.
func (s *Store) GetByLocalID(ctx context.Context, localID int64) (product.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, remote_id, name, quantity, price
		FROM products
		WHERE id = ?
	`, localID)
	return scanProductRow(row)
}

// GetByRemoteID returns the product with the given remote key. Used by the
// sync engine to reconcile inbound mirror events against existing rows.
// Returns product.ErrNotFound if no such row exists.
func (s *Store) GetByRemoteID(ctx context.Context, remoteID string) (product.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, remote_id, name, quantity, price
		FROM products
		WHERE remote_id = ?
	`, remoteID)
	return scanProductRow(row)
}

// Count returns the number of products in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(sc scanner) (product.Product, error) {
	var (
		p        product.Product
		remoteID sql.NullString
	)
	if err := sc.Scan(&p.LocalID, &remoteID, &p.Name, &p.Quantity, &p.Price); err != nil {
		return product.Product{}, fmt.Errorf("scan product: %w", err)
	}
	if remoteID.Valid {
		p.RemoteID = remoteID.String
	}
	return p, nil
}

func scanProductRow(row *sql.Row) (product.Product, error) {
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return product.Product{}, product.ErrNotFound
	}
	return p, err
}
