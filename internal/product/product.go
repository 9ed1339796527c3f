// Package product defines the inventory domain entity shared by the local
// store, the sync engine, and the presentation boundaries.
package product

import "errors"

// Domain errors as sentinel values
var (
	// ErrNotFound indicates a lookup for a product that is not in the local store.
	ErrNotFound = errors.New("product not found")

	// Validation errors, enforced at the entry boundary.
	ErrEmptyName        = errors.New("product name cannot be empty")
	ErrNegativeQuantity = errors.New("product quantity cannot be negative")
	ErrNegativePrice    = errors.New("product price cannot be negative")
)

// Product is the sole inventory entity.
//
// LocalID is assigned by the local store on insert and is meaningless outside
// this device. RemoteID is the cross-device join key: it is minted before the
// first local persist on the creating device, so a locally created product is
// never visible to reconciliation without one. A product arriving from the
// remote mirror carries the RemoteID assigned by the originating device.
type Product struct {
	LocalID  int64
	RemoteID string
	Name     string
	Quantity int
	Price    float64
}

// Persisted reports whether the product has been assigned a local row.
func (p Product) Persisted() bool {
	return p.LocalID != 0
}

// Value returns the stock value of this line (price times quantity).
func (p Product) Value() float64 {
	return p.Price * float64(p.Quantity)
}

// Validate enforces the entry-boundary business rules: non-empty name,
// non-negative quantity and price. The sync core itself accepts whatever the
// mirror delivers (defaulted, never rejected); validation applies to
// user-originated input only.
func (p Product) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.Quantity < 0 {
		return ErrNegativeQuantity
	}
	if p.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}
