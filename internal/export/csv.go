// Package export implements the CSV export boundary. It consumes the
// current product sequence and contains no sync logic.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/smartshop/smartshop/internal/product"
)

// Header matches the layout of the exported inventory file: one header row,
// then one row per product, in listing order.
var Header = []string{"ID", "Nom", "Quantité", "Prix (TND)"}

// WriteCSV writes the product sequence as CSV to w.
func WriteCSV(w io.Writer, products []product.Product) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, p := range products {
		record := []string{
			strconv.FormatInt(p.LocalID, 10),
			p.Name,
			strconv.Itoa(p.Quantity),
			strconv.FormatFloat(p.Price, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
