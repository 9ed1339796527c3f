package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smartshop/smartshop/internal/product"
)

// productRow is the JSON shape of one product in list output.
type productRow struct {
	ID       int64   `json:"id"`
	RemoteID string  `json:"remote_id,omitempty"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func toRows(products []product.Product) []productRow {
	rows := make([]productRow, len(products))
	for i, p := range products {
		rows[i] = productRow{
			ID:       p.LocalID,
			RemoteID: p.RemoteID,
			Name:     p.Name,
			Quantity: p.Quantity,
			Price:    p.Price,
		}
	}
	return rows
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List all products, ordered by name",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			products, err := a.store.ListAll(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list products", err)
			}

			w := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return json.NewEncoder(w).Encode(map[string]interface{}{
					"status": "ok",
					"data":   toRows(products),
				})
			}

			if len(products) == 0 {
				fmt.Fprintln(w, "no products")
				return nil
			}

			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNOM\tQUANTITÉ\tPRIX (TND)")
			for _, p := range products {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\n", p.LocalID, p.Name, p.Quantity, p.Price)
			}
			return tw.Flush()
		},
	}

	return cmd
}
