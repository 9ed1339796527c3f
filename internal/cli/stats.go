package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartshop/smartshop/internal/stats"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stats",
		Short:         "Show inventory statistics",
		Long:          "Show the product count and the total stock value (sum of price × quantity).",
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
			totals := stats.Compute(products)

			w := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return json.NewEncoder(w).Encode(map[string]interface{}{
					"status": "ok",
					"data": map[string]interface{}{
						"count":       totals.Count,
						"total_value": totals.Value,
					},
				})
			}

			fmt.Fprintf(w, "Produits: %d\n", totals.Count)
			fmt.Fprintf(w, "Valeur totale du stock: %.2f TND\n", totals.Value)
			return nil
		},
	}

	return cmd
}
