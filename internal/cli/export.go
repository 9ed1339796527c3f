package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartshop/smartshop/internal/export"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the inventory as CSV",
		Long: `Export the current product list as CSV, in listing order.

Writes to stdout unless --output is given.

Example:
  smartshop export -o inventaire.csv`,
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
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to create output file", err)
				}
				defer f.Close()
				w = f
			}

			if err := export.WriteCSV(w, products); err != nil {
				return WrapExitError(ExitFailure, "failed to write CSV", err)
			}

			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d products to %s\n", len(products), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}
