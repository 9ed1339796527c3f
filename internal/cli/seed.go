package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartshop/smartshop/internal/seed"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <dir>",
		Short: "Create products from CUE seed files",
		Long: `Load product definitions from CUE files in a directory and create each
one through the sync engine, so seeded products propagate to the mirror.

Seed files declare "package seed" and list products under a top-level
"product" struct:

  product: clavier: {name: "Clavier", quantity: 10, price: 25.5}`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := seed.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load seed files", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			for _, e := range entries {
				p, err := a.engine.CreateProduct(ctx, e.Name, e.Quantity, e.Price)
				if err != nil {
					return WrapExitError(ExitFailure, fmt.Sprintf("failed to create product %q", e.Key), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %d %s\n", p.LocalID, p.Name)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", len(entries))
			return nil
		},
	}

	return cmd
}
