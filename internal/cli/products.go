package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name> <quantity> <price>",
		Short: "Add a product to the inventory",
		Long: `Add a product to the local inventory and push it to the mirror.

Example:
  smartshop add "Clavier" 10 25.5`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid quantity %q", args[1]))
			}
			price, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid price %q", args[2]))
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.engine.CreateProduct(cmd.Context(), args[0], quantity, price)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to add product", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(fmt.Sprintf("added product %d (%s)", p.LocalID, p.RemoteID))
		},
	}

	return cmd
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		name     string
		quantity int
		price    float64
	)

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update a product's fields",
		Long: `Update fields of an existing product by its local id. Only the flags
given on the command line change; other fields keep their current value.

Example:
  smartshop set 3 --quantity 7 --price 19.9`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			localID, err := parseLocalID(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			p, err := a.store.GetByLocalID(ctx, localID)
			if err != nil {
				return WrapExitError(ExitFailure, "product not found", err)
			}

			if cmd.Flags().Changed("name") {
				p.Name = name
			}
			if cmd.Flags().Changed("quantity") {
				p.Quantity = quantity
			}
			if cmd.Flags().Changed("price") {
				p.Price = price
			}

			if err := a.engine.EditProduct(ctx, p); err != nil {
				return WrapExitError(ExitFailure, "failed to update product", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(fmt.Sprintf("updated product %d", p.LocalID))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new product name")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "new quantity")
	cmd.Flags().Float64Var(&price, "price", 0, "new price")

	return cmd
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rm <id>",
		Short:         "Remove a product",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			localID, err := parseLocalID(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			p, err := a.store.GetByLocalID(ctx, localID)
			if err != nil {
				return WrapExitError(ExitFailure, "product not found", err)
			}

			if err := a.engine.RemoveProduct(ctx, p); err != nil {
				return WrapExitError(ExitFailure, "failed to remove product", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(fmt.Sprintf("removed product %d", p.LocalID))
		},
	}

	return cmd
}
