package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smartshop/smartshop/internal/auth"
	"github.com/smartshop/smartshop/internal/stats"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the sync engine",
		Long: `Start the bidirectional sync engine: inbound mirror changes are
reconciled into the local store, and the statistics aggregator follows
store mutations, until interrupted.

Example:
  smartshop run --db ./smartshop.db --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, cmd)
		},
	}

	return cmd
}

// reportSession states who the engine is syncing for. Signed-out operation
// is allowed; local changes simply stay on this device.
func reportSession(cmd *cobra.Command, stateDir string) error {
	session, err := auth.LoadSession(stateDir)
	switch {
	case errors.Is(err, auth.ErrNoSession):
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out. Local changes stay on this device until sign-in.")
	case err != nil:
		return WrapExitError(ExitCommandError, "failed to load session", err)
	case session.Expired():
		fmt.Fprintf(cmd.OutOrStdout(), "Session for %s has expired; run `smartshop login` to renew it.\n", session.Email)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", session.Email)
	}
	return nil
}

func runSync(opts *RootOptions, cmd *cobra.Command) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := reportSession(cmd, a.cfg.StateDir); err != nil {
		return err
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	agg, err := stats.NewAggregator(ctx, a.store)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start aggregator", err)
	}
	aggDone := make(chan struct{})
	go func() {
		defer close(aggDone)
		_ = agg.Run(ctx)
	}()

	fmt.Fprintln(cmd.OutOrStdout(), "Sync engine started. Listening for remote changes...")
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := a.engine.Run(ctx); err != nil {
		return WrapExitError(ExitFailure, "sync engine error", err)
	}

	cancel()
	<-aggDone

	totals := agg.Totals()
	slog.Info("sync engine stopped gracefully", "products", totals.Count, "stock_value", totals.Value)
	return nil
}
