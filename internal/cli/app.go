package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/smartshop/smartshop/internal/config"
	"github.com/smartshop/smartshop/internal/engine"
	"github.com/smartshop/smartshop/internal/mirror"
	"github.com/smartshop/smartshop/internal/store"
)

// demoCollection is the in-process mirror shared by all commands in one
// process. The mirror's wire protocol is a boundary: a networked client
// implementing mirror.Client slots in here without touching the engine.
var demoCollection = mirror.NewCollection()

// app bundles the explicitly constructed dependencies of a command: the
// session-owned store, the mirror connection, and the engine wired to both.
// No hidden globals; each command opens and closes its own instance.
type app struct {
	cfg    config.Config
	store  *store.Store
	engine *engine.Engine
}

// openApp loads configuration and opens the local store.
func openApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	// The pre-run hook only knows about --verbose; the configured level is
	// applied here, once the config exists. --verbose still wins.
	if !opts.Verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})
		slog.SetDefault(slog.New(handler))
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}

	if dir := filepath.Dir(cfg.Database); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to create database directory", err)
		}
	}

	slog.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	return &app{
		cfg:    cfg,
		store:  st,
		engine: engine.New(st, demoCollection.Connect()),
	}, nil
}

// Close releases the store. Errors are logged, not returned: commands have
// already produced their result by the time this runs.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// parseLocalID parses a positional local key argument.
func parseLocalID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid product id %q", arg))
	}
	return id, nil
}
