// Package cli implements the till command-line interface: a cobra command
// tree over the inventory store, with viper configuration and slog logging.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/till/internal/paths"
	"github.com/mesh-intelligence/till/pkg/sqlite"
	"github.com/mesh-intelligence/till/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app carries the global flags and the state PersistentPreRunE resolves for
// every subcommand.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool
	noColor   bool

	settings *settings
	logger   *slog.Logger
}

// NewRootCmd creates the top-level "till" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "till",
		Short: "Inventory and point-of-sale for a small shop",
		Long: `Till keeps a product catalog with stock levels, records sales with
their payment method, and reports totals and an inventory valuation.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir/till)")
	pf.StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/.till-db)")
	pf.BoolVar(&a.jsonMode, "json", false, "output as JSON")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newProductCmd(a))
	root.AddCommand(newSaleCmd(a))
	root.AddCommand(newReportCmd(a))

	return root
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// setup resolves directories, loads config.yaml and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.noColor {
		color.NoColor = true
	}

	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return systemError(fmt.Errorf("resolve config dir: %w", err))
	}

	s, err := loadSettings(configDir)
	if err != nil {
		return systemError(err)
	}

	dataDir, err := paths.ResolveDataDir(a.dataDir, s.DataDir)
	if err != nil {
		return systemError(fmt.Errorf("resolve data dir: %w", err))
	}
	s.DataDir = dataDir

	a.settings = s
	a.logger = newLogger(cmd.ErrOrStderr(), s.LogLevel, s.LogFormat)
	a.logger.Debug("configuration loaded", "config_dir", configDir, "data_dir", dataDir)
	return nil
}

// withStore attaches a store for the duration of fn.
func (a *app) withStore(fn func(ctx context.Context, store types.Inventory) error) error {
	store := sqlite.NewStore(sqlite.WithLogger(a.logger.With("component", "store")))
	if err := store.Attach(a.settings.storeConfig()); err != nil {
		return systemError(fmt.Errorf("attach store: %w", err))
	}
	defer store.Detach()

	return classify(fn(context.Background(), store))
}

// exitError pairs an error with the process exit code it maps to.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func systemError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

func userError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

// userErrors are the store errors caused by the input rather than the
// environment.
var userErrors = []error{
	types.ErrProductNotFound,
	types.ErrInsufficientStock,
	types.ErrInvalidID,
	types.ErrInvalidName,
	types.ErrInvalidPrice,
	types.ErrInvalidQuantity,
	types.ErrInvalidTotal,
	types.ErrInvalidPaymentMethod,
	types.ErrInvalidData,
}

// classify wraps a store error with its exit code.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return userError(err)
		}
	}
	return systemError(err)
}

// exitCode maps an error returned by the command tree to an exit code.
// Errors cobra raises itself, such as unknown flags, are user errors.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
