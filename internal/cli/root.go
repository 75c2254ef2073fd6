package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/roulette/internal/config"
	"github.com/roach88/roulette/internal/engine"
	"github.com/roach88/roulette/internal/ident"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Data       string
	Backend    string

	// Config is the loaded configuration with flags applied; set by the
	// root command before any subcommand runs. ConfigFile is the path it
	// was read from.
	Config     *config.Config
	ConfigFile string

	// IDs allows overriding the list/item ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs ident.Generator

	// RNG and SpinDuration override the spin engine's random source and
	// the configured duration (for testing). Zero values keep the defaults.
	RNG          engine.RNG
	SpinDuration time.Duration
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the roulette CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts, letting
// callers pre-set the test hooks.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roulette",
		Short: "roulette - pick a random item from your lists",
		Long: `A persistent random picker.

Keep named lists of items, spin to pick one at random, and track what has
already come up this session so it is not picked twice.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.loadConfig(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $ROULETTE_CONFIG or ~/.config/roulette/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Data, "data", "", "data file (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend: sqlite|json|memory (overrides config)")

	// Add subcommands
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewItemCommand(opts))
	cmd.AddCommand(NewSettingsCommand(opts))
	cmd.AddCommand(NewSpinCommand(opts))
	cmd.AddCommand(NewSessionCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// loadConfig reads the config file and environment, applies flag
// overrides and installs the stderr logger.
func (opts *RootOptions) loadConfig(cmd *cobra.Command) error {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Data != "" {
		cfg.Data.Path = opts.Data
	}
	if opts.Backend != "" {
		cfg.Data.Backend = opts.Backend
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	opts.Config = cfg
	opts.ConfigFile = path

	configureLogging(cmd.ErrOrStderr(), cfg.LogLevel(), opts.Verbose)
	slog.Debug("configuration loaded", "config", path, "backend", cfg.Data.Backend, "data", cfg.DataPath())
	return nil
}

// configureLogging installs a text handler on w as the default logger.
func configureLogging(w io.Writer, level slog.Level, verbose bool) {
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// newFormatter builds the output formatter for cmd.
func (opts *RootOptions) newFormatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
