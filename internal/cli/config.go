package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/roulette/internal/config"
)

// ConfigOutput is the output of the config commands.
type ConfigOutput struct {
	Path   string         `json:"path"`
	Config *config.Config `json:"config"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(rootOpts))
	cmd.AddCommand(newConfigShowCommand(rootOpts))
	return cmd
}

func newConfigInitCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Long: `Write the effective configuration (file, environment and flags
combined) to the config file, so flags like --backend and --data stick.

An existing file is only replaced with --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.newFormatter(cmd)
			path := rootOpts.ConfigFile

			if _, err := os.Stat(path); err == nil && !force {
				return f.Fail(ExitCommandError, ErrCodeNeedsConfirm, fmt.Sprintf("%s already exists; re-run with --force", path), nil)
			}
			if err := rootOpts.Config.Save(path); err != nil {
				return f.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to write %s", path), err)
			}

			return f.Render(ConfigOutput{Path: path, Config: rootOpts.Config}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Wrote config to %s\n", path)
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.newFormatter(cmd)
			cfg := rootOpts.Config

			out, err := yaml.Marshal(cfg)
			if err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "failed to render config", err)
			}
			return f.Render(ConfigOutput{Path: rootOpts.ConfigFile, Config: cfg}, func(w io.Writer) {
				fmt.Fprintf(w, "# %s\n", rootOpts.ConfigFile)
				fmt.Fprint(w, string(out))
			})
		},
	}
}
