package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/roulette/internal/model"
	"github.com/roach88/roulette/internal/state"
)

// NewSettingsCommand creates the settings command.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	var allowDuplicates, sound bool

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
		Long: `Show the settings, or change them with flags.

Examples:
  roulette settings
  roulette settings --allow-duplicates=false
  roulette settings --sound=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			f := rootOpts.newFormatter(cmd)

			var patch state.SettingsPatch
			if cmd.Flags().Changed("allow-duplicates") {
				patch.AllowDuplicatesInSession = state.Bool(allowDuplicates)
			}
			if cmd.Flags().Changed("sound") {
				patch.SoundEnabled = state.Bool(sound)
			}

			app, err := rootOpts.openApp(ctx, f)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.State.UpdateSettings(ctx, patch); err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "failed to update settings", err)
			}

			snap := app.State.State()
			return f.Render(snap.Settings, func(w io.Writer) {
				writeSettings(w, snap.Settings, snap.Lists)
			})
		},
	}

	cmd.Flags().BoolVar(&allowDuplicates, "allow-duplicates", true, "allow an item to win more than once per session")
	cmd.Flags().BoolVar(&sound, "sound", true, "ring the terminal bell while spinning")
	return cmd
}

func writeSettings(w io.Writer, s model.Settings, lists []model.List) {
	selected := "(none)"
	if s.SelectedListID != nil {
		selected = *s.SelectedListID
		for _, l := range lists {
			if l.ID == *s.SelectedListID {
				selected = fmt.Sprintf("%s (%s)", l.Name, l.ID)
			}
		}
	}
	fmt.Fprintf(w, "selected list:     %s\n", selected)
	fmt.Fprintf(w, "allow duplicates:  %s\n", onOff(s.AllowDuplicatesInSession))
	fmt.Fprintf(w, "sound:             %s\n", onOff(s.SoundEnabled))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
