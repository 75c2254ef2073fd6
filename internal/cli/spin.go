package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/roulette/internal/engine"
	"github.com/roach88/roulette/internal/model"
	"github.com/roach88/roulette/internal/sound"
	"github.com/roach88/roulette/internal/state"
)

// SpinOutput is the result of one spin.
type SpinOutput struct {
	ListID     string       `json:"list_id"`
	Winner     model.Item   `json:"winner"`
	Generation int64        `json:"generation"`
	Candidates int          `json:"candidates"`
	History    []model.Item `json:"history"`
}

// spinner runs spins against the state store and waits for each to land.
type spinner struct {
	app    *App
	engine *engine.Engine
	player *sound.Player
	done   chan model.Item
}

func (opts *RootOptions) newSpinner(app *App, bell io.Writer) *spinner {
	sp := &spinner{
		app:    app,
		player: sound.NewPlayer(bell),
		done:   make(chan model.Item, 1),
	}

	engineOpts := []engine.Option{
		engine.WithDuration(opts.spinDuration()),
		engine.WithSound(sp.player),
	}
	if opts.RNG != nil {
		engineOpts = append(engineOpts, engine.WithRNG(opts.RNG))
	}

	sp.engine = engine.New(func(winner model.Item) {
		if err := app.State.AddToHistory(winner); err != nil {
			slog.Warn("failed to record winner", "error", err)
		}
		sp.done <- winner
	}, engineOpts...)
	return sp
}

func (opts *RootOptions) spinDuration() time.Duration {
	if opts.SpinDuration > 0 {
		return opts.SpinDuration
	}
	return opts.Config.GetSpinDuration()
}

// spin starts a spin on list and blocks until it lands or ctx is done.
func (sp *spinner) spin(ctx context.Context, list model.List) (SpinOutput, error) {
	snap := sp.app.State.State()
	sp.player.SetMute(!snap.Settings.SoundEnabled)

	res, err := sp.engine.Spin(engine.SpinRequest{
		Items:           list.Items,
		History:         snap.History,
		AllowDuplicates: snap.Settings.AllowDuplicatesInSession,
		SoundEnabled:    snap.Settings.SoundEnabled,
	})
	if err != nil {
		return SpinOutput{}, err
	}

	select {
	case winner := <-sp.done:
		return SpinOutput{
			ListID:     list.ID,
			Winner:     winner,
			Generation: res.Generation,
			Candidates: res.Candidates,
			History:    sp.app.State.State().History,
		}, nil
	case <-ctx.Done():
		return SpinOutput{}, ctx.Err()
	}
}

func (sp *spinner) Close() {
	sp.engine.Close()
}

// spinFailure maps spin errors to CLI errors.
func spinFailure(f *OutputFormatter, err error) error {
	switch {
	case engine.IsListEmpty(err):
		return f.Fail(ExitFailure, ErrCodeListEmpty, "list has no items; add some with 'roulette item add'", err)
	case engine.IsDuplicatesExhausted(err):
		return f.Fail(ExitFailure, ErrCodeExhausted, "all items have been selected; clear history or allow duplicates", err)
	case errors.Is(err, engine.ErrAlreadySpinning):
		return f.Fail(ExitFailure, ErrCodeAlreadySpinning, "a spin is already in progress", err)
	case errors.Is(err, context.Canceled):
		return f.Fail(ExitCommandError, ErrCodeGeneric, "spin interrupted", err)
	default:
		return f.Fail(ExitFailure, ErrCodeGeneric, "spin failed", err)
	}
}

// withSignals returns a context cancelled on SIGINT or SIGTERM.
func withSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// NewSpinCommand creates the spin command.
func NewSpinCommand(rootOpts *RootOptions) *cobra.Command {
	var listRef string

	cmd := &cobra.Command{
		Use:   "spin",
		Short: "Pick a random item",
		Long: `Spin the selected list (or --list) and print the winner.

The spin runs for the configured duration (spin.duration, default 4s),
ringing the terminal bell while it spins when sound is on.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := withSignals(commandContext(cmd))
			defer stop()
			f := rootOpts.newFormatter(cmd)

			app, err := rootOpts.openApp(ctx, f)
			if err != nil {
				return err
			}
			defer app.Close()

			list, err := app.resolveList(ctx, f, listRef)
			if err != nil {
				return err
			}

			sp := rootOpts.newSpinner(app, cmd.ErrOrStderr())
			defer sp.Close()

			if !f.IsJSON() {
				fmt.Fprintf(f.GetErrWriter(), "Spinning %s...\n", list.Name)
			}
			out, err := sp.spin(ctx, list)
			if err != nil {
				return spinFailure(f, err)
			}

			return f.Render(out, func(w io.Writer) {
				fmt.Fprintf(w, "→ %s\n", out.Winner.Text)
			})
		},
	}

	cmd.Flags().StringVarP(&listRef, "list", "l", "", "list ID or name (default: selected list)")
	return cmd
}

// NewSessionCommand creates the interactive session command.
func NewSessionCommand(rootOpts *RootOptions) *cobra.Command {
	var listRef string

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Spin repeatedly, remembering winners",
		Long: `Start an interactive session on the selected list (or --list).

Winners are remembered for the session; with duplicates off, an item that
already won is not picked again until the history is cleared.

Commands:
  spin, s, <enter>   spin once
  history, h         show this session's winners, most recent first
  clear              forget this session's winners
  dup on|off         allow or forbid repeat winners
  sound on|off       ring the bell while spinning
  show               show the list's items
  quit, q            end the session`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := withSignals(commandContext(cmd))
			defer stop()
			f := rootOpts.newFormatter(cmd)

			app, err := rootOpts.openApp(ctx, f)
			if err != nil {
				return err
			}
			defer app.Close()

			list, err := app.resolveList(ctx, f, listRef)
			if err != nil {
				return err
			}

			sp := rootOpts.newSpinner(app, cmd.ErrOrStderr())
			defer sp.Close()

			s := &session{ctx: ctx, f: f, app: app, spinner: sp, listID: list.ID}
			return s.run(cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVarP(&listRef, "list", "l", "", "list ID or name (default: selected list)")
	return cmd
}

type session struct {
	ctx     context.Context
	f       *OutputFormatter
	app     *App
	spinner *spinner
	listID  string
}

// run reads commands from in until the session ends or s.ctx is cancelled.
// Lines are read on their own goroutine so an interrupt ends the session
// while it waits at the prompt.
func (s *session) run(in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	s.prompt()
	for {
		select {
		case <-s.ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return s.f.Fail(ExitCommandError, ErrCodeGeneric, "failed to read input", err)
				}
				return nil
			}
			if s.handle(strings.Fields(strings.ToLower(line))) {
				return nil
			}
			s.prompt()
		}
	}
}

func (s *session) prompt() {
	if !s.f.IsJSON() {
		fmt.Fprint(s.f.Writer, "roulette> ")
	}
}

// handle runs one session command and reports whether the session ends.
// Command failures are reported and the session continues.
func (s *session) handle(fields []string) bool {
	cmd := ""
	if len(fields) > 0 {
		cmd = fields[0]
	}

	switch cmd {
	case "", "spin", "s":
		s.spin()
	case "history", "h":
		history := s.app.State.State().History
		_ = s.f.Render(history, func(w io.Writer) {
			if len(history) == 0 {
				fmt.Fprintln(w, "No winners yet.")
				return
			}
			for i, it := range history {
				fmt.Fprintf(w, "%2d. %s\n", i+1, it.Text)
			}
		})
	case "clear":
		if err := s.app.State.ClearHistory(); err != nil {
			_ = s.f.Fail(ExitFailure, ErrCodeGeneric, "failed to clear history", err)
			break
		}
		_ = s.f.Render(map[string]int{"history": 0}, func(w io.Writer) {
			fmt.Fprintln(w, "✓ History cleared")
		})
	case "dup", "sound":
		s.toggle(cmd, fields[1:])
	case "show":
		list, ok := s.app.State.State().FindList(s.listID)
		if !ok {
			_ = s.f.Error(ErrCodeListNotFound, "list no longer exists", nil)
			break
		}
		_ = s.f.Render(list, func(w io.Writer) {
			for _, it := range list.Items {
				fmt.Fprintf(w, "  %s\n", it.Text)
			}
		})
	case "quit", "q", "exit":
		return true
	default:
		_ = s.f.Error(ErrCodeInvalidArgument, fmt.Sprintf("unknown command %q (try spin, history, clear, dup on|off, sound on|off, show, quit)", cmd), nil)
	}
	return false
}

func (s *session) spin() {
	list, ok := s.app.State.State().FindList(s.listID)
	if !ok {
		_ = s.f.Error(ErrCodeListNotFound, "list no longer exists", nil)
		return
	}

	out, err := s.spinner.spin(s.ctx, list)
	if err != nil {
		_ = spinFailure(s.f, err)
		return
	}
	_ = s.f.Render(out, func(w io.Writer) {
		fmt.Fprintf(w, "→ %s\n", out.Winner.Text)
	})
}

func (s *session) toggle(name string, args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		_ = s.f.Error(ErrCodeInvalidArgument, fmt.Sprintf("usage: %s on|off", name), nil)
		return
	}
	on := args[0] == "on"

	var patch state.SettingsPatch
	if name == "dup" {
		patch.AllowDuplicatesInSession = state.Bool(on)
	} else {
		patch.SoundEnabled = state.Bool(on)
	}
	if err := s.app.State.UpdateSettings(s.ctx, patch); err != nil {
		_ = s.f.Fail(ExitFailure, ErrCodeGeneric, "failed to update settings", err)
		return
	}

	snap := s.app.State.State()
	_ = s.f.Render(snap.Settings, func(w io.Writer) {
		writeSettings(w, snap.Settings, snap.Lists)
	})
}
