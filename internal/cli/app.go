package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/roulette/internal/ident"
	"github.com/roach88/roulette/internal/model"
	"github.com/roach88/roulette/internal/state"
	"github.com/roach88/roulette/internal/store"
)

// App bundles what a command needs: the repository, the state store over
// it and the ID generator.
type App struct {
	Repo  store.Repository
	State *state.Store
	IDs   ident.Generator
}

// openApp opens the configured repository and loads the state store.
// Failures are reported through f.
func (opts *RootOptions) openApp(ctx context.Context, f *OutputFormatter) (*App, error) {
	repo, err := opts.openRepository()
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStorageFailed, "failed to open storage", err)
	}

	ids := opts.IDs
	if ids == nil {
		ids = ident.UUIDv7Generator{}
	}

	f.VerboseLog("Using %s storage at %s", opts.Config.Data.Backend, opts.Config.DataPath())
	return &App{
		Repo:  repo,
		State: state.New(ctx, repo),
		IDs:   ids,
	}, nil
}

// openRepository opens the configured backend, creating the data
// directory when needed.
func (opts *RootOptions) openRepository() (store.Repository, error) {
	backend := opts.Config.Backend()
	path := opts.Config.DataPath()

	if backend != store.BackendMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return store.Open(backend, path)
}

// Close releases the state store and the repository.
func (a *App) Close() {
	a.State.Close()
	if err := a.Repo.Close(); err != nil {
		slog.Error("error closing storage", "error", err)
	}
}

// resolveList finds the list named by ref: an ID, or else a unique list
// name. An empty ref means the selected list; when nothing is selected the
// first list is selected automatically.
func (a *App) resolveList(ctx context.Context, f *OutputFormatter, ref string) (model.List, error) {
	if ref == "" {
		if _, err := a.State.EnsureSelection(ctx); err != nil {
			return model.List{}, f.Fail(ExitCommandError, ErrCodeGeneric, "failed to select a list", err)
		}
		snap := a.State.State()
		list, ok := snap.SelectedList()
		if !ok {
			return model.List{}, f.Fail(ExitFailure, ErrCodeNoSelection, "no list selected; create one with 'roulette list add NAME'", nil)
		}
		return list, nil
	}

	snap := a.State.State()
	if list, ok := snap.FindList(ref); ok {
		return list, nil
	}

	var matches []model.List
	for _, l := range snap.Lists {
		if strings.EqualFold(l.Name, ref) {
			matches = append(matches, l)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0].Clone(), nil
	case 0:
		return model.List{}, f.Fail(ExitFailure, ErrCodeListNotFound, fmt.Sprintf("list not found: %s", ref), nil)
	default:
		return model.List{}, f.Fail(ExitFailure, ErrCodeListNotFound, fmt.Sprintf("list name %q is ambiguous; use the list ID", ref), nil)
	}
}

// commandContext returns cmd's context, or a background context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
