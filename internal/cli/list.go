package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/roulette/internal/model"
)

// ListSummary is one row of `list ls`.
type ListSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Items    int    `json:"items"`
	Selected bool   `json:"selected"`
}

// ListDetail is the output of `list show`.
type ListDetail struct {
	model.List
	Selected bool `json:"selected"`
}

// NewListCommand creates the list command group.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage lists",
		Long: `Create, inspect, rename, select and delete lists.

Commands that take a list accept its ID or, when unambiguous, its name.`,
	}

	cmd.AddCommand(newListAddCommand(rootOpts))
	cmd.AddCommand(newListLsCommand(rootOpts))
	cmd.AddCommand(newListShowCommand(rootOpts))
	cmd.AddCommand(newListRmCommand(rootOpts))
	cmd.AddCommand(newListRenameCommand(rootOpts))
	cmd.AddCommand(newListSelectCommand(rootOpts))

	return cmd
}

func newListAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a list and select it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			f := rootOpts.newFormatter(cmd)

			name := cleanText(args[0])
			if name == "" {
				return f.Fail(ExitCommandError, ErrCodeEmptyText, "list name must not be empty", nil)
			}

			app, err := rootOpts.openApp(ctx, f)
			if err != nil {
				return err
			}
			defer app.Close()

			list := model.List{ID: app.IDs.Generate(), Name: name, Items: []model.Item{}}
			if err := app.State.AddList(ctx, list); err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "failed to add list", err)
			}
			if err := app.State.SelectList(ctx, list.ID); err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "failed to select list", err)
			}

			return f.Render(ListSummary{ID: list.ID, Name: list.Name, Selected: true}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Created list %q (%s)\n", list.Name, list.ID)
			})
		},
	}
}

func newListLsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Show all lists",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			f := rootOpts.newFormatter(cmd)

			app, err := rootOpts.openApp(ctx, f)
			if err != nil {
				return err
			}
			defer app.Close()

			snap := app.State.State()
			rows := make([]ListSummary, len(snap.Lists))
			for i, l := range snap.Lists {
				rows[i] = ListSummary{
					ID:       l.ID,
					Name:     l.Name,
					Items:    len(l.Items),
					Selected: snap.Settings.Selected() == l.ID,
				}
			}

			return f.Render(rows, func(w io.Writer) {
				if len(rows) == 0 {
					fmt.Fprintln(w, "No lists yet. Create one with 'roulette list add NAME'.")
					return
				}
				for _, r := range rows {
					marker := " "
					if r.Selected {
						marker = "*"
					}
					fmt.Fprintf(w, "%s %s  %s (%d %s)\n", marker, r.ID, r.Name, r.Items, plural(r.Items, "item", "items"))
				}
			})
		},
	}
}

func newListShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [list]",
		Short: "Show the items of a list (default: selected list)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			f := rootOpts.newFormatter(cmd)

			app, err := rootOpts.openApp(ctx, f)
			if err != nil {
				return err
			}
			defer app.Close()

			list, err := app.resolveList(ctx, f, argOrEmpty(args))
			if err != nil {
				return err
			}
			detail := ListDetail{List: list, Selected: app.State.State().Settings.Selected() == list.ID}

			return f.Render(detail, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%s)\n", list.Name, list.ID)
				if len(list.Items) == 0 {
					fmt.Fprintln(w, "  (no items)")
					return
				}
				for _, it := range list.Items {
					fmt.Fprintf(w, "  %s  %s\n", it.ID, it.Text)
				}
			})
		},
	}
}

func newListRmCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <list>",
		Short: "Delete a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			f := rootOpts.newFormatter(cmd)

			app, err := rootOpts.openApp(ctx, f)
			if err != nil {
				return err
			}
			defer app.Close()

			list, err := app.resolveList(ctx, f, args[0])
			if err != nil {
				return err
			}
			if !yes {
				return f.Fail(ExitCommandError, ErrCodeNeedsConfirm,
					fmt.Sprintf("deleting list %q cannot be undone; re-run with --yes", list.Name), nil)
			}
			if err := app.State.DeleteList(ctx, list.ID); err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "failed to delete list", err)
			}

			return f.Render(ListSummary{ID: list.ID, Name: list.Name, Items: len(list.Items)}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Deleted list %q\n", list.Name)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}

func newListRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <list> <name>",
		Short: "Rename a list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			f := rootOpts.newFormatter(cmd)

			name := cleanText(args[1])
			if name == "" {
				return f.Fail(ExitCommandError, ErrCodeEmptyText, "list name must not be empty", nil)
			}

			app, err := rootOpts.openApp(ctx, f)
			if err != nil {
				return err
			}
			defer app.Close()

			list, err := app.resolveList(ctx, f, args[0])
			if err != nil {
				return err
			}
			old := list.Name
			list.Name = name
			if err := app.State.UpdateList(ctx, list); err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "failed to rename list", err)
			}

			return f.Render(ListSummary{ID: list.ID, Name: list.Name, Items: len(list.Items)}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Renamed %q to %q\n", old, list.Name)
			})
		},
	}
}

func newListSelectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select <list>",
		Short: "Select the list that spins use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			f := rootOpts.newFormatter(cmd)

			app, err := rootOpts.openApp(ctx, f)
			if err != nil {
				return err
			}
			defer app.Close()

			list, err := app.resolveList(ctx, f, args[0])
			if err != nil {
				return err
			}
			if err := app.State.SelectList(ctx, list.ID); err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "failed to select list", err)
			}

			return f.Render(ListSummary{ID: list.ID, Name: list.Name, Items: len(list.Items), Selected: true}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Selected %q\n", list.Name)
			})
		},
	}
}

// cleanText trims s and normalises it to NFC.
func cleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
