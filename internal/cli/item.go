package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/roulette/internal/model"
	"github.com/roach88/roulette/internal/transfer"
)

// ItemsAdded is the output of `item add` and `item bulk`.
type ItemsAdded struct {
	ListID string       `json:"list_id"`
	Items  []model.Item `json:"items"`
}

// NewItemCommand creates the item command group.
func NewItemCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage the items of a list",
	}

	cmd.AddCommand(newItemAddCommand(rootOpts))
	cmd.AddCommand(newItemBulkCommand(rootOpts))
	cmd.AddCommand(newItemRmCommand(rootOpts))

	return cmd
}

func newItemAddCommand(rootOpts *RootOptions) *cobra.Command {
	var listRef string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			f := rootOpts.newFormatter(cmd)

			text := cleanText(args[0])
			if text == "" {
				return f.Fail(ExitCommandError, ErrCodeEmptyText, "item text must not be empty", nil)
			}

			app, err := rootOpts.openApp(ctx, f)
			if err != nil {
				return err
			}
			defer app.Close()

			list, err := app.resolveList(ctx, f, listRef)
			if err != nil {
				return err
			}

			item := model.Item{ID: app.IDs.Generate(), Text: text}
			if err := app.State.AddItemToList(ctx, list.ID, item); err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "failed to add item", err)
			}

			return f.Render(ItemsAdded{ListID: list.ID, Items: []model.Item{item}}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Added %q to %s\n", item.Text, list.Name)
			})
		},
	}

	cmd.Flags().StringVarP(&listRef, "list", "l", "", "list ID or name (default: selected list)")
	return cmd
}

func newItemBulkCommand(rootOpts *RootOptions) *cobra.Command {
	var listRef string

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Add one item per line of standard input",
		Long: `Add items in bulk from standard input.

Each non-blank line becomes one item; surrounding whitespace is trimmed.

Example:
  printf 'Pizza\nSushi\nTacos\n' | roulette item bulk --list Lunch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			f := rootOpts.newFormatter(cmd)

			input, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to read input", err)
			}
			texts := transfer.SplitLines(string(input))
			if len(texts) == 0 {
				return f.Fail(ExitFailure, ErrCodeNoItems, "no items in input", nil)
			}

			app, err := rootOpts.openApp(ctx, f)
			if err != nil {
				return err
			}
			defer app.Close()

			list, err := app.resolveList(ctx, f, listRef)
			if err != nil {
				return err
			}

			items := transfer.NewItems(texts, app.IDs)
			if err := app.State.AddItemsToList(ctx, list.ID, items); err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "failed to add items", err)
			}

			return f.Render(ItemsAdded{ListID: list.ID, Items: items}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Added %d %s to %s\n", len(items), plural(len(items), "item", "items"), list.Name)
			})
		},
	}

	cmd.Flags().StringVarP(&listRef, "list", "l", "", "list ID or name (default: selected list)")
	return cmd
}

func newItemRmCommand(rootOpts *RootOptions) *cobra.Command {
	var listRef string

	cmd := &cobra.Command{
		Use:   "rm <item-id>",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
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

			var removed model.Item
			found := false
			for _, it := range list.Items {
				if it.ID == args[0] {
					removed, found = it, true
					break
				}
			}
			if !found {
				return f.Fail(ExitFailure, ErrCodeItemNotFound, fmt.Sprintf("item %s not found in %s", args[0], list.Name), nil)
			}

			if err := app.State.RemoveItemFromList(ctx, list.ID, removed.ID); err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "failed to remove item", err)
			}

			return f.Render(removed, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Removed %q from %s\n", removed.Text, list.Name)
			})
		},
	}

	cmd.Flags().StringVarP(&listRef, "list", "l", "", "list ID or name (default: selected list)")
	return cmd
}
