package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/roulette/internal/model"
	"github.com/roach88/roulette/internal/transfer"
)

// stdoutPath selects standard output for -o.
const stdoutPath = "-"

// FileWritten is the output of commands that write a file.
type FileWritten struct {
	Path  string `json:"path"`
	Lists int    `json:"lists,omitempty"`
	Items int    `json:"items"`
}

// NewExportCommand creates the export command group.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a list to a file",
	}
	cmd.AddCommand(newExportCSVCommand(rootOpts))
	return cmd
}

func newExportCSVCommand(rootOpts *RootOptions) *cobra.Command {
	var listRef, output string

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export a list as CSV, one quoted item per line",
		Long: `Export the selected list (or --list) as CSV.

The default file is "<list name>.csv" in the current directory; use -o - to
write to standard output.`,
		Args: cobra.NoArgs,
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

			var buf bytes.Buffer
			if err := transfer.ExportCSV(&buf, list); err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "failed to export list", err)
			}

			path := output
			if path == "" {
				path = transfer.CSVFileName(list.Name)
			}
			if path == stdoutPath {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
				return f.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to write %s", path), err)
			}

			return f.Render(FileWritten{Path: path, Items: len(list.Items)}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Exported %d %s to %s\n", len(list.Items), plural(len(list.Items), "item", "items"), path)
			})
		},
	}

	cmd.Flags().StringVarP(&listRef, "list", "l", "", "list ID or name (default: selected list)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (- for stdout)")
	return cmd
}

// NewImportCommand creates the import command group.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a list from a file",
	}
	cmd.AddCommand(newImportCSVCommand(rootOpts))
	return cmd
}

func newImportCSVCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "csv <file>",
		Short: "Create a list from a CSV file and select it",
		Long: `Create a new list from a CSV file, one item per line.

The list is named after the file without its .csv extension. Blank lines
are skipped and one layer of wrapping double quotes is removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			f := rootOpts.newFormatter(cmd)
			path := args[0]

			file, err := os.Open(path)
			if err != nil {
				if os.IsNotExist(err) {
					return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("file not found: %s", path), err)
				}
				return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("failed to open %s", path), err)
			}
			defer file.Close()

			texts, err := transfer.ParseCSV(file)
			if err != nil {
				return f.Fail(ExitFailure, ErrCodeInvalidData, "failed to parse CSV", err)
			}
			if len(texts) == 0 {
				return f.Fail(ExitFailure, ErrCodeNoItems, fmt.Sprintf("no items found in %s", path), nil)
			}

			app, err := rootOpts.openApp(ctx, f)
			if err != nil {
				return err
			}
			defer app.Close()

			list := model.List{
				ID:    app.IDs.Generate(),
				Name:  transfer.ListNameFromFile(path),
				Items: transfer.NewItems(texts, app.IDs),
			}
			if err := app.State.AddList(ctx, list); err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "failed to add list", err)
			}
			if err := app.State.SelectList(ctx, list.ID); err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "failed to select list", err)
			}

			return f.Render(ListDetail{List: list, Selected: true}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Imported %d %s into %q (%s)\n", len(list.Items), plural(len(list.Items), "item", "items"), list.Name, list.ID)
			})
		},
	}
}

// NewBackupCommand creates the backup command.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write every list and the settings to a JSON file",
		Long: `Write a JSON snapshot of every list and the settings.

The default file is mini-roulette-backup.json in the current directory;
use -o - to write to standard output. Session history is not included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			f := rootOpts.newFormatter(cmd)

			app, err := rootOpts.openApp(ctx, f)
			if err != nil {
				return err
			}
			defer app.Close()

			data := app.State.State().Data()
			var buf bytes.Buffer
			if err := transfer.ExportSnapshot(&buf, data); err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "failed to export data", err)
			}

			path := output
			if path == "" {
				path = transfer.BackupFileName
			}
			if path == stdoutPath {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
				return f.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to write %s", path), err)
			}

			out := FileWritten{Path: path, Lists: len(data.Lists), Items: countItems(data)}
			return f.Render(out, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Backed up %d %s (%d %s) to %s\n",
					out.Lists, plural(out.Lists, "list", "lists"), out.Items, plural(out.Items, "item", "items"), path)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (- for stdout)")
	return cmd
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace every list and the settings from a JSON backup",
		Long: `Replace all lists and settings with the contents of a backup.

The backup is validated first; an invalid file changes nothing. Because
restore overwrites the current data it requires --yes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			f := rootOpts.newFormatter(cmd)
			path := args[0]

			raw, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("file not found: %s", path), err)
				}
				return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("failed to read %s", path), err)
			}

			data, err := transfer.ParseSnapshot(raw)
			if err != nil {
				return f.Fail(ExitFailure, ErrCodeInvalidData, "failed to import data", err)
			}

			if !yes {
				return f.Fail(ExitCommandError, ErrCodeNeedsConfirm, "restore overwrites your current data; re-run with --yes", nil)
			}

			app, err := rootOpts.openApp(ctx, f)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.State.ReplaceAll(ctx, data); err != nil {
				return f.Fail(ExitFailure, ErrCodeInvalidData, "failed to import data", err)
			}

			out := FileWritten{Path: path, Lists: len(data.Lists), Items: countItems(data)}
			return f.Render(out, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Restored %d %s (%d %s) from %s\n",
					out.Lists, plural(out.Lists, "list", "lists"), out.Items, plural(out.Items, "item", "items"), path)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm overwriting the current data")
	return cmd
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every list and reset the settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			f := rootOpts.newFormatter(cmd)

			if !yes {
				return f.Fail(ExitCommandError, ErrCodeNeedsConfirm, "reset deletes every list; re-run with --yes", nil)
			}

			repo, err := rootOpts.openRepository()
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeStorageFailed, "failed to open storage", err)
			}
			defer repo.Close()

			if err := repo.Clear(ctx); err != nil {
				return f.Fail(ExitFailure, ErrCodeStorageFailed, "failed to clear storage", err)
			}

			return f.Render(map[string]bool{"reset": true}, func(w io.Writer) {
				fmt.Fprintln(w, "✓ All data cleared")
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deleting all data")
	return cmd
}

func countItems(data model.AppData) int {
	n := 0
	for _, l := range data.Lists {
		n += len(l.Items)
	}
	return n
}
