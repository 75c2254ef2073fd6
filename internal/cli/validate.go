package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/roulette/internal/transfer"
)

// ValidationIssue is one problem found in a backup file.
type ValidationIssue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Lists  int               `json:"lists,omitempty"`
	Items  int               `json:"items,omitempty"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a backup file without restoring it",
		Long: `Validate a JSON backup against the snapshot schema without applying it.

Reports every schema violation found, so a hand-edited backup can be fixed
in one pass before running restore.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("file not found: %s", path), err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("failed to read %s", path), err)
	}

	formatter.VerboseLog("Validating %s (%d bytes)", path, len(raw))

	if errs := transfer.CheckSnapshot(raw); len(errs) > 0 {
		issues := make([]ValidationIssue, len(errs))
		for i, e := range errs {
			issues[i] = ValidationIssue{Field: e.Field, Message: e.Message, Code: ErrCodeInvalidData}
		}
		return outputValidationErrors(formatter, issues)
	}

	// Decoded again only for the summary counts; CheckSnapshot found no errors.
	data, err := transfer.ParseSnapshot(raw)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInvalidData, "invalid backup", err)
	}

	result := ValidationResult{Valid: true, Lists: len(data.Lists), Items: countItems(data)}
	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Backup valid: %d %s, %d %s\n",
		result.Lists, plural(result.Lists, "list", "lists"), result.Items, plural(result.Items, "item", "items"))
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationIssue) error {
	if formatter.IsJSON() {
		result := ValidationResult{
			Valid:  false,
			Errors: errs,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", err.Code, err.Field, err.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", err.Code, err.Message)
		}
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
