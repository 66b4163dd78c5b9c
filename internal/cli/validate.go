package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saichandh25/viewquery/internal/harness"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidateFileResult holds the validation outcome for one scenario file.
type ValidateFileResult struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidateResult holds the overall validation outcome.
type ValidateResult struct {
	Files    []ValidateFileResult `json:"files"`
	Total    int                  `json:"total"`
	AllValid bool                 `json:"all_valid"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>...",
		Short: "Validate scenario files against the schema",
		Long: `Validate scenario YAML files: strict field parsing, CUE schema
unification, and structural rules (one operation per step, queries
declared before use).

Exit codes:
  0 - All files valid
  1 - One or more files invalid
  2 - Command error

Examples:
  viewquery validate scenarios/tabs.yaml
  viewquery validate scenarios/*.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd, args)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command, args []string) error {
	result := ValidateResult{Total: len(args), AllValid: true}

	for _, path := range args {
		fileResult := ValidateFileResult{File: path, Valid: true}
		if _, err := harness.LoadScenario(path); err != nil {
			fileResult.Valid = false
			fileResult.Error = err.Error()
			result.AllValid = false
		}
		result.Files = append(result.Files, fileResult)
	}

	if opts.Format == "json" {
		response := CLIResponse{Status: "ok", Data: result}
		if !result.AllValid {
			response.Status = "error"
			response.Error = &CLIError{Code: ErrCodeInvalid, Message: "validation failed"}
		}
		if err := writeJSON(cmd.OutOrStdout(), response); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, f := range result.Files {
			if f.Valid {
				fmt.Fprintf(w, "✓ %s\n", f.File)
			} else {
				fmt.Fprintf(w, "✗ %s: %s\n", f.File, f.Error)
			}
		}
		fmt.Fprintf(w, "%d file(s) checked\n", result.Total)
	}

	if !result.AllValid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}
