package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saichandh25/viewquery/internal/harness"
	"github.com/saichandh25/viewquery/internal/journal"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Journal string // optional journal database path
}

// RunScenarioResult holds the execution outcome for one scenario.
type RunScenarioResult struct {
	File     string              `json:"file"`
	Scenario string              `json:"scenario"`
	Pass     bool                `json:"pass"`
	Errors   []string            `json:"errors,omitempty"`
	Events   int                 `json:"events"`
	Results  map[string][]string `json:"results,omitempty"`
}

// RunResult holds the overall run outcome.
type RunResult struct {
	Scenarios []RunScenarioResult `json:"scenarios"`
	Total     int                 `json:"total"`
	Passed    int                 `json:"passed"`
	AllPassed bool                `json:"all_passed"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Execute scenarios against the engine",
		Long: `Execute scenario files against a fresh engine each and check their
expected flattened results. With --journal, the structural event trace
of every scenario is appended to a SQLite journal for later replay.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error

Examples:
  viewquery run scenarios/tabs.yaml
  viewquery run scenarios/*.yaml --journal ./viewquery.db
  viewquery run scenarios/tabs.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "append event traces to this SQLite journal")

	return cmd
}

func runRun(opts *RunOptions, cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var store *journal.Store
	if opts.Journal != "" {
		var err error
		store, err = journal.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer store.Close()
	}

	result := RunResult{Total: len(args), AllPassed: true}
	for _, path := range args {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load %s", path), err)
		}

		runResult, err := harness.Run(scenario)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to run %s", scenario.Name), err)
		}

		if store != nil {
			for _, ev := range runResult.Events {
				if err := store.Append(ctx, ev); err != nil {
					return WrapExitError(ExitCommandError, "failed to journal event", err)
				}
			}
		}

		scenarioResult := RunScenarioResult{
			File:     path,
			Scenario: scenario.Name,
			Pass:     runResult.Pass,
			Errors:   runResult.Errors,
			Events:   len(runResult.Events),
			Results:  runResult.Final,
		}
		result.Scenarios = append(result.Scenarios, scenarioResult)
		if runResult.Pass {
			result.Passed++
		} else {
			result.AllPassed = false
		}
	}

	if opts.Format == "json" {
		response := CLIResponse{Status: "ok", Data: result}
		if !result.AllPassed {
			response.Status = "error"
			response.Error = &CLIError{Code: ErrCodeRunFailed, Message: "scenario failures"}
		}
		if err := writeJSON(cmd.OutOrStdout(), response); err != nil {
			return err
		}
	} else {
		outputRunText(cmd, result, opts.Verbose)
	}

	if !result.AllPassed {
		return NewExitError(ExitFailure, "scenario failures")
	}
	return nil
}

func outputRunText(cmd *cobra.Command, result RunResult, verbose bool) {
	w := cmd.OutOrStdout()

	for _, s := range result.Scenarios {
		status := "✓"
		if !s.Pass {
			status = "✗"
		}
		fmt.Fprintf(w, "%s %s (%d events)\n", status, s.Scenario, s.Events)

		if verbose {
			for query, values := range s.Results {
				fmt.Fprintf(w, "  %s: %v\n", query, values)
			}
		}
		for _, msg := range s.Errors {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}
	fmt.Fprintf(w, "%d/%d scenario(s) passed\n", result.Passed, result.Total)
}
