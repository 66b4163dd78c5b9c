package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saichandh25/viewquery/internal/harness"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <scenario.yaml>",
		Short: "Execute a scenario and print its trace snapshot",
		Long: `Execute one scenario and print the deterministic trace snapshot: the
structural event sequence and every refresh result. With --format json
the output is the canonical JSON used for golden-file comparison.

Exit codes:
  0 - Scenario ran and passed
  1 - Scenario expectations failed
  2 - Command error

Examples:
  viewquery trace scenarios/tabs.yaml
  viewquery trace scenarios/tabs.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd, args[0])
		},
	}

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command, path string) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load %s", path), err)
	}

	result, err := harness.Run(scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to run %s", scenario.Name), err)
	}

	snapshot := harness.NewTraceSnapshot(scenario, result)
	w := cmd.OutOrStdout()

	if opts.Format == "json" {
		data, err := snapshot.MarshalCanonical()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to marshal snapshot", err)
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w, "Scenario: %s (run %s)\n", snapshot.Scenario, snapshot.Run)
		for _, ev := range snapshot.Events {
			fmt.Fprintf(w, "  %4d  %s\n", ev.Seq, ev.Kind)
		}
		for _, r := range result.Refreshes {
			fmt.Fprintf(w, "  refresh %s: recomputed=%v values=%v\n", r.Query, r.Recomputed, r.Values)
		}
	}

	if !result.Pass {
		for _, msg := range result.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", msg)
		}
		return NewExitError(ExitFailure, "scenario expectations failed")
	}
	return nil
}
