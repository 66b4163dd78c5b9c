package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saichandh25/viewquery/internal/engine"
	"github.com/saichandh25/viewquery/internal/journal"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Run      string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	Run           string   `json:"run"`
	Events        int      `json:"events"`
	LastSeq       int64    `json:"last_seq"`
	Queries       int      `json:"queries"`
	Deterministic bool     `json:"deterministic"`
	Mismatched    []string `json:"mismatched,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay journaled runs and verify determinism",
		Long: `Replay recorded tree-build runs from a journal. Each run is replayed
against two fresh engines; their per-query result digests must agree,
and the digests recorded in refresh events must match the recomputed
ones.

Exit codes:
  0 - All runs replayed deterministically
  1 - Determinism verification failed
  2 - Command error (journal not found, etc.)

Examples:
  viewquery replay --db ./viewquery.db
  viewquery replay --db ./viewquery.db --run scenario-run
  viewquery replay --db ./viewquery.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Run, "run", "", "replay a specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	store, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer store.Close()

	var runs []journal.RunInfo
	if opts.Run != "" {
		last, err := store.LastSeq(ctx, opts.Run)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("run %s", opts.Run), err)
		}
		runs = []journal.RunInfo{{Run: opts.Run, LastSeq: last}}
	} else {
		runs, err = store.Runs(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
	}

	if len(runs) == 0 {
		if opts.Format == "json" {
			return writeJSON(cmd.OutOrStdout(), CLIResponse{
				Status: "ok",
				Data:   ReplayResult{Runs: []ReplayRunResult{}, AllDeterministic: true},
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No runs found in journal.")
		return nil
	}

	result := ReplayResult{TotalRuns: len(runs), AllDeterministic: true}
	for _, info := range runs {
		runResult, err := replayAndVerifyRun(ctx, store, info.Run)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", info.Run), err)
		}
		result.Runs = append(result.Runs, runResult)
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// replayAndVerifyRun replays one run against two fresh engines and
// compares their result digests. Refresh events additionally carry the
// originally recorded digest, which Engine.Apply checks on the fly.
func replayAndVerifyRun(ctx context.Context, store *journal.Store, run string) (ReplayRunResult, error) {
	first := engine.New(engine.WithRunTokenGenerator(engine.NewFixedGenerator(run + "-replay-1")))
	second := engine.New(engine.WithRunTokenGenerator(engine.NewFixedGenerator(run + "-replay-2")))

	summary, err := store.Replay(ctx, run, first)
	if err != nil {
		if engine.IsReplayMismatch(err) {
			return ReplayRunResult{Run: run, Deterministic: false, Mismatched: []string{err.Error()}}, nil
		}
		return ReplayRunResult{}, err
	}

	again, err := store.Replay(ctx, run, second)
	if err != nil {
		return ReplayRunResult{}, err
	}

	var mismatched []string
	for name, digest := range summary.Digests {
		if again.Digests[name] != digest {
			mismatched = append(mismatched, name)
		}
	}

	return ReplayRunResult{
		Run:           run,
		Events:        summary.EventCount,
		LastSeq:       summary.LastSeq,
		Queries:       len(summary.Digests),
		Deterministic: len(mismatched) == 0,
		Mismatched:    mismatched,
	}, nil
}

func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeDeterminism,
			Message: "determinism verification failed",
		}
	}
	if err := writeJSON(cmd.OutOrStdout(), response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n\n", result.TotalRuns)
	for _, run := range result.Runs {
		status := "✓"
		if !run.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Run: %s\n", status, run.Run)

		if verbose {
			fmt.Fprintf(w, "  Events: %d\n", run.Events)
			fmt.Fprintf(w, "  Last seq: %d\n", run.LastSeq)
			fmt.Fprintf(w, "  Queries: %d\n", run.Queries)
		} else {
			fmt.Fprintf(w, "  Events: %d, queries: %d\n", run.Events, run.Queries)
		}
		for _, m := range run.Mismatched {
			fmt.Fprintf(w, "  Mismatch: %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All runs verified deterministic")
		return nil
	}
	fmt.Fprintln(w, "✗ Determinism verification failed")
	return NewExitError(ExitFailure, "determinism verification failed")
}
