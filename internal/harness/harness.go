// Package harness executes declarative tree-build scenarios against the
// engine and verifies the flattened results each query produces.
//
// A scenario is a YAML script of structural steps (declare, node, child,
// container, view, remove, exit, refresh) plus expected flattened results.
// Scenarios run against the real engine with a fixed run token and a fresh
// in-memory trace, so the resulting event sequence is deterministic and
// suitable for golden-file comparison.
package harness

import (
	"context"
	"fmt"
	"slices"

	"github.com/saichandh25/viewquery/internal/engine"
	"github.com/saichandh25/viewquery/internal/journal"
)

// DefaultRunToken is used when a scenario specifies no run_token.
const DefaultRunToken = "scenario-run"

// Result is the outcome of one scenario execution.
type Result struct {
	// Pass is true when every expectation matched.
	Pass bool

	// Errors lists expectation mismatches. Empty when Pass is true.
	Errors []string

	// Refreshes holds every refresh result, in execution order.
	Refreshes []engine.RefreshResult

	// Events is the recorded structural event trace.
	Events []journal.Event

	// Final maps each expected query to its flattened values after the
	// last step.
	Final map[string][]string
}

// addError records an expectation failure.
func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// traceRecorder collects events in memory. Implements engine.Recorder.
type traceRecorder struct {
	events []journal.Event
}

func (t *traceRecorder) Append(_ context.Context, ev journal.Event) error {
	t.events = append(t.events, ev)
	return nil
}

// Run executes a scenario against a fresh engine and evaluates its
// expectations. A step error (scope mismatch, invalid query) aborts the
// run; expectation mismatches are collected into the result instead.
func Run(scenario *Scenario) (*Result, error) {
	token := scenario.RunToken
	if token == "" {
		token = DefaultRunToken
	}

	rec := &traceRecorder{}
	eng := engine.New(
		engine.WithRunTokenGenerator(engine.NewFixedGenerator(token)),
		engine.WithRecorder(rec),
	)

	result := &Result{Pass: true, Final: map[string][]string{}}
	for i, step := range scenario.Steps {
		if err := applyStep(eng, &step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	for _, exp := range scenario.Expect {
		final, refreshed := lastRefresh(result.Refreshes, exp.Query)
		if !refreshed {
			result.addError("query %q: expected values but it was never refreshed", exp.Query)
			continue
		}
		result.Final[exp.Query] = final
		if !slices.Equal(final, exp.Values) {
			result.addError("query %q: expected values %v, got %v", exp.Query, exp.Values, final)
		}
	}

	result.Events = rec.events
	return result, nil
}

func applyStep(eng *engine.Engine, step *Step, result *Result) error {
	switch {
	case step.Declare != nil:
		_, err := eng.DeclareQuery(engine.QuerySpec{
			Name:      step.Declare.Query,
			Type:      step.Declare.Type,
			Selectors: step.Declare.Selectors,
			Descend:   step.Declare.Descend,
			Read:      step.Declare.Read,
		})
		return err

	case step.Node != nil:
		locals := make([]engine.LocalSpec, len(step.Node.Locals))
		for i, l := range step.Node.Locals {
			locals[i] = engine.LocalSpec{Name: l.Name, Target: l.Target}
		}
		return eng.NodeCreated(engine.NodeSpec{
			Label:      step.Node.Label,
			Directives: step.Node.Directives,
			Locals:     locals,
		})

	case step.Child != nil:
		_, err := eng.ChildEntered()
		return err

	case step.Container != nil:
		_, err := eng.ContainerCreated()
		return err

	case step.View != nil:
		_, err := eng.ViewEntered(step.View.Index)
		return err

	case step.Remove != nil:
		return eng.ViewRemoved(step.Remove.Index)

	case step.Exit != nil:
		return eng.ScopeExited()

	case step.Refresh != nil:
		if step.Refresh.Query != "" {
			r, err := eng.Refresh(step.Refresh.Query)
			if err != nil {
				return err
			}
			result.Refreshes = append(result.Refreshes, r)
			return nil
		}
		rs, err := eng.RefreshAll()
		if err != nil {
			return err
		}
		result.Refreshes = append(result.Refreshes, rs...)
		return nil

	default:
		return fmt.Errorf("empty step")
	}
}

// lastRefresh returns the values of a query's most recent refresh.
func lastRefresh(refreshes []engine.RefreshResult, query string) ([]string, bool) {
	for i := len(refreshes) - 1; i >= 0; i-- {
		if refreshes[i].Query == query {
			return refreshes[i].Values, true
		}
	}
	return nil, false
}
