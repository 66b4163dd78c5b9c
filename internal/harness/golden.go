package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/saichandh25/viewquery/internal/journal"
)

// TraceSnapshot is the deterministic projection of a scenario run used
// for golden-file comparison: the structural event sequence plus every
// refresh result. Content-addressed IDs and digests are omitted so the
// golden files stay reviewable by hand.
type TraceSnapshot struct {
	Scenario  string
	Run       string
	Events    []journal.Event
	Refreshes []refreshView
}

type refreshView struct {
	Query      string
	Recomputed bool
	Values     []string
}

// NewTraceSnapshot builds the snapshot of one scenario run.
func NewTraceSnapshot(scenario *Scenario, result *Result) TraceSnapshot {
	token := scenario.RunToken
	if token == "" {
		token = DefaultRunToken
	}
	views := make([]refreshView, len(result.Refreshes))
	for i, r := range result.Refreshes {
		views[i] = refreshView{Query: r.Query, Recomputed: r.Recomputed, Values: r.Values}
	}
	return TraceSnapshot{
		Scenario:  scenario.Name,
		Run:       token,
		Events:    result.Events,
		Refreshes: views,
	}
}

// MarshalCanonical renders the snapshot as canonical JSON with a trailing
// newline. Sorted keys and NFC normalization make the bytes stable across
// runs and platforms.
func (s TraceSnapshot) MarshalCanonical() ([]byte, error) {
	trace := make([]any, len(s.Events))
	for i, ev := range s.Events {
		trace[i] = map[string]any{
			"kind": string(ev.Kind),
			"seq":  ev.Seq,
		}
	}
	results := make([]any, len(s.Refreshes))
	for i, r := range s.Refreshes {
		results[i] = map[string]any{
			"query":      r.Query,
			"recomputed": r.Recomputed,
			"values":     r.Values,
		}
	}

	data, err := journal.MarshalCanonical(map[string]any{
		"results":  results,
		"run":      s.Run,
		"scenario": s.Scenario,
		"trace":    trace,
	})
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario, asserts its expectations, and
// compares the trace snapshot against testdata/golden/{name}.golden.
//
// To regenerate golden files:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}
	if !result.Pass {
		t.Fatalf("scenario %s failed: %v", scenario.Name, result.Errors)
	}

	snapshot := NewTraceSnapshot(scenario, result)
	data, err := snapshot.MarshalCanonical()
	if err != nil {
		t.Fatalf("scenario %s: marshaling snapshot: %v", scenario.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
}
