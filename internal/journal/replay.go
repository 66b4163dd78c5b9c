package journal

import (
	"context"
	"fmt"
)

// Applier consumes structural events one at a time.
// Implemented by the engine; the journal never depends on it directly.
type Applier interface {
	Apply(ev Event) error
}

// Digester exposes the per-query result digests an Applier accumulated.
// The digests are keyed by query name and computed with ResultDigest over
// the flattened values of the query's last refresh.
type Digester interface {
	ResultDigests() map[string]string
}

// ReplaySummary reports the outcome of replaying one run.
type ReplaySummary struct {
	Run        string
	EventCount int
	LastSeq    int64
	// Digests holds the per-query result digests after the final event.
	Digests map[string]string
}

// Replay feeds every event of a run, in seq order, into the applier.
// Replay is structural: the same code path handles initial execution and
// replay, and the applier's determinism guarantees identical results for
// identical event sequences.
func (s *Store) Replay(ctx context.Context, run string, applier Applier) (ReplaySummary, error) {
	events, err := s.Events(ctx, run)
	if err != nil {
		return ReplaySummary{}, fmt.Errorf("replay run %s: %w", run, err)
	}

	summary := ReplaySummary{Run: run}
	for _, ev := range events {
		if err := applier.Apply(ev); err != nil {
			return summary, fmt.Errorf("replay run %s: event seq %d (%s): %w", run, ev.Seq, ev.Kind, err)
		}
		summary.EventCount++
		summary.LastSeq = ev.Seq
	}

	if d, ok := applier.(Digester); ok {
		summary.Digests = d.ResultDigests()
	}
	return summary, nil
}

// VerifyDeterminism replays a run against two fresh appliers and compares
// their result digests. Returns the mismatched query names (empty when
// the replays agree) - the caller decides whether a mismatch is fatal.
func (s *Store) VerifyDeterminism(ctx context.Context, run string, first, second Applier) ([]string, error) {
	a, err := s.Replay(ctx, run, first)
	if err != nil {
		return nil, err
	}
	b, err := s.Replay(ctx, run, second)
	if err != nil {
		return nil, err
	}

	var mismatched []string
	for name, digest := range a.Digests {
		if b.Digests[name] != digest {
			mismatched = append(mismatched, name)
		}
	}
	for name := range b.Digests {
		if _, ok := a.Digests[name]; !ok {
			mismatched = append(mismatched, name)
		}
	}
	return mismatched, nil
}
