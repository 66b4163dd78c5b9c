package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run token has no events in the journal.
var ErrRunNotFound = errors.New("run not found in journal")

// Events returns every event of a run in seq order.
// Returns ErrRunNotFound when the run has no events.
func (s *Store) Events(ctx context.Context, run string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run, seq, kind, payload
		FROM events
		WHERE run = ?
		ORDER BY seq ASC
	`, run)
	if err != nil {
		return nil, fmt.Errorf("read events for run %s: %w", run, err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("read events for run %s: %w", run, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events for run %s: %w", run, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("run %s: %w", run, ErrRunNotFound)
	}
	return events, nil
}

// RunInfo summarizes one recorded run.
type RunInfo struct {
	Run        string
	EventCount int
	LastSeq    int64
}

// Runs lists every recorded run, ordered by run token.
// UUIDv7 run tokens sort by creation time, so the listing is chronological
// for production journals.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run, COUNT(*), MAX(seq)
		FROM events
		GROUP BY run
		ORDER BY run ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.Run, &info.EventCount, &info.LastSeq); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// LastSeq returns the highest seq recorded for a run. A run with no
// events reports ErrRunNotFound.
func (s *Store) LastSeq(ctx context.Context, run string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM events WHERE run = ?
	`, run).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq for run %s: %w", run, err)
	}
	if !seq.Valid {
		return 0, fmt.Errorf("last seq for run %s: %w", run, ErrRunNotFound)
	}
	return seq.Int64, nil
}

// scanEvent reads one events row.
func scanEvent(rows *sql.Rows) (Event, error) {
	var ev Event
	var kind, payload string
	if err := rows.Scan(&ev.ID, &ev.Run, &ev.Seq, &kind, &payload); err != nil {
		return Event{}, err
	}
	ev.Kind = Kind(kind)

	decoded, err := unmarshalPayload(payload)
	if err != nil {
		return Event{}, fmt.Errorf("event %s: %w", ev.ID, err)
	}
	ev.Payload = decoded
	return ev, nil
}
