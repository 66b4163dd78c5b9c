package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Append inserts an event into the journal.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - re-appending a
// content-addressed event is silently ignored. Other constraint
// violations (a different event claiming the same run/seq slot) still
// return errors.
//
// The payload is serialized to canonical JSON so that storage, hashing,
// and golden traces all agree byte for byte.
func (s *Store) Append(ctx context.Context, ev Event) error {
	if !ValidKind(ev.Kind) {
		return fmt.Errorf("append event: unknown kind %q", ev.Kind)
	}

	payloadJSON, err := MarshalCanonical(ev.Payload)
	if err != nil {
		return fmt.Errorf("append event: marshal payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (id, run, seq, kind, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		ev.ID,
		ev.Run,
		ev.Seq,
		string(ev.Kind),
		string(payloadJSON),
	)
	if err != nil {
		return fmt.Errorf("append event %s: %w", ev.ID, err)
	}

	return nil
}

// unmarshalPayload parses stored JSON TEXT back into an event payload.
// Numbers decode via json.Number and are normalized to int64 to avoid
// float64 precision loss; the canonical marshaler rejects floats anyway.
func unmarshalPayload(data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return map[string]any{}, nil
	}
	var raw map[string]any
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	normalized, err := normalizeValue(raw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return normalized.(map[string]any), nil
}

// normalizeValue rewrites json.Number leaves to int64 recursively.
func normalizeValue(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("non-integer number %q", val.String())
		}
		return n, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			n, err := normalizeValue(elem)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			n, err := normalizeValue(elem)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	default:
		return v, nil
	}
}
