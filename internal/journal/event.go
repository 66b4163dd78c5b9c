package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Kind identifies a structural event type.
type Kind string

// Structural event kinds, in the vocabulary of the tree-build driver.
const (
	KindDeclareQuery     Kind = "declare_query"
	KindNodeCreated      Kind = "node_created"
	KindChildEntered     Kind = "child_entered"
	KindContainerCreated Kind = "container_created"
	KindViewEntered      Kind = "view_entered"
	KindViewRemoved      Kind = "view_removed"
	KindScopeExited      Kind = "scope_exited"
	KindRefresh          Kind = "refresh"
)

// ValidKind reports whether k is a known event kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindDeclareQuery, KindNodeCreated, KindChildEntered,
		KindContainerCreated, KindViewEntered, KindViewRemoved,
		KindScopeExited, KindRefresh:
		return true
	default:
		return false
	}
}

// Event is one recorded structural mutation of a tree build.
//
// ID is content-addressed over (run, seq, kind, payload), so the same
// mutation recorded twice is one row in the journal. Payload is
// constrained to canonical-JSON-able values: strings, int64s, bools,
// arrays, and string-keyed objects of the same.
type Event struct {
	ID      string
	Run     string // token of the tree-build run this event belongs to
	Seq     int64  // logical clock stamp; strictly increasing within a run
	Kind    Kind
	Payload map[string]any
}

// Domain prefixes for content-addressed identity. The version suffix
// enables future algorithm migration.
const (
	domainEvent  = "viewquery/event/v1"
	domainDigest = "viewquery/digest/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data); the null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventID computes the content-addressed ID for an event.
// Stable across restarts and replays given the same inputs.
// Returns an error if the payload cannot be canonically marshaled.
func EventID(run string, seq int64, kind Kind, payload map[string]any) (string, error) {
	obj := map[string]any{
		"run":     run,
		"seq":     seq,
		"kind":    string(kind),
		"payload": payload,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EventID: failed to marshal: %w", err)
	}
	return hashWithDomain(domainEvent, canonical), nil
}

// NewEvent builds an event with its content-addressed ID filled in.
// A nil payload is normalized to an empty object.
func NewEvent(run string, seq int64, kind Kind, payload map[string]any) (Event, error) {
	if !ValidKind(kind) {
		return Event{}, fmt.Errorf("NewEvent: unknown kind %q", kind)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	id, err := EventID(run, seq, kind, payload)
	if err != nil {
		return Event{}, err
	}
	return Event{ID: id, Run: run, Seq: seq, Kind: kind, Payload: payload}, nil
}

// ResultDigest computes the content-addressed digest of one query's
// flattened result values. Replay compares digests, not raw values, so a
// recorded run and its replay can be checked for equivalence without
// retaining every value.
func ResultDigest(values []string) (string, error) {
	canonical, err := MarshalCanonical(values)
	if err != nil {
		return "", fmt.Errorf("ResultDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(domainDigest, canonical), nil
}

// MustResultDigest is like ResultDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustResultDigest(values []string) string {
	d, err := ResultDigest(values)
	if err != nil {
		panic(err)
	}
	return d
}
