// Package journal provides durable storage for structural event logs.
//
// A journal records every structural mutation of a tree build - query
// declarations, node insertions, container and view creation and removal,
// refreshes - as content-addressed events stamped with a logical seq.
// Because the query engine is deterministic, replaying a recorded run
// against a fresh engine reproduces the exact same flattened results;
// the replay helpers in this package verify that property.
//
// Storage is SQLite with WAL mode for concurrent read access. Writes are
// idempotent: event IDs are content-addressed and inserts use
// ON CONFLICT DO NOTHING, so appending the same event twice is harmless.
//
// Serialization uses canonical JSON (sorted UTF-16 keys, NFC-normalized
// strings, no floats, no HTML escaping) so that identical payloads always
// hash to identical IDs.
package journal
