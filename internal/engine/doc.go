// Package engine drives the query core through a depth-first tree build.
//
// The engine owns the scope stack that mirrors the structural nesting of
// the tree being built: the root scope, plain child scopes, container
// scopes, and view scopes. Every structural operation applies to the scope
// on top of the stack and keeps the trackers of package query in sync
// without ever re-scanning the tree.
//
// ARCHITECTURE:
//
// Single-threaded, cooperative, synchronous:
// Structural mutation, matching, and refresh all happen on one logical
// thread of control. The engine assumes nodes, containers, and views are
// added and removed in depth-first, scope-nested order - a container scope
// is entered before its child views and exited only after all of them are
// processed. There are no locks because there is no concurrent access.
//
// Logical clock:
// Every structural event is stamped with a monotonic seq from Clock.Next().
// Never wall-clock timestamps - replay must produce identical order.
//
// Journaling:
// When a recorder is attached, each structural event is appended to the
// journal as it is applied. Apply() consumes recorded events, so a journal
// replayed against a fresh engine reproduces the exact same flattened
// results; see package journal.
package engine
