// Package query implements the reactive view-query core.
//
// A query is declared with a matching criterion (a directive type or a set
// of local reference names), a propagation depth (shallow or deep), and a
// read strategy. Declaring a query yields a List - the dirty-tracked,
// lazily flattened collection of matched values the consumer observes.
//
// ARCHITECTURE:
//
// Trackers and predicate chains:
// Every structural scope (root, view, container) owns a Tracker holding two
// singly linked predicate chains, most-recently-registered first:
//   - shallow: predicates visible only at this scope
//   - deep: predicates visible here and in every descendant scope
//
// Shallow predicates never propagate downward. Deep predicates are cloned
// into descendant scopes; clones share the target List but each owns a
// private leaf of the nested value tree.
//
// Value tree:
// Matched values accumulate in per-scope ordered sequences whose slots are
// either values or nested child sequences. The tree mirrors the structural
// mutation history of containers and views, so flattening it yields results
// in document order regardless of registration or insertion order.
//
// Dirty tracking:
// A List moves Dirty -> Fresh on Refresh and back to Dirty on any append or
// non-empty view removal. Removing a view that matched nothing never marks
// the list dirty - minimal invalidation keeps change detection cheap.
//
// CRITICAL PATTERNS:
//
// Single-threaded mutation: structural mutation, matching, and refresh all
// run on one logical thread of control, driven by the tree-build process.
// Nothing in this package locks; see package engine for the driver contract.
//
// Invariant checks compile only under the "viewquerydebug" build tag.
// Release builds elide them entirely; callers are expected to respect the
// depth-first build ordering that makes them unreachable.
package query
