package query

import (
	"github.com/google/uuid"
)

// State is the lifecycle state of a List.
//
// The only transitions are:
//
//	Dirty -> Fresh      (Refresh flattened the value tree)
//	Fresh -> Dirty      (a match was appended or a non-empty view removed)
//	Dirty|Fresh -> Destroyed (terminal)
//
// A List starts Dirty: no results have been computed yet.
type State int

const (
	// StateDirty means the flattened values are stale relative to the
	// value tree and the next Refresh must recompute them.
	StateDirty State = iota
	// StateFresh means Values reflects the value tree; Refresh is a no-op.
	StateFresh
	// StateDestroyed is terminal. Refresh must not be called after it.
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateDirty:
		return "dirty"
	case StateFresh:
		return "fresh"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// List is the user-visible result of a declared query: a dirty-tracked,
// lazily flattened ordered collection of matched values.
//
// A List may be the target of many predicate clones (one per scope the
// query is visible in); all of them funnel matches into the root value
// tree owned here. The List holds matched values only - it owns no nodes.
type List struct {
	id     string
	state  State
	values []any
	root   *seq
	signal *Signal
}

// NewList creates an empty, dirty result list with a fresh change signal.
// The id is a UUIDv7, time-sortable for diagnostics.
func NewList() *List {
	return newListWithID(uuid.Must(uuid.NewV7()).String())
}

// newListWithID is the test seam for deterministic list identities.
func newListWithID(id string) *List {
	return &List{
		id:     id,
		state:  StateDirty,
		root:   &seq{},
		signal: NewSignal(),
	}
}

// ID returns the list's stable identity.
func (l *List) ID() string {
	return l.id
}

// State returns the current lifecycle state.
func (l *List) State() State {
	return l.state
}

// Dirty reports whether the flattened values are stale.
func (l *List) Dirty() bool {
	return l.state == StateDirty
}

// Values returns the flattened results of the last Refresh.
// Valid only while the list is Fresh.
func (l *List) Values() []any {
	return l.values
}

// Len returns the number of flattened results of the last Refresh.
func (l *List) Len() int {
	return len(l.values)
}

// Changed returns the signal notified once per refresh that found the list
// dirty.
func (l *List) Changed() *Signal {
	return l.signal
}

// setDirty is the single entry point through which matching and view
// removal invalidate the list. Keeping one setter makes the state machine
// auditable: grep for setDirty and you have every invalidation site.
func (l *List) setDirty() {
	devAssert(l.state != StateDestroyed, "list %s dirtied after destroy", l.id)
	if l.state == StateFresh {
		l.state = StateDirty
	}
}

// Refresh recomputes the flattened values if and only if the list is
// dirty, notifies the change signal, and reports whether a recomputation
// occurred. Called once per change-detection pass; a second call with no
// intervening mutation is a no-op.
//
// Refresh must never be called after Destroy.
func (l *List) Refresh() bool {
	devAssert(l.state != StateDestroyed, "list %s refreshed after destroy", l.id)
	if l.state != StateDirty {
		return false
	}
	l.values = l.root.flatten(l.values[:0])
	l.state = StateFresh
	l.signal.notify()
	return true
}

// Destroy terminates the change signal and moves the list to its terminal
// state. The tree it tracked may outlive it; the list never owned nodes.
func (l *List) Destroy() {
	if l.state == StateDestroyed {
		return
	}
	l.state = StateDestroyed
	l.signal.complete()
}
