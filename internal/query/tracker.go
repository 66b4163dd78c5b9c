package query

import "github.com/saichandh25/viewquery/internal/view"

// Tracker tracks the active queries of one structural scope - root,
// component view, embedded view, or container.
//
// A nil *Tracker is the valid "no tracking needed" scope: every structural
// operation on it short-circuits. Scopes with no deep predicates and no
// shallow predicates of their own never allocate a tracker, which keeps
// the common case - queries bounded to one scope - allocation free in
// descendants.
type Tracker struct {
	shallow *predicate
	deep    *predicate
}

// NewTracker creates an empty scope tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Track registers a new query at this scope. The predicate joins the deep
// chain when descend is true (visible here and in every descendant scope)
// or the shallow chain otherwise (visible only here). read may be nil for
// ByType criteria, defaulting to reading the declared type itself.
func (t *Tracker) Track(list *List, m Match, descend bool, read Read) {
	if descend {
		t.deep = newPredicate(t.deep, list, m, read)
	} else {
		t.shallow = newPredicate(t.shallow, list, m, read)
	}
}

// Child returns the tracker for a directly nested scope that is neither a
// container nor a view.
//
// Returns nil when there are no deep predicates: nothing propagates, so the
// child needs no tracking. Otherwise a new tracker carries the deep chain
// only - shallow predicates never propagate. The deep chain is shared, not
// cloned, so child matches land in the same value-tree leaves; but the
// child always gets its own tracker, so a query declared inside the child
// joins the child's chains and stays invisible to the parent scope.
func (t *Tracker) Child() *Tracker {
	if t == nil || t.deep == nil {
		return nil
	}
	return &Tracker{deep: t.deep}
}

// Container returns the tracker for a container scope created at this
// level, or nil when no deep predicates propagate into it.
//
// For each deep predicate, a fresh empty branch is pushed into its value
// tree - reserving a slot for views yet to be added - and the predicate is
// cloned pointing at that branch. The clone-per-container mechanism is how
// the nested value tree grows a dimension for every container in the tree.
func (t *Tracker) Container() *Tracker {
	if t == nil || t.deep == nil {
		return nil
	}
	var chain *predicate
	for p := t.deep; p != nil; p = p.next {
		chain = p.clone(chain, p.values.appendBranch())
	}
	return &Tracker{deep: chain}
}

// EnterView returns the tracker for a view inserted at the given ordinal
// index of this container scope, or nil when no deep predicates propagate.
// Identical cloning to Container, except the fresh branch is inserted at
// index rather than pushed at the end, so views may appear at arbitrary
// positions.
func (t *Tracker) EnterView(index int) *Tracker {
	if t == nil || t.deep == nil {
		return nil
	}
	var chain *predicate
	for p := t.deep; p != nil; p = p.next {
		chain = p.clone(chain, p.values.insertBranch(index))
	}
	return &Tracker{deep: chain}
}

// RemoveView drops the view at the given index of this container scope.
// A target list is marked dirty only when the removed view held at least
// one matched value; removing a view that matched nothing triggers no
// recomputation.
func (t *Tracker) RemoveView(index int) {
	if t == nil {
		return
	}
	for p := t.deep; p != nil; p = p.next {
		if p.values.removeBranch(index) {
			p.list.setDirty()
		}
	}
}

// AddNode feeds a newly created node through every predicate visible at
// this scope, shallow chain first. Each genuine match appends its resolved
// value to the predicate's value-tree leaf and dirties the target list.
func (t *Tracker) AddNode(n *view.Node) {
	if t == nil {
		return
	}
	ctx := view.ContextFor(n)
	addNode(t.shallow, ctx, n)
	addNode(t.deep, ctx, n)
}
