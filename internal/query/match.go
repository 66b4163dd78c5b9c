package query

import "github.com/saichandh25/viewquery/internal/view"

// Match is a sealed matching criterion. Only ByType and BySelector
// implement it, so dispatch over criteria is exhaustive.
type Match interface {
	matchCriterion()
}

// ByType matches nodes whose static directive table declares Type.
type ByType struct {
	Type *view.TypeToken
}

func (ByType) matchCriterion() {}

// BySelector matches nodes carrying any of Names in their local-name table.
// Each name is tested independently; a node can contribute one match per
// name it carries.
//
// Selector queries have no implicit way to turn a match into a value, so
// they MUST be declared with ReadCustom. A BySelector predicate evaluated
// with ReadDefault is a caller contract breach: it fails fast under the
// viewquerydebug build tag and matches nothing in release builds.
type BySelector struct {
	Names []string
}

func (BySelector) matchCriterion() {}

// ReadFunc extracts a result value from a matched node. It receives the
// node's lookup context, the node, and the resolved directive-table
// position (view.SelfPosition when the match is the node itself).
// A nil return means "nothing to record": no append, no dirty mark.
type ReadFunc func(ctx *view.Context, n *view.Node, position int) any

// Read is a sealed read strategy. Only ReadDefault and ReadCustom implement
// it; the two resolution branches are therefore statically exhaustive.
type Read interface {
	readStrategy()
}

// ReadDefault reads the predicate's own declared type back from the node's
// directive table. Only meaningful for ByType predicates, where it is the
// default when no explicit strategy is given.
type ReadDefault struct{}

func (ReadDefault) readStrategy() {}

// ReadCustom extracts the value with a caller-supplied function, typically
// closed over the injection machinery's resolve call.
type ReadCustom struct {
	Fn ReadFunc
}

func (ReadCustom) readStrategy() {}

// ReadResolver adapts a view.Resolver into a custom read strategy.
func ReadResolver(r view.Resolver) ReadCustom {
	return ReadCustom{Fn: func(ctx *view.Context, n *view.Node, position int) any {
		return r.Resolve(ctx, n, position)
	}}
}
