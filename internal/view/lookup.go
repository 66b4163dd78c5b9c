package view

// Context is the per-node lookup context handed to custom read strategies.
// It is the node's window into the injection machinery; this package only
// models the single resolve call the query engine issues through it.
type Context struct {
	node *Node
}

// ContextFor returns the lookup context of a node.
// The query engine obtains this once per node insertion.
func ContextFor(n *Node) *Context {
	return &Context{node: n}
}

// Node returns the node this context belongs to.
func (c *Context) Node() *Node {
	return c.node
}

// Resolver turns a matched directive-table position into a concrete value.
// Resolve returns nil when the position yields nothing; the engine treats a
// nil result as "no match".
type Resolver interface {
	Resolve(ctx *Context, n *Node, position int) any
}

// InstanceResolver resolves positions against the node's own instance table:
// SelfPosition yields the node's native value, any other position yields the
// stored directive instance.
type InstanceResolver struct{}

// Resolve implements Resolver.
func (InstanceResolver) Resolve(_ *Context, n *Node, position int) any {
	if position == SelfPosition {
		return n.Native
	}
	return n.InstanceAt(position)
}
