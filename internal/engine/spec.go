package engine

// Read mode names accepted by QuerySpec.Read. Any other non-empty value
// is interpreted as a directive type name to read from matched nodes.
const (
	// ReadDefaultMode reads the query's own declared type back from the
	// node. Only valid for type queries.
	ReadDefaultMode = "default"

	// ReadResolveMode resolves the matched position through the engine's
	// resolver: directive positions yield the stored instance, the self
	// position yields the node's native value. Required for selector
	// queries, which have no implicit read.
	ReadResolveMode = "resolve"
)

// QuerySpec declares one query in driver vocabulary: strings instead of
// type tokens and read functions, so declarations can be journaled and
// replayed byte for byte.
//
// Exactly one of Type and Selectors must be set.
type QuerySpec struct {
	// Name uniquely identifies the query within a run.
	Name string

	// Type matches nodes declaring this directive type.
	Type string

	// Selectors matches nodes carrying any of these local reference names.
	Selectors []string

	// Descend makes the query visible in all descendant scopes, not just
	// the declaring one.
	Descend bool

	// Read selects the read strategy: "" or ReadDefaultMode for type
	// queries, ReadResolveMode for position resolution, or a directive
	// type name to read that type's instance from matched nodes.
	Read string
}

// LocalSpec binds a local reference name on a node.
// Target is "" or "self" for the node itself, otherwise the name of a
// directive type declared on the same node.
type LocalSpec struct {
	Name   string
	Target string
}

// NodeSpec describes one tree node in driver vocabulary.
type NodeSpec struct {
	// Label is the node's printable identity; instances created for the
	// node render as "Type(label)".
	Label string

	// Directives lists the directive type names declared on the node,
	// in table order.
	Directives []string

	// Locals lists the node's local reference names, in declaration order.
	Locals []LocalSpec
}

// RefreshResult reports one query's refresh outcome.
type RefreshResult struct {
	// Query is the refreshed query's name.
	Query string

	// Recomputed is true when the list was dirty and the value tree was
	// flattened; false when the refresh was a no-op.
	Recomputed bool

	// Values holds the flattened results in string form, valid for the
	// pass the refresh belongs to.
	Values []string

	// Digest is the content-addressed digest of Values.
	Digest string
}
