package view

// SelfPosition is the sentinel directive-table position meaning "the node
// itself" rather than a directive slot. Local references without a value
// (e.g. #ref on a plain element) resolve to this position.
const SelfPosition = -1

// TypeToken identifies a directive or capability type. Tokens are compared
// by pointer identity - two tokens with the same name are distinct types,
// mirroring how a runtime compares constructor references.
type TypeToken struct {
	Name string
}

// NewTypeToken creates a fresh type identity with the given display name.
func NewTypeToken(name string) *TypeToken {
	return &TypeToken{Name: name}
}

func (t *TypeToken) String() string {
	return t.Name
}

// LocalName binds a reference name to a directive-table position.
// Position is SelfPosition when the name refers to the node itself.
type LocalName struct {
	Name     string
	Position int
}

// TNode is the static data for one template position: the directive types
// declared on the node (positional table) and its local reference names.
//
// TNode values are shared across every Node instantiated from the same
// template position and MUST NOT be mutated after construction.
type TNode struct {
	Directives []*TypeToken
	Locals     []LocalName
}

// Node is one instantiated tree node. Instances is parallel to
// T.Directives; Native is the underlying value the node represents
// (an element handle, in a rendering system).
type Node struct {
	T         *TNode
	Instances []any
	Native    any
}

// NewNode builds a node over static data with its directive instances.
// The instances slice must be parallel to t.Directives.
func NewNode(t *TNode, native any, instances ...any) *Node {
	return &Node{T: t, Instances: instances, Native: native}
}

// InstanceAt returns the directive instance stored at position, or nil when
// the position is SelfPosition or out of range.
func (n *Node) InstanceAt(position int) any {
	if position < 0 || position >= len(n.Instances) {
		return nil
	}
	return n.Instances[position]
}

// FindByType scans the node's static directive table for an entry whose
// declared type is tok. Returns the table position and whether one was found.
func FindByType(n *Node, tok *TypeToken) (int, bool) {
	if n.T == nil {
		return 0, false
	}
	for i, d := range n.T.Directives {
		if d == tok {
			return i, true
		}
	}
	return 0, false
}

// FindByName scans the static local-name table for name. Returns the bound
// directive-table position (or SelfPosition) and whether the name exists.
func FindByName(t *TNode, name string) (int, bool) {
	if t == nil {
		return 0, false
	}
	for _, l := range t.Locals {
		if l.Name == name {
			return l.Position, true
		}
	}
	return 0, false
}
