// Package view defines the node model the query engine tracks.
//
// A view tree is built from Nodes. Each Node carries two layers of data:
//
//   - TNode: static, per-template data shared by every instantiation of the
//     same template position. It lists the directive types declared on the
//     node and the local reference names bound there.
//   - Node: per-instance data - the concrete directive instances and the
//     native value the node represents.
//
// The query engine never creates or destroys nodes; it only inspects them
// through the lookup helpers in this package (FindByType, FindByName) and
// through a Resolver, which turns a matched table position into a concrete
// value.
package view
