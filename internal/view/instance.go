package view

import "fmt"

// Instance is a ready-made directive instance with a printable identity.
// Real systems attach arbitrary objects to nodes; tests, scenarios, and the
// journal need instances whose string form is stable, so the builders in
// this repository use Instance values.
type Instance struct {
	Type  *TypeToken
	Owner string // label of the node the instance lives on
}

// NewInstance creates an instance of tok owned by the node labelled owner.
func NewInstance(tok *TypeToken, owner string) *Instance {
	return &Instance{Type: tok, Owner: owner}
}

func (i *Instance) String() string {
	return fmt.Sprintf("%s(%s)", i.Type.Name, i.Owner)
}
