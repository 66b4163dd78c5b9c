package query

// predicate is one tracked query at one scope: the matching criterion, the
// read strategy, the target List it feeds, and the private value-tree leaf
// its matches accumulate into.
//
// Predicates form singly linked chains, most-recently-registered first.
// A chain is exclusively owned by the Tracker it hangs off; deep-chain
// entries are additionally cloned into every descendant scope. Clones
// share list, match, and read, but each points at its own values leaf.
type predicate struct {
	next   *predicate
	list   *List
	match  Match
	read   Read
	values *seq
}

// newPredicate prepends a predicate to chain. Its values leaf is the
// target list's root sequence, so matches recorded through it and through
// any clone taken later flatten together.
func newPredicate(chain *predicate, list *List, m Match, r Read) *predicate {
	if r == nil {
		r = ReadDefault{}
	}
	return &predicate{
		next:   chain,
		list:   list,
		match:  m,
		read:   r,
		values: list.root,
	}
}

// clone copies the predicate with a new values leaf, prepending to chain.
// The clone shares the target List - every clone funnels into the same
// flattened output.
func (p *predicate) clone(chain *predicate, values *seq) *predicate {
	return &predicate{
		next:   chain,
		list:   p.list,
		match:  p.match,
		read:   p.read,
		values: values,
	}
}
