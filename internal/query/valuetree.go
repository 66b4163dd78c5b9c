package query

// seq is one level of a query's nested value tree: an ordered sequence
// whose slots hold either a matched value or a nested child sequence.
//
// The tree mirrors the structural mutation history of the view tree: each
// container pushed a branch, each view inserted a branch at its ordinal
// position. Flattening the tree therefore yields matched values in
// container/view insertion order, independent of match order.
//
// Branch insertion and removal touch only this sequence's slot slice;
// sibling sequences are never reflowed.
type seq struct {
	slots []slot
}

// slot is a tagged entry of a seq: branch != nil marks a nested sequence,
// otherwise value holds a matched value.
type slot struct {
	branch *seq
	value  any
}

// appendValue records a matched value at the end of this sequence.
func (s *seq) appendValue(v any) {
	s.slots = append(s.slots, slot{value: v})
}

// appendBranch grows the tree by one dimension: a fresh empty child
// sequence appended at the end, reserving a slot for content yet to come.
func (s *seq) appendBranch() *seq {
	child := &seq{}
	s.slots = append(s.slots, slot{branch: child})
	return child
}

// insertBranch places a fresh child sequence at the given ordinal index,
// shifting later slots right. Supports views inserted at arbitrary
// positions, not just appended.
func (s *seq) insertBranch(index int) *seq {
	devAssert(index >= 0 && index <= len(s.slots), "branch insertion index %d out of range 0..%d", index, len(s.slots))
	child := &seq{}
	s.slots = append(s.slots, slot{})
	copy(s.slots[index+1:], s.slots[index:])
	s.slots[index] = slot{branch: child}
	return child
}

// removeBranch removes the slot at index and reports whether the removed
// branch transitively held at least one matched value. Callers use the
// report for minimal invalidation: removing a branch that matched nothing
// must not dirty the target list.
func (s *seq) removeBranch(index int) bool {
	devAssert(index >= 0 && index < len(s.slots), "branch removal index %d out of range 0..%d", index, len(s.slots)-1)
	devAssert(index < 0 || index >= len(s.slots) || s.slots[index].branch != nil, "slot %d is not a branch", index)
	if index < 0 || index >= len(s.slots) {
		return false
	}
	removed := s.slots[index]
	copy(s.slots[index:], s.slots[index+1:])
	s.slots[len(s.slots)-1] = slot{} // release for GC
	s.slots = s.slots[:len(s.slots)-1]
	return removed.branch != nil && removed.branch.hasValues()
}

// hasValues reports whether any leaf of the subtree holds a matched value.
func (s *seq) hasValues() bool {
	for _, sl := range s.slots {
		if sl.branch == nil {
			return true
		}
		if sl.branch.hasValues() {
			return true
		}
	}
	return false
}

// flatten appends every matched value of the subtree to dst in depth-first
// slot order and returns the extended slice.
func (s *seq) flatten(dst []any) []any {
	for _, sl := range s.slots {
		if sl.branch != nil {
			dst = sl.branch.flatten(dst)
			continue
		}
		dst = append(dst, sl.value)
	}
	return dst
}
