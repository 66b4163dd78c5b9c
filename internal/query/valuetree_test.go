package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeq_AppendAndFlatten(t *testing.T) {
	s := &seq{}
	s.appendValue("a")
	s.appendValue("b")

	assert.Equal(t, []any{"a", "b"}, s.flatten(nil))
}

func TestSeq_FlattenDepthFirst(t *testing.T) {
	// a [c d [e]] b - values interleaved with branches flatten in slot order.
	s := &seq{}
	s.appendValue("a")
	child := s.appendBranch()
	s.appendValue("b")
	child.appendValue("c")
	child.appendValue("d")
	grand := child.appendBranch()
	grand.appendValue("e")

	assert.Equal(t, []any{"a", "c", "d", "e", "b"}, s.flatten(nil))
}

func TestSeq_InsertBranchOrdering(t *testing.T) {
	// Branches inserted out of order flatten by ordinal index, not by the
	// order the insertions were issued.
	s := &seq{}
	second := s.insertBranch(0)
	second.appendValue("v1")
	first := s.insertBranch(0)
	first.appendValue("v0")
	third := s.insertBranch(2)
	third.appendValue("v2")

	assert.Equal(t, []any{"v0", "v1", "v2"}, s.flatten(nil))
}

func TestSeq_RemoveBranch(t *testing.T) {
	testCases := []struct {
		name      string
		populate  func(branch *seq)
		wantDirty bool
	}{
		{
			name:      "empty branch",
			populate:  func(*seq) {},
			wantDirty: false,
		},
		{
			name:      "branch with a value",
			populate:  func(b *seq) { b.appendValue("x") },
			wantDirty: true,
		},
		{
			name:      "branch with only an empty sub-branch",
			populate:  func(b *seq) { b.appendBranch() },
			wantDirty: false,
		},
		{
			name:      "branch with a value nested two levels down",
			populate:  func(b *seq) { b.appendBranch().appendValue("x") },
			wantDirty: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := &seq{}
			branch := s.appendBranch()
			tc.populate(branch)

			held := s.removeBranch(0)
			assert.Equal(t, tc.wantDirty, held)
			assert.Empty(t, s.slots)
		})
	}
}

func TestSeq_RemoveBranchKeepsSiblings(t *testing.T) {
	s := &seq{}
	b0 := s.appendBranch()
	b0.appendValue("v0")
	b1 := s.appendBranch()
	b1.appendValue("v1")
	b2 := s.appendBranch()
	b2.appendValue("v2")

	held := s.removeBranch(1)
	require.True(t, held)
	assert.Equal(t, []any{"v0", "v2"}, s.flatten(nil))
}

func TestSeq_FlattenReusesDestination(t *testing.T) {
	s := &seq{}
	s.appendValue("a")

	dst := make([]any, 0, 4)
	out := s.flatten(dst)
	assert.Equal(t, []any{"a"}, out)
}
