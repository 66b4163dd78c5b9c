package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saichandh25/viewquery/internal/journal"
)

// memRecorder captures journaled events in memory.
type memRecorder struct {
	events []journal.Event
}

func (m *memRecorder) Append(_ context.Context, ev journal.Event) error {
	m.events = append(m.events, ev)
	return nil
}

func newTestEngine(opts ...Option) *Engine {
	opts = append([]Option{WithRunTokenGenerator(NewFixedGenerator("run-test"))}, opts...)
	return New(opts...)
}

func TestDeclareQueryValidation(t *testing.T) {
	tests := []struct {
		name string
		spec QuerySpec
		code BuildErrorCode
	}{
		{
			name: "missing name",
			spec: QuerySpec{Type: "Tab"},
			code: ErrCodeInvalidQuery,
		},
		{
			name: "neither type nor selectors",
			spec: QuerySpec{Name: "q"},
			code: ErrCodeInvalidQuery,
		},
		{
			name: "both type and selectors",
			spec: QuerySpec{Name: "q", Type: "Tab", Selectors: []string{"ref"}},
			code: ErrCodeInvalidQuery,
		},
		{
			name: "selector query without read mode",
			spec: QuerySpec{Name: "q", Selectors: []string{"ref"}},
			code: ErrCodeInvalidQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			_, err := e.DeclareQuery(tt.spec)
			require.Error(t, err)
			var be *BuildError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, tt.code, be.Code)
		})
	}
}

func TestDeclareQueryDuplicate(t *testing.T) {
	e := newTestEngine()

	_, err := e.DeclareQuery(QuerySpec{Name: "tabs", Type: "Tab", Descend: true})
	require.NoError(t, err)

	_, err = e.DeclareQuery(QuerySpec{Name: "tabs", Type: "Tab"})
	require.Error(t, err)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeDuplicateQuery, be.Code)
}

func TestTypeQueryAcrossViews(t *testing.T) {
	e := newTestEngine()

	list, err := e.DeclareQuery(QuerySpec{Name: "tabs", Type: "Tab", Descend: true})
	require.NoError(t, err)

	require.NoError(t, e.NodeCreated(NodeSpec{Label: "t0", Directives: []string{"Tab"}}))

	tracked, err := e.ContainerCreated()
	require.NoError(t, err)
	assert.True(t, tracked)

	_, err = e.ViewEntered(0)
	require.NoError(t, err)
	require.NoError(t, e.NodeCreated(NodeSpec{Label: "t1", Directives: []string{"Tab"}}))
	require.NoError(t, e.ScopeExited())

	_, err = e.ViewEntered(1)
	require.NoError(t, err)
	require.NoError(t, e.NodeCreated(NodeSpec{Label: "t2", Directives: []string{"Tab"}}))
	require.NoError(t, e.ScopeExited())

	require.NoError(t, e.ScopeExited()) // container
	require.NoError(t, e.NodeCreated(NodeSpec{Label: "t3", Directives: []string{"Tab"}}))

	result, err := e.Refresh("tabs")
	require.NoError(t, err)
	assert.True(t, result.Recomputed)
	assert.Equal(t, []string{"Tab(t0)", "Tab(t1)", "Tab(t2)", "Tab(t3)"}, result.Values)
	assert.Equal(t, 4, list.Len())

	// A second refresh with no intervening mutation is a no-op with the
	// same digest.
	again, err := e.Refresh("tabs")
	require.NoError(t, err)
	assert.False(t, again.Recomputed)
	assert.Equal(t, result.Digest, again.Digest)
}

func TestViewInsertionOrdersByIndex(t *testing.T) {
	e := newTestEngine()

	_, err := e.DeclareQuery(QuerySpec{Name: "tabs", Type: "Tab", Descend: true})
	require.NoError(t, err)

	_, err = e.ContainerCreated()
	require.NoError(t, err)

	_, err = e.ViewEntered(0)
	require.NoError(t, err)
	require.NoError(t, e.NodeCreated(NodeSpec{Label: "b", Directives: []string{"Tab"}}))
	require.NoError(t, e.ScopeExited())

	// Inserted before the existing view: its values come first.
	_, err = e.ViewEntered(0)
	require.NoError(t, err)
	require.NoError(t, e.NodeCreated(NodeSpec{Label: "a", Directives: []string{"Tab"}}))
	require.NoError(t, e.ScopeExited())

	result, err := e.Refresh("tabs")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tab(a)", "Tab(b)"}, result.Values)
}

func TestViewRemovedInvalidatesOnlyWithMatches(t *testing.T) {
	e := newTestEngine()

	_, err := e.DeclareQuery(QuerySpec{Name: "tabs", Type: "Tab", Descend: true})
	require.NoError(t, err)

	_, err = e.ContainerCreated()
	require.NoError(t, err)

	_, err = e.ViewEntered(0)
	require.NoError(t, err)
	require.NoError(t, e.NodeCreated(NodeSpec{Label: "t1", Directives: []string{"Tab"}}))
	require.NoError(t, e.ScopeExited())

	_, err = e.ViewEntered(1)
	require.NoError(t, err)
	require.NoError(t, e.NodeCreated(NodeSpec{Label: "other", Directives: []string{"Other"}}))
	require.NoError(t, e.ScopeExited())

	result, err := e.Refresh("tabs")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tab(t1)"}, result.Values)

	// Removing the view with no matches leaves the list fresh.
	require.NoError(t, e.ViewRemoved(1))
	result, err = e.Refresh("tabs")
	require.NoError(t, err)
	assert.False(t, result.Recomputed)

	// Removing the view holding the match dirties it.
	require.NoError(t, e.ViewRemoved(0))
	result, err = e.Refresh("tabs")
	require.NoError(t, err)
	assert.True(t, result.Recomputed)
	assert.Empty(t, result.Values)
}

func TestShallowQueryIgnoresDescendants(t *testing.T) {
	e := newTestEngine()

	_, err := e.DeclareQuery(QuerySpec{Name: "local", Type: "Tab", Descend: false})
	require.NoError(t, err)

	require.NoError(t, e.NodeCreated(NodeSpec{Label: "here", Directives: []string{"Tab"}}))

	tracked, err := e.ChildEntered()
	require.NoError(t, err)
	assert.False(t, tracked)
	require.NoError(t, e.NodeCreated(NodeSpec{Label: "below", Directives: []string{"Tab"}}))
	require.NoError(t, e.ScopeExited())

	result, err := e.Refresh("local")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tab(here)"}, result.Values)
}

func TestShallowQueryInChildInvisibleAtParent(t *testing.T) {
	e := newTestEngine()

	_, err := e.DeclareQuery(QuerySpec{Name: "everywhere", Type: "Tab", Descend: true})
	require.NoError(t, err)

	tracked, err := e.ChildEntered()
	require.NoError(t, err)
	assert.True(t, tracked)
	_, err = e.DeclareQuery(QuerySpec{Name: "child-only", Type: "Bar", Descend: false})
	require.NoError(t, err)
	require.NoError(t, e.ScopeExited())

	// Back at the root, a Bar node matches nothing: the child's shallow
	// query must not have registered on the parent scope.
	require.NoError(t, e.NodeCreated(NodeSpec{Label: "rootnode", Directives: []string{"Bar"}}))

	result, err := e.Refresh("child-only")
	require.NoError(t, err)
	assert.Empty(t, result.Values)
}

func TestSelectorQueryReadsNamedTarget(t *testing.T) {
	e := newTestEngine()

	_, err := e.DeclareQuery(QuerySpec{
		Name:      "refs",
		Selectors: []string{"foo"},
		Descend:   true,
		Read:      ReadResolveMode,
	})
	require.NoError(t, err)

	// foo on n1 names the Tab directive; foo on n2 names the node itself
	// and resolves to its native, the label. n3 exports a different name
	// and never matches.
	require.NoError(t, e.NodeCreated(NodeSpec{
		Label:      "n1",
		Directives: []string{"Tab"},
		Locals:     []LocalSpec{{Name: "foo", Target: "Tab"}},
	}))
	require.NoError(t, e.NodeCreated(NodeSpec{
		Label:  "n2",
		Locals: []LocalSpec{{Name: "foo"}},
	}))
	require.NoError(t, e.NodeCreated(NodeSpec{
		Label:      "n3",
		Directives: []string{"Tab"},
		Locals:     []LocalSpec{{Name: "bar", Target: "Tab"}},
	}))

	result, err := e.Refresh("refs")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tab(n1)", "n2"}, result.Values)
}

func TestReadDifferentDirectiveType(t *testing.T) {
	e := newTestEngine()

	_, err := e.DeclareQuery(QuerySpec{Name: "panes", Type: "Tab", Descend: true, Read: "Pane"})
	require.NoError(t, err)

	require.NoError(t, e.NodeCreated(NodeSpec{Label: "n1", Directives: []string{"Tab", "Pane"}}))
	// Matches Tab but carries no Pane: read resolves to nil, no result.
	require.NoError(t, e.NodeCreated(NodeSpec{Label: "n2", Directives: []string{"Tab"}}))

	result, err := e.Refresh("panes")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pane(n1)"}, result.Values)
}

func TestNodeCreatedRejectsUnknownLocalTarget(t *testing.T) {
	e := newTestEngine()

	err := e.NodeCreated(NodeSpec{
		Label:  "n1",
		Locals: []LocalSpec{{Name: "foo", Target: "Missing"}},
	})
	require.Error(t, err)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeUnknownDirective, be.Code)
}

func TestScopeMismatch(t *testing.T) {
	e := newTestEngine()

	_, err := e.ViewEntered(0)
	assert.True(t, IsScopeMismatch(err))

	err = e.ViewRemoved(0)
	assert.True(t, IsScopeMismatch(err))

	err = e.ScopeExited()
	assert.True(t, IsScopeMismatch(err))

	// Inside a child scope, view ops are still out of place.
	_, err = e.ChildEntered()
	require.NoError(t, err)
	err = e.ViewRemoved(0)
	assert.True(t, IsScopeMismatch(err))
	require.NoError(t, e.ScopeExited())
}

func TestRefreshUnknownQuery(t *testing.T) {
	e := newTestEngine()
	_, err := e.Refresh("nope")
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeUnknownQuery, be.Code)
}

func TestRecorderReceivesOrderedEvents(t *testing.T) {
	rec := &memRecorder{}
	e := newTestEngine(WithRecorder(rec))

	_, err := e.DeclareQuery(QuerySpec{Name: "tabs", Type: "Tab", Descend: true})
	require.NoError(t, err)
	require.NoError(t, e.NodeCreated(NodeSpec{Label: "t1", Directives: []string{"Tab"}}))
	_, err = e.Refresh("tabs")
	require.NoError(t, err)

	require.Len(t, rec.events, 3)
	kinds := []journal.Kind{}
	for i, ev := range rec.events {
		assert.Equal(t, "run-test", ev.Run)
		assert.Equal(t, int64(i+1), ev.Seq)
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []journal.Kind{
		journal.KindDeclareQuery,
		journal.KindNodeCreated,
		journal.KindRefresh,
	}, kinds)
}

func TestReplayReproducesDigests(t *testing.T) {
	rec := &memRecorder{}
	e := newTestEngine(WithRecorder(rec))

	_, err := e.DeclareQuery(QuerySpec{Name: "tabs", Type: "Tab", Descend: true})
	require.NoError(t, err)
	require.NoError(t, e.NodeCreated(NodeSpec{Label: "t0", Directives: []string{"Tab"}}))

	_, err = e.ContainerCreated()
	require.NoError(t, err)
	_, err = e.ViewEntered(0)
	require.NoError(t, err)
	require.NoError(t, e.NodeCreated(NodeSpec{Label: "t1", Directives: []string{"Tab"}}))
	require.NoError(t, e.ScopeExited())
	require.NoError(t, e.ScopeExited())

	original, err := e.Refresh("tabs")
	require.NoError(t, err)

	replay := New(WithRunTokenGenerator(NewFixedGenerator("run-replay")))
	for _, ev := range rec.events {
		require.NoError(t, replay.Apply(ev))
	}

	assert.Equal(t, map[string]string{"tabs": original.Digest}, replay.ResultDigests())
}

func TestReplayDetectsDigestMismatch(t *testing.T) {
	rec := &memRecorder{}
	e := newTestEngine(WithRecorder(rec))

	_, err := e.DeclareQuery(QuerySpec{Name: "tabs", Type: "Tab"})
	require.NoError(t, err)
	require.NoError(t, e.NodeCreated(NodeSpec{Label: "t1", Directives: []string{"Tab"}}))
	_, err = e.Refresh("tabs")
	require.NoError(t, err)

	// Drop the node event so the replayed run produces an empty list.
	replay := New(WithRunTokenGenerator(NewFixedGenerator("run-replay")))
	require.NoError(t, replay.Apply(rec.events[0]))
	err = replay.Apply(rec.events[2])
	assert.True(t, IsReplayMismatch(err))
}

func TestApplyUnknownKind(t *testing.T) {
	e := newTestEngine()
	err := e.Apply(journal.Event{Kind: "bogus", Seq: 1})
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeUnknownEvent, be.Code)
}
