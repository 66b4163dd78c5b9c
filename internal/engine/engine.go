package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saichandh25/viewquery/internal/journal"
	"github.com/saichandh25/viewquery/internal/query"
	"github.com/saichandh25/viewquery/internal/view"
)

// Recorder receives structural events as the engine applies them.
// Implemented by *journal.Store; tests may substitute an in-memory fake.
type Recorder interface {
	Append(ctx context.Context, ev journal.Event) error
}

// scopeKind labels the frames of the scope stack.
type scopeKind string

const (
	scopeRoot      scopeKind = "root"
	scopeChild     scopeKind = "child"
	scopeContainer scopeKind = "container"
	scopeView      scopeKind = "view"
)

// frame is one entry of the scope stack. A nil tracker is a valid
// "no tracking needed" scope - all query operations short-circuit there.
type frame struct {
	tracker *query.Tracker
	kind    scopeKind
}

// Engine drives the query core through one depth-first tree build.
//
// All operations run on a single logical thread of control in the order
// the tree itself is built: scopes are entered before their contents and
// exited only after them. The engine enforces the scope-nesting contract
// it can check cheaply (view operations only inside container scopes, no
// exit from the root) and trusts the caller for the rest.
//
// INVARIANTS:
//   - the scope stack always holds at least the root frame
//   - query names are unique within a run
//   - event seq numbers are strictly increasing within a run
type Engine struct {
	clock    *Clock
	gen      RunTokenGenerator
	rec      Recorder
	resolver view.Resolver

	run    string
	tokens map[string]*view.TypeToken
	frames []frame

	// declared queries, in declaration order
	names   []string
	byName  map[string]*query.List
	digests map[string]string
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder attaches a journal recorder. Every structural event the
// engine applies is appended to it.
func WithRecorder(rec Recorder) Option {
	return func(e *Engine) {
		e.rec = rec
	}
}

// WithRunTokenGenerator overrides the run token generator.
// Use NewFixedGenerator in tests for deterministic run tokens.
func WithRunTokenGenerator(gen RunTokenGenerator) Option {
	return func(e *Engine) {
		e.gen = gen
	}
}

// WithResolver overrides the lookup resolver used by resolve-mode reads.
func WithResolver(r view.Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// New creates an engine positioned at the root scope of a fresh tree.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:    NewClock(),
		gen:      UUIDv7Generator{},
		resolver: view.InstanceResolver{},
		tokens:   make(map[string]*view.TypeToken),
		byName:   make(map[string]*query.List),
		digests:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.run = e.gen.Generate()
	e.frames = []frame{{kind: scopeRoot}}
	return e
}

// Run returns the token identifying this tree-build run.
func (e *Engine) Run() string {
	return e.run
}

// Clock returns the engine's logical clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Token returns the stable type identity for a directive type name.
// The same name always yields the same token within one engine, so nodes
// and queries built from specs agree on type identity.
func (e *Engine) Token(name string) *view.TypeToken {
	tok, ok := e.tokens[name]
	if !ok {
		tok = view.NewTypeToken(name)
		e.tokens[name] = tok
	}
	return tok
}

// List returns the result list of a declared query.
func (e *Engine) List(name string) (*query.List, bool) {
	l, ok := e.byName[name]
	return l, ok
}

// Queries returns the declared query names in declaration order.
func (e *Engine) Queries() []string {
	return e.names
}

// Depth returns the current scope-stack depth. The root scope is depth 1.
func (e *Engine) Depth() int {
	return len(e.frames)
}

// current returns the top of the scope stack.
func (e *Engine) current() *frame {
	return &e.frames[len(e.frames)-1]
}

// DeclareQuery registers a query at the current scope and returns its
// result list. The list starts dirty; Refresh materializes it.
func (e *Engine) DeclareQuery(spec QuerySpec) (*query.List, error) {
	if spec.Name == "" {
		return nil, newBuildError(ErrCodeInvalidQuery, "query name is required")
	}
	if _, dup := e.byName[spec.Name]; dup {
		return nil, newQueryError(ErrCodeDuplicateQuery, spec.Name, "query declared twice")
	}
	if (spec.Type == "") == (len(spec.Selectors) == 0) {
		return nil, newQueryError(ErrCodeInvalidQuery, spec.Name, "exactly one of type and selectors must be set")
	}

	match, err := e.buildMatch(spec)
	if err != nil {
		return nil, err
	}
	read, err := e.buildRead(spec)
	if err != nil {
		return nil, err
	}

	cur := e.current()
	if cur.tracker == nil {
		cur.tracker = query.NewTracker()
	}

	list := query.NewList()
	cur.tracker.Track(list, match, spec.Descend, read)
	e.names = append(e.names, spec.Name)
	e.byName[spec.Name] = list

	slog.Info("query declared",
		"run", e.run,
		"query", spec.Name,
		"list_id", list.ID(),
		"descend", spec.Descend,
		"scope", cur.kind,
	)

	return list, e.record(journal.KindDeclareQuery, declarePayload(spec))
}

// NodeCreated builds the node a spec describes and feeds it through every
// predicate visible at the current scope.
func (e *Engine) NodeCreated(spec NodeSpec) error {
	node, err := e.buildNode(spec)
	if err != nil {
		return err
	}

	e.current().tracker.AddNode(node)

	slog.Debug("node created",
		"run", e.run,
		"label", spec.Label,
		"directives", spec.Directives,
		"scope", e.current().kind,
	)

	return e.record(journal.KindNodeCreated, nodePayload(spec))
}

// ChildEntered descends into a directly nested scope that is neither a
// container nor a view. Returns whether the child scope is tracked.
func (e *Engine) ChildEntered() (bool, error) {
	child := e.current().tracker.Child()
	e.frames = append(e.frames, frame{tracker: child, kind: scopeChild})

	slog.Debug("child scope entered", "run", e.run, "tracked", child != nil)

	return child != nil, e.record(journal.KindChildEntered, nil)
}

// ContainerCreated enters a container scope at the current level.
// Returns whether the container scope is tracked - false when no deep
// predicates propagate into it.
func (e *Engine) ContainerCreated() (bool, error) {
	container := e.current().tracker.Container()
	e.frames = append(e.frames, frame{tracker: container, kind: scopeContainer})

	slog.Debug("container created", "run", e.run, "tracked", container != nil)

	return container != nil, e.record(journal.KindContainerCreated, nil)
}

// ViewEntered enters a view scope inserted at the given ordinal index of
// the current container. Returns whether the view scope is tracked.
func (e *Engine) ViewEntered(index int) (bool, error) {
	cur := e.current()
	if cur.kind != scopeContainer {
		return false, newBuildError(ErrCodeScopeMismatch, "view entered outside a container scope (in %s)", cur.kind)
	}

	v := cur.tracker.EnterView(index)
	e.frames = append(e.frames, frame{tracker: v, kind: scopeView})

	slog.Debug("view entered", "run", e.run, "index", index, "tracked", v != nil)

	return v != nil, e.record(journal.KindViewEntered, map[string]any{"index": int64(index)})
}

// ViewRemoved drops the view at the given index of the current container.
// Affected query lists dirty only when the removed view held matches.
func (e *Engine) ViewRemoved(index int) error {
	cur := e.current()
	if cur.kind != scopeContainer {
		return newBuildError(ErrCodeScopeMismatch, "view removed outside a container scope (in %s)", cur.kind)
	}

	cur.tracker.RemoveView(index)

	slog.Debug("view removed", "run", e.run, "index", index)

	return e.record(journal.KindViewRemoved, map[string]any{"index": int64(index)})
}

// ScopeExited pops the current scope. The root scope cannot be exited.
func (e *Engine) ScopeExited() error {
	if len(e.frames) == 1 {
		return newBuildError(ErrCodeScopeMismatch, "cannot exit the root scope")
	}

	e.frames = e.frames[:len(e.frames)-1]

	slog.Debug("scope exited", "run", e.run, "depth", len(e.frames))

	return e.record(journal.KindScopeExited, nil)
}

// Refresh materializes one query's result list if it is dirty.
// Called once per change-detection pass per query.
func (e *Engine) Refresh(name string) (RefreshResult, error) {
	list, ok := e.byName[name]
	if !ok {
		return RefreshResult{}, newQueryError(ErrCodeUnknownQuery, name, "refresh of undeclared query")
	}

	recomputed := list.Refresh()
	values := formatValues(list.Values())
	digest, err := journal.ResultDigest(values)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("refresh %s: %w", name, err)
	}
	e.digests[name] = digest

	result := RefreshResult{
		Query:      name,
		Recomputed: recomputed,
		Values:     values,
		Digest:     digest,
	}

	slog.Info("query refreshed",
		"run", e.run,
		"query", name,
		"recomputed", recomputed,
		"count", len(values),
	)

	return result, e.record(journal.KindRefresh, refreshPayload(result))
}

// RefreshAll refreshes every declared query in declaration order.
func (e *Engine) RefreshAll() ([]RefreshResult, error) {
	results := make([]RefreshResult, 0, len(e.names))
	for _, name := range e.names {
		result, err := e.Refresh(name)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Destroy terminates every declared query list's change signal.
func (e *Engine) Destroy() {
	for _, name := range e.names {
		e.byName[name].Destroy()
	}
}

// ResultDigests returns the per-query digests of the last refreshes.
// Implements journal.Digester for replay comparison.
func (e *Engine) ResultDigests() map[string]string {
	out := make(map[string]string, len(e.digests))
	for k, v := range e.digests {
		out[k] = v
	}
	return out
}

// record stamps a structural event with the next seq and appends it to
// the recorder, when one is attached. The clock advances regardless, so
// journaling on or off never changes event numbering.
func (e *Engine) record(kind journal.Kind, payload map[string]any) error {
	seq := e.clock.Next()
	if e.rec == nil {
		return nil
	}
	if payload == nil {
		payload = map[string]any{}
	}
	ev, err := journal.NewEvent(e.run, seq, kind, payload)
	if err != nil {
		return fmt.Errorf("record %s: %w", kind, err)
	}
	if err := e.rec.Append(context.Background(), ev); err != nil {
		return fmt.Errorf("record %s: %w", kind, err)
	}
	return nil
}

// buildMatch converts a QuerySpec criterion into the core's tagged union.
func (e *Engine) buildMatch(spec QuerySpec) (query.Match, error) {
	if spec.Type != "" {
		return query.ByType{Type: e.Token(spec.Type)}, nil
	}
	return query.BySelector{Names: spec.Selectors}, nil
}

// buildRead converts a QuerySpec read mode into the core's tagged union.
// Selector queries carry no implicit read, so they must name one.
func (e *Engine) buildRead(spec QuerySpec) (query.Read, error) {
	switch spec.Read {
	case "", ReadDefaultMode:
		if spec.Type == "" {
			return nil, newQueryError(ErrCodeInvalidQuery, spec.Name, "selector queries require an explicit read mode")
		}
		return nil, nil
	case ReadResolveMode:
		return query.ReadResolver(e.resolver), nil
	default:
		// Read a different directive type from matched nodes.
		tok := e.Token(spec.Read)
		resolver := e.resolver
		return query.ReadCustom{Fn: func(ctx *view.Context, n *view.Node, _ int) any {
			pos, ok := view.FindByType(n, tok)
			if !ok {
				return nil
			}
			return resolver.Resolve(ctx, n, pos)
		}}, nil
	}
}

// buildNode materializes a NodeSpec: static TNode data plus one printable
// instance per declared directive.
func (e *Engine) buildNode(spec NodeSpec) (*view.Node, error) {
	directives := make([]*view.TypeToken, len(spec.Directives))
	instances := make([]any, len(spec.Directives))
	for i, name := range spec.Directives {
		tok := e.Token(name)
		directives[i] = tok
		instances[i] = view.NewInstance(tok, spec.Label)
	}

	locals := make([]view.LocalName, len(spec.Locals))
	for i, l := range spec.Locals {
		pos := view.SelfPosition
		if l.Target != "" && l.Target != "self" {
			pos = -2
			for j, name := range spec.Directives {
				if name == l.Target {
					pos = j
					break
				}
			}
			if pos == -2 {
				return nil, &BuildError{
					Code:    ErrCodeUnknownDirective,
					Message: fmt.Sprintf("local %q targets %q, which node %q does not declare", l.Name, l.Target, spec.Label),
				}
			}
		}
		locals[i] = view.LocalName{Name: l.Name, Position: pos}
	}

	tn := &view.TNode{Directives: directives, Locals: locals}
	return view.NewNode(tn, spec.Label, instances...), nil
}

// formatValues renders matched values for traces and digests.
func formatValues(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}

// declarePayload builds the journal payload of a query declaration.
func declarePayload(spec QuerySpec) map[string]any {
	match := map[string]any{}
	if spec.Type != "" {
		match["type"] = spec.Type
	} else {
		match["selectors"] = spec.Selectors
	}
	return map[string]any{
		"query":   spec.Name,
		"match":   match,
		"descend": spec.Descend,
		"read":    spec.Read,
	}
}

// nodePayload builds the journal payload of a node insertion.
func nodePayload(spec NodeSpec) map[string]any {
	locals := make([]any, len(spec.Locals))
	for i, l := range spec.Locals {
		locals[i] = map[string]any{"name": l.Name, "target": l.Target}
	}
	return map[string]any{
		"label":      spec.Label,
		"directives": spec.Directives,
		"locals":     locals,
	}
}

// refreshPayload builds the journal payload of a refresh.
func refreshPayload(r RefreshResult) map[string]any {
	return map[string]any{
		"query":      r.Query,
		"recomputed": r.Recomputed,
		"values":     r.Values,
		"digest":     r.Digest,
	}
}
