package query

import "github.com/saichandh25/viewquery/internal/view"

// addNode walks a predicate chain for one node. A node may match several
// predicates and, within a selector criterion, several names; every match
// is recorded independently. Matching is side-effect-free per predicate,
// so chain order has no externally observable effect.
func addNode(chain *predicate, ctx *view.Context, n *view.Node) {
	for p := chain; p != nil; p = p.next {
		switch m := p.match.(type) {
		case ByType:
			pos, ok := view.FindByType(n, m.Type)
			if !ok {
				continue
			}
			record(p, ctx, n, pos)

		case BySelector:
			for _, name := range m.Names {
				pos, ok := view.FindByName(n.T, name)
				if !ok {
					continue
				}
				if _, missing := p.read.(ReadDefault); missing {
					// Caller contract breach: selector queries carry no
					// implicit read. Fail fast in debug, match nothing
					// in release.
					devAssert(false, "selector query %v has no read strategy", m.Names)
					continue
				}
				record(p, ctx, n, pos)
			}
		}
	}
}

// record resolves the matched position through the predicate's read
// strategy and, when a value comes back, appends it and dirties the target.
// A nil resolution is not a match: no append, no dirty mark.
func record(p *predicate, ctx *view.Context, n *view.Node, pos int) {
	v := resolve(p, ctx, n, pos)
	if v == nil {
		return
	}
	p.values.appendValue(v)
	p.list.setDirty()
}

// resolve runs the two-branch read resolution:
//
//   - ReadCustom: invoke the strategy with the node's lookup context and
//     the resolved position, use its result directly.
//   - ReadDefault: re-scan the node's directive table for the predicate's
//     declared type and return the instance stored there, or nil if absent.
func resolve(p *predicate, ctx *view.Context, n *view.Node, pos int) any {
	switch r := p.read.(type) {
	case ReadCustom:
		return r.Fn(ctx, n, pos)
	case ReadDefault:
		m, ok := p.match.(ByType)
		if !ok {
			return nil
		}
		tpos, ok := view.FindByType(n, m.Type)
		if !ok {
			return nil
		}
		return n.InstanceAt(tpos)
	default:
		return nil
	}
}
