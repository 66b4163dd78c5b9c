package engine

import (
	"fmt"

	"github.com/saichandh25/viewquery/internal/journal"
)

// Apply re-executes one journaled event against the engine. Implements
// journal.Applier: replaying a run's events in seq order against a fresh
// engine reproduces the original tree build, and the digests recorded in
// refresh events verify that the replayed results match the originals.
func (e *Engine) Apply(ev journal.Event) error {
	switch ev.Kind {
	case journal.KindDeclareQuery:
		spec, err := querySpecFromPayload(ev.Payload)
		if err != nil {
			return fmt.Errorf("apply seq %d: %w", ev.Seq, err)
		}
		_, err = e.DeclareQuery(spec)
		return err

	case journal.KindNodeCreated:
		spec, err := nodeSpecFromPayload(ev.Payload)
		if err != nil {
			return fmt.Errorf("apply seq %d: %w", ev.Seq, err)
		}
		return e.NodeCreated(spec)

	case journal.KindChildEntered:
		_, err := e.ChildEntered()
		return err

	case journal.KindContainerCreated:
		_, err := e.ContainerCreated()
		return err

	case journal.KindViewEntered:
		index, err := payloadInt(ev.Payload, "index")
		if err != nil {
			return fmt.Errorf("apply seq %d: %w", ev.Seq, err)
		}
		_, err = e.ViewEntered(index)
		return err

	case journal.KindViewRemoved:
		index, err := payloadInt(ev.Payload, "index")
		if err != nil {
			return fmt.Errorf("apply seq %d: %w", ev.Seq, err)
		}
		return e.ViewRemoved(index)

	case journal.KindScopeExited:
		return e.ScopeExited()

	case journal.KindRefresh:
		name, err := payloadString(ev.Payload, "query")
		if err != nil {
			return fmt.Errorf("apply seq %d: %w", ev.Seq, err)
		}
		recorded, err := payloadString(ev.Payload, "digest")
		if err != nil {
			return fmt.Errorf("apply seq %d: %w", ev.Seq, err)
		}
		result, err := e.Refresh(name)
		if err != nil {
			return err
		}
		if result.Digest != recorded {
			return newQueryError(ErrCodeReplayMismatch, name,
				"replayed digest %s does not match recorded %s at seq %d", result.Digest, recorded, ev.Seq)
		}
		return nil

	default:
		return newBuildError(ErrCodeUnknownEvent, "unknown event kind %q at seq %d", ev.Kind, ev.Seq)
	}
}

func querySpecFromPayload(payload map[string]any) (QuerySpec, error) {
	name, err := payloadString(payload, "query")
	if err != nil {
		return QuerySpec{}, err
	}
	match, ok := payload["match"].(map[string]any)
	if !ok {
		return QuerySpec{}, fmt.Errorf("declare_query payload: match must be an object")
	}

	spec := QuerySpec{Name: name}
	if t, ok := match["type"]; ok {
		spec.Type, ok = t.(string)
		if !ok {
			return QuerySpec{}, fmt.Errorf("declare_query payload: match.type must be a string")
		}
	}
	if s, ok := match["selectors"]; ok {
		spec.Selectors, err = payloadStrings(s, "match.selectors")
		if err != nil {
			return QuerySpec{}, err
		}
	}
	if d, ok := payload["descend"]; ok {
		spec.Descend, ok = d.(bool)
		if !ok {
			return QuerySpec{}, fmt.Errorf("declare_query payload: descend must be a bool")
		}
	}
	if r, ok := payload["read"]; ok {
		spec.Read, ok = r.(string)
		if !ok {
			return QuerySpec{}, fmt.Errorf("declare_query payload: read must be a string")
		}
	}
	return spec, nil
}

func nodeSpecFromPayload(payload map[string]any) (NodeSpec, error) {
	label, err := payloadString(payload, "label")
	if err != nil {
		return NodeSpec{}, err
	}
	spec := NodeSpec{Label: label}

	if d, ok := payload["directives"]; ok {
		spec.Directives, err = payloadStrings(d, "directives")
		if err != nil {
			return NodeSpec{}, err
		}
	}
	if ls, ok := payload["locals"]; ok {
		items, ok := ls.([]any)
		if !ok {
			return NodeSpec{}, fmt.Errorf("node_created payload: locals must be an array")
		}
		for i, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return NodeSpec{}, fmt.Errorf("node_created payload: locals[%d] must be an object", i)
			}
			name, err := payloadString(m, "name")
			if err != nil {
				return NodeSpec{}, err
			}
			target, _ := m["target"].(string)
			spec.Locals = append(spec.Locals, LocalSpec{Name: name, Target: target})
		}
	}
	return spec, nil
}

func payloadString(payload map[string]any, key string) (string, error) {
	v, ok := payload[key]
	if !ok {
		return "", fmt.Errorf("payload: missing %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("payload: %s must be a string, got %T", key, v)
	}
	return s, nil
}

func payloadInt(payload map[string]any, key string) (int, error) {
	v, ok := payload[key]
	if !ok {
		return 0, fmt.Errorf("payload: missing %s", key)
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("payload: %s must be an integer, got %T", key, v)
	}
	return int(n), nil
}

func payloadStrings(v any, key string) ([]string, error) {
	switch vv := v.(type) {
	case []string:
		return vv, nil
	case []any:
		out := make([]string, len(vv))
		for i, item := range vv {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("payload: %s[%d] must be a string, got %T", key, i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("payload: %s must be an array of strings, got %T", key, v)
	}
}
