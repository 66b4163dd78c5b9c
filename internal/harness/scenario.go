package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a declarative tree-build script: a sequence of structural
// steps plus the flattened results each query is expected to produce.
type Scenario struct {
	// Name uniquely identifies this scenario. Used for the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// RunToken is an optional fixed run token for deterministic traces.
	// Defaults to "scenario-run" when empty.
	RunToken string `yaml:"run_token,omitempty"`

	// Steps is the structural build sequence, executed in order.
	Steps []Step `yaml:"steps"`

	// Expect lists the flattened results to verify after the final step.
	Expect []Expectation `yaml:"expect"`
}

// Step is a single structural operation. Exactly one field must be set.
type Step struct {
	Declare   *DeclareStep `yaml:"declare,omitempty"`
	Node      *NodeStep    `yaml:"node,omitempty"`
	Child     *MarkerStep  `yaml:"child,omitempty"`
	Container *MarkerStep  `yaml:"container,omitempty"`
	View      *IndexStep   `yaml:"view,omitempty"`
	Remove    *IndexStep   `yaml:"remove,omitempty"`
	Exit      *MarkerStep  `yaml:"exit,omitempty"`
	Refresh   *RefreshStep `yaml:"refresh,omitempty"`
}

// DeclareStep declares a query at the current scope.
type DeclareStep struct {
	Query     string   `yaml:"query"`
	Type      string   `yaml:"type,omitempty"`
	Selectors []string `yaml:"selectors,omitempty"`
	Descend   bool     `yaml:"descend,omitempty"`
	Read      string   `yaml:"read,omitempty"`
}

// NodeStep creates a node at the current scope.
type NodeStep struct {
	Label      string      `yaml:"label"`
	Directives []string    `yaml:"directives,omitempty"`
	Locals     []LocalStep `yaml:"locals,omitempty"`
}

// LocalStep is one local-name export of a node. An empty target names the
// node itself.
type LocalStep struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target,omitempty"`
}

// MarkerStep carries no parameters; write it as an empty map ({}).
type MarkerStep struct{}

// IndexStep addresses a view by its ordinal index within a container.
type IndexStep struct {
	Index int `yaml:"index"`
}

// RefreshStep refreshes one query, or every declared query when Query is
// empty.
type RefreshStep struct {
	Query string `yaml:"query,omitempty"`
}

// Expectation is the expected flattened result of one query after the
// scenario's final step.
type Expectation struct {
	Query  string   `yaml:"query"`
	Values []string `yaml:"values"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected, catching typos like "step:" for "steps:".
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML bytes with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ValidateSchema(data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks structural rules the CUE schema cannot express
// conveniently: exactly one operation per step, queries declared before
// they are expected.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	declared := map[string]bool{}
	for i, step := range s.Steps {
		if err := validateStep(i, &step, declared); err != nil {
			return err
		}
	}

	for i, exp := range s.Expect {
		if exp.Query == "" {
			return fmt.Errorf("expect[%d]: query is required", i)
		}
		if !declared[exp.Query] {
			return fmt.Errorf("expect[%d]: query %q is never declared", i, exp.Query)
		}
	}
	return nil
}

func validateStep(index int, step *Step, declared map[string]bool) error {
	set := 0
	for _, present := range []bool{
		step.Declare != nil, step.Node != nil, step.Child != nil,
		step.Container != nil, step.View != nil, step.Remove != nil,
		step.Exit != nil, step.Refresh != nil,
	} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one operation is required, got %d", index, set)
	}

	switch {
	case step.Declare != nil:
		d := step.Declare
		if d.Query == "" {
			return fmt.Errorf("steps[%d].declare: query is required", index)
		}
		if declared[d.Query] {
			return fmt.Errorf("steps[%d].declare: query %q declared twice", index, d.Query)
		}
		if (d.Type == "") == (len(d.Selectors) == 0) {
			return fmt.Errorf("steps[%d].declare: exactly one of type and selectors must be set", index)
		}
		declared[d.Query] = true
	case step.Node != nil:
		if step.Node.Label == "" {
			return fmt.Errorf("steps[%d].node: label is required", index)
		}
		for j, l := range step.Node.Locals {
			if l.Name == "" {
				return fmt.Errorf("steps[%d].node.locals[%d]: name is required", index, j)
			}
		}
	case step.View != nil:
		if step.View.Index < 0 {
			return fmt.Errorf("steps[%d].view: index must be non-negative", index)
		}
	case step.Remove != nil:
		if step.Remove.Index < 0 {
			return fmt.Errorf("steps[%d].remove: index must be non-negative", index)
		}
	case step.Refresh != nil:
		if q := step.Refresh.Query; q != "" && !declared[q] {
			return fmt.Errorf("steps[%d].refresh: query %q is never declared", index, q)
		}
	}
	return nil
}
