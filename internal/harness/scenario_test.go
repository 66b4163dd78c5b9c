package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/basic-type-query.yaml")
	require.NoError(t, err)

	assert.Equal(t, "basic-type-query", s.Name)
	require.Len(t, s.Steps, 4)
	require.NotNil(t, s.Steps[0].Declare)
	assert.Equal(t, "tabs", s.Steps[0].Declare.Query)
	assert.True(t, s.Steps[0].Declare.Descend)
	require.Len(t, s.Expect, 1)
	assert.Equal(t, []string{"Tab(t1)", "Tab(t2)"}, s.Expect[0].Values)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestParseScenarioRejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: unknown top-level key
step:
  - refresh: {}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step")
}

func TestParseScenarioValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "missing name",
			yaml: `
description: d
steps:
  - refresh: {}
`,
			wantErr: "name",
		},
		{
			name: "empty steps",
			yaml: `
name: s
description: d
steps: []
`,
			wantErr: "steps",
		},
		{
			name: "two operations in one step",
			yaml: `
name: s
description: d
steps:
  - refresh: {}
    exit: {}
`,
			wantErr: "exactly one operation",
		},
		{
			name: "declare without criteria",
			yaml: `
name: s
description: d
steps:
  - declare: {query: q}
`,
			wantErr: "type and selectors",
		},
		{
			name: "declare with both criteria",
			yaml: `
name: s
description: d
steps:
  - declare: {query: q, type: Tab, selectors: [ref]}
`,
			wantErr: "type and selectors",
		},
		{
			name: "duplicate declaration",
			yaml: `
name: s
description: d
steps:
  - declare: {query: q, type: Tab}
  - declare: {query: q, type: Tab}
`,
			wantErr: "declared twice",
		},
		{
			name: "refresh of undeclared query",
			yaml: `
name: s
description: d
steps:
  - refresh: {query: ghost}
`,
			wantErr: "never declared",
		},
		{
			name: "expectation on undeclared query",
			yaml: `
name: s
description: d
steps:
  - declare: {query: q, type: Tab}
expect:
  - query: ghost
    values: []
`,
			wantErr: "never declared",
		},
		{
			name: "negative view index",
			yaml: `
name: s
description: d
steps:
  - declare: {query: q, type: Tab}
  - container: {}
  - view: {index: -1}
`,
			wantErr: "index",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSchemaRejectsWrongTypes(t *testing.T) {
	err := ValidateSchema([]byte(`
name: s
description: d
steps:
  - node: {label: 42}
`))
	assert.Error(t, err)
}

func TestValidateSchemaAcceptsFixtures(t *testing.T) {
	for _, name := range []string{
		"basic-type-query", "tabs-across-views", "view-removal",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			assert.NoError(t, err)
		})
	}
}
