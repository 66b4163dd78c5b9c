package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const goodScenario = `name: cli-tabs
description: tabs across two views
run_token: cli-run
steps:
  - declare: {query: tabs, type: Tab, descend: true}
  - container: {}
  - view: {index: 0}
  - node: {label: t1, directives: [Tab]}
  - exit: {}
  - view: {index: 1}
  - node: {label: t2, directives: [Tab]}
  - exit: {}
  - refresh: {query: tabs}
expect:
  - query: tabs
    values: ["Tab(t1)", "Tab(t2)"]
`

const failingScenario = `name: cli-fails
description: expectation deliberately wrong
steps:
  - declare: {query: tabs, type: Tab}
  - refresh: {query: tabs}
expect:
  - query: tabs
    values: ["Tab(ghost)"]
`

// writeScenario writes YAML to a temp file and returns its path.
func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
