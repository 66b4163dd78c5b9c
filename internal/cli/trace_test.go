package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceTextOutput(t *testing.T) {
	path := writeScenario(t, "tabs.yaml", goodScenario)

	out, err := execute(t, "trace", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Scenario: cli-tabs (run cli-run)")
	assert.Contains(t, out, "declare_query")
	assert.Contains(t, out, "refresh tabs: recomputed=true values=[Tab(t1) Tab(t2)]")
}

func TestTraceJSONOutputIsCanonical(t *testing.T) {
	path := writeScenario(t, "tabs.yaml", goodScenario)

	out, err := execute(t, "trace", path, "--format", "json")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `{"results":`))
	assert.Contains(t, out, `"run":"cli-run"`)
	assert.Contains(t, out, `"scenario":"cli-tabs"`)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestTraceFailingScenario(t *testing.T) {
	path := writeScenario(t, "fails.yaml", failingScenario)

	_, err := execute(t, "trace", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestTraceMissingFile(t *testing.T) {
	_, err := execute(t, "trace", "does-not-exist.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
