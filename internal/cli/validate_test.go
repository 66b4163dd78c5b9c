package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsGoodScenario(t *testing.T) {
	path := writeScenario(t, "good.yaml", goodScenario)

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "1 file(s) checked")
}

func TestValidateRejectsBadScenario(t *testing.T) {
	path := writeScenario(t, "bad.yaml", `
name: bad
description: step with no operation
steps:
  - {}
`)

	out, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗")
}

func TestValidateMixedFiles(t *testing.T) {
	good := writeScenario(t, "good.yaml", goodScenario)
	bad := writeScenario(t, "bad.yaml", "name: broken\n")

	out, err := execute(t, "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, out, "✓ "+good)
	assert.Contains(t, out, "✗ "+bad)
}

func TestValidateJSONOutput(t *testing.T) {
	path := writeScenario(t, "good.yaml", goodScenario)

	out, err := execute(t, "validate", path, "--format", "json")
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestValidateRequiresArgs(t *testing.T) {
	_, err := execute(t, "validate")
	require.Error(t, err)
}
