package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Every scenario under testdata/scenarios runs against its golden trace.
func TestScenarioGoldens(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.Equal(t, name, scenario.Name, "scenario name must match file name")
			RunWithGolden(t, scenario)
		})
	}
}

// Golden files are single-line canonical JSON; a stray reformat would
// break byte comparison silently on the next -update.
func TestGoldenFilesAreCanonical(t *testing.T) {
	paths, err := filepath.Glob("testdata/golden/*.golden")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.True(t, strings.HasSuffix(string(data), "\n"), "%s: missing trailing newline", path)
		require.Equal(t, 1, strings.Count(string(data), "\n"), "%s: must be a single line", path)
	}
}
