// The cmd/ package tests exercise the CLI in process: flag parsing,
// config loading, and command output. The MCP server itself is covered by
// internal/mcp tests; "serve" is excluded here because it blocks on stdin.

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testEnv runs commands against a temporary config file.
type testEnv struct {
	t          *testing.T
	configFile string
}

// newTestEnv writes a config with a single location in a temp directory.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	content := `download_locations:
  default: ` + filepath.Join(dir, "videos") + `
security:
  allowed_extensions: [mp4, mkv, mp3]
`
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o644))
	return &testEnv{t: t, configFile: cfgFile}
}

// run executes the CLI with args and returns stdout. Fails the test on error.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, err := e.runErr(args...)
	require.NoError(e.t, err, "command %v failed: %s", args, out)
	return out
}

// runErr executes the CLI with args and returns stdout and the error.
func (e *testEnv) runErr(args ...string) (string, error) {
	e.t.Helper()

	// Reset state left by previous executions.
	configPath = ""
	output = ""

	var buf bytes.Buffer
	SetOut(&buf)
	defer SetOut(os.Stdout)
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)

	rootCmd.SetArgs(append([]string{"--config", e.configFile}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func (e *testEnv) contains(out, want string) {
	e.t.Helper()
	if !strings.Contains(out, want) {
		e.t.Errorf("output missing %q:\n%s", want, out)
	}
}
