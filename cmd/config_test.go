package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigShow(t *testing.T) {
	t.Run("shows effective values with defaults", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("config")
		env.contains(out, "enforce_location_restrictions: true")
		env.contains(out, "max_filename_length: 255")
		env.contains(out, "default_filename_template: %(title)s.%(ext)s")
		env.contains(out, "mp4")
	})

	t.Run("json output", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("config", "-o", "json")

		var effective map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &effective))
		require.Contains(t, effective, "security")
		require.Contains(t, effective, "download_locations")
	})
}

func TestConfig_Errors(t *testing.T) {
	t.Run("missing explicit config file", func(t *testing.T) {
		env := newTestEnv(t)
		env.configFile = filepath.Join(t.TempDir(), "nope.yaml")

		_, err := env.runErr("config")
		if err == nil {
			t.Error("config with missing file = nil, want error")
		}
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		env := newTestEnv(t)
		bad := `security:
  max_filename_length: 0
`
		require.NoError(t, os.WriteFile(env.configFile, []byte(bad), 0o644))

		_, err := env.runErr("config")
		if err == nil {
			t.Error("config with out-of-range value = nil, want error")
		}
	})

	t.Run("invalid output format", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.runErr("config", "-o", "xml")
		if err == nil {
			t.Error("config -o xml = nil, want error")
		}
	})
}
