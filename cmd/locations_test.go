package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocations(t *testing.T) {
	t.Run("lists configured locations", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("locations")
		env.contains(out, "default")
		env.contains(out, "videos")
	})

	t.Run("json output", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("locations", "-o", "json")

		var statuses []locationStatus
		require.NoError(t, json.Unmarshal([]byte(out), &statuses))
		require.Len(t, statuses, 1)
		assert.Equal(t, "default", statuses[0].ID)
		assert.True(t, statuses[0].Writable)
		assert.NotEmpty(t, statuses[0].Resolved)
	})
}
