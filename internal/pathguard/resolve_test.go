package pathguard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBase(t *testing.T) {
	t.Run("resolves configured location", func(t *testing.T) {
		base := t.TempDir()
		table := Locations{"default": base}

		got, err := ResolveBase("default", table, testPolicy())
		require.NoError(t, err)

		want, err := filepath.EvalSymlinks(base)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("creates missing base directory", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "downloads", "videos")
		table := Locations{"default": base}

		got, err := ResolveBase("default", table, testPolicy())
		require.NoError(t, err)

		info, err := os.Stat(got)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("idempotent across calls", func(t *testing.T) {
		table := Locations{"default": filepath.Join(t.TempDir(), "dl")}

		first, err := ResolveBase("default", table, testPolicy())
		require.NoError(t, err)

		// Second call must not fail on "already exists"
		second, err := ResolveBase("default", table, testPolicy())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("unknown location lists ids not paths", func(t *testing.T) {
		base := t.TempDir()
		table := Locations{"default": base, "archive": t.TempDir()}

		_, err := ResolveBase("nope", table, testPolicy())
		require.ErrorIs(t, err, ErrUnknownLocation)
		assert.Contains(t, err.Error(), "default")
		assert.Contains(t, err.Error(), "archive")
		assert.NotContains(t, err.Error(), base)
	})

	t.Run("location required when enforced", func(t *testing.T) {
		table := Locations{"default": t.TempDir()}

		_, err := ResolveBase("", table, testPolicy())
		require.ErrorIs(t, err, ErrLocationRequired)
	})

	t.Run("default fallback when not enforced", func(t *testing.T) {
		policy := testPolicy()
		policy.EnforceLocationRestrictions = false
		base := t.TempDir()
		table := Locations{"default": base}

		got, err := ResolveBase("", table, policy)
		require.NoError(t, err)

		want, err := filepath.EvalSymlinks(base)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("expands home shorthand", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		table := Locations{"home": "~/videos"}

		got, err := ResolveBase("home", table, testPolicy())
		require.NoError(t, err)

		wantParent, err := filepath.EvalSymlinks(home)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(wantParent, "videos"), got)
	})

	t.Run("rejects file where directory expected", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "notadir")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
		table := Locations{"default": file}

		_, err := ResolveBase("default", table, testPolicy())
		require.ErrorIs(t, err, ErrLocationNotWritable)
	})
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		input string
		want  string
	}{
		{"~", home},
		{"~/videos", filepath.Join(home, "videos")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~user/videos", "~user/videos"}, // other-user shorthand not supported
	}

	for _, tt := range tests {
		got, err := ExpandHome(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "ExpandHome(%q)", tt.input)
	}
}
