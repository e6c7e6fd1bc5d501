package log

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempDB(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	orig := dbPathFunc
	dbPathFunc = func() string {
		return filepath.Join(tmpDir, "log", "test.db")
	}
	t.Cleanup(func() { dbPathFunc = orig })
}

func TestLogger(t *testing.T) {
	t.Run("open and close", func(t *testing.T) {
		withTempDB(t)

		require.NoError(t, Open())
		defer Close()

		assert.FileExists(t, DBPath())
	})

	t.Run("log entry", func(t *testing.T) {
		withTempDB(t)

		require.NoError(t, Open())
		defer Close()

		SetInstance("/home/u/.config/vgrab/config.yaml")

		Log(Entry{
			Source:       "mcp:download_video",
			Action:       "download",
			URL:          "https://example.com/watch?v=abc",
			Location:     "default",
			ResolvedPath: "/home/u/video-downloader/%(title)s.%(ext)s",
			DownloadID:   "3f6a1c0e",
			Success:      true,
		})

		db, err := sql.Open("sqlite", DBPath())
		require.NoError(t, err)
		defer db.Close()

		var source, action, url, location string
		var success int
		err = db.QueryRow("SELECT source, action, url, location, success FROM log WHERE id = 1").
			Scan(&source, &action, &url, &location, &success)
		require.NoError(t, err)
		assert.Equal(t, "mcp:download_video", source)
		assert.Equal(t, "download", action)
		assert.Equal(t, "https://example.com/watch?v=abc", url)
		assert.Equal(t, "default", location)
		assert.Equal(t, 1, success)
	})

	t.Run("security event via builder", func(t *testing.T) {
		withTempDB(t)

		require.NoError(t, Open())
		defer Close()

		Event("mcp:download_video", "reject").
			URL("https://example.com").
			Location("default").
			Path("link/evil.mp4").
			Security().
			Detail("kind", "boundary_escape").
			Write(errors.New("resolved path escapes download location"))

		db, err := sql.Open("sqlite", DBPath())
		require.NoError(t, err)
		defer db.Close()

		var security, success int
		var errMsg string
		err = db.QueryRow("SELECT security, success, error FROM log WHERE id = 1").
			Scan(&security, &success, &errMsg)
		require.NoError(t, err)
		assert.Equal(t, 1, security)
		assert.Equal(t, 0, success)
		assert.Contains(t, errMsg, "escapes")
	})

	t.Run("log without open is a no-op", func(t *testing.T) {
		withTempDB(t)

		// Must not panic
		Log(Entry{Source: "mcp:download_video", Action: "download"})
	})
}
