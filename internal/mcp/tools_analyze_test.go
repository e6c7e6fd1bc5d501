package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head>
<title>Concert Stream</title>
<meta property="og:title" content="Concert Stream" />
</head><body>
<video src="/media/stream.mp4"></video>
<script>var player = {"src":"/media/stream.mp4","playlist":"https://cdn.example.com/live/master.m3u8"};</script>
</body></html>`

func TestAnalyzeWebpage(t *testing.T) {
	t.Run("summarizes page", func(t *testing.T) {
		h := newHandlers(testConfig(t.TempDir()), &fakeEngine{available: true}, &fakeFetcher{html: samplePage})

		res, err := h.analyzeWebpage(context.Background(), callReq("analyze_webpage", map[string]any{
			"url": "https://example.com/watch",
		}))
		require.NoError(t, err)
		require.False(t, res.IsError)

		payload := resultJSON(t, res)
		assert.Equal(t, true, payload["success"])
		assert.Equal(t, true, payload["has_video_tags"])
		assert.Equal(t, false, payload["has_iframe"])

		metadata := payload["metadata"].(map[string]any)
		assert.Equal(t, "Concert Stream", metadata["title"])
	})

	t.Run("fetch failure", func(t *testing.T) {
		h := newHandlers(testConfig(t.TempDir()), &fakeEngine{available: true}, &fakeFetcher{err: errors.New("status 403")})

		res, err := h.analyzeWebpage(context.Background(), callReq("analyze_webpage", map[string]any{
			"url": "https://example.com/watch",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "403")
	})

	t.Run("missing url", func(t *testing.T) {
		h := newHandlers(testConfig(t.TempDir()), &fakeEngine{available: true}, &fakeFetcher{})

		res, err := h.analyzeWebpage(context.Background(), callReq("analyze_webpage", nil))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}

func TestExtractMediaPatterns(t *testing.T) {
	t.Run("extracts and resolves urls", func(t *testing.T) {
		h := newHandlers(testConfig(t.TempDir()), &fakeEngine{available: true}, &fakeFetcher{html: samplePage})

		res, err := h.extractMediaPatterns(context.Background(), callReq("extract_media_patterns", map[string]any{
			"url": "https://example.com/watch",
		}))
		require.NoError(t, err)
		require.False(t, res.IsError)

		payload := resultJSON(t, res)
		assert.Equal(t, true, payload["success"])
		assert.Equal(t, float64(2), payload["total_media_urls"])

		patterns := payload["patterns"].(map[string]any)
		assert.Contains(t, patterns["video_files"], "https://example.com/media/stream.mp4")
		assert.Contains(t, patterns["hls_playlists"], "https://cdn.example.com/live/master.m3u8")
	})

	t.Run("fetch failure", func(t *testing.T) {
		h := newHandlers(testConfig(t.TempDir()), &fakeEngine{available: true}, &fakeFetcher{err: errors.New("unreachable")})

		res, err := h.extractMediaPatterns(context.Background(), callReq("extract_media_patterns", map[string]any{
			"url": "https://example.com/watch",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}
