package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMediaURLs(t *testing.T) {
	t.Run("absolute urls by category", func(t *testing.T) {
		html := `
			<script>
				var manifest = "https://cdn.example.com/stream.mpd?token=abc";
				var playlist = 'https://cdn.example.com/master.m3u8';
			</script>
			<video src="https://cdn.example.com/clip.mp4"></video>
			<audio src="https://cdn.example.com/track.mp3"></audio>
			<track src="https://cdn.example.com/subs.vtt">
		`
		media := ExtractMediaURLs(html, "https://example.com/watch")

		assert.Equal(t, []string{"https://cdn.example.com/stream.mpd?token=abc"}, media.MPDManifests)
		assert.Equal(t, []string{"https://cdn.example.com/master.m3u8"}, media.M3U8Playlists)
		assert.Equal(t, []string{"https://cdn.example.com/clip.mp4"}, media.VideoFiles)
		assert.Equal(t, []string{"https://cdn.example.com/track.mp3"}, media.AudioFiles)
		assert.Equal(t, []string{"https://cdn.example.com/subs.vtt"}, media.SubtitleFiles)
		assert.Equal(t, 5, media.Total())
	})

	t.Run("relative urls resolved against page", func(t *testing.T) {
		html := `{"manifest": "/streams/video.mpd", "src": "media/clip.mp4"}`
		media := ExtractMediaURLs(html, "https://example.com/watch/page")

		assert.Equal(t, []string{"https://example.com/streams/video.mpd"}, media.MPDManifests)
		assert.Contains(t, media.VideoFiles, "https://example.com/watch/media/clip.mp4")
	})

	t.Run("protocol-relative urls default to https", func(t *testing.T) {
		html := `{"playlist": "//cdn.example.com/live.m3u8"}`
		media := ExtractMediaURLs(html, "http://example.com")

		assert.Equal(t, []string{"https://cdn.example.com/live.m3u8"}, media.M3U8Playlists)
	})

	t.Run("duplicates collapsed", func(t *testing.T) {
		html := `
			<a href="https://cdn.example.com/clip.mp4">one</a>
			<a href="https://cdn.example.com/clip.mp4">two</a>
		`
		media := ExtractMediaURLs(html, "https://example.com")
		assert.Len(t, media.VideoFiles, 1)
	})

	t.Run("nothing found", func(t *testing.T) {
		media := ExtractMediaURLs("<html><body>plain page</body></html>", "https://example.com")
		assert.Equal(t, 0, media.Total())
	})
}

func TestExtractMetadata(t *testing.T) {
	t.Run("title tag", func(t *testing.T) {
		md := ExtractMetadata(`<html><head><title> My Video </title></head></html>`)
		assert.Equal(t, "My Video", md.Title)
	})

	t.Run("og title preferred over json title when title tag absent", func(t *testing.T) {
		md := ExtractMetadata(`<meta property="og:title" content="OG Title">{"title": "JSON Title"}`)
		assert.Equal(t, "OG Title", md.Title)
	})

	t.Run("duration", func(t *testing.T) {
		md := ExtractMetadata(`{"duration": "214"}`)
		assert.Equal(t, 214, md.Duration)

		md = ExtractMetadata(`{"duration": 95}`)
		assert.Equal(t, 95, md.Duration)
	})

	t.Run("missing fields stay zero", func(t *testing.T) {
		md := ExtractMetadata(`<html></html>`)
		assert.Empty(t, md.Title)
		assert.Zero(t, md.Duration)
	})
}

func TestSummarize(t *testing.T) {
	html := `<html><title>T</title><VIDEO src="x.mp4"></VIDEO><iframe src="y"></iframe></html>`
	s := Summarize(html)

	assert.Equal(t, "T", s.Metadata.Title)
	assert.Equal(t, len(html), s.ContentLength)
	assert.True(t, s.HasVideoTags)
	assert.True(t, s.HasIframe)
}
