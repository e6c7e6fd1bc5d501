// patterns.go extracts candidate media URLs and metadata from page HTML.
//
// Go's regexp has no backreferences, so where the matching quote style
// matters each pattern is written twice, once per quote character. Matches
// are deduplicated per category and relative URLs are resolved against the
// page URL.

package analyze

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Media groups extracted URLs by kind.
type Media struct {
	MPDManifests  []string `json:"mpd_manifests"`
	M3U8Playlists []string `json:"m3u8_playlists"`
	VideoFiles    []string `json:"video_files"`
	AudioFiles    []string `json:"audio_files"`
	SubtitleFiles []string `json:"subtitle_files"`
}

// Total returns the number of URLs found across all categories.
func (m Media) Total() int {
	return len(m.MPDManifests) + len(m.M3U8Playlists) + len(m.VideoFiles) +
		len(m.AudioFiles) + len(m.SubtitleFiles)
}

// quoted builds the pair of patterns matching an absolute URL with the
// given extension group inside single or double quotes.
func quoted(extGroup string) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)"(https?://[^"]*\.` + extGroup + `(?:\?[^"]*)?)"`),
		regexp.MustCompile(`(?i)'(https?://[^']*\.` + extGroup + `(?:\?[^']*)?)'`),
	}
}

// keyed builds the pair of patterns matching a possibly-relative URL with
// the given extension group as the value of a JSON-ish key.
func keyed(key, extGroup string) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + key + `"\s*:\s*"([^"]*\.` + extGroup + `(?:\?[^"]*)?)"`),
		regexp.MustCompile(`(?i)` + key + `'\s*:\s*'([^']*\.` + extGroup + `(?:\?[^']*)?)'`),
	}
}

var (
	mpdPatterns   = append(quoted(`mpd`), keyed("manifest", `mpd`)...)
	m3u8Patterns  = append(quoted(`m3u8`), keyed("playlist", `m3u8`)...)
	videoPatterns = append(quoted(`(?:mp4|webm|mkv|avi|mov)`), keyed("src", `(?:mp4|webm|mkv)`)...)
	audioPatterns = quoted(`(?:mp3|m4a|aac|ogg|wav)`)
	subPatterns   = quoted(`(?:vtt|srt|ass|ssa)`)
)

// ExtractMediaURLs scans html for media URLs, resolving relative references
// against pageURL.
func ExtractMediaURLs(html, pageURL string) Media {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}
	return Media{
		MPDManifests:  collect(html, base, mpdPatterns),
		M3U8Playlists: collect(html, base, m3u8Patterns),
		VideoFiles:    collect(html, base, videoPatterns),
		AudioFiles:    collect(html, base, audioPatterns),
		SubtitleFiles: collect(html, base, subPatterns),
	}
}

func collect(html string, base *url.URL, patterns []*regexp.Regexp) []string {
	urls := []string{}
	seen := make(map[string]struct{})
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(html, -1) {
			u := resolve(m[1], base)
			if u == "" {
				continue
			}
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			urls = append(urls, u)
		}
	}
	return urls
}

// resolve converts a matched URL to absolute form against base.
func resolve(u string, base *url.URL) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if base == nil {
		return ""
	}
	ref, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// Metadata is the title/duration information recoverable from raw HTML.
type Metadata struct {
	Title    string `json:"title,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<title[^>]*>([^<]+)</title>`),
	regexp.MustCompile(`(?i)<meta[^>]*property=["']og:title["'][^>]*content=["']([^"']+)["']`),
	regexp.MustCompile(`(?i)["']title["']\s*:\s*["']([^"']+)["']`),
}

var durationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)["']duration["']\s*:\s*["']?(\d+)["']?`),
	regexp.MustCompile(`(?i)duration["']\s*:\s*(\d+)`),
}

// ExtractMetadata pulls title and duration out of html. Fields that cannot
// be found are left zero.
func ExtractMetadata(html string) Metadata {
	var md Metadata
	for _, re := range titlePatterns {
		if m := re.FindStringSubmatch(html); m != nil {
			md.Title = strings.TrimSpace(m[1])
			break
		}
	}
	for _, re := range durationPatterns {
		if m := re.FindStringSubmatch(html); m != nil {
			if d, err := strconv.Atoi(m[1]); err == nil {
				md.Duration = d
				break
			}
		}
	}
	return md
}
