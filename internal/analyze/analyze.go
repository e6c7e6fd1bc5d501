// Package analyze provides the fallback webpage analyzer for sites the
// extraction engine does not support. It fetches page source and pattern-
// matches for direct media URLs (DASH manifests, HLS playlists, plain
// video/audio/subtitle files) plus basic metadata.
//
// This path has no dependency on the path resolution core: it only reports
// URLs back to the LLM client, which decides what to do with them.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrFetch indicates the page could not be retrieved.
var ErrFetch = errors.New("could not fetch webpage")

// userAgent is a plain browser UA. Many media sites serve stripped or
// blocked pages to obvious bot agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

// maxBodySize caps fetched page bodies. Pattern extraction on a page larger
// than this is not going to find anything the first 10 MB didn't have.
const maxBodySize = 10 << 20

// Fetcher retrieves webpage source with rate limiting shared across
// concurrent tool invocations.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher returns a Fetcher with a 30 second request timeout and a
// limit of one request per second (burst of 3).
func NewFetcher() *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// FetchPage retrieves the page source for url. Blocks on the rate limiter
// until a slot is available or ctx is cancelled.
func (f *Fetcher) FetchPage(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %s", ErrFetch, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return string(body), nil
}

// PageSummary is the analyze_webpage tool's view of a fetched page.
type PageSummary struct {
	Metadata      Metadata `json:"metadata"`
	ContentLength int      `json:"content_length"`
	HasVideoTags  bool     `json:"has_video_tags"`
	HasIframe     bool     `json:"has_iframe"`
}

// Summarize extracts the quick-look summary for a fetched page.
func Summarize(html string) PageSummary {
	lower := strings.ToLower(html)
	return PageSummary{
		Metadata:      ExtractMetadata(html),
		ContentLength: len(html),
		HasVideoTags:  strings.Contains(lower, "<video"),
		HasIframe:     strings.Contains(lower, "<iframe"),
	}
}
