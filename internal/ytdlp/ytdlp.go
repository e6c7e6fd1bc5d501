// Package ytdlp wraps the yt-dlp binary as vgrab's extraction engine.
//
// yt-dlp does the actual media extraction and downloading; this package only
// builds invocations, decodes the engine's JSON metadata output, and reports
// where the engine wrote the file. Destination confinement is not this
// package's job - callers pass a destination template that has already been
// through the path resolution core, and re-validate the resulting file.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// ErrUnavailable indicates the yt-dlp binary was not found on PATH.
var ErrUnavailable = errors.New("yt-dlp is not installed or not on PATH")

// ErrExtraction indicates yt-dlp could not extract information for a URL.
var ErrExtraction = errors.New("extraction failed")

// DefaultBinary is the engine binary name resolved via PATH.
const DefaultBinary = "yt-dlp"

// logExcerptLimit caps the engine log returned to MCP clients. Full engine
// output for a playlist can run to megabytes of progress lines.
const logExcerptLimit = 4096

// Client invokes the yt-dlp binary.
type Client struct {
	bin string
}

// New returns a Client using the default binary name.
func New() *Client {
	return &Client{bin: DefaultBinary}
}

// NewWithBinary returns a Client using a specific binary path.
func NewWithBinary(bin string) *Client {
	return &Client{bin: bin}
}

// Info is the engine's metadata for a single video.
type Info struct {
	Title       string                `json:"title"`
	Duration    float64               `json:"duration"`
	Thumbnail   string                `json:"thumbnail"`
	Description string                `json:"description"`
	Uploader    string                `json:"uploader"`
	UploadDate  string                `json:"upload_date"`
	ViewCount   int64                 `json:"view_count"`
	WebpageURL  string                `json:"webpage_url"`
	Formats     []Format              `json:"formats"`
	Subtitles   map[string][]Subtitle `json:"subtitles"`
}

// Format is a single downloadable format variant.
type Format struct {
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext"`
	Height     int     `json:"height"`
	FPS        float64 `json:"fps"`
	VCodec     string  `json:"vcodec"`
	ACodec     string  `json:"acodec"`
	Filesize   int64   `json:"filesize"`
	TBR        float64 `json:"tbr"`
	FormatNote string  `json:"format_note"`
	URL        string  `json:"url"`
}

// Subtitle is a single subtitle track entry.
type Subtitle struct {
	Ext string `json:"ext"`
	URL string `json:"url"`
}

// Request describes a download invocation.
type Request struct {
	URL      string
	FormatID string
	// Destination is the output template (-o), already resolved and
	// confined by the caller.
	Destination string
}

// Result reports the outcome of a download.
type Result struct {
	Success bool
	// FilePath is the file the engine reported writing, parsed from its
	// output. Empty when the engine did not report a destination.
	FilePath string
	// Log is an excerpt of the engine's combined output.
	Log string
}

// Available reports whether the engine binary can be invoked.
func (c *Client) Available() bool {
	return exec.Command(c.bin, "--version").Run() == nil
}

// ExtractInfo fetches full metadata for url without downloading.
func (c *Client) ExtractInfo(ctx context.Context, url string) (*Info, error) {
	out, err := c.run(ctx, url, "-J", "--no-warnings")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	var info Info
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("%w: decode engine output: %v", ErrExtraction, err)
	}
	return &info, nil
}

// Formats fetches the available format variants for url.
func (c *Client) Formats(ctx context.Context, url string) ([]Format, error) {
	info, err := c.ExtractInfo(ctx, url)
	if err != nil {
		return nil, err
	}
	return info.Formats, nil
}

// Download runs the engine with the given format and destination template.
// A non-zero engine exit is reported in the Result, not as a Go error:
// callers relay the engine log to the MCP client either way.
func (c *Client) Download(ctx context.Context, req Request) (Result, error) {
	args := downloadArgs(req)

	cmd := exec.CommandContext(ctx, c.bin, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	out := buf.String()

	res := Result{
		Success:  err == nil,
		FilePath: parseDestination(out),
		Log:      excerpt(out),
	}
	if err != nil && ctx.Err() != nil {
		return res, ctx.Err()
	}
	return res, nil
}

// downloadArgs builds the engine argument list for a download request.
func downloadArgs(req Request) []string {
	args := []string{"--newline", "--no-warnings"}
	if req.FormatID != "" {
		args = append(args, "-f", req.FormatID)
	}
	if req.Destination != "" {
		args = append(args, "-o", req.Destination)
	}
	// URL last, after all flags, so an URL starting with "-" cannot be
	// mistaken for an option.
	args = append(args, "--", req.URL)
	return args
}

func (c *Client) run(ctx context.Context, url string, flags ...string) ([]byte, error) {
	args := append(append([]string{}, flags...), "--", url)
	cmd := exec.CommandContext(ctx, c.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%v: %s", err, excerpt(msg))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Destination patterns in engine output, in order of authority: the merger
// line supersedes per-stream destination lines, and the already-downloaded
// line appears when the file existed before this run.
var (
	mergerRe     = regexp.MustCompile(`\[Merger\] Merging formats into "(.+)"`)
	destRe       = regexp.MustCompile(`\[download\] Destination: (.+)`)
	alreadyRe    = regexp.MustCompile(`\[download\] (.+) has already been downloaded`)
	moveFileRe   = regexp.MustCompile(`\[MoveFiles\] Moving file ".+" to "(.+)"`)
	extractAudRe = regexp.MustCompile(`\[ExtractAudio\] Destination: (.+)`)
)

// parseDestination extracts the final file path from engine output.
func parseDestination(out string) string {
	for _, re := range []*regexp.Regexp{mergerRe, moveFileRe, extractAudRe, alreadyRe} {
		if m := re.FindStringSubmatch(out); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	// Last per-stream destination: with separate video/audio streams the
	// final line is the one that survives post-processing.
	if ms := destRe.FindAllStringSubmatch(out, -1); len(ms) > 0 {
		return strings.TrimSpace(ms[len(ms)-1][1])
	}
	return ""
}

// excerpt returns the tail of s capped at logExcerptLimit bytes.
func excerpt(s string) string {
	if len(s) <= logExcerptLimit {
		return s
	}
	return "..." + s[len(s)-logExcerptLimit:]
}
