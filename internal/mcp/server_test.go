package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
	"github.com/vgrab/vgrab/internal/config"
	"github.com/vgrab/vgrab/internal/ytdlp"
)

// fakeEngine implements Engine for handler tests.
type fakeEngine struct {
	available bool
	info      *ytdlp.Info
	infoErr   error

	// download, when set, decides the result; lastReq records the request.
	download func(req ytdlp.Request) ytdlp.Result
	lastReq  ytdlp.Request
}

func (f *fakeEngine) Available() bool { return f.available }

func (f *fakeEngine) ExtractInfo(_ context.Context, _ string) (*ytdlp.Info, error) {
	return f.info, f.infoErr
}

func (f *fakeEngine) Formats(_ context.Context, _ string) ([]ytdlp.Format, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.info.Formats, nil
}

func (f *fakeEngine) Download(_ context.Context, req ytdlp.Request) (ytdlp.Result, error) {
	f.lastReq = req
	if f.download != nil {
		return f.download(req), nil
	}
	return ytdlp.Result{Success: true}, nil
}

// fakeFetcher implements PageFetcher for handler tests.
type fakeFetcher struct {
	html string
	err  error
}

func (f *fakeFetcher) FetchPage(_ context.Context, _ string) (string, error) {
	return f.html, f.err
}

// testConfig builds a config with a single "default" location at base.
// Unset fields fall back to the package defaults.
func testConfig(base string) *config.Config {
	return &config.Config{
		DownloadLocations: map[string]string{"default": base},
		Security: config.Security{
			AllowedExtensions: []string{"mp4", "mkv", "mp3"},
		},
	}
}

// callReq builds a CallToolRequest with the given arguments.
func callReq(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// resultText extracts the text payload of a tool result.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

// resultJSON decodes the text payload of a tool result into a map.
func resultJSON(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &m))
	return m
}

var errNotSupported = errors.New("unsupported URL")
