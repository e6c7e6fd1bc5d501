// Package mcp implements the Model Context Protocol server, exposing video
// download and webpage analysis operations to LLMs. This lets AI assistants
// orchestrate extraction workflows - probe a URL, inspect formats, download
// to a confined location, fall back to pattern analysis - through a
// standardised protocol.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/vgrab/vgrab/internal/analyze"
	"github.com/vgrab/vgrab/internal/config"
	"github.com/vgrab/vgrab/internal/pathguard"
	"github.com/vgrab/vgrab/internal/ytdlp"
)

// Version is advertised to clients for capability negotiation.
const Version = "0.2.0"

// Engine is the extraction engine surface the tool handlers need.
// Satisfied by *ytdlp.Client; tests substitute a fake.
type Engine interface {
	Available() bool
	ExtractInfo(ctx context.Context, url string) (*ytdlp.Info, error)
	Formats(ctx context.Context, url string) ([]ytdlp.Format, error)
	Download(ctx context.Context, req ytdlp.Request) (ytdlp.Result, error)
}

// PageFetcher is the webpage retrieval surface the analysis tools need.
// Satisfied by *analyze.Fetcher.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Serve starts the MCP server over stdio, enabling LLM integration.
// Uses stdio transport for compatibility with Claude Desktop and other MCP
// clients. Blocks until the client disconnects.
func Serve(cfg *config.Config) error {
	// Log to stderr; stdout is reserved for MCP JSON-RPC messages
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	h := newHandlers(cfg, ytdlp.New(), analyze.NewFetcher())

	if !h.engine.Available() {
		// Not fatal: the analysis tools still work, and check_ytdlp_support
		// tells the LLM exactly what is missing.
		slog.Warn("yt-dlp not found on PATH, download tools will report unavailable")
	}

	s := server.NewMCPServer(
		"vgrab",
		Version,
		server.WithToolCapabilities(true),
	)

	registerTools(s, h)

	stopWatch := watchConfig(cfg.Path())
	defer stopWatch()

	slog.Info("vgrab MCP server ready", "version", Version, "transport", "stdio",
		"locations", len(h.table))

	err := server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

// handlers provides MCP request handlers with access to the immutable
// configuration snapshot taken at startup.
type handlers struct {
	cfg     *config.Config
	policy  pathguard.Policy
	table   pathguard.Locations
	engine  Engine
	fetcher PageFetcher
}

func newHandlers(cfg *config.Config, engine Engine, fetcher PageFetcher) *handlers {
	return &handlers{
		cfg:     cfg,
		policy:  cfg.Policy(),
		table:   cfg.Locations(),
		engine:  engine,
		fetcher: fetcher,
	}
}

// watchConfig warns when the config file changes on disk. Configuration is
// immutable for the lifetime of the process - every request validates
// against the startup snapshot - so the only correct response to an edit is
// a restart, and the operator should hear that from the log rather than
// wonder why changes aren't applying.
func watchConfig(path string) (stop func()) {
	if path == "" {
		return func() {}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("config watcher unavailable", "error", err)
		return func() {}
	}
	if err := w.Add(path); err != nil {
		// The file may not exist yet (defaults-only run)
		w.Close()
		return func() {}
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
					slog.Warn("config file changed on disk, restart vgrab to apply", "path", ev.Name)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "error", err)
			}
		}
	}()

	return func() { w.Close() }
}

// registerTools exposes vgrab operations as MCP tools for LLM invocation.
func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("check_ytdlp_support",
			mcp.WithDescription("Check if a URL is supported by yt-dlp and get basic info"),
			mcp.WithString("url", mcp.Required(), mcp.Description("Video URL to check")),
		),
		h.checkSupport,
	)

	s.AddTool(
		mcp.NewTool("get_video_info",
			mcp.WithDescription("Get detailed video information including available formats"),
			mcp.WithString("url", mcp.Required(), mcp.Description("Video URL to analyze")),
		),
		h.videoInfo,
	)

	s.AddTool(
		mcp.NewTool("get_video_formats",
			mcp.WithDescription("Get available video/audio formats and quality options"),
			mcp.WithString("url", mcp.Required(), mcp.Description("Video URL to get formats for")),
		),
		h.videoFormats,
	)

	s.AddTool(
		mcp.NewTool("get_download_locations",
			mcp.WithDescription("List configured download locations and their writability"),
		),
		h.downloadLocations,
	)

	s.AddTool(
		mcp.NewTool("download_video",
			mcp.WithDescription("Download video to a configured location with optional subpath and filename template"),
			mcp.WithString("url", mcp.Required(), mcp.Description("Video URL to download")),
			mcp.WithString("format_id", mcp.Description("Specific format ID to download (optional)")),
			mcp.WithString("location_id", mcp.Description("Configured download location id (see get_download_locations)")),
			mcp.WithString("relative_path", mcp.Description("Subdirectory inside the location (optional)")),
			mcp.WithString("filename_template", mcp.Description("Output filename template, e.g. %(title)s.%(ext)s (optional)")),
			mcp.WithString("output_path", mcp.Description("DEPRECATED: raw output path, bypasses location security")),
		),
		h.downloadVideo,
	)

	s.AddTool(
		mcp.NewTool("analyze_webpage",
			mcp.WithDescription("Fallback: analyze a webpage for video content when yt-dlp fails"),
			mcp.WithString("url", mcp.Required(), mcp.Description("Webpage URL to analyze")),
		),
		h.analyzeWebpage,
	)

	s.AddTool(
		mcp.NewTool("extract_media_patterns",
			mcp.WithDescription("Extract video/audio/subtitle URLs from webpage HTML using pattern matching"),
			mcp.WithString("url", mcp.Required(), mcp.Description("Webpage URL to extract media from")),
		),
		h.extractMediaPatterns,
	)
}
