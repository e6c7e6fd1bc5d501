// tools_info.go implements the metadata probe tools: support check, full
// video info, and format listing. These are read-only - no path resolution
// involved - and exist so the LLM can decide what to download before
// committing to a transfer.

package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/vgrab/vgrab/internal/log"
	"github.com/vgrab/vgrab/internal/ytdlp"
)

// infoTimeout bounds metadata extraction. Downloads are not subject to this;
// the client owns cancellation of long transfers via the MCP context.
const infoTimeout = 30 * time.Second

// checkSupport handles check_ytdlp_support tool calls.
func (h *handlers) checkSupport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil //nolint:nilerr
	}

	if !h.engine.Available() {
		return jsonResult(map[string]any{
			"supported": false,
			"error":     ytdlp.ErrUnavailable.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(ctx, infoTimeout)
	defer cancel()

	info, err := h.engine.ExtractInfo(ctx, url)

	log.Event("mcp:check_ytdlp_support", "probe").URL(url).Write(err)

	if err != nil {
		return jsonResult(map[string]any{
			"supported": false,
			"error":     "URL not supported by yt-dlp",
		})
	}

	return jsonResult(map[string]any{
		"supported":   true,
		"title":       info.Title,
		"duration":    info.Duration,
		"uploader":    info.Uploader,
		"view_count":  info.ViewCount,
		"upload_date": info.UploadDate,
		"description": truncate(info.Description, 200),
	})
}

// videoInfo handles get_video_info tool calls.
func (h *handlers) videoInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil //nolint:nilerr
	}

	ctx, cancel := context.WithTimeout(ctx, infoTimeout)
	defer cancel()

	info, err := h.engine.ExtractInfo(ctx, url)

	log.Event("mcp:get_video_info", "probe").URL(url).Write(err)

	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not extract video information: %v", err)), nil
	}

	languages := make([]string, 0, len(info.Subtitles))
	for lang := range info.Subtitles {
		languages = append(languages, lang)
	}

	return jsonResult(map[string]any{
		"success":            true,
		"title":              info.Title,
		"duration":           info.Duration,
		"thumbnail":          info.Thumbnail,
		"description":        info.Description,
		"uploader":           info.Uploader,
		"upload_date":        info.UploadDate,
		"view_count":         info.ViewCount,
		"webpage_url":        info.WebpageURL,
		"format_count":       len(info.Formats),
		"subtitle_languages": languages,
	})
}

// formatView is the processed format entry returned to the LLM: resolution
// labelled for quick comparison, raw media URL truncated to keep responses
// small.
type formatView struct {
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext"`
	Resolution string  `json:"resolution"`
	FPS        float64 `json:"fps,omitempty"`
	VCodec     string  `json:"vcodec,omitempty"`
	ACodec     string  `json:"acodec,omitempty"`
	Filesize   int64   `json:"filesize,omitempty"`
	TBR        float64 `json:"tbr,omitempty"`
	FormatNote string  `json:"format_note,omitempty"`
	URL        string  `json:"url,omitempty"`
}

// videoFormats handles get_video_formats tool calls.
func (h *handlers) videoFormats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil //nolint:nilerr
	}

	ctx, cancel := context.WithTimeout(ctx, infoTimeout)
	defer cancel()

	formats, err := h.engine.Formats(ctx, url)

	log.Event("mcp:get_video_formats", "probe").URL(url).Detail("count", len(formats)).Write(err)

	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not get video formats: %v", err)), nil
	}

	views := make([]formatView, 0, len(formats))
	for _, f := range formats {
		views = append(views, formatView{
			FormatID:   f.FormatID,
			Ext:        f.Ext,
			Resolution: resolutionLabel(f),
			FPS:        f.FPS,
			VCodec:     f.VCodec,
			ACodec:     f.ACodec,
			Filesize:   f.Filesize,
			TBR:        f.TBR,
			FormatNote: f.FormatNote,
			URL:        truncate(f.URL, 100),
		})
	}

	return jsonResult(map[string]any{
		"success": true,
		"formats": views,
	})
}

func resolutionLabel(f ytdlp.Format) string {
	if f.Height > 0 {
		return fmt.Sprintf("%dp", f.Height)
	}
	return "audio-only"
}
