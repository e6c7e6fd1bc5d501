// tools_analyze.go implements the fallback analysis tools used when the
// extraction engine does not support a site: a quick page summary and
// pattern-based media URL extraction. Both are read-only and report URLs
// back to the LLM, which decides the next step (often a download_video call
// against a direct media URL).

package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/vgrab/vgrab/internal/analyze"
	"github.com/vgrab/vgrab/internal/log"
)

// analyzeWebpage handles analyze_webpage tool calls.
func (h *handlers) analyzeWebpage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil //nolint:nilerr
	}

	html, err := h.fetcher.FetchPage(ctx, url)

	log.Event("mcp:analyze_webpage", "analyze").URL(url).Write(err)

	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not fetch webpage content: %v", err)), nil
	}

	summary := analyze.Summarize(html)

	return jsonResult(map[string]any{
		"success":        true,
		"metadata":       summary.Metadata,
		"content_length": summary.ContentLength,
		"has_video_tags": summary.HasVideoTags,
		"has_iframe":     summary.HasIframe,
	})
}

// extractMediaPatterns handles extract_media_patterns tool calls.
func (h *handlers) extractMediaPatterns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil //nolint:nilerr
	}

	html, err := h.fetcher.FetchPage(ctx, url)
	if err != nil {
		log.Event("mcp:extract_media_patterns", "analyze").URL(url).Write(err)
		return mcp.NewToolResultError(fmt.Sprintf("could not fetch webpage content: %v", err)), nil
	}

	media := analyze.ExtractMediaURLs(html, url)
	metadata := analyze.ExtractMetadata(html)

	log.Event("mcp:extract_media_patterns", "analyze").
		URL(url).Detail("total_media_urls", media.Total()).Write(nil)

	return jsonResult(map[string]any{
		"success":          true,
		"total_media_urls": media.Total(),
		"patterns":         media,
		"metadata":         metadata,
	})
}
