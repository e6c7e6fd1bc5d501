// tools_download.go implements the download_video and get_download_locations
// tools - the only tools that touch the filesystem and therefore the only
// consumers of the path resolution core.
//
// Design principles:
//
//  1. Two input modes. The secure fields (location_id, relative_path,
//     filename_template) go through pathguard end-to-end. The legacy
//     output_path bypasses validation for backward compatibility but is
//     flagged as a DeprecatedUnsafePath security event so auditors can tell
//     validated and unvalidated downloads apart. When both are supplied the
//     secure fields win and the legacy field is ignored with a warning.
//
//  2. Post-download re-validation. The destination handed to the engine is a
//     template; the real filename (and extension) only exists after the
//     engine expands it. The file the engine reports writing is re-validated
//     and deleted if non-conforming - a rejection, not a partial success.
//
//  3. Rejections are tool error results with enough detail to correct the
//     request, but never absolute paths of locations the caller didn't
//     reference.

package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/vgrab/vgrab/internal/log"
	"github.com/vgrab/vgrab/internal/pathguard"
	"github.com/vgrab/vgrab/internal/ytdlp"
)

// locationView is the get_download_locations entry: the configured path
// string as the administrator wrote it, never the expanded absolute form.
type locationView struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	Writable bool   `json:"writable"`
}

// downloadLocations handles get_download_locations tool calls.
func (h *handlers) downloadLocations(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:revive // ctx required by mcp-go
	views := make([]locationView, 0, len(h.table))
	for id, configured := range h.table {
		_, err := pathguard.ResolveBase(id, h.table, h.policy)
		views = append(views, locationView{
			ID:       id,
			Path:     configured,
			Writable: err == nil,
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })

	log.Event("mcp:get_download_locations", "list").Detail("count", len(views)).Write(nil)

	return jsonResult(map[string]any{
		"success":   true,
		"locations": views,
	})
}

// downloadResponse is the download_video success payload.
type downloadResponse struct {
	Success    bool   `json:"success"`
	DownloadID string `json:"download_id"`
	LocationID string `json:"location_id,omitempty"`
	// Destination is the resolved output template handed to the engine.
	Destination string `json:"destination"`
	// FilePath is the file the engine reported writing, re-validated.
	FilePath string `json:"file_path,omitempty"`
	Log      string `json:"log,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// downloadVideo handles download_video tool calls.
func (h *handlers) downloadVideo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil //nolint:nilerr
	}

	if !h.engine.Available() {
		return mcp.NewToolResultError(ytdlp.ErrUnavailable.Error()), nil
	}

	locationID := getString(req, "location_id", "")
	relativePath := getString(req, "relative_path", "")
	template := getString(req, "filename_template", "")
	legacyPath := getString(req, "output_path", "")
	secure := locationID != "" || relativePath != "" || template != ""

	var (
		rp      pathguard.ResolvedPath
		warning string
	)
	switch {
	case secure:
		if legacyPath != "" {
			warning = "output_path ignored: secure location fields take precedence"
			slog.Warn("download request mixed secure fields with output_path, ignoring output_path", "url", url)
		}
		rp, err = h.constructPath(url, locationID, relativePath, template)
	case legacyPath != "":
		rp, warning, err = h.legacyPath(url, legacyPath)
	default:
		// No path fields at all: behave as a secure request against the
		// default or enforced location.
		rp, err = h.constructPath(url, "", "", "")
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id := uuid.NewString()
	result, err := h.engine.Download(ctx, ytdlp.Request{
		URL:         url,
		FormatID:    getString(req, "format_id", h.cfg.DefaultFormat()),
		Destination: rp.AbsolutePath,
	})

	engineErr := err
	if engineErr == nil && !result.Success {
		engineErr = errors.New("engine reported failure")
	}
	if h.cfg.LogDownloads() {
		l := log.Event("mcp:download_video", "download").
			URL(url).
			Location(rp.LocationID).
			Resolved(rp.AbsolutePath).
			DownloadID(id)
		if result.FilePath != "" {
			l.Detail("file_path", result.FilePath)
		}
		l.Write(engineErr)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("download failed: %v", err)), nil
	}
	if !result.Success {
		return mcp.NewToolResultError(fmt.Sprintf("download failed:\n%s", result.Log)), nil
	}

	// The expanded filename is only knowable now; a non-conforming file is
	// removed rather than left in place.
	if result.FilePath != "" {
		if verr := pathguard.ValidateOutput(rp, result.FilePath, h.policy); verr != nil {
			h.rejectOutput(url, rp, result.FilePath, verr)
			return mcp.NewToolResultError(fmt.Sprintf("downloaded file rejected and removed: %v", verr)), nil
		}
	}

	return jsonResult(downloadResponse{
		Success:     true,
		DownloadID:  id,
		LocationID:  rp.LocationID,
		Destination: rp.AbsolutePath,
		FilePath:    result.FilePath,
		Log:         result.Log,
		Warning:     warning,
	})
}

// constructPath runs the secure path pipeline and audit-logs rejections.
// A BoundaryEscape is recorded as a security event: it means a gap earlier
// in the pipeline (typically a symlink), not ordinary bad input.
func (h *handlers) constructPath(url, locationID, relativePath, template string) (pathguard.ResolvedPath, error) {
	rp, err := pathguard.Construct(pathguard.Request{
		LocationID:       locationID,
		RelativePath:     relativePath,
		FilenameTemplate: template,
		DefaultTemplate:  h.cfg.DefaultFilenameTemplate(),
	}, h.policy, h.table)
	if err == nil {
		return rp, nil
	}

	if errors.Is(err, pathguard.ErrBoundaryEscape) {
		slog.Error("boundary escape blocked", "url", url, "location", locationID, "error", err)
		if h.cfg.LogSecurityEvents() {
			log.Event("mcp:download_video", "reject").
				URL(url).Location(locationID).Path(relativePath).
				Security().Detail("kind", "boundary_escape").
				Write(err)
		}
	} else if h.cfg.LogSecurityEvents() {
		log.Event("mcp:download_video", "reject").
			URL(url).Location(locationID).Path(relativePath).
			Write(err)
	}
	return pathguard.ResolvedPath{}, err
}

// legacyPath resolves the deprecated output_path mode. Always emits the
// DeprecatedUnsafePath warning so validated and unvalidated results remain
// distinguishable to callers and auditors.
func (h *handlers) legacyPath(url, legacy string) (pathguard.ResolvedPath, string, error) {
	rp, err := pathguard.LegacyOutputPath(legacy)
	if err != nil {
		return pathguard.ResolvedPath{}, "", err
	}

	const warning = "DeprecatedUnsafePath: output_path bypasses location security; use location_id instead"
	slog.Warn("deprecated unsafe output_path used", "url", url, "path", rp.AbsolutePath)
	if h.cfg.LogSecurityEvents() {
		log.Event("mcp:download_video", "download").
			URL(url).Resolved(rp.AbsolutePath).
			Security().Detail("kind", "deprecated_unsafe_path").
			Write(nil)
	}
	return rp, warning, nil
}

// rejectOutput deletes a non-conforming downloaded file and records the
// rejection.
func (h *handlers) rejectOutput(url string, rp pathguard.ResolvedPath, file string, verr error) {
	if rmErr := os.Remove(file); rmErr != nil {
		slog.Error("failed to remove rejected download", "error", rmErr)
	}
	isEscape := errors.Is(verr, pathguard.ErrBoundaryEscape)
	if isEscape {
		slog.Error("boundary escape detected post-download", "url", url, "location", rp.LocationID, "error", verr)
	}
	if h.cfg.LogSecurityEvents() {
		l := log.Event("mcp:download_video", "reject").
			URL(url).Location(rp.LocationID).Resolved(rp.AbsolutePath)
		if isEscape {
			l.Security().Detail("kind", "boundary_escape")
		}
		l.Detail("deleted", file).Write(verr)
	}
}
