// Package log provides centralised audit logging for vgrab operations.
// Entries are stored in ~/.config/vgrab/log/vgrab-log.db and track MCP tool
// invocations, downloads, and security events.
//
// # Fluent API
//
// Use the fluent builder API to construct and write log entries:
//
//	log.Event("mcp:download_video", "download").
//		URL(url).
//		Location(locationID).
//		Resolved(rp.AbsolutePath).
//		Write(err)
//
//	log.Event("mcp:download_video", "reject").
//		URL(url).
//		Security().
//		Write(err)
//
// The source parameter follows the format "mcp:{tool}" for MCP tools or
// "cli:{command}" for CLI commands.
package log

import (
	"sync"
	"time"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single audit log entry.
type Entry struct {
	Source   string // e.g., "mcp:download_video", "cli:locations"
	Action   string // verb: download, analyze, probe, reject, etc.
	URL      string // input: media or webpage URL
	Location string // input: download location id
	Path     string // input: requested relative path or template

	// Output fields - populated after the operation completes
	ResolvedPath string // resolved absolute destination
	DownloadID   string // per-download identifier

	// Security marks the entry as a security event (boundary escape,
	// deprecated unsafe path). Security events are queryable separately
	// from routine rejections.
	Security bool

	// Timing
	Start int64 // unix timestamp when Event() called
	End   int64 // unix timestamp when Write() called

	Success bool
	Error   string
	Detail  map[string]any
}

// Builder constructs a log entry using a fluent API.
// Create with [Event], chain methods to set fields, then call [Builder.Write]
// to write the entry.
type Builder struct {
	entry Entry
}

// Event creates a new log entry builder for an operation.
//
// The source identifies where the operation originated ("mcp:{tool}" or
// "cli:{command}"); the action describes what was performed ("download",
// "analyze", "probe", "list", "reject").
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().Unix(),
		},
	}
}

// URL sets the media or webpage URL this operation targets.
func (b *Builder) URL(url string) *Builder {
	b.entry.URL = url
	return b
}

// Location sets the download location id named by the request.
func (b *Builder) Location(id string) *Builder {
	b.entry.Location = id
	return b
}

// Path sets the requested relative path or filename template.
func (b *Builder) Path(path string) *Builder {
	b.entry.Path = path
	return b
}

// Resolved sets the resolved absolute destination path (output).
// Set only after resolution succeeds.
func (b *Builder) Resolved(path string) *Builder {
	b.entry.ResolvedPath = path
	return b
}

// DownloadID sets the per-download identifier.
func (b *Builder) DownloadID(id string) *Builder {
	b.entry.DownloadID = id
	return b
}

// Security marks this entry as a security event. Used for boundary escapes
// and legacy unvalidated path usage, which auditors review separately from
// routine input rejections.
func (b *Builder) Security() *Builder {
	b.entry.Security = true
	return b
}

// Detail adds a key-value pair to the entry's detail map. Can be called
// multiple times.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write writes the log entry to the database, deriving success/failure from
// err. This is the standard way to complete an entry after an operation:
//
//	result, err := engine.Download(ctx, req)
//	log.Event("mcp:download_video", "download").URL(url).Write(err)
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().Unix()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Log writes an entry. Safe to call if the logger is not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}
