// Package pathguard turns untrusted download requests into filesystem paths
// that are provably confined to an administrator-configured location.
//
// The package is the security boundary between MCP tool input and the
// extraction engine: a location id, an optional relative subpath, and an
// optional filename template go in; a single canonical absolute path comes
// out, or a rejection. Every request is validated end-to-end with no caching
// of resolved paths, so configuration or filesystem changes between requests
// cannot produce stale results.
//
// Validation failures are reported as sentinel errors (errors.go) checked
// with errors.Is(). A validated relative path is represented by the RelPath
// type, which is only constructible via ValidateRelativePath - downstream
// code cannot accidentally use an unvalidated string.
package pathguard

// Policy holds the security constraints applied to every path operation.
// Loaded once from configuration at startup and immutable thereafter;
// callers pass it explicitly rather than reading ambient state.
type Policy struct {
	// EnforceLocationRestrictions requires every download to name a configured
	// location. When false, requests without a location id fall back to the
	// "default" location if one exists.
	EnforceLocationRestrictions bool

	// MaxFilenameLength bounds the final filename in bytes.
	MaxFilenameLength int

	// AllowedExtensions is the lowercase, dot-free extension allow-list.
	// Applied only when a filename has a recognisable extension.
	AllowedExtensions map[string]struct{}

	// BlockPathTraversal rejects any parent-directory sequence in relative
	// paths, including URL-encoded and backslash variants.
	BlockPathTraversal bool
}

// ExtensionAllowed reports whether ext (lowercase, no dot) is permitted.
// An empty allow-list permits everything.
func (p Policy) ExtensionAllowed(ext string) bool {
	if len(p.AllowedExtensions) == 0 {
		return true
	}
	_, ok := p.AllowedExtensions[ext]
	return ok
}

// Locations maps symbolic location ids to configured base directory paths.
// The configured values may contain ~ shorthand; expansion happens at
// resolution time so the config file stays portable across machines.
type Locations map[string]string

// DefaultLocation is the location id used when a request omits location_id
// and location restrictions are not enforced.
const DefaultLocation = "default"
