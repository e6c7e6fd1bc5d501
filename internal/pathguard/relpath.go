// relpath.go validates untrusted relative subpaths.
//
// Validation is lexical only: the boundary check in construct.go is the
// backstop for anything the filesystem can do that strings cannot express
// (symlinks in particular). Checks here run against the raw input before any
// normalisation, so URL-encoded traversal sequences cannot hide behind a
// decode step that happens later in some other layer.

package pathguard

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// RelPath is a validated, normalised relative path. The zero value denotes
// the location's base directory itself. Only ValidateRelativePath constructs
// non-zero values, so any RelPath in downstream code has passed validation.
type RelPath struct {
	p string
}

// String returns the slash-separated relative path. Empty for the base
// directory itself.
func (r RelPath) String() string { return r.p }

// IsEmpty reports whether the path denotes the base directory itself.
func (r RelPath) IsEmpty() bool { return r.p == "" }

// driveRe matches Windows drive-letter prefixes such as "C:" or "d:\".
var driveRe = regexp.MustCompile(`^[a-zA-Z]:([/\\]|$)`)

// schemeRe matches URL schemes such as "file://" or "smb://".
var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// encodedDecoder maps the percent-encodings relevant to traversal detection
// back to their literal characters. Applied to a lowercased copy of the input
// for detection only; the original bytes are what get normalised on success.
var encodedDecoder = strings.NewReplacer("%2e", ".", "%2f", "/", "%5c", `\`)

// ValidateRelativePath classifies candidate against policy and returns the
// normalised relative path on success.
//
// An empty or all-whitespace candidate is valid and denotes the base
// directory itself. On success the returned RelPath uses forward slashes
// with redundant "." segments collapsed; callers must use it, not the raw
// input, for all downstream path construction.
func ValidateRelativePath(candidate string, policy Policy) (RelPath, error) {
	if strings.TrimSpace(candidate) == "" {
		return RelPath{}, nil
	}

	if i := strings.IndexFunc(candidate, isControl); i >= 0 {
		return RelPath{}, fmt.Errorf("%w: byte 0x%02x at offset %d", ErrControlChar, candidate[i], i)
	}

	if err := rejectAbsolute(candidate); err != nil {
		return RelPath{}, err
	}

	if policy.BlockPathTraversal && containsTraversal(candidate) {
		return RelPath{}, fmt.Errorf("%w: %q contains a parent-directory segment", ErrTraversal, candidate)
	}

	norm := normalise(candidate)
	if norm == "" {
		return RelPath{}, nil
	}

	// Clean can surface a traversal that separator games hid from the raw
	// check ("a/..\.." style input). Rejected regardless of how it got here.
	for _, seg := range strings.Split(norm, "/") {
		if seg == ".." {
			return RelPath{}, fmt.Errorf("%w: %q normalises outside its root", ErrTraversal, candidate)
		}
	}

	return RelPath{p: norm}, nil
}

// rejectAbsolute fails candidates that name a location by themselves:
// leading separators, Windows drive letters, and URL schemes.
func rejectAbsolute(candidate string) error {
	switch {
	case strings.HasPrefix(candidate, "/") || strings.HasPrefix(candidate, `\`):
		return fmt.Errorf("%w: %q has a leading separator", ErrAbsolutePath, candidate)
	case driveRe.MatchString(candidate):
		return fmt.Errorf("%w: %q has a drive prefix", ErrAbsolutePath, candidate)
	case schemeRe.MatchString(candidate):
		return fmt.Errorf("%w: %q has a URL scheme", ErrAbsolutePath, candidate)
	}
	return nil
}

// containsTraversal reports whether candidate contains a ".." segment in any
// of its separator or percent-encoded spellings.
func containsTraversal(candidate string) bool {
	decoded := encodedDecoder.Replace(strings.ToLower(candidate))
	decoded = strings.ReplaceAll(decoded, `\`, "/")
	if decoded == ".." {
		return true
	}
	for _, seg := range strings.Split(decoded, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// normalise converts candidate to forward slashes and collapses redundant
// "." segments. Backslashes are converted explicitly: on Unix they are valid
// filename characters and filepath.ToSlash leaves them alone, but input here
// may come from Windows-side MCP clients.
func normalise(candidate string) string {
	p2 := strings.ReplaceAll(strings.TrimSpace(candidate), `\`, "/")
	p2 = path.Clean(p2)
	p2 = strings.TrimPrefix(p2, "/")
	p2 = strings.TrimSuffix(p2, "/")
	if p2 == "." {
		return ""
	}
	return p2
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}
