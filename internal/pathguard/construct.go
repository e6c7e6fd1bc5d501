// construct.go composes resolver, validator, and sanitizer into the single
// operation the download tool calls.
//
// The final boundary check is the backstop for the whole pipeline: it
// re-derives the canonical form of the joined path (following any symlinks
// that exist on disk right now) and asserts it is still a strict descendant
// of the canonical base. A failure here is ErrBoundaryEscape, which callers
// treat as a security event rather than an input-validation error.

package pathguard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Request carries the caller-supplied fields of a download path request.
// All fields except LocationID may be empty.
type Request struct {
	LocationID       string
	RelativePath     string
	FilenameTemplate string

	// DefaultTemplate is used when FilenameTemplate is empty. Typically the
	// extraction engine's own default ("%(title)s.%(ext)s").
	DefaultTemplate string
}

// ResolvedPath is the orchestrator's output: an absolute destination path
// (still containing unexpanded template placeholders) confined to the
// resolved location. Unsafe marks results from the legacy output_path mode,
// which bypasses validation entirely.
type ResolvedPath struct {
	AbsolutePath string
	LocationID   string

	// Base is the canonical base directory the path is confined to.
	// Empty when Unsafe.
	Base string

	// Unsafe is true for legacy unvalidated paths (DeprecatedUnsafePath).
	Unsafe bool
}

// Construct resolves req into a confined absolute destination path.
// Steps short-circuit on first failure: resolve location, validate relative
// path, sanitise template, join, canonicalise, boundary-check.
func Construct(req Request, policy Policy, table Locations) (ResolvedPath, error) {
	base, err := ResolveBase(req.LocationID, table, policy)
	if err != nil {
		return ResolvedPath{}, err
	}

	rel, err := ValidateRelativePath(req.RelativePath, policy)
	if err != nil {
		return ResolvedPath{}, err
	}

	tmpl := req.FilenameTemplate
	if strings.TrimSpace(tmpl) == "" {
		tmpl = req.DefaultTemplate
	}
	if strings.TrimSpace(tmpl) == "" {
		tmpl = "%(title)s.%(ext)s"
	}
	tmpl = SanitizeTemplate(tmpl, policy)

	// filepath.Join, never string concatenation: Join cleans its result, so a
	// separator smuggled through the earlier steps cannot re-open a traversal.
	joined := filepath.Join(base, filepath.FromSlash(rel.String()), tmpl)

	if err := checkBoundary(base, joined); err != nil {
		return ResolvedPath{}, err
	}

	return ResolvedPath{
		AbsolutePath: joined,
		LocationID:   pickLocationID(req.LocationID, policy),
		Base:         base,
	}, nil
}

// LegacyOutputPath resolves a raw output_path with no validation, for
// backward compatibility. The result is flagged Unsafe so callers can emit
// the DeprecatedUnsafePath warning and auditors can tell the modes apart.
func LegacyOutputPath(p string) (ResolvedPath, error) {
	if strings.TrimSpace(p) == "" {
		return ResolvedPath{}, fmt.Errorf("%w: empty output path", ErrEmptyPath)
	}
	expanded, err := ExpandHome(p)
	if err != nil {
		return ResolvedPath{}, err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return ResolvedPath{}, err
	}
	return ResolvedPath{AbsolutePath: abs, Unsafe: true}, nil
}

// ValidateOutput re-validates the file the extraction engine actually
// produced: the template expansion decided the real filename and extension,
// and symlinks may have appeared between resolution and use. Returns the
// rejection; the caller owns deleting the offending file. Unsafe (legacy)
// results are not re-validated.
func ValidateOutput(rp ResolvedPath, actual string, policy Policy) error {
	if rp.Unsafe {
		return nil
	}

	canon, err := filepath.EvalSymlinks(actual)
	if err != nil {
		return fmt.Errorf("%w: cannot canonicalise %q: %v", ErrBoundaryEscape, filepath.Base(actual), err)
	}
	if !isStrictDescendant(rp.Base, canon) {
		return fmt.Errorf("%w: downloaded file left location %q", ErrBoundaryEscape, rp.LocationID)
	}
	return ValidateFilename(filepath.Base(canon), policy)
}

// checkBoundary asserts that joined, with any existing symlinks resolved,
// is a strict descendant of the canonical base directory.
func checkBoundary(base, joined string) error {
	canon, err := canonicaliseExisting(joined)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBoundaryEscape, err)
	}
	if !isStrictDescendant(base, canon) {
		return fmt.Errorf("%w: destination resolves outside the location base", ErrBoundaryEscape)
	}
	return nil
}

// canonicaliseExisting resolves symlinks in the deepest existing ancestor of
// p and rejoins the not-yet-created remainder. The destination file itself
// never exists at construction time, so EvalSymlinks on p directly would
// always fail.
func canonicaliseExisting(p string) (string, error) {
	dir := p
	var rest []string
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			for i := len(rest) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, rest[i])
			}
			return resolved, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no existing ancestor for %q", p)
		}
		rest = append(rest, filepath.Base(dir))
		dir = parent
	}
}

// isStrictDescendant reports whether p is inside base (and not base itself).
// Both arguments must already be canonical. The separator suffix on the
// prefix comparison prevents sibling false positives: "/base2" is not inside
// "/base".
func isStrictDescendant(base, p string) bool {
	base = strings.TrimSuffix(base, string(filepath.Separator))
	return strings.HasPrefix(p, base+string(filepath.Separator))
}

// pickLocationID returns the effective location id for a request, accounting
// for the default fallback when restrictions are off.
func pickLocationID(requested string, policy Policy) string {
	if requested == "" && !policy.EnforceLocationRestrictions {
		return DefaultLocation
	}
	return requested
}
