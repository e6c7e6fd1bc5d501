// errors.go defines sentinel errors for path validation failures.
//
// Separated to centralise error definitions. These errors are used with
// errors.Is() for type-safe error checking. Each error represents a
// distinct rejection category the MCP layer can report back to the client.
//
// Design: Sentinel errors (not error types) because rejections don't carry
// structured context beyond the category. Detailed messages are provided by
// wrapping these with fmt.Errorf in the validation functions. Messages must
// never include absolute paths of locations other than the one the caller
// referenced.

package pathguard

import "errors"

var (
	// ErrUnknownLocation indicates the requested location id is not configured.
	ErrUnknownLocation = errors.New("unknown download location")
	// ErrLocationRequired indicates no location id was supplied while location
	// restrictions are enforced.
	ErrLocationRequired = errors.New("download location required")
	// ErrLocationNotWritable indicates the base directory could not be created
	// or is not writable by the current process. May be transient (disk full);
	// the caller decides whether to retry.
	ErrLocationNotWritable = errors.New("download location not writable")
	// ErrTraversal indicates a parent-directory traversal sequence was found.
	ErrTraversal = errors.New("path traversal detected")
	// ErrAbsolutePath indicates the candidate is an absolute path, drive path,
	// or URL scheme rather than a relative path.
	ErrAbsolutePath = errors.New("absolute path not allowed")
	// ErrControlChar indicates a NUL or other control character in the input.
	ErrControlChar = errors.New("control character in path")
	// ErrEmptyPath indicates an empty candidate where one is required.
	ErrEmptyPath = errors.New("empty path")
	// ErrFilenameTooLong indicates the filename exceeds the configured maximum.
	ErrFilenameTooLong = errors.New("filename too long")
	// ErrExtensionNotAllowed indicates the file extension is not in the
	// configured allow-list.
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	// ErrBoundaryEscape indicates the final resolved path fell outside its base
	// directory despite passing earlier checks. This is a security event, not an
	// ordinary input-validation failure: it means a gap earlier in the pipeline
	// (typically a symlink) rather than obviously bad input.
	ErrBoundaryEscape = errors.New("resolved path escapes download location")
)
