// filename.go validates final filenames against the security policy.
//
// Applied to the expanded filename (after the extraction engine substitutes
// template placeholders), not to the template itself: the real extension is
// unknown until expansion. The download handler calls this again on the file
// the engine actually produced and deletes non-conforming output.

package pathguard

import (
	"fmt"
	"path"
	"strings"
)

// ValidateFilename checks a single filename (no directory component) against
// policy. A filename with no recognisable extension passes the extension
// check; the length limit always applies.
func ValidateFilename(name string, policy Policy) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty filename", ErrEmptyPath)
	}
	if i := strings.IndexFunc(name, isControl); i >= 0 {
		return fmt.Errorf("%w: byte 0x%02x in filename", ErrControlChar, name[i])
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: separator in filename %q", ErrTraversal, name)
	}
	if policy.MaxFilenameLength > 0 && len(name) > policy.MaxFilenameLength {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFilenameTooLong, len(name), policy.MaxFilenameLength)
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ext != "" && !policy.ExtensionAllowed(ext) {
		return fmt.Errorf("%w: .%s", ErrExtensionNotAllowed, ext)
	}
	return nil
}
