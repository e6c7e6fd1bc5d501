// template.go sanitises yt-dlp output filename templates.
//
// A template mixes literal text with placeholder tokens like %(title)s or
// %(autonumber)03d. The tokens must survive untouched so the engine can
// expand them; the literal spans are reduced to a safe character set so a
// hostile template cannot smuggle shell metacharacters or path separators
// into the engine invocation. Length and extension limits are not enforced
// here - they apply to the expanded filename (filename.go).

package pathguard

import (
	"regexp"
	"strings"
)

// placeholderRe matches yt-dlp template tokens: %(field)s, %(field)d,
// %(autonumber)03d, %(title).50s and similar. Field names may be dotted
// or contain arithmetic (%(epoch-3600)s).
var placeholderRe = regexp.MustCompile(`%\([A-Za-z0-9_.+:,\- ]+\)[-#0+ ]?\d*(?:\.\d+)?[a-zA-Z]`)

// safeLiteral is the allow-list for literal template characters: letters,
// digits, space, and . - _ ( ) [ ].
func safeLiteral(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case ' ', '.', '-', '_', '(', ')', '[', ']':
		return true
	}
	return false
}

// SanitizeTemplate replaces every disallowed rune in the literal portions of
// template with '_', passing placeholder tokens through unmodified.
func SanitizeTemplate(template string, _ Policy) string {
	if template == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(template))

	last := 0
	for _, loc := range placeholderRe.FindAllStringIndex(template, -1) {
		b.WriteString(sanitizeLiteral(template[last:loc[0]]))
		b.WriteString(template[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(sanitizeLiteral(template[last:]))

	return b.String()
}

func sanitizeLiteral(s string) string {
	return strings.Map(func(r rune) rune {
		if safeLiteral(r) {
			return r
		}
		return '_'
	}, s)
}
