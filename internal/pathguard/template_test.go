package pathguard

import "testing"

func TestSanitizeTemplate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// Placeholders pass through untouched
		{"%(title)s.%(ext)s", "%(title)s.%(ext)s"},
		{"%(uploader)s - %(title)s.%(ext)s", "%(uploader)s - %(title)s.%(ext)s"},
		{"%(title)s [%(id)s].%(ext)s", "%(title)s [%(id)s].%(ext)s"},
		{"%(autonumber)03d.mp4", "%(autonumber)03d.mp4"},
		{"%(title).50s.%(ext)s", "%(title).50s.%(ext)s"},

		// Shell metacharacters in literals are neutralised
		{"video|rm.mp4", "video_rm.mp4"},
		{"a&b;c.mp4", "a_b_c.mp4"},
		{"`whoami`.mp4", "_whoami_.mp4"},
		{"$HOME.mp4", "_HOME.mp4"},
		{"a>b<c.mp4", "a_b_c.mp4"},

		// Separators cannot ride in via the template
		{"dir/name.mp4", "dir_name.mp4"},
		{`dir\name.mp4`, "dir_name.mp4"},

		// Metacharacters between placeholders are still literals
		{"%(title)s;$(evil).%(ext)s", "%(title)s__(evil).%(ext)s"},

		// Safe punctuation survives
		{"My Video (2024) [HD].mp4", "My Video (2024) [HD].mp4"},

		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeTemplate(tt.input, testPolicy())
			if got != tt.want {
				t.Errorf("SanitizeTemplate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
