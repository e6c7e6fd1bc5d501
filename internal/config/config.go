// Package config provides reading of vgrab configuration.
// Configuration lives at ~/.config/vgrab/config.yaml (overridable with
// --config) and is loaded once at process start. vgrab never writes the
// file; administrators edit it out-of-band and restart the server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vgrab/vgrab/internal/pathguard"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// Security holds the security policy fields.
type Security struct {
	EnforceLocationRestrictions *bool    `yaml:"enforce_location_restrictions,omitempty"`
	MaxFilenameLength           *int     `yaml:"max_filename_length,omitempty"`
	AllowedExtensions           []string `yaml:"allowed_extensions,omitempty"`
	BlockPathTraversal          *bool    `yaml:"block_path_traversal,omitempty"`
}

// YtDlp holds extraction engine options.
type YtDlp struct {
	DefaultFormat           string `yaml:"default_format,omitempty"`
	DefaultFilenameTemplate string `yaml:"default_filename_template,omitempty"`
	MaxDownloadSize         int64  `yaml:"max_download_size,omitempty"`
}

// Logging holds audit logging options.
type Logging struct {
	LogSecurityEvents *bool `yaml:"log_security_events,omitempty"`
	LogDownloads      *bool `yaml:"log_downloads,omitempty"`
}

// Defaults applied when not configured.
const (
	DefaultMaxFilenameLength = 255
	DefaultFormat            = "best[height<=1080]"
	DefaultFilenameTemplate  = "%(title)s.%(ext)s"
)

// DefaultAllowedExtensions is the extension allow-list applied when the
// config file does not set one: common video, audio, and subtitle formats.
var DefaultAllowedExtensions = []string{
	"mp4", "webm", "mkv", "avi", "mov",
	"m4a", "mp3", "aac", "ogg", "wav",
	"vtt", "srt", "ass", "ssa",
}

// Validation bounds for configuration values.
const (
	MinMaxFilenameLength = 1
	MaxMaxFilenameLength = 4096
)

// Config contains configuration for vgrab.
type Config struct {
	DownloadLocations map[string]string `yaml:"download_locations,omitempty"`
	Security          Security          `yaml:"security,omitempty"`
	YtDlp             YtDlp             `yaml:"ytdlp,omitempty"`
	Logging           Logging           `yaml:"logging,omitempty"`

	// path is the file this config was loaded from (for the watcher)
	path string
}

// Validate checks that all configured values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.Security.MaxFilenameLength != nil {
		v := *c.Security.MaxFilenameLength
		if v < MinMaxFilenameLength || v > MaxMaxFilenameLength {
			return fmt.Errorf("%w: max_filename_length must be between %d and %d, got %d",
				ErrInvalidValue, MinMaxFilenameLength, MaxMaxFilenameLength, v)
		}
	}
	// Restrictions without an allow-list would be unenforceable
	if c.EnforceLocationRestrictions() && len(c.AllowedExtensions()) == 0 {
		return fmt.Errorf("%w: allowed_extensions must be non-empty when enforce_location_restrictions is on",
			ErrInvalidValue)
	}
	for id := range c.DownloadLocations {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: empty download location id", ErrInvalidValue)
		}
	}
	return nil
}

// EnforceLocationRestrictions reports whether downloads must name a
// configured location (defaults to true).
func (c *Config) EnforceLocationRestrictions() bool {
	if c.Security.EnforceLocationRestrictions == nil {
		return true
	}
	return *c.Security.EnforceLocationRestrictions
}

// MaxFilenameLength returns the filename length limit in bytes (defaults to 255).
func (c *Config) MaxFilenameLength() int {
	if c.Security.MaxFilenameLength == nil {
		return DefaultMaxFilenameLength
	}
	return *c.Security.MaxFilenameLength
}

// AllowedExtensions returns the extension allow-list (defaults to
// DefaultAllowedExtensions).
func (c *Config) AllowedExtensions() []string {
	if c.Security.AllowedExtensions == nil {
		return DefaultAllowedExtensions
	}
	return c.Security.AllowedExtensions
}

// BlockPathTraversal reports whether traversal sequences are rejected
// (defaults to true).
func (c *Config) BlockPathTraversal() bool {
	if c.Security.BlockPathTraversal == nil {
		return true
	}
	return *c.Security.BlockPathTraversal
}

// DefaultFormat returns the engine format selector (defaults to DefaultFormat).
func (c *Config) DefaultFormat() string {
	if c.YtDlp.DefaultFormat == "" {
		return DefaultFormat
	}
	return c.YtDlp.DefaultFormat
}

// DefaultFilenameTemplate returns the engine output template (defaults to
// DefaultFilenameTemplate).
func (c *Config) DefaultFilenameTemplate() string {
	if c.YtDlp.DefaultFilenameTemplate == "" {
		return DefaultFilenameTemplate
	}
	return c.YtDlp.DefaultFilenameTemplate
}

// LogSecurityEvents reports whether security events are audit-logged
// (defaults to true).
func (c *Config) LogSecurityEvents() bool {
	if c.Logging.LogSecurityEvents == nil {
		return true
	}
	return *c.Logging.LogSecurityEvents
}

// LogDownloads reports whether downloads are audit-logged (defaults to true).
func (c *Config) LogDownloads() bool {
	if c.Logging.LogDownloads == nil {
		return true
	}
	return *c.Logging.LogDownloads
}

// Locations returns the location table for the path resolution core. When no
// locations are configured, a single "default" location under the user's
// home directory is provided.
func (c *Config) Locations() pathguard.Locations {
	if len(c.DownloadLocations) == 0 {
		return pathguard.Locations{pathguard.DefaultLocation: "~/video-downloader"}
	}
	table := make(pathguard.Locations, len(c.DownloadLocations))
	for id, p := range c.DownloadLocations {
		table[id] = p
	}
	return table
}

// Policy returns the immutable security policy for the path resolution core.
func (c *Config) Policy() pathguard.Policy {
	exts := make(map[string]struct{}, len(c.AllowedExtensions()))
	for _, e := range c.AllowedExtensions() {
		exts[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}
	return pathguard.Policy{
		EnforceLocationRestrictions: c.EnforceLocationRestrictions(),
		MaxFilenameLength:           c.MaxFilenameLength(),
		AllowedExtensions:           exts,
		BlockPathTraversal:          c.BlockPathTraversal(),
	}
}

// Path returns the file this config was loaded from. Empty when running on
// built-in defaults with no determinable config path.
func (c *Config) Path() string {
	return c.path
}

// DefaultPath returns the path to the user config file:
// ~/.config/vgrab/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoConfigPath, err)
	}
	return filepath.Join(dir, "vgrab", "config.yaml"), nil
}

// Load reads configuration from path, or from DefaultPath when path is
// empty. A missing file is only an error when the path was given explicitly;
// otherwise built-in defaults apply.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if explicit {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		// Defaults only; remember the path so the watcher can pick up a
		// config file created later.
		cfg.path = path
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.path = path

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
