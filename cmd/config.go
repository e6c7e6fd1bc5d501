/*
Copyright © 2026 The vgrab Authors
*/

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// configCmd prints the effective configuration: file values merged with
// defaults, after validation. Read-only; edits happen in the YAML file.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		effective := map[string]any{
			"config_file": cfg.Path(),
			"download_locations": cfg.Locations(),
			"security": map[string]any{
				"enforce_location_restrictions": cfg.EnforceLocationRestrictions(),
				"block_path_traversal":          cfg.BlockPathTraversal(),
				"max_filename_length":           cfg.MaxFilenameLength(),
				"allowed_extensions":            cfg.AllowedExtensions(),
			},
			"ytdlp": map[string]any{
				"default_format":            cfg.DefaultFormat(),
				"default_filename_template": cfg.DefaultFilenameTemplate(),
			},
			"logging": map[string]any{
				"log_downloads":       cfg.LogDownloads(),
				"log_security_events": cfg.LogSecurityEvents(),
			},
		}

		if JSON() {
			return PrintJSON(effective)
		}

		fmt.Fprintf(Out(), "config file: %s\n\n", cfg.Path())
		fmt.Fprintln(Out(), "download locations:")
		for id, p := range cfg.Locations() {
			fmt.Fprintf(Out(), "  %s: %s\n", id, p)
		}
		fmt.Fprintf(Out(), "\nsecurity:\n")
		fmt.Fprintf(Out(), "  enforce_location_restrictions: %v\n", cfg.EnforceLocationRestrictions())
		fmt.Fprintf(Out(), "  block_path_traversal: %v\n", cfg.BlockPathTraversal())
		fmt.Fprintf(Out(), "  max_filename_length: %d\n", cfg.MaxFilenameLength())
		fmt.Fprintf(Out(), "  allowed_extensions: %s\n", strings.Join(cfg.AllowedExtensions(), ", "))
		fmt.Fprintf(Out(), "\nytdlp:\n")
		fmt.Fprintf(Out(), "  default_format: %s\n", cfg.DefaultFormat())
		fmt.Fprintf(Out(), "  default_filename_template: %s\n", cfg.DefaultFilenameTemplate())
		fmt.Fprintf(Out(), "\nlogging:\n")
		fmt.Fprintf(Out(), "  log_downloads: %v\n", cfg.LogDownloads())
		fmt.Fprintf(Out(), "  log_security_events: %v\n", cfg.LogSecurityEvents())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
