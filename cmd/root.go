/*
Copyright © 2026 The vgrab Authors
*/

// root.go defines the root command and CLI execution entry point.
//
// Design: configuration is loaded once in PersistentPreRunE and shared via
// cfg. Commands that only print embedded documentation (guide, version) skip
// the load so they work even with a broken config file.

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vgrab/vgrab/internal/config"
	"github.com/vgrab/vgrab/internal/log"
)

// cfg is the loaded configuration, available to all commands after
// PersistentPreRunE.
var cfg *config.Config

// noConfigCommands can run without loading configuration.
var noConfigCommands = map[string]bool{
	"guide":   true,
	"version": true,
	"help":    true,
}

var rootCmd = &cobra.Command{
	Use:   "vgrab",
	Short: "MCP video download server with location-restricted output paths",
	Long: `vgrab exposes yt-dlp to LLM clients over the Model Context Protocol.
Downloads are confined to administrator-configured locations; client-supplied
paths are validated, resolved, and boundary-checked before anything is written.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if output != "" && output != "json" {
			return fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats)
		}
		if noConfigCommands[cmd.Name()] {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		log.SetInstance(cfg.Path())
		return nil
	},
}

// Execute runs the root command and handles process lifecycle.
// Opens audit logging (warn-and-continue if unavailable) and ensures it is
// flushed before exit. Exit code 1 indicates error.
func Execute() {
	if err := log.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
	}
	defer log.Close()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
