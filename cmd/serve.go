/*
Copyright © 2026 The vgrab Authors
*/

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/vgrab/vgrab/internal/mcp"
)

// serveCmd runs the MCP server over stdio. This is the command an LLM
// client's server configuration points at; everything else in the CLI is
// for administrators.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Starts the Model Context Protocol server, reading requests from stdin
and writing responses to stdout. Diagnostics go to stderr so they never
corrupt the protocol stream.

Register with an MCP client as: vgrab serve [--config path]`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.Serve(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
