/*
Copyright © 2026 The vgrab Authors
*/

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vgrab/vgrab/internal/mcp"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the vgrab version",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if JSON() {
			return PrintJSON(map[string]string{"version": mcp.Version})
		}
		fmt.Fprintf(Out(), "vgrab %s\n", mcp.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
