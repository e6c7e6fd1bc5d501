/*
Copyright © 2026 The vgrab Authors
*/

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/vgrab/vgrab/internal/pathguard"
)

type locationStatus struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	Resolved string `json:"resolved,omitempty"`
	Writable bool   `json:"writable"`
	Error    string `json:"error,omitempty"`
}

// locationsCmd lists configured download locations and probes each one.
// Unlike the MCP tool this is an administrator surface, so resolved
// absolute paths and probe errors are shown.
var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List configured download locations",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		table := cfg.Locations()
		policy := cfg.Policy()

		statuses := make([]locationStatus, 0, len(table))
		for id, configured := range table {
			s := locationStatus{ID: id, Path: configured}
			base, err := pathguard.ResolveBase(id, table, policy)
			if err != nil {
				s.Error = err.Error()
			} else {
				s.Resolved = base
				s.Writable = true
			}
			statuses = append(statuses, s)
		}
		sort.Slice(statuses, func(i, j int) bool { return statuses[i].ID < statuses[j].ID })

		if JSON() {
			return PrintJSON(statuses)
		}
		for _, s := range statuses {
			if s.Error != "" {
				fmt.Fprintf(Out(), "%s\t%s\t(unavailable: %s)\n", s.ID, s.Path, s.Error)
				continue
			}
			fmt.Fprintf(Out(), "%s\t%s\t-> %s\n", s.ID, s.Path, s.Resolved)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locationsCmd)
}
