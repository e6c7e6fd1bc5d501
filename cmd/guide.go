/*
Copyright © 2026 The vgrab Authors
*/

// guide.go implements the "vgrab guide" command for documentation access.
//
// Design: guides are embedded in the binary via the guide package, ensuring
// documentation is always available without external files. Terminal output
// gets glamour rendering for readability; pipe/redirect gets raw markdown
// for machine consumption and LLM context loading.

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"github.com/vgrab/vgrab/guide"
	"golang.org/x/term"
)

var guideCmd = &cobra.Command{
	Use:   "guide [topic]",
	Short: "Show the vgrab usage guide",
	Long: `Outputs the vgrab guide for LLMs and humans.

  vgrab guide            # main guide
  vgrab guide config     # configuration reference
  vgrab guide security   # path security model`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}

		content, err := guide.Get(name)
		if err != nil {
			available, listErr := guide.List()
			if listErr != nil {
				return listErr
			}
			return fmt.Errorf("guide %q not found. Available: %s", name, strings.Join(available, ", "))
		}

		if term.IsTerminal(int(os.Stdout.Fd())) {
			rendered, err := glamour.Render(content, "dark")
			if err == nil {
				fmt.Fprint(Out(), rendered)
				return nil
			}
		}

		fmt.Fprint(Out(), content)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guideCmd)
}
