// Command relhub is the coordinated release bookkeeping tool: it derives
// next release versions, resolves compatible dependency tags and maintains
// the release state file and internal module pins.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relhub",
	Short: "Coordinated release version bookkeeping",
	Long: `relhub derives next release versions from existing tags, resolves the
highest compatible dependency tags for a coordinated multi-repository
release, and maintains the release state file and internal Go module pins.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
