package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relhub/relhub-core/providers/versioneer"
)

var (
	rcCurrent    string
	rcPatch      bool
	finalCurrent string
)

// nextRCCmd derives the next release candidate version
var nextRCCmd = &cobra.Command{
	Use:   "next-rc",
	Short: "Derive the next release candidate version",
	Long: `Derive the next release candidate version from the current version tag.

If the current version is an rc, the rc number is incremented. A devel tag
becomes rc 1 of the same version. Otherwise the next minor (or, with
--patch, the next patch) version gets an rc 1.`,
	RunE: runNextRC,
}

// nextFinalCmd derives the next final version
var nextFinalCmd = &cobra.Command{
	Use:   "next-final",
	Short: "Derive the next final version",
	Long: `Derive the next final version from the current version tag.

Devel and rc tags are promoted to the final version of the same line, a
final version moves to the next minor.`,
	RunE: runNextFinal,
}

func init() {
	nextRCCmd.Flags().StringVar(&rcCurrent, "current", "", "current version tag")
	nextRCCmd.Flags().BoolVar(&rcPatch, "patch", false, "bump the patch version instead of the minor version")
	_ = nextRCCmd.MarkFlagRequired("current")

	nextFinalCmd.Flags().StringVar(&finalCurrent, "current", "", "current version tag")
	_ = nextFinalCmd.MarkFlagRequired("current")

	rootCmd.AddCommand(nextRCCmd, nextFinalCmd)
}

func runNextRC(cmd *cobra.Command, args []string) error {
	current, err := versioneer.NewVersion(rcCurrent)
	if err != nil {
		return err
	}
	next, err := versioneer.NextRC(current, rcPatch)
	if err != nil {
		return err
	}
	fmt.Println(next)
	return nil
}

func runNextFinal(cmd *cobra.Command, args []string) error {
	current, err := versioneer.NewVersion(finalCurrent)
	if err != nil {
		return err
	}
	next, err := versioneer.NextFinal(current)
	if err != nil {
		return err
	}
	fmt.Println(next)
	return nil
}
