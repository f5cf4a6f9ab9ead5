package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relhub/relhub-core/relhub"
)

var stateFile string

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect the release state file",
}

var stateGetCmd = &cobra.Command{
	Use:   "get <entry::key>",
	Short: "Print a single value from the release state file",
	Args:  cobra.ExactArgs(1),
	RunE:  runStateGet,
}

func init() {
	stateCmd.PersistentFlags().StringVar(&stateFile, "file", "release.json", "path of the release state file")
	stateCmd.AddCommand(stateGetCmd)
	rootCmd.AddCommand(stateCmd)
}

func runStateGet(cmd *cobra.Command, args []string) error {
	parts := strings.Split(args[0], "::")
	if len(parts) != 2 {
		return fmt.Errorf("the key must be of the form entry::component, got %q", args[0])
	}

	state, err := relhub.LoadReleaseStateFile(stateFile)
	if err != nil {
		return err
	}
	value, err := state.Value(parts[0], parts[1])
	if err != nil {
		return err
	}

	fmt.Println(value)
	return nil
}
