package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relhub/relhub-core/providers/versioneer"
	"github.com/relhub/relhub-core/relhub"
)

var (
	modulesRoot   string
	tagsVersion   string
	updateVersion string
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Print the git tags to create for a release version",
	RunE:  runTags,
}

var updateModulesCmd = &cobra.Command{
	Use:   "update-modules",
	Short: "Pin internal module requirements to a release version",
	RunE:  runUpdateModules,
}

func init() {
	tagsCmd.Flags().StringVar(&tagsVersion, "version", "", "release version to tag")
	tagsCmd.Flags().StringVar(&modulesRoot, "root", ".", "root of the repository to scan for modules")
	_ = tagsCmd.MarkFlagRequired("version")

	updateModulesCmd.Flags().StringVar(&updateVersion, "version", "", "release version to pin")
	updateModulesCmd.Flags().StringVar(&modulesRoot, "root", ".", "root of the repository to scan for modules")
	_ = updateModulesCmd.MarkFlagRequired("version")

	rootCmd.AddCommand(tagsCmd, updateModulesCmd)
}

func runTags(cmd *cobra.Command, args []string) error {
	version, err := versioneer.NewVersion(tagsVersion)
	if err != nil {
		return err
	}
	modules, err := relhub.DiscoverModules(modulesRoot)
	if err != nil {
		return err
	}

	for _, tag := range relhub.TagsForVersion(modules, version) {
		fmt.Println(tag)
	}
	return nil
}

func runUpdateModules(cmd *cobra.Command, args []string) error {
	version, err := versioneer.NewVersion(updateVersion)
	if err != nil {
		return err
	}
	moduleVersion, err := relhub.GoModuleVersion(version)
	if err != nil {
		return err
	}
	modules, err := relhub.DiscoverModules(modulesRoot)
	if err != nil {
		return err
	}
	if err := relhub.UpdateDependencies(modulesRoot, modules, version); err != nil {
		return err
	}

	fmt.Printf("Pinned internal dependencies of %d modules to %s\n", len(modules), moduleVersion)
	return nil
}
