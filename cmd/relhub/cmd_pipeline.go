package main

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/relhub/relhub-core/providers/api/gitlab"
)

var (
	pipelineProject string
	pipelineURL     string
	pipelineVars    map[string]string
	pipelineWait    time.Duration
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline <ref>",
	Short: "Create a build pipeline on the GitLab mirror",
	Long: `Create a build pipeline for a branch or tag on the GitLab mirror of the
coordinating repository. With --wait, the command first polls until the ref
has been replicated to the mirror. Set GITLAB_TOKEN to authenticate the
requests.`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func init() {
	pipelineCmd.Flags().StringVar(&pipelineProject, "project", "", "GitLab 'namespace/project' path of the mirror")
	pipelineCmd.Flags().StringVar(&pipelineURL, "url", "", "base URL of the GitLab instance (defaults to gitlab.com)")
	pipelineCmd.Flags().StringToStringVar(&pipelineVars, "var", nil, "pipeline variables, as KEY=VALUE pairs")
	pipelineCmd.Flags().DurationVar(&pipelineWait, "wait", 0, "how long to wait for the ref to appear on the mirror")
	_ = pipelineCmd.MarkFlagRequired("project")

	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ref := args[0]

	var base *url.URL
	if pipelineURL != "" {
		parsed, err := url.Parse(pipelineURL)
		if err != nil {
			return err
		}
		base = parsed
	}

	client, err := gitlab.NewClient(nil, base, pipelineProject, os.Getenv("GITLAB_TOKEN"))
	if err != nil {
		return err
	}

	if pipelineWait > 0 {
		if err := waitForTag(cmd, client, ref); err != nil {
			return err
		}
	}

	pipeline, _, err := client.CreatePipeline(cmd.Context(), ref, pipelineVars)
	if err != nil {
		return err
	}

	fmt.Printf("Created pipeline %d on %s: %s\n", pipeline.ID, ref, pipeline.WebURL)
	return nil
}

// waitForTag polls the mirror until the tag has been replicated. Pushed tags
// usually take a few seconds to show up on the mirror.
func waitForTag(cmd *cobra.Command, client *gitlab.Client, ref string) error {
	deadline := time.Now().Add(pipelineWait)
	for {
		if _, _, err := client.FindTag(cmd.Context(), ref); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("tag %q did not appear on %s within %s", ref, pipelineProject, pipelineWait)
		}

		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(5 * time.Second):
		}
	}
}
