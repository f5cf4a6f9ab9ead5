package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/relhub/relhub-core/providers/fetchers"
	"github.com/relhub/relhub-core/providers/versioneer"
	"github.com/relhub/relhub-core/relhub"
)

var (
	resolveOwner   string
	resolveVersion string
	resolveMajors  []string
	resolveCeiling string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <repository>",
	Short: "Resolve the highest compatible tag of a dependency repository",
	Long: `Resolve the highest tag of a dependency repository that is compatible
with the release version being prepared. Tags are listed from GitHub;
set GITHUB_TOKEN to authenticate the requests.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveOwner, "owner", "", "GitHub owner of the dependency repository")
	resolveCmd.Flags().StringVar(&resolveVersion, "version", "", "release version being prepared")
	resolveCmd.Flags().StringSliceVar(&resolveMajors, "majors", nil, "allowed tag majors, in preference order")
	resolveCmd.Flags().StringVar(&resolveCeiling, "ceiling", "", "exclusive upper bound for tags of the same major")
	_ = resolveCmd.MarkFlagRequired("owner")
	_ = resolveCmd.MarkFlagRequired("version")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	version, err := versioneer.NewVersion(resolveVersion)
	if err != nil {
		return err
	}

	majors := resolveMajors
	if len(majors) == 0 {
		majors = relhub.CompatibleMajorVersions[version.Major()]
	}

	var ceiling *versioneer.Version
	if resolveCeiling != "" {
		bound, err := versioneer.NewVersion(resolveCeiling)
		if err != nil {
			return err
		}
		ceiling = &bound
	}

	pattern, err := versioneer.CompatiblePattern(majors, version.Minor())
	if err != nil {
		return err
	}

	resolver := relhub.NewVersionResolver(fetchers.NewGitHubTagFetcher(githubClient(), resolveOwner))
	highest, err := resolver.HighestVersion(cmd.Context(), args[0], version.Prefix(), pattern, majors, ceiling)
	if err != nil {
		return err
	}

	fmt.Println(highest)
	return nil
}

// githubClient builds an http client authenticated with GITHUB_TOKEN when set.
func githubClient() *http.Client {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return http.DefaultClient
	}
	return &http.Client{Transport: &tokenTransport{token: token}}
}

type tokenTransport struct {
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "token "+t.token)
	return http.DefaultTransport.RoundTrip(clone)
}
