/*
Package fetchers provides tag listing for local and remote repositories.

A TagFetcher returns the raw tag names of one repository, optionally
narrowed by a name prefix. Interpreting the tags (version extraction,
ordering, compatibility) is left to the callers.
*/
package fetchers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v33/github"
)

var (
	ErrRepoNotFound = errors.New("repository not found")
)

// TagFetcher interface defines tag listing methods.
type TagFetcher interface {
	// Tags returns the raw tag names of the repository whose name starts
	// with prefix. An empty prefix returns every tag.
	Tags(ctx context.Context, repo, prefix string) ([]string, error)
}

// RefMapFetcher serves tag names from memory, keyed by repository name
// (usefull for debugging/testing or for building custom repositories logic).
type RefMapFetcher struct {
	Refs map[string][]string
}

// Tags retrieves (if found) tag names from the map using repo as a key.
func (mf RefMapFetcher) Tags(ctx context.Context, repo, prefix string) ([]string, error) {
	tags, ok := mf.Refs[repo]
	if !ok {
		return nil, ErrRepoNotFound
	}
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		if strings.HasPrefix(tag, prefix) {
			result = append(result, tag)
		}
	}
	return result, nil
}

// GitHubTagFetcher lists tags of repositories under a fixed owner.
// httpClient can be used as OAuth2 or BasicAuth http transport.
type GitHubTagFetcher struct {
	Owner        string
	githubClient *github.Client
}

// NewGitHubTagFetcher constructs GitHubTagFetcher with specified parameters.
// httpClient can be used as OAuth2 or BasicAuth http transport.
func NewGitHubTagFetcher(httpClient *http.Client, owner string) TagFetcher {
	return &GitHubTagFetcher{
		Owner:        owner,
		githubClient: github.NewClient(httpClient),
	}
}

// Tags lists the repository tags matching prefix through the git
// matching-refs API, following pagination.
func (f GitHubTagFetcher) Tags(ctx context.Context, repo, prefix string) ([]string, error) {
	opts := github.ReferenceListOptions{
		Ref:         "tags/" + prefix,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var result []string
	for {
		refs, resp, err := f.githubClient.Git.ListMatchingRefs(ctx, f.Owner, repo, &opts)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				return nil, ErrRepoNotFound
			}
			return nil, fmt.Errorf("unable to list '%s/%s' tags from github: %w", f.Owner, repo, err)
		}

		for _, ref := range refs {
			result = append(result, strings.TrimPrefix(ref.GetRef(), "refs/tags/"))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return result, nil
}
