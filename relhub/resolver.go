/*
Package relhub ties the version, tag and release-state providers together
into the coordinated multi-repository release workflows.
*/
package relhub

import (
	"context"
	"fmt"
	"regexp"

	"github.com/relhub/relhub-core/providers/fetchers"
	"github.com/relhub/relhub-core/providers/versioneer"
)

// CompatibleMajorVersions lists, per coordinating major version, the tag
// major versions that can be used with it, in preference order. Most
// dependency repositories don't create both a 6 and a 7 tag for a combined
// 6 & 7 release: when resolving for major 6, tags starting with 6 are
// preferred over tags starting with 7.
var CompatibleMajorVersions = map[int][]string{
	6: {"6", "7"},
	7: {"7"},
}

// NoCompatibleVersionError is returned when no candidate tag of a repository
// satisfies the version constraints across all allowed major versions.
type NoCompatibleVersionError struct {
	Repo    string
	Pattern string
}

func (e *NoCompatibleVersionError) Error() string {
	return fmt.Sprintf("no version matching %q found for %s", e.Pattern, e.Repo)
}

// VersionResolver selects dependency versions among repository tags.
type VersionResolver struct {
	fetcher fetchers.TagFetcher
}

// NewVersionResolver constructs a VersionResolver on top of the provided
// tag fetcher.
func NewVersionResolver(fetcher fetchers.TagFetcher) *VersionResolver {
	return &VersionResolver{fetcher: fetcher}
}

// HighestVersion returns the highest repository tag that satisfies the
// version constraints:
//   - the tag must match pattern (nil means the plain version grammar);
//   - its major version must be one of allowedMajors, listed in preference
//     order — the first major version yielding any match wins, lower-priority
//     majors are not consulted even if they hold higher tags (an empty list
//     searches all majors at once);
//   - when a ceiling is provided, tags of the ceiling's major that are equal
//     to or higher than the ceiling are discarded. The ceiling guards
//     against picking up a dependency tag meant for a future coordinating
//     release.
func (r *VersionResolver) HighestVersion(ctx context.Context, repo, prefix string, pattern *regexp.Regexp, allowedMajors []string, ceiling *versioneer.Version) (versioneer.Version, error) {
	if pattern == nil {
		pattern = versioneer.Pattern()
	}

	// With no major version constraint, search all tags with an empty
	// major version prefix.
	majors := allowedMajors
	if len(majors) == 0 {
		majors = []string{""}
	}

	for _, major := range majors {
		tags, err := r.fetcher.Tags(ctx, repo, prefix+major)
		if err != nil {
			return versioneer.Version{}, fmt.Errorf("unable to list %s tags: %w", repo, err)
		}

		var candidates []versioneer.Version
		for _, tag := range tags {
			version, ok := versioneer.MatchPattern(pattern, tag)
			if !ok {
				continue
			}
			if ceiling != nil && version.Major() == ceiling.Major() && !version.Less(*ceiling) {
				continue
			}
			candidates = append(candidates, version)
		}

		// The allowed major versions are listed in order of preference: if
		// something matching this major exists there is no need to go
		// through the next ones.
		if highest, ok := versioneer.Max(candidates); ok {
			return highest, nil
		}
	}

	return versioneer.Version{}, &NoCompatibleVersionError{Repo: repo, Pattern: pattern.String()}
}

// SchemeFollowingVersion resolves the version to use for a dependency
// repository that follows the coordinating project's version scheme. Only
// tags with the same minor version as newVersion are considered, so that a
// patch release doesn't pick up tags from an ongoing minor release train.
// The ceiling is the upcoming final version of the coordinating project.
func (r *VersionResolver) SchemeFollowingVersion(ctx context.Context, repo string, newVersion versioneer.Version, allowedMajors []string, ceiling versioneer.Version) (versioneer.Version, error) {
	pattern, err := versioneer.CompatiblePattern(allowedMajors, newVersion.Minor())
	if err != nil {
		return versioneer.Version{}, err
	}
	return r.HighestVersion(ctx, repo, newVersion.Prefix(), pattern, allowedMajors, &ceiling)
}

// IndependentVersion resolves the version to use for a dependency
// repository with its own version scheme. The previous version recorded in
// the release state provides the tag prefix baseline; the latest repository
// tag and the recorded one are both returned so that the caller can decide
// whether moving to the latest is wanted.
func (r *VersionResolver) IndependentVersion(ctx context.Context, repo string, state *ReleaseState, major int, key string) (latest, previous versioneer.Version, err error) {
	entryName := ReleaseEntryFor(major)
	entry, ok := state.Entry(entryName)
	if !ok {
		return latest, previous, fmt.Errorf("no %q entry in the release state", entryName)
	}

	previous, err = entry.Version(key)
	if err != nil {
		return latest, previous, err
	}

	// This assumes the repository doesn't change the way it prefixes
	// versions between releases.
	latest, err = r.HighestVersion(ctx, repo, previous.Prefix(), nil, nil, nil)
	return latest, previous, err
}
