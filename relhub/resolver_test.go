package relhub

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/relhub/relhub-core/providers/fetchers"
	"github.com/relhub/relhub-core/providers/versioneer"
)

// mustVersion is a helper to construct versions for expectations.
func mustVersion(t *testing.T, raw string) versioneer.Version {
	t.Helper()
	v, err := versioneer.NewVersion(raw)
	if err != nil {
		t.Fatalf("unexpected error on version %q: %v", raw, err)
	}
	return v
}

func TestVersionResolver_HighestVersion(t *testing.T) {
	resolver := NewVersionResolver(fetchers.RefMapFetcher{Refs: map[string][]string{
		"integrations-core": {"6.31.0", "7.31.0", "7.31.1-rc.1", "7.32.0-devel"},
	}})

	pattern, err := versioneer.CompatiblePattern([]string{"7", "6"}, 31)
	if err != nil {
		t.Fatalf("unexpected error on pattern construction: %v", err)
	}
	ceiling := mustVersion(t, "7.31.2")

	highest, err := resolver.HighestVersion(context.Background(), "integrations-core", "", pattern, []string{"7", "6"}, &ceiling)
	if err != nil {
		t.Fatalf("unexpected error on highest version: %v", err)
	}
	// 7.32.0-devel is excluded by the minor filter, 7.31.1-rc.1 is the max
	// under the ceiling for major 7, major 6 is never consulted.
	if highest.String() != "7.31.1-rc.1" {
		t.Errorf("unexpected highest version: %s", highest)
	}
}

func TestVersionResolver_HighestVersion_MajorPreferenceShortCircuits(t *testing.T) {
	resolver := NewVersionResolver(fetchers.RefMapFetcher{Refs: map[string][]string{
		"omnibus-software": {"6.31.0", "7.31.5"},
	}})

	pattern, err := versioneer.CompatiblePattern([]string{"6", "7"}, 31)
	if err != nil {
		t.Fatalf("unexpected error on pattern construction: %v", err)
	}

	highest, err := resolver.HighestVersion(context.Background(), "omnibus-software", "", pattern, []string{"6", "7"}, nil)
	if err != nil {
		t.Fatalf("unexpected error on highest version: %v", err)
	}
	// Major 6 yields a match, so the higher 7.31.5 tag must not be picked.
	if highest.String() != "6.31.0" {
		t.Errorf("unexpected highest version: %s", highest)
	}
}

func TestVersionResolver_HighestVersion_CeilingIsExclusive(t *testing.T) {
	resolver := NewVersionResolver(fetchers.RefMapFetcher{Refs: map[string][]string{
		"integrations-core": {"7.31.1", "7.31.2"},
	}})
	ceiling := mustVersion(t, "7.31.2")

	highest, err := resolver.HighestVersion(context.Background(), "integrations-core", "", nil, []string{"7"}, &ceiling)
	if err != nil {
		t.Fatalf("unexpected error on highest version: %v", err)
	}
	// A candidate exactly equal to the ceiling is excluded.
	if highest.String() != "7.31.1" {
		t.Errorf("unexpected highest version: %s", highest)
	}
}

func TestVersionResolver_HighestVersion_NoMatch(t *testing.T) {
	resolver := NewVersionResolver(fetchers.RefMapFetcher{Refs: map[string][]string{
		"integrations-core": {"5.10.0", "some-feature-tag"},
	}})

	_, err := resolver.HighestVersion(context.Background(), "integrations-core", "", nil, []string{"7", "6"}, nil)
	var noVersion *NoCompatibleVersionError
	if !errors.As(err, &noVersion) {
		t.Fatalf("expected a no compatible version error, got: %v", err)
	}
	if noVersion.Repo != "integrations-core" {
		t.Errorf("expected the error to name the searched repository, got: %v", noVersion)
	}
	if !strings.Contains(err.Error(), "integrations-core") {
		t.Errorf("expected the error message to name the searched repository, got: %v", err)
	}
}

func TestVersionResolver_HighestVersion_FetchErrors(t *testing.T) {
	resolver := NewVersionResolver(fetchers.RefMapFetcher{Refs: map[string][]string{}})

	_, err := resolver.HighestVersion(context.Background(), "unknown-repo", "", nil, nil, nil)
	if !errors.Is(err, fetchers.ErrRepoNotFound) {
		t.Errorf("expected the fetcher error to propagate, got: %v", err)
	}
}

func TestVersionResolver_SchemeFollowingVersion(t *testing.T) {
	resolver := NewVersionResolver(fetchers.RefMapFetcher{Refs: map[string][]string{
		"integrations-core": {"6.31.0", "7.31.0", "7.31.1-rc.1", "7.32.0"},
	}})

	newVersion := mustVersion(t, "7.31.1-rc.1")
	highest, err := resolver.SchemeFollowingVersion(context.Background(), "integrations-core", newVersion, CompatibleMajorVersions[7], mustVersion(t, "7.31.1"))
	if err != nil {
		t.Fatalf("unexpected error on scheme following version: %v", err)
	}
	// 7.32.0 is outside the minor line; 7.31.1-rc.1 sorts below the
	// upcoming 7.31.1 final, so it is the highest compatible tag.
	if highest.String() != "7.31.1-rc.1" {
		t.Errorf("unexpected scheme following version: %s", highest)
	}
}

func TestVersionResolver_IndependentVersion(t *testing.T) {
	resolver := NewVersionResolver(fetchers.RefMapFetcher{Refs: map[string][]string{
		"jmxfetch": {"0.40.0", "0.44.1", "0.44.2"},
	}})
	state := &ReleaseState{entries: []ReleaseEntry{
		{
			Name: "release-a7",
			Components: []Component{
				{Key: "JMXFETCH_VERSION", Value: "0.44.1"},
				{Key: "JMXFETCH_HASH", Value: "c084bd699b09d825a2ba1f0b55e1cdf6b4fd5b1e"},
			},
		},
	}}

	latest, previous, err := resolver.IndependentVersion(context.Background(), "jmxfetch", state, 7, "JMXFETCH_VERSION")
	if err != nil {
		t.Fatalf("unexpected error on independent version: %v", err)
	}
	if latest.String() != "0.44.2" || previous.String() != "0.44.1" {
		t.Errorf("unexpected independent versions, latest %s, previous %s", latest, previous)
	}
}

func TestVersionResolver_IndependentVersion_MalformedRecord(t *testing.T) {
	resolver := NewVersionResolver(fetchers.RefMapFetcher{Refs: map[string][]string{
		"jmxfetch": {"0.44.2"},
	}})
	state := &ReleaseState{entries: []ReleaseEntry{
		{
			Name:       "release-a7",
			Components: []Component{{Key: "JMXFETCH_VERSION", Value: "not-a-version"}},
		},
	}}

	_, _, err := resolver.IndependentVersion(context.Background(), "jmxfetch", state, 7, "JMXFETCH_VERSION")
	var malformed *MalformedVersionRecordError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected a malformed version record error, got: %v", err)
	}
	if malformed.Entry != "release-a7" || malformed.Key != "JMXFETCH_VERSION" {
		t.Errorf("expected the error to name the offending entry, got: %v", malformed)
	}

	_, _, err = resolver.IndependentVersion(context.Background(), "jmxfetch", &ReleaseState{}, 7, "JMXFETCH_VERSION")
	if err == nil {
		t.Error("expected error on missing release entry, got none")
	}
}
