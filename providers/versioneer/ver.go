/*
Package versioneer provides parsing, ordering and bumping logic for release
version identifiers.

A version identifier follows the grammar:

	[prefix]major.minor[.patch][-devel][-rc.N]

e.g. '7.31.0', 'v7.31.1-rc.2' or '7.32.0-devel'.
*/
package versioneer

import (
	"fmt"
	"regexp"
	"strconv"
)

// versionConfig is used to store the version grammar configuration.
type versionConfig struct {
	versionRgx         string
	versionRgxCompiled *regexp.Regexp // Anchored version regexp, used by the strict constructor
	scanRgxCompiled    *regexp.Regexp // Unanchored version regexp, used to scan raw tag strings
}

// versionCfg is a global version grammar configuration.
var versionCfg versionConfig

// Version grammar config initialization and expressions compiling.
func init() {
	// Group layout (shared with CompatiblePattern):
	//     1: prefix, 2: major, 3: minor, 5: patch, 6: devel, 8: rc number
	versionCfg.versionRgx = `(v)?(\d+)[.](\d+)([.](\d+))?(-devel)?(-rc\.(\d+))?`
	versionCfg.versionRgxCompiled = regexp.MustCompile("^" + versionCfg.versionRgx + "$")
	versionCfg.scanRgxCompiled = regexp.MustCompile(versionCfg.versionRgx)
}

// Version represents an immutable release version identifier.
//
// A Version is either final, a release candidate (rc > 0) or a devel
// placeholder for the next unreleased version line. The prefix is kept for
// round-trip rendering only and takes no part in ordering.
type Version struct {
	prefix   string
	major    int
	minor    int
	patch    int
	hasPatch bool
	devel    bool
	rc       int // 0 means the version is not a release candidate
}

// NewVersion constructs a Version from its canonical string form.
// The whole value must match the version grammar.
func NewVersion(value string) (Version, error) {
	matches := versionCfg.versionRgxCompiled.FindStringSubmatch(value)
	if matches == nil {
		return Version{}, fmt.Errorf("version %q does not match the version grammar", value)
	}
	v, err := versionFromMatch(matches)
	if err != nil {
		return Version{}, fmt.Errorf("version %q is malformed: %w", value, err)
	}
	return v, nil
}

// Pattern returns the compiled unanchored version grammar pattern, for
// callers that combine it with their own scanning logic.
func Pattern() *regexp.Regexp {
	return versionCfg.scanRgxCompiled
}

// Match scans a raw candidate string (typically a git tag or ref) for a
// version identifier. A non-matching candidate is not an error: callers scan
// many raw strings and silently skip the ones that don't carry a version.
func Match(value string) (Version, bool) {
	return MatchPattern(versionCfg.scanRgxCompiled, value)
}

// MatchPattern scans a raw candidate string with a caller-provided pattern.
// The pattern must use the grammar's group layout, see CompatiblePattern.
func MatchPattern(pattern *regexp.Regexp, value string) (Version, bool) {
	matches := pattern.FindStringSubmatch(value)
	if matches == nil {
		return Version{}, false
	}
	v, err := versionFromMatch(matches)
	if err != nil {
		return Version{}, false
	}
	return v, true
}

// versionFromMatch builds a Version from grammar submatches.
func versionFromMatch(matches []string) (Version, error) {
	v := Version{prefix: matches[1]}

	var temp int64
	var err error
	if temp, err = strconv.ParseInt(matches[2], 10, 0); err != nil {
		return Version{}, fmt.Errorf("segment parse error: %s", err)
	}
	v.major = int(temp)
	if temp, err = strconv.ParseInt(matches[3], 10, 0); err != nil {
		return Version{}, fmt.Errorf("segment parse error: %s", err)
	}
	v.minor = int(temp)
	if matches[5] != "" {
		if temp, err = strconv.ParseInt(matches[5], 10, 0); err != nil {
			return Version{}, fmt.Errorf("segment parse error: %s", err)
		}
		v.patch = int(temp)
		v.hasPatch = true
	}
	v.devel = matches[6] != ""
	if matches[8] != "" {
		if temp, err = strconv.ParseInt(matches[8], 10, 0); err != nil {
			return Version{}, fmt.Errorf("segment parse error: %s", err)
		}
		v.rc = int(temp)
	}

	// A tag cannot be a devel placeholder and a release candidate at once.
	if v.devel && v.rc > 0 {
		return Version{}, fmt.Errorf("'-devel' and '-rc.%d' cannot be combined", v.rc)
	}

	return v, nil
}

// Major method returns integer value of the major version segment (e.g. '?.0.0')
func (v Version) Major() int {
	return v.major
}

// Minor method returns integer value of the minor version segment (e.g. '0.?.0')
func (v Version) Minor() int {
	return v.minor
}

// Patch method returns integer value of the patch version segment (e.g. '0.0.?').
// An absent patch segment is 0 for comparison purposes.
func (v Version) Patch() int {
	return v.patch
}

// Prefix method returns the rendering prefix (e.g. 'v'), if any.
func (v Version) Prefix() string {
	return v.prefix
}

// IsRC reports whether the version is a release candidate.
func (v Version) IsRC() bool {
	return v.rc > 0
}

// RC returns the release candidate number, 0 for non-rc versions.
func (v Version) RC() int {
	return v.rc
}

// IsDevel reports whether the version is a devel placeholder.
func (v Version) IsDevel() bool {
	return v.devel
}

// NonDevel returns the same version with the devel marker stripped.
// A devel tag denotes the upcoming version, not an already released one.
func (v Version) NonDevel() Version {
	v.devel = false
	return v
}

// WithMajor returns the same version with the major segment replaced.
func (v Version) WithMajor(major int) Version {
	v.major = major
	return v
}

// Branch returns the name of the release branch for the version line,
// e.g. '7.31.x' for 7.31.1-rc.2.
func (v Version) Branch() string {
	return fmt.Sprintf("%d.%d.x", v.major, v.minor)
}

// String renders the version back to its canonical string form.
func (v Version) String() string {
	s := fmt.Sprintf("%s%d.%d", v.prefix, v.major, v.minor)
	if v.hasPatch {
		s += fmt.Sprintf(".%d", v.patch)
	}
	if v.devel {
		s += "-devel"
	}
	if v.rc > 0 {
		s += fmt.Sprintf("-rc.%d", v.rc)
	}
	return s
}

// preRank orders the pre-release states of one major.minor.patch triple:
// devel < rc < final.
func (v Version) preRank() int {
	switch {
	case v.devel:
		return 0
	case v.rc > 0:
		return 1
	}
	return 2
}

// Compare returns -1, 0 or 1 if v is respectively lower than, equal to or
// higher than o.
//
// Major, minor and patch (an absent patch counting as 0) are compared first.
// On an equal triple a devel version sorts before any rc, and any rc before
// the final version; rc numbers order numerically among themselves.
// The prefix is ignored.
func (v Version) Compare(o Version) int {
	segments := [][2]int{
		{v.major, o.major},
		{v.minor, o.minor},
		{v.patch, o.patch},
		{v.preRank(), o.preRank()},
		{v.rc, o.rc},
	}
	for _, seg := range segments {
		if seg[0] != seg[1] {
			if seg[0] < seg[1] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Less reports whether v orders before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// Equal reports whether v and o denote the same version.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// Max returns the highest of the provided versions.
// The second return value is false when the slice is empty.
func Max(versions []Version) (Version, bool) {
	if len(versions) == 0 {
		return Version{}, false
	}
	highest := versions[0]
	for _, v := range versions[1:] {
		if highest.Less(v) {
			highest = v
		}
	}
	return highest, true
}
