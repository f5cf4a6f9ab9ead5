package versioneer

import (
	"errors"
	"fmt"
)

// ErrInvalidBump is returned when a bump intent does not apply to the
// version it is requested on. This is a programmer error on the call site,
// not a retryable condition.
var ErrInvalidBump = errors.New("invalid bump request")

// Bump enumerates the valid version bump intents. Using an enumeration
// instead of independent flags makes conflicting requests (e.g. a minor and
// a patch bump at once) unrepresentable.
type Bump int

const (
	// ToNextRCOfCurrent produces the next release candidate of the current
	// version line: rc N becomes rc N+1, a devel placeholder becomes rc 1 of
	// the same major.minor.patch. Requesting it on a plain final version is
	// an error.
	ToNextRCOfCurrent Bump = iota
	// ToNextMinorRC produces rc 1 of the next minor version.
	ToNextMinorRC
	// ToNextPatchRC produces rc 1 of the next patch version.
	ToNextPatchRC
	// ToFinal promotes a devel or rc version to the final version of the
	// same major.minor.patch, or moves a final version to the next minor
	// final.
	ToFinal
)

// String renders the bump intent name.
func (b Bump) String() string {
	switch b {
	case ToNextRCOfCurrent:
		return "next-rc-of-current"
	case ToNextMinorRC:
		return "next-minor-rc"
	case ToNextPatchRC:
		return "next-patch-rc"
	case ToFinal:
		return "final"
	}
	return fmt.Sprintf("bump(%d)", int(b))
}

// Next derives the successor of v according to the bump intent.
// Bumping never mutates v, a new Version is returned.
func (v Version) Next(intent Bump) (Version, error) {
	switch intent {
	case ToNextRCOfCurrent:
		if v.rc > 0 {
			next := v
			next.rc++
			return next, nil
		}
		// A devel tag denotes the upcoming version, so the first rc keeps
		// the same major.minor.patch instead of bumping it further.
		if v.devel {
			next := v.NonDevel()
			next.rc = 1
			return next, nil
		}
		return Version{}, fmt.Errorf("%w: %s is neither an rc nor a devel version", ErrInvalidBump, v)
	case ToNextMinorRC:
		return Version{
			prefix:   v.prefix,
			major:    v.major,
			minor:    v.minor + 1,
			patch:    0,
			hasPatch: true,
			rc:       1,
		}, nil
	case ToNextPatchRC:
		return Version{
			prefix:   v.prefix,
			major:    v.major,
			minor:    v.minor,
			patch:    v.patch + 1,
			hasPatch: true,
			rc:       1,
		}, nil
	case ToFinal:
		if v.devel {
			return v.NonDevel(), nil
		}
		if v.rc > 0 {
			next := v
			next.rc = 0
			return next, nil
		}
		return Version{
			prefix:   v.prefix,
			major:    v.major,
			minor:    v.minor + 1,
			patch:    0,
			hasPatch: true,
		}, nil
	}
	return Version{}, fmt.Errorf("%w: unknown bump intent %d", ErrInvalidBump, int(intent))
}

// NextRC derives the next release candidate version after current:
//   - if current is already an rc, the rc number is incremented;
//   - else if patchBump is set, rc 1 of the next patch version. A patch
//     bump takes precedence over the devel placeholder handling: a devel
//     tag denotes the upcoming minor, not the patch line being cut;
//   - else if current is a devel placeholder, rc 1 of the same version;
//   - otherwise rc 1 of the next minor version.
func NextRC(current Version, patchBump bool) (Version, error) {
	if current.IsRC() {
		return current.Next(ToNextRCOfCurrent)
	}
	if patchBump {
		return current.Next(ToNextPatchRC)
	}
	if current.IsDevel() {
		return current.Next(ToNextRCOfCurrent)
	}
	return current.Next(ToNextMinorRC)
}

// NextFinal derives the next final version after current: devel and rc
// versions are promoted to the final version of the same line, a final
// version moves to the next minor.
func NextFinal(current Version) (Version, error) {
	return current.Next(ToFinal)
}
