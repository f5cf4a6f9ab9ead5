package versioneer

import (
	"fmt"
	"regexp"
	"strings"
)

// CompatiblePattern builds a scanning pattern that matches only versions
// whose major segment is one of allowedMajors and whose minor segment equals
// minor. It is used to narrow dependency tags to the same minor release line
// as the version being released, so that concurrent release trains don't
// contaminate each other.
//
// The resulting pattern keeps the grammar's group layout and can be handed
// to MatchPattern.
func CompatiblePattern(allowedMajors []string, minor int) (*regexp.Regexp, error) {
	if len(allowedMajors) == 0 {
		return nil, fmt.Errorf("at least one allowed major version is required")
	}

	majors := make([]string, 0, len(allowedMajors))
	for _, m := range allowedMajors {
		majors = append(majors, regexp.QuoteMeta(m))
	}

	return regexp.Compile(fmt.Sprintf(`(v)?(%s)[.](%d)([.](\d+))?(-devel)?(-rc\.(\d+))?`, strings.Join(majors, "|"), minor))
}
