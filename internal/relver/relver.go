// Package relver parses and orders strict release versions.
//
// A release version is exactly MAJOR.MINOR.PATCH with non-negative integer
// components: no "v" prefix, no prerelease suffix, no build metadata.
// Anything else is not a candidate for release selection at all, as opposed
// to sorting lowest.
package relver

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// ErrNotRelease is returned when a string is not a strict release version.
var ErrNotRelease = errors.New("not a release version")

var releasePattern = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)$`)

// Parse parses a strict MAJOR.MINOR.PATCH release version.
func Parse(s string) (*semver.Version, error) {
	if !releasePattern.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrNotRelease, s)
	}
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrNotRelease, s, err)
	}
	return v, nil
}

// IsRelease reports whether s is a strict release version.
func IsRelease(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Max returns the highest release version among candidates, comparing each
// component numerically (so "1.10.0" beats "1.9.0" and "10.0.0" beats
// "9.9.9"). Candidates that are not strict release versions are skipped.
// The second return is false when no candidate qualifies.
func Max(candidates []string) (string, bool) {
	var (
		bestName string
		best     *semver.Version
	)
	for _, c := range candidates {
		v, err := Parse(c)
		if err != nil {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestName = c
		}
	}
	return bestName, best != nil
}
