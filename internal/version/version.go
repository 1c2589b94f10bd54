// Package version holds build identity stamped at link time.
package version

import "fmt"

var (
	// Version is the release version, set via -ldflags at build time.
	Version = "dev"
	// Commit is the short commit hash the binary was built from.
	Commit = "unknown"
	// BuildTime is the RFC3339 build timestamp.
	BuildTime = "unknown"
)

// String returns a single-line human-readable version string.
func String() string {
	return fmt.Sprintf("%s (%s) built %s", Version, Commit, BuildTime)
}
