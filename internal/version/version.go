// Package version carries build metadata stamped in at link time.
package version

import "fmt"

// Set via -ldflags, e.g.
// go build -ldflags "-X github.com/pysugar/seas-portal/internal/version.Version=v0.1.0"
var (
	// Version is the semantic version of the portal.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "none"

	// BuildTime is the timestamp of the build.
	BuildTime = "unknown"
)

// String renders the build metadata in the form logged at startup.
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, Commit, BuildTime)
}
