// Package version holds the build identifiers stamped in with -ldflags.
package version

import "fmt"

var (
	Version   = "dev"
	GitSHA    = "unknown"
	BuildTime = "unknown"
)

// String formats the identifiers for -version output.
func String() string {
	return fmt.Sprintf("roomscan %s (%s, built %s)", Version, GitSHA, BuildTime)
}
