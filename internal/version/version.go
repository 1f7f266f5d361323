// Package version holds the dedup tool's version constants.
package version

import "fmt"

const (
	// Major represents the current major version.
	Major = 0
	// Minor represents the current minor version.
	Minor = 1
	// Patch represents the current patch version.
	Patch = 0
)

// String returns the semantic version string, e.g. "0.1.0".
func String() string {
	return fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
}
