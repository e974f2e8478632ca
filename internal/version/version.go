// Package version holds build-time version information, overridden via
// -ldflags at release build time.
package version

import "runtime"

var (
	// GitRelease is the release tag this binary was built from.
	GitRelease = "dev"
	// GitCommit is the commit hash this binary was built from.
	GitCommit = "unknown"
	// GitCommitDate is the commit date this binary was built from.
	GitCommitDate = "unknown"
)

// GoInfo describes the Go toolchain used for this build.
var GoInfo = runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH
