// Package version holds the build version of switchboard.
package version

// Version is the current version, overridden at build time with
// -ldflags "-X github.com/hashicorp-forge/switchboard/internal/version.Version=...".
var Version = "0.1.0"

// GitCommit is the commit the binary was built from, set at build time.
var GitCommit = ""

// String returns the human readable version.
func String() string {
	if GitCommit == "" {
		return Version
	}
	return Version + " (" + GitCommit + ")"
}
