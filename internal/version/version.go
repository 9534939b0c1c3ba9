package version

import "fmt"

// Name is the program name printed in the banner.
const Name = "chromium-downloader"

var (
	// Version is the release of the build. It can be overridden via ldflags.
	Version = "1.0.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the release string.
func Short() string {
	return Version
}

// Banner returns the first transcript line, e.g. "chromium-downloader (version 1.0.0)".
func Banner() string {
	return fmt.Sprintf("%s (version %s)", Name, Version)
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}
