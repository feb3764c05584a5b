package version

import "fmt"

var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// Commit is the short git SHA of the build, or "none".
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns the version with commit and build time.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}

// KV returns the build metadata as logger key-value pairs.
func KV() []any {
	return []any{"version", Version, "commit", Commit, "built_at", BuildTime}
}
