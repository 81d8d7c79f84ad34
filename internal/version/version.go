package version

import "fmt"

// These variables are set at build time via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the version string shown by --version and /healthz.
func String() string {
	return fmt.Sprintf("auditplus %s (commit: %s, built: %s)", Version, ShortCommit(), BuildTime)
}

// ShortCommit returns the first seven characters of the build commit.
func ShortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
