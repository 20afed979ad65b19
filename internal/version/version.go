// Package version carries the build stamp of the omr binary.
package version

// Build-time variables set by ldflags, e.g.
// -X github.com/MeKo-Tech/gabarito/internal/version.Version=v1.2.0
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version, commit and build date.
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}
