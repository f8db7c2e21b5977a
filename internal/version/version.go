package version

import "fmt"

// Version is the release version embedded in the binary.
// Override at build time with
// -ldflags "-X github.com/gianting/bilingual-book-maker/internal/version.Version=0.2.0".
var Version = "0.1.0"

// Commit and BuildDate are set the same way.
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns a multi-line version string for CLI output.
func Info() string {
	return fmt.Sprintf("bbm %s\ncommit: %s\nbuild: %s", Version, Commit, BuildDate)
}
