package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags "-X github.com/ludo-technologies/yieldscan/internal/version.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
	BuiltBy = "unknown"
)

// Name is the program name used in version output
const Name = "yieldscan"

// readBuildInfo is swapped in tests
var readBuildInfo = debug.ReadBuildInfo

// Short returns the version. Binaries built with `go install module@version`
// carry no ldflags; their module version is used instead.
func Short() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// Info returns the multi-line version report of `yieldscan version`
func Info() string {
	return fmt.Sprintf(
		"%s %s\nCommit: %s\nBuilt: %s\nBuilt by: %s\nGo: %s\nOS/Arch: %s/%s",
		Name,
		Short(),
		Revision(),
		Date,
		BuiltBy,
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// Revision returns the build commit, falling back to the VCS revision the
// go tool stamps into the binary
func Revision() string {
	if Commit != "unknown" {
		return Commit
	}
	if info, ok := readBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return Commit
}
