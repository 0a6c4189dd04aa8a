// Package version exposes build metadata stamped into the jsxtestid binaries.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set through -ldflags "-X github.com/Sumatoshi-tech/jsxtestid/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// InitBinaryVersion fills unset fields from the module build info, which is
// present for binaries built with "go install".
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == "unknown" {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = setting.Value
			}
		}
	}
}

// String renders the one-line version banner.
func String() string {
	return fmt.Sprintf("jsxtestid %s (commit: %s, built: %s)", Version, Commit, Date)
}
