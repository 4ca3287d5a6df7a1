// Package misc keeps build identity of the program.
package misc

import (
	"runtime/debug"
)

// Set with -ldflags "-X rptcore/misc.version=... -X rptcore/misc.gitHash=..."
var (
	version = ""
	gitHash = ""
)

const appName = "rptcore"

// GetAppName returns program name used for log and temporary file names.
func GetAppName() string {
	return appName
}

func GetVersion() string {
	if len(version) > 0 {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && len(bi.Main.Version) > 0 && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return "dev"
}

func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
