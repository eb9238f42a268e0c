// Package version provides build information for the quiver engine.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Build-time variables set by ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo describes the binary's provenance.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Module    string `json:"module"`
}

// Info collects build information from the ldflags variables and the
// runtime build metadata.
func Info() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		GoVersion: GoVersion,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.Module = bi.Main.Path
		if Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
	}
	return info
}

// String renders the build information on one line.
func (b BuildInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "quiver %s", b.Version)
	if b.GitCommit != "unknown" {
		commit := b.GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		fmt.Fprintf(&sb, " (%s)", commit)
	}
	fmt.Fprintf(&sb, " %s", b.GoVersion)
	return sb.String()
}

// IsRelease reports whether this build carries a release version.
func IsRelease() bool {
	return Version != "dev" && !strings.Contains(Version, "-")
}
