// Package version carries build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags "-X github.com/smazurov/hlsrelay/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = "unknown"
)

// Info is the build metadata reported by /api/version.
type Info struct {
	Version   string `json:"version" example:"1.4.0" doc:"Release version"`
	GitCommit string `json:"gitCommit" example:"3f2a9c1" doc:"Source revision"`
	BuildDate string `json:"buildDate" example:"2025-01-27T10:30:00Z" doc:"Build timestamp"`
	GoVersion string `json:"goVersion" example:"go1.24.11" doc:"Go toolchain"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"GOOS/GOARCH"`
}

// Get returns build information. When GitCommit was not injected it falls
// back to the VCS revision recorded by the Go toolchain.
func Get() Info {
	commit := GitCommit
	if commit == "" {
		commit = vcsRevision()
	}
	return Info{
		Version:   Version,
		GitCommit: commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns "<version> (<commit>)".
func String() string {
	info := Get()
	return fmt.Sprintf("%s (%s)", info.Version, info.GitCommit)
}

func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 7 {
				return s.Value[:7]
			}
			return s.Value
		}
	}
	return "unknown"
}
