package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time with -ldflags "-X ..."
var (
	Version   = "0.1.0"
	BuildTime = "development"
	GitCommit = "unknown"
)

// Info is the payload of GET /api/version
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"buildTime"`
	GitCommit string `json:"gitCommit"`
	GoVersion string `json:"goVersion"`
}

func String() string {
	return "v" + Version
}

// Get reports build metadata, falling back to the VCS revision stamped by
// the go tool when GitCommit was not set
func Get() Info {
	return Info{
		Version:   String(),
		BuildTime: BuildTime,
		GitCommit: commit(),
		GoVersion: runtime.Version(),
	}
}

// Full is the one-line banner printed by --version
func Full() string {
	i := Get()
	return fmt.Sprintf("halftone %s (commit %s, built %s, %s)", i.Version, i.GitCommit, i.BuildTime, i.GoVersion)
}

func commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return GitCommit
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return GitCommit
}
