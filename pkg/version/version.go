// Package version exposes the build identity stamped into the binary, either
// via ldflags or the VCS metadata Go embeds at build time.
package version

import (
	"runtime/debug"
	"time"
)

// Defaults, overridden by ldflags or by build info.
var (
	Version   = "0.0.0-dev"
	Commit    = ""
	BuildTime = ""
)

func init() {
	populateFromBuildInfo()
}

// populateFromBuildInfo fills Version/Commit/BuildTime from the metadata Go
// embeds (vcs.revision, vcs.time). An ldflags-provided version wins.
func populateFromBuildInfo() {
	if Version != "" && Version != "0.0.0-dev" {
		return
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return
	}

	get := func(key string) (string, bool) {
		for _, s := range bi.Settings {
			if s.Key == key {
				return s.Value, true
			}
		}
		return "", false
	}

	if Commit == "" {
		if rev, ok := get("vcs.revision"); ok && len(rev) >= 7 {
			Commit = rev[:7]
		}
	}

	if BuildTime == "" {
		if t, ok := get("vcs.time"); ok && t != "" {
			if ts, err := time.Parse(time.RFC3339, t); err == nil {
				BuildTime = ts.UTC().Format("2006-01-02T15:04:05Z")
			}
		}
	}

	if modified, ok := get("vcs.modified"); ok && modified == "true" {
		Version += "-dirty"
	}
}

// Short returns the version string alone, for response metadata.
func Short() string {
	return Version
}

// Full returns the version with commit and build time when available.
func Full() string {
	out := Version
	if Commit != "" {
		out += " (" + Commit
		if BuildTime != "" {
			out += ", " + BuildTime
		}
		out += ")"
	}
	return out
}
