// Package version reports the exmachina build.
package version

import "runtime/debug"

// Set at build time via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Full returns version, commit and build date.
func Full() string {
	return Version + " (" + Commit + ") " + Date
}

// Short returns the version alone.
func Short() string {
	return Version
}

// Generator is the value themes print in <meta name="generator">.
func Generator() string {
	return "exmachina " + Version
}

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	backfillFromBuildInfo(info)
}

// backfillFromBuildInfo fills Version, Commit and Date from build info
// where the ldflags defaults are still in place. A build from a modified
// tree gets a "-dirty" commit.
func backfillFromBuildInfo(info *debug.BuildInfo) {
	if info == nil {
		return
	}

	// "(devel)" means an untagged build from HEAD.
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	dirty := false
	commitSet := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "none" && s.Value != "" {
				rev := s.Value
				if len(rev) > 7 {
					rev = rev[:7]
				}
				Commit = rev
				commitSet = true
			}
		case "vcs.time":
			if Date == "unknown" && s.Value != "" {
				Date = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && commitSet {
		Commit += "-dirty"
	}
}
