// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Name is the program name used in version strings and the CMS User-Agent.
const Name = "compro"

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit string // Short git commit hash (e.g., "abc1234")
	BuildTime string // Build timestamp in RFC3339 format
}

// String formats the info for the -version flag.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s)", Name, orDefault(i.Version, "dev"), orDefault(i.GitCommit, "unknown"), orDefault(i.BuildTime, "unknown"))
}

// UserAgent returns the User-Agent sent to the CMS.
func (i Info) UserAgent() string {
	return Name + "/" + orDefault(i.Version, "dev")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
