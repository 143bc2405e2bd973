// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package version

import "testing"

func TestInfoString(t *testing.T) {
	info := Info{
		Version:   "v1.0.0",
		GitCommit: "abc1234",
		BuildTime: "2025-01-30T12:00:00Z",
	}

	want := "compro v1.0.0 (commit: abc1234, built: 2025-01-30T12:00:00Z)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := info.UserAgent(); got != "compro/v1.0.0" {
		t.Errorf("UserAgent() = %q, want %q", got, "compro/v1.0.0")
	}
}

func TestInfoZeroValue(t *testing.T) {
	// Zero value is what a plain `go build` produces.
	var info Info

	if got := info.String(); got != "compro dev (commit: unknown, built: unknown)" {
		t.Errorf("zero value String() = %q", got)
	}
	if got := info.UserAgent(); got != "compro/dev" {
		t.Errorf("zero value UserAgent() = %q", got)
	}
}
