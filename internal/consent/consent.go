// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

// Package consent models the visitor's cookie consent and the lightweight
// preferences stored alongside it.
package consent

import "strings"

// Level is a cookie consent level. Levels are ordered: each one includes
// everything the previous one allows.
type Level int

// Consent levels.
const (
	None Level = iota
	Essential
	Analytics
	Marketing
)

var levelNames = [...]string{"", "essential", "analytics", "marketing"}

// String returns the cookie value for l, or "" for None.
func (l Level) String() string {
	if l < None || l > Marketing {
		return ""
	}
	return levelNames[l]
}

// ParseLevel parses a cookie value. Unknown values give None and false.
func ParseLevel(s string) (Level, bool) {
	switch strings.TrimSpace(s) {
	case "essential":
		return Essential, true
	case "analytics":
		return Analytics, true
	case "marketing":
		return Marketing, true
	}
	return None, false
}

// Satisfies reports whether l grants at least required. No consent grants
// nothing.
func (l Level) Satisfies(required Level) bool {
	return l != None && l >= required
}

// ViewMode selects how work detail media is displayed.
type ViewMode string

// View modes.
const (
	ViewSlider ViewMode = "slider"
	ViewGrid   ViewMode = "grid"
)

// ParseViewMode returns the mode for s, or "" if s is not a known mode.
func ParseViewMode(s string) ViewMode {
	switch ViewMode(s) {
	case ViewSlider, ViewGrid:
		return ViewMode(s)
	}
	return ""
}

// Preferences are UI choices persisted in the prefs cookie.
type Preferences struct {
	ViewMode        ViewMode `json:"viewMode,omitempty"`
	DismissedModals []string `json:"dismissedModals,omitempty"`
}

// Merge returns p updated with u. A set view mode in u wins; dismissed
// modals are unioned keeping first-seen order.
func (p Preferences) Merge(u Preferences) Preferences {
	out := Preferences{ViewMode: p.ViewMode}
	if u.ViewMode != "" {
		out.ViewMode = u.ViewMode
	}

	seen := make(map[string]bool, len(p.DismissedModals)+len(u.DismissedModals))
	for _, list := range [][]string{p.DismissedModals, u.DismissedModals} {
		for _, id := range list {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out.DismissedModals = append(out.DismissedModals, id)
		}
	}
	return out
}

// Dismissed reports whether the modal with id was dismissed.
func (p Preferences) Dismissed(id string) bool {
	for _, m := range p.DismissedModals {
		if m == id {
			return true
		}
	}
	return false
}
