// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

// Package media resolves CMS storage paths into absolute asset URLs and
// classifies attached assets by their declared MIME type.
package media

import "strings"

// Kind is the derived classification of an attached asset.
type Kind int

// Asset kinds.
const (
	KindUnknown Kind = iota
	KindImage
	KindVideo
)

// String returns the kind name used in templates.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Resolve joins a possibly-relative storage path onto baseOrigin.
// Absolute http(s) URLs are returned unchanged and an empty path yields "".
func Resolve(path, baseOrigin string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	origin := strings.TrimSuffix(baseOrigin, "/")
	if strings.HasPrefix(path, "/") {
		return origin + path
	}
	return origin + "/" + path
}

// Classify derives the asset kind from a MIME type.
// A missing MIME type is treated as an image so legacy payloads keep rendering.
func Classify(mime string) Kind {
	switch {
	case mime == "":
		return KindImage
	case strings.HasPrefix(mime, "video/"):
		return KindVideo
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	default:
		return KindUnknown
	}
}
