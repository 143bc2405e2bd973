// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"strings"

	"github.com/101teams/compro-101-fe/internal/markup"
)

// SummaryLength is the maximum length in runes of a summary derived from a
// work description.
const SummaryLength = 160

// Excerpt returns the visible text of s, whitespace-collapsed and truncated
// at a word boundary to at most maxLen runes plus an ellipsis.
func Excerpt(s string, maxLen int) string {
	text := strings.Join(strings.Fields(markup.TextContent(s)), " ")

	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	truncated := string(runes[:maxLen])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > len(truncated)/2 {
		truncated = truncated[:lastSpace]
	}
	return strings.TrimRight(truncated, " ,.;:") + "..."
}
