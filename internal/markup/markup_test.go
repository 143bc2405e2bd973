// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	got := string(Markdown("Hello **world**\n\nSecond"))
	assert.Contains(t, got, "<p>Hello <strong>world</strong></p>")
	assert.Contains(t, got, "<p>Second</p>")

	assert.Empty(t, Markdown("   "))
}

func TestMarkdownStripsScripts(t *testing.T) {
	got := string(Markdown("hi <script>alert(1)</script>\n\n[x](javascript:alert(1))"))
	assert.NotContains(t, got, "<script")
	assert.NotContains(t, got, "javascript:")
}

func TestMarkdownLinks(t *testing.T) {
	got := string(Markdown("[site](https://example.com)"))
	assert.Contains(t, got, `href="https://example.com"`)
	assert.Contains(t, got, `rel="nofollow`)
	assert.Contains(t, got, `target="_blank"`)
}

func TestSanitize(t *testing.T) {
	got := string(Sanitize(`<p onclick="x()">ok</p><iframe src="x"></iframe>`))
	assert.Equal(t, "<p>ok</p>", got)
}

func TestToMarkdown(t *testing.T) {
	out, err := ToMarkdown(`<h2>Title</h2><p>Some <strong>bold</strong> text</p><ul><li>one</li><li>two</li></ul>`)
	require.NoError(t, err)
	assert.Contains(t, out, "## Title")
	assert.Contains(t, out, "Some **bold** text")
	assert.Contains(t, out, "- one")
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestTextContent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"<p>a<b>b</b></p>", "a b"},
		{"<p>keep</p><script>drop()</script><style>x{}</style>", "keep"},
		{"fish &amp; chips", "fish & chips"},
	}
	for _, tt := range tests {
		got := strings.Join(strings.Fields(TextContent(tt.in)), " ")
		assert.Equal(t, tt.want, got, tt.in)
	}
}
