// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package blocks

import (
	"html"
	"html/template"
	"iter"
	"strconv"
	"strings"
)

var tierClass = map[Tier]string{
	TierLarge:  "mb-4 text-3xl",
	TierMedium: "mb-4 text-2xl",
	TierSmall:  "mb-4 text-xl",
}

// HTML writes nodes as markup. All text and attribute values are escaped.
func HTML(nodes iter.Seq[Node]) template.HTML {
	var sb strings.Builder
	sb.WriteString(`<div class="blocks-content">`)
	for n := range nodes {
		writeNode(&sb, n)
	}
	sb.WriteString(`</div>`)
	return template.HTML(sb.String()) //nolint:gosec // every text and attribute value is escaped above
}

func writeNode(sb *strings.Builder, n Node) {
	switch n.Kind {
	case NodeParagraph:
		sb.WriteString(`<p class="mb-4">`)
		writeChildren(sb, n.Children)
		sb.WriteString(`</p>`)
	case NodeHeading:
		tag := "h" + strconv.Itoa(n.Level)
		sb.WriteString(`<` + tag + ` class="` + tierClass[n.Tier] + `">`)
		writeChildren(sb, n.Children)
		sb.WriteString(`</` + tag + `>`)
	case NodeList:
		if n.Ordered {
			sb.WriteString(`<ol class="mb-4 list-decimal pl-6">`)
			writeChildren(sb, n.Children)
			sb.WriteString(`</ol>`)
			return
		}
		sb.WriteString(`<ul class="mb-4 list-disc pl-6">`)
		writeChildren(sb, n.Children)
		sb.WriteString(`</ul>`)
	case NodeListItem:
		sb.WriteString(`<li>`)
		writeChildren(sb, n.Children)
		sb.WriteString(`</li>`)
	case NodeQuote:
		sb.WriteString(`<blockquote class="border-l-4 border-blue-500 pl-4 italic mb-4">`)
		writeChildren(sb, n.Children)
		sb.WriteString(`</blockquote>`)
	case NodeCode:
		sb.WriteString(`<pre class="bg-gray-800 p-4 rounded-lg mb-4 overflow-x-auto"><code>`)
		sb.WriteString(html.EscapeString(n.Text))
		sb.WriteString(`</code></pre>`)
	case NodeImage:
		sb.WriteString(`<figure class="my-8"><div class="relative aspect-video w-full overflow-hidden rounded-lg">`)
		sb.WriteString(`<img class="object-cover w-full h-full" loading="lazy" src="` + html.EscapeString(n.Src) + `" alt="` + html.EscapeString(n.Alt) + `">`)
		sb.WriteString(`</div>`)
		if n.Caption != "" {
			sb.WriteString(`<figcaption class="mt-2 text-sm text-gray-400 text-center">` + html.EscapeString(n.Caption) + `</figcaption>`)
		}
		sb.WriteString(`</figure>`)
	case NodeText:
		sb.WriteString(html.EscapeString(n.Text))
	case NodeBold:
		sb.WriteString(`<strong>`)
		writeChildren(sb, n.Children)
		sb.WriteString(`</strong>`)
	case NodeItalic:
		sb.WriteString(`<em>`)
		writeChildren(sb, n.Children)
		sb.WriteString(`</em>`)
	case NodeUnderline:
		sb.WriteString(`<u>`)
		writeChildren(sb, n.Children)
		sb.WriteString(`</u>`)
	}
}

func writeChildren(sb *strings.Builder, children []Node) {
	for _, c := range children {
		writeNode(sb, c)
	}
}
