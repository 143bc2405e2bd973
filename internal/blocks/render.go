// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package blocks

import (
	"iter"
	"strings"

	"github.com/101teams/compro-101-fe/internal/media"
)

// NodeKind identifies a renderable output node.
type NodeKind int

// Output node kinds.
const (
	NodeParagraph NodeKind = iota + 1
	NodeHeading
	NodeList
	NodeListItem
	NodeQuote
	NodeCode
	NodeImage
	NodeText
	NodeBold
	NodeItalic
	NodeUnderline
)

// Tier is the visual weight of a heading.
type Tier int

// Heading tiers. Levels 3 through 6 share TierSmall.
const (
	TierLarge Tier = iota + 1
	TierMedium
	TierSmall
)

// DefaultImageAlt is used when an image block carries no alternative text.
const DefaultImageAlt = "Article image"

// Node is one presentational output node.
type Node struct {
	Kind     NodeKind
	Level    int  // heading level, 1..6
	Tier     Tier // heading weight
	Ordered  bool // list
	Text     string
	Src      string
	Alt      string
	Caption  string
	Children []Node
}

// Renderer turns documents into output nodes. Origin is the CMS base origin
// used to resolve relative image paths.
type Renderer struct {
	Origin string
}

// Render returns the output nodes for doc. The sequence can be ranged over
// any number of times and always yields the same nodes.
func (r Renderer) Render(doc Document) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, b := range doc {
			n, ok := r.block(b)
			if !ok {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

// Nodes collects Render into a slice.
func (r Renderer) Nodes(doc Document) []Node {
	var out []Node
	for n := range r.Render(doc) {
		out = append(out, n)
	}
	return out
}

func (r Renderer) block(b Block) (Node, bool) {
	switch b := b.(type) {
	case Paragraph:
		return Node{Kind: NodeParagraph, Children: inlines(b.Children)}, true
	case Heading:
		level := min(max(b.Level, 1), 6)
		return Node{Kind: NodeHeading, Level: level, Tier: tierFor(level), Children: inlines(b.Children)}, true
	case List:
		n := Node{Kind: NodeList, Ordered: b.Ordered}
		for _, c := range b.Children {
			switch c.(type) {
			case ListItem, List:
				if child, ok := r.block(c); ok {
					n.Children = append(n.Children, child)
				}
			}
		}
		return n, true
	case ListItem:
		return Node{Kind: NodeListItem, Children: inlines(b.Children)}, true
	case Quote:
		return Node{Kind: NodeQuote, Children: inlines(b.Children)}, true
	case Code:
		var sb strings.Builder
		for _, c := range b.Children {
			if t, ok := c.(Text); ok {
				sb.WriteString(t.Value)
			}
		}
		return Node{Kind: NodeCode, Text: sb.String()}, true
	case Image:
		if b.URL == "" {
			return Node{}, false
		}
		alt := b.AltText
		if alt == "" {
			alt = DefaultImageAlt
		}
		return Node{Kind: NodeImage, Src: media.Resolve(b.URL, r.Origin), Alt: alt, Caption: b.Caption}, true
	default:
		return Node{}, false
	}
}

func tierFor(level int) Tier {
	switch level {
	case 1:
		return TierLarge
	case 2:
		return TierMedium
	default:
		return TierSmall
	}
}

func inlines(children []Inline) []Node {
	out := make([]Node, 0, len(children))
	for _, c := range children {
		t, ok := c.(Text)
		if !ok {
			continue
		}
		out = append(out, styled(t))
	}
	return out
}

// styled wraps a text node so that bold is outermost and underline innermost.
func styled(t Text) Node {
	n := Node{Kind: NodeText, Text: t.Value}
	if t.Underline {
		n = Node{Kind: NodeUnderline, Children: []Node{n}}
	}
	if t.Italic {
		n = Node{Kind: NodeItalic, Children: []Node{n}}
	}
	if t.Bold {
		n = Node{Kind: NodeBold, Children: []Node{n}}
	}
	return n
}

// PlainText returns the unstyled text of doc with blocks separated by blank lines.
func PlainText(doc Document) string {
	var parts []string
	var collect func(b Block)
	collect = func(b Block) {
		var children []Inline
		switch b := b.(type) {
		case Paragraph:
			children = b.Children
		case Heading:
			children = b.Children
		case ListItem:
			children = b.Children
		case Quote:
			children = b.Children
		case Code:
			children = b.Children
		case List:
			for _, c := range b.Children {
				collect(c)
			}
			return
		}
		var sb strings.Builder
		for _, c := range children {
			if t, ok := c.(Text); ok {
				sb.WriteString(t.Value)
			}
		}
		if s := strings.TrimSpace(sb.String()); s != "" {
			parts = append(parts, s)
		}
	}
	for _, b := range doc {
		collect(b)
	}
	return strings.Join(parts, "\n\n")
}
