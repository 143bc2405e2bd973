// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

// Package blocks models rich-text documents produced by the CMS blocks
// editor and renders them into presentational nodes.
//
// A Document is an ordered list of Block values. Each Block is one of a closed
// set of concrete types; anything the decoder does not recognise becomes an
// Unknown block that renders to nothing.
package blocks

import (
	"bytes"
	"encoding/json"
)

// Document is an ordered sequence of blocks in display order.
type Document []Block

// Block is a structural content node.
type Block interface {
	blockType() string
}

// Inline is a leaf node inside a block.
type Inline interface {
	inlineType() string
}

// Paragraph wraps a run of inline nodes.
type Paragraph struct {
	Children []Inline
}

// Heading is a titled section marker. Level is 1..6.
type Heading struct {
	Level    int
	Children []Inline
}

// List holds list items. Nested lists are allowed as children.
type List struct {
	Ordered  bool
	Children []Block
}

// ListItem is one entry of a List.
type ListItem struct {
	Children []Inline
}

// Quote is a block quotation.
type Quote struct {
	Children []Inline
}

// Code is a preformatted block. Styling flags of its text are ignored.
type Code struct {
	Children []Inline
}

// Image references an uploaded asset.
type Image struct {
	URL     string
	AltText string
	Caption string
}

// Unknown is any block type outside the supported set.
type Unknown struct {
	Type string
}

// Text is a styled run of text.
type Text struct {
	Value     string
	Bold      bool
	Italic    bool
	Underline bool
}

// UnknownInline is any inline type outside the supported set (links, etc.).
type UnknownInline struct {
	Type string
}

func (Paragraph) blockType() string { return "paragraph" }
func (Heading) blockType() string   { return "heading" }
func (List) blockType() string      { return "list" }
func (ListItem) blockType() string  { return "list-item" }
func (Quote) blockType() string     { return "quote" }
func (Code) blockType() string      { return "code" }
func (Image) blockType() string     { return "image" }
func (u Unknown) blockType() string { return u.Type }

func (Text) inlineType() string            { return "text" }
func (u UnknownInline) inlineType() string { return u.Type }

// rawNode is the wire form of both blocks and inlines.
type rawNode struct {
	Type      string          `json:"type"`
	Level     int             `json:"level"`
	Format    string          `json:"format"`
	Ordered   bool            `json:"ordered"`
	Children  json.RawMessage `json:"children"`
	Image     *rawImage       `json:"image"`
	Text      string          `json:"text"`
	Bold      bool            `json:"bold"`
	Italic    bool            `json:"italic"`
	Underline bool            `json:"underline"`
}

type rawImage struct {
	URL             string `json:"url"`
	AlternativeText string `json:"alternativeText"`
	Caption         string `json:"caption"`
}

// Decode parses a blocks document. The payload may be a JSON array of blocks
// or a JSON string containing such an array. Invalid input yields an empty
// document; individual malformed blocks become Unknown.
func Decode(data []byte) Document {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil
		}
		data = bytes.TrimSpace([]byte(inner))
	}

	items := splitArray(data)
	if len(items) == 0 {
		return nil
	}

	doc := make(Document, 0, len(items))
	for _, item := range items {
		doc = append(doc, decodeBlock(item))
	}
	return doc
}

// UnmarshalJSON implements json.Unmarshaler. It never fails.
func (d *Document) UnmarshalJSON(data []byte) error {
	*d = Decode(data)
	return nil
}

// splitArray returns the elements of a JSON array, or nil if data is not one.
func splitArray(data []byte) []json.RawMessage {
	if len(data) == 0 || data[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	return items
}

func decodeBlock(data json.RawMessage) Block {
	var n rawNode
	if err := json.Unmarshal(data, &n); err != nil {
		return Unknown{Type: "invalid"}
	}

	switch n.Type {
	case "paragraph":
		return Paragraph{Children: decodeInlines(n.Children)}
	case "heading":
		return Heading{Level: n.Level, Children: decodeInlines(n.Children)}
	case "list":
		var children []Block
		for _, c := range splitArray(n.Children) {
			children = append(children, decodeBlock(c))
		}
		return List{Ordered: n.Ordered || n.Format == "ordered", Children: children}
	case "list-item":
		return ListItem{Children: decodeInlines(n.Children)}
	case "quote":
		return Quote{Children: decodeInlines(n.Children)}
	case "code":
		return Code{Children: decodeInlines(n.Children)}
	case "image":
		if n.Image == nil {
			return Image{}
		}
		return Image{URL: n.Image.URL, AltText: n.Image.AlternativeText, Caption: n.Image.Caption}
	default:
		return Unknown{Type: n.Type}
	}
}

func decodeInlines(data json.RawMessage) []Inline {
	items := splitArray(data)
	if len(items) == 0 {
		return nil
	}

	out := make([]Inline, 0, len(items))
	for _, item := range items {
		var n rawNode
		if err := json.Unmarshal(item, &n); err != nil {
			out = append(out, UnknownInline{Type: "invalid"})
			continue
		}
		if n.Type != "text" {
			out = append(out, UnknownInline{Type: n.Type})
			continue
		}
		out = append(out, Text{Value: n.Text, Bold: n.Bold, Italic: n.Italic, Underline: n.Underline})
	}
	return out
}
