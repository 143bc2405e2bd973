// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/101teams/compro-101-fe/internal/blocks"
	"github.com/101teams/compro-101-fe/internal/media"
)

// RawWork is one work entry as delivered by the CMS, in any of the shapes the
// backend has produced over time. All shape differences are absorbed here:
//
//   - flat fields or fields nested under "attributes"
//   - "image" as an array, a single object, or a {"data": ...} envelope
//   - "thumbnail" used when no image is attached
//   - relations as {id,title} or {"data": {id, attributes: {title}}}
//   - "article" as a blocks array or a JSON string holding one
type RawWork struct {
	ID          int64
	DocumentID  string
	Title       string
	Description string
	Summary     string
	Slug        string
	Article     blocks.Document
	Images      []media.Item
	Service     *Relation
	Category    *Relation
	CreatedAt   time.Time
}

type wireWork struct {
	ID          int64           `json:"id"`
	DocumentID  string          `json:"documentId"`
	Title       string          `json:"title"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Summary     string          `json:"summary"`
	Slug        string          `json:"slug"`
	Article     blocks.Document `json:"article"`
	Image       mediaList       `json:"image"`
	Thumbnail   mediaList       `json:"thumbnail"`
	Service     relationRef     `json:"service"`
	Category    relationRef     `json:"category"`
	CreatedAt   string          `json:"createdAt"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *RawWork) UnmarshalJSON(data []byte) error {
	flat, err := flatten(data)
	if err != nil {
		return fmt.Errorf("work entry: %w", err)
	}

	var wire wireWork
	if err := json.Unmarshal(flat, &wire); err != nil {
		return fmt.Errorf("work entry: %w", err)
	}

	title := wire.Title
	if title == "" {
		title = wire.Name
	}
	images := []media.Item(wire.Image)
	if len(images) == 0 {
		images = wire.Thumbnail
	}

	*w = RawWork{
		ID:          wire.ID,
		DocumentID:  wire.DocumentID,
		Title:       title,
		Description: wire.Description,
		Summary:     wire.Summary,
		Slug:        wire.Slug,
		Article:     wire.Article,
		Images:      images,
		Service:     wire.Service.rel,
		Category:    wire.Category.rel,
		CreatedAt:   parseTime(wire.CreatedAt),
	}
	return nil
}

// DecodeWorks decodes a list of work entries. Entries that cannot be decoded
// at all are dropped and reported through the returned errors.
func DecodeWorks(data []byte) ([]RawWork, []error) {
	return decodeList[RawWork](data)
}

func decodeList[T any](data []byte) ([]T, []error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, []error{fmt.Errorf("decoding list: %w", err)}
	}

	out := make([]T, 0, len(items))
	var errs []error
	for i, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		out = append(out, v)
	}
	return out, errs
}

// flatten merges a Strapi v4 style "attributes" object into its parent.
// Top-level values win unless they are null or an empty string.
func flatten(data []byte) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	attrs, ok := fields["attributes"]
	if !ok {
		return data, nil
	}
	var inner map[string]json.RawMessage
	if err := json.Unmarshal(attrs, &inner); err != nil || inner == nil {
		return data, nil
	}

	delete(fields, "attributes")
	for k, v := range inner {
		if cur, exists := fields[k]; !exists || isNull(cur) || isEmptyString(cur) {
			fields[k] = v
		}
	}
	return json.Marshal(fields)
}

func isNull(data json.RawMessage) bool {
	d := bytes.TrimSpace(data)
	return len(d) == 0 || bytes.Equal(d, []byte("null"))
}

func isEmptyString(data json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte(`""`))
}

// unwrapData strips a {"data": ...} envelope if present.
func unwrapData(data []byte) []byte {
	d := bytes.TrimSpace(data)
	if len(d) == 0 || d[0] != '{' {
		return d
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(d, &env); err != nil {
		return d
	}
	if inner, ok := env["data"]; ok && len(env) <= 2 {
		return bytes.TrimSpace(inner)
	}
	return d
}

// mediaList decodes any supported media shape into a list of items.
type mediaList []media.Item

// UnmarshalJSON implements json.Unmarshaler. It never fails.
func (m *mediaList) UnmarshalJSON(data []byte) error {
	*m = decodeMedia(data)
	return nil
}

func decodeMedia(data []byte) []media.Item {
	d := unwrapData(data)
	if isNull(d) {
		return nil
	}

	var raws []json.RawMessage
	switch d[0] {
	case '[':
		if err := json.Unmarshal(d, &raws); err != nil {
			return nil
		}
	case '{':
		raws = []json.RawMessage{d}
	default:
		return nil
	}

	items := make([]media.Item, 0, len(raws))
	for _, raw := range raws {
		flat, err := flatten(raw)
		if err != nil {
			continue
		}
		var item media.Item
		if err := json.Unmarshal(flat, &item); err != nil || item.URL == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

// relationRef decodes an optional relation in flat or enveloped form.
type relationRef struct {
	rel *Relation
}

// UnmarshalJSON implements json.Unmarshaler. It never fails.
func (r *relationRef) UnmarshalJSON(data []byte) error {
	r.rel = decodeRelation(data)
	return nil
}

func decodeRelation(data []byte) *Relation {
	d := unwrapData(data)
	if isNull(d) || d[0] != '{' {
		return nil
	}
	flat, err := flatten(d)
	if err != nil {
		return nil
	}

	var wire struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(flat, &wire); err != nil {
		return nil
	}
	title := wire.Title
	if title == "" {
		title = wire.Name
	}
	if wire.ID == 0 && title == "" {
		return nil
	}
	if title == "" {
		title = Uncategorized.Title
	}
	return &Relation{ID: wire.ID, Title: title}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
