// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/101teams/compro-101-fe/internal/media"
	"github.com/101teams/compro-101-fe/internal/util"
)

// Service is an offering shown on the home page, grouped by category.
type Service struct {
	ID          int64
	DocumentID  string
	Title       string
	Description string
	Category    Relation
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Service) UnmarshalJSON(data []byte) error {
	flat, err := flatten(data)
	if err != nil {
		return fmt.Errorf("service entry: %w", err)
	}
	var wire struct {
		ID          int64       `json:"id"`
		DocumentID  string      `json:"documentId"`
		Title       string      `json:"title"`
		Description string      `json:"description"`
		Category    relationRef `json:"category"`
	}
	if err := json.Unmarshal(flat, &wire); err != nil {
		return fmt.Errorf("service entry: %w", err)
	}
	*s = Service{
		ID:          wire.ID,
		DocumentID:  wire.DocumentID,
		Title:       wire.Title,
		Description: wire.Description,
		Category:    Uncategorized,
	}
	if wire.Category.rel != nil {
		s.Category = *wire.Category.rel
	}
	return nil
}

// Category groups services and works.
type Category struct {
	ID          int64
	DocumentID  string
	Title       string
	Description string
}

// Slug returns the URL slug used by category filters.
func (c Category) Slug() string {
	return util.Slugify(c.Title)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Category) UnmarshalJSON(data []byte) error {
	flat, err := flatten(data)
	if err != nil {
		return fmt.Errorf("category entry: %w", err)
	}
	var wire struct {
		ID          int64  `json:"id"`
		DocumentID  string `json:"documentId"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(flat, &wire); err != nil {
		return fmt.Errorf("category entry: %w", err)
	}
	*c = Category(wire)
	return nil
}

// Client is a customer or partner shown in the logo wall.
type Client struct {
	ID   int64
	Name string
	Logo media.Item
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Client) UnmarshalJSON(data []byte) error {
	flat, err := flatten(data)
	if err != nil {
		return fmt.Errorf("client entry: %w", err)
	}
	var wire struct {
		ID    int64     `json:"id"`
		Name  string    `json:"name"`
		Title string    `json:"title"`
		Logo  mediaList `json:"logo"`
	}
	if err := json.Unmarshal(flat, &wire); err != nil {
		return fmt.Errorf("client entry: %w", err)
	}
	*c = Client{ID: wire.ID, Name: wire.Name}
	if c.Name == "" {
		c.Name = wire.Title
	}
	if logo, ok := media.Hero(wire.Logo); ok {
		c.Logo = logo
	}
	return nil
}

// Value is one company value on the about page.
type Value struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// About is the single-entry about page content.
type About struct {
	Story            string
	Values           []Value
	Contact          string
	Work             string
	GalleryTitle     string
	Thumbnail        *media.Item
	Gallery          []media.Item
	WorkCTAThumbnail *media.Item
}

// StoryParagraphs splits the story on blank lines.
func (a About) StoryParagraphs() []string {
	var out []string
	for _, p := range strings.Split(a.Story, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *About) UnmarshalJSON(data []byte) error {
	flat, err := flatten(unwrapData(data))
	if err != nil {
		return fmt.Errorf("about entry: %w", err)
	}
	var wire struct {
		Story  string `json:"story"`
		Values struct {
			CompanyValues []Value `json:"company_values"`
		} `json:"values"`
		Contact          string    `json:"contact"`
		Work             string    `json:"work"`
		GalleryTitle     string    `json:"gallery_title"`
		Thumbnail        mediaList `json:"thumbnail"`
		Gallery          mediaList `json:"gallery"`
		WorkCTAThumbnail mediaList `json:"workcta_thumbnail"`
	}
	if err := json.Unmarshal(flat, &wire); err != nil {
		return fmt.Errorf("about entry: %w", err)
	}
	*a = About{
		Story:        wire.Story,
		Values:       wire.Values.CompanyValues,
		Contact:      wire.Contact,
		Work:         wire.Work,
		GalleryTitle: wire.GalleryTitle,
		Gallery:      wire.Gallery,
	}
	if t, ok := media.Hero(wire.Thumbnail); ok {
		a.Thumbnail = &t
	}
	if t, ok := media.Hero(wire.WorkCTAThumbnail); ok {
		a.WorkCTAThumbnail = &t
	}
	return nil
}

// DecodeServices decodes a list of services, dropping undecodable entries.
func DecodeServices(data []byte) ([]Service, []error) { return decodeList[Service](data) }

// DecodeCategories decodes a list of categories, dropping undecodable entries.
func DecodeCategories(data []byte) ([]Category, []error) { return decodeList[Category](data) }

// DecodeClients decodes a list of clients, dropping undecodable entries.
func DecodeClients(data []byte) ([]Client, []error) { return decodeList[Client](data) }

// DecodeAbout decodes the about single type.
func DecodeAbout(data []byte) (About, error) {
	var a About
	if err := json.Unmarshal(data, &a); err != nil {
		return About{}, err
	}
	return a, nil
}

// ServicesIn returns the services belonging to the category with the given ID.
func ServicesIn(services []Service, categoryID int64) []Service {
	var out []Service
	for _, s := range services {
		if s.Category.ID == categoryID {
			out = append(out, s)
		}
	}
	return out
}

// FindCategory returns the category whose slug matches, or the first one
// when slug is empty or unknown.
func FindCategory(categories []Category, slug string) (Category, bool) {
	if len(categories) == 0 {
		return Category{}, false
	}
	for _, c := range categories {
		if slug != "" && c.Slug() == slug {
			return c, true
		}
	}
	return categories[0], true
}

// FilterByCategory keeps the works whose category slug matches.
// An empty slug or "all" keeps everything.
func FilterByCategory(items []WorkItem, slug string) []WorkItem {
	if slug == "" || slug == "all" {
		return items
	}
	var out []WorkItem
	for _, it := range items {
		if it.Category.Slug() == slug {
			out = append(out, it)
		}
	}
	return out
}

// Window returns the first show items and whether more remain.
func Window(items []WorkItem, show int) ([]WorkItem, bool) {
	if show < 0 {
		show = 0
	}
	if show >= len(items) {
		return items, false
	}
	return items[:show], true
}

// WithImages keeps works that have at least one attached asset.
func WithImages(items []WorkItem) []WorkItem {
	var out []WorkItem
	for _, it := range items {
		if len(it.Image) > 0 {
			out = append(out, it)
		}
	}
	return out
}
