// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content turns CMS payloads into the canonical shapes used by the
// page templates: works and their related items, services, categories,
// clients and the about page.
package content

import (
	"time"

	"github.com/101teams/compro-101-fe/internal/blocks"
	"github.com/101teams/compro-101-fe/internal/media"
	"github.com/101teams/compro-101-fe/internal/util"
)

// UntitledWork is shown when an entry carries no title or name.
const UntitledWork = "Untitled Work"

// Relation is a reference to a service or category.
type Relation struct {
	ID    int64
	Title string
}

// Uncategorized is substituted when an entry omits a service or category.
var Uncategorized = Relation{ID: 0, Title: "Uncategorized"}

// Slug returns the URL slug for the relation title.
func (r Relation) Slug() string {
	return util.Slugify(r.Title)
}

// WorkItem is the listing and related-work shape.
type WorkItem struct {
	ID          int64
	Title       string
	Description string
	Slug        string
	Image       []media.Item
	Service     Relation
	Category    Relation
}

// Hero returns the designated hero asset.
func (w WorkItem) Hero() (media.Item, bool) {
	return media.Hero(w.Image)
}

// Work is the canonical work entity rendered on the detail page.
type Work struct {
	WorkItem
	Summary    string
	Article    blocks.Document
	CreatedAt  time.Time
	DocumentID string
}

// Detail is the result of normalizing a work for its detail page.
type Detail struct {
	Work    Work
	Related []WorkItem
}

func itemFrom(raw RawWork) WorkItem {
	title := raw.Title
	if title == "" {
		title = UntitledWork
	}
	item := WorkItem{
		ID:          raw.ID,
		Title:       title,
		Description: raw.Description,
		Slug:        raw.Slug,
		Image:       raw.Images,
		Service:     Uncategorized,
		Category:    Uncategorized,
	}
	if raw.Service != nil {
		item.Service = *raw.Service
	}
	if raw.Category != nil {
		item.Category = *raw.Category
	}
	return item
}

func workFrom(raw RawWork) Work {
	summary := raw.Summary
	if summary == "" {
		summary = Excerpt(raw.Description, SummaryLength)
	}
	article := raw.Article
	if article == nil {
		article = blocks.Document{}
	}
	return Work{
		WorkItem:   itemFrom(raw),
		Summary:    summary,
		Article:    article,
		CreatedAt:  raw.CreatedAt,
		DocumentID: raw.DocumentID,
	}
}
