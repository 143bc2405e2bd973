// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/101teams/compro-101-fe/internal/blocks"
)

func TestDecodeWorksFlatShape(t *testing.T) {
	payload := `[{
		"id": 3,
		"documentId": "doc-3",
		"title": "Shop App",
		"description": "An app",
		"summary": "",
		"slug": "shop-app",
		"createdAt": "2025-01-02T03:04:05.000Z",
		"article": [{"type":"paragraph","children":[{"type":"text","text":"Hi"}]}],
		"image": [
			{"id": 7, "url": "/uploads/a.jpg", "mime": "image/jpeg", "formats": {"small": {"url": "/uploads/small_a.jpg"}}},
			{"id": 8, "url": "/uploads/b.mp4", "mime": "video/mp4"}
		],
		"service": {"id": 1, "title": "Development"},
		"category": {"id": 2, "title": "Mobile App"}
	}]`

	works, errs := DecodeWorks([]byte(payload))
	require.Empty(t, errs)
	require.Len(t, works, 1)

	w := works[0]
	assert.Equal(t, int64(3), w.ID)
	assert.Equal(t, "doc-3", w.DocumentID)
	assert.Equal(t, "Shop App", w.Title)
	assert.Equal(t, "shop-app", w.Slug)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), w.CreatedAt)
	require.Len(t, w.Images, 2)
	assert.Equal(t, "/uploads/small_a.jpg", w.Images[0].Formats.Small.URL)
	assert.True(t, w.Images[1].IsVideo())
	assert.Equal(t, &Relation{ID: 1, Title: "Development"}, w.Service)
	assert.Equal(t, &Relation{ID: 2, Title: "Mobile App"}, w.Category)
	require.Len(t, w.Article, 1)
	assert.IsType(t, blocks.Paragraph{}, w.Article[0])
}

func TestDecodeWorksAttributesShape(t *testing.T) {
	payload := `[{
		"id": 4,
		"attributes": {
			"title": "Legacy",
			"slug": "legacy",
			"article": "[{\"type\":\"quote\",\"children\":[{\"type\":\"text\",\"text\":\"q\"}]}]",
			"image": {"data": [{"id": 9, "attributes": {"url": "/uploads/legacy.png", "alternativeText": "legacy"}}]},
			"service": {"data": {"id": 5, "attributes": {"title": "Design"}}},
			"category": {"data": null}
		}
	}]`

	works, errs := DecodeWorks([]byte(payload))
	require.Empty(t, errs)
	require.Len(t, works, 1)

	w := works[0]
	assert.Equal(t, int64(4), w.ID)
	assert.Equal(t, "Legacy", w.Title)
	require.Len(t, w.Images, 1)
	assert.Equal(t, int64(9), w.Images[0].ID)
	assert.Equal(t, "/uploads/legacy.png", w.Images[0].URL)
	assert.Equal(t, "legacy", w.Images[0].AlternativeText)
	assert.Equal(t, &Relation{ID: 5, Title: "Design"}, w.Service)
	assert.Nil(t, w.Category)
	require.Len(t, w.Article, 1)
	assert.IsType(t, blocks.Quote{}, w.Article[0])
}

func TestDecodeWorksSingularImageAndFallbacks(t *testing.T) {
	payload := `[
		{"id": 1, "name": "Named", "slug": "named", "image": {"id": 1, "url": "/one.png"}},
		{"id": 2, "slug": "thumb", "thumbnail": {"url": "/thumb.png"}},
		{"id": 3, "slug": "bad-article", "article": "not json", "image": [{"id": 5}]}
	]`

	works, errs := DecodeWorks([]byte(payload))
	require.Empty(t, errs)
	require.Len(t, works, 3)

	assert.Equal(t, "Named", works[0].Title)
	require.Len(t, works[0].Images, 1)
	assert.Equal(t, "/one.png", works[0].Images[0].URL)

	require.Len(t, works[1].Images, 1)
	assert.Equal(t, "/thumb.png", works[1].Images[0].URL)

	assert.Empty(t, works[2].Article)
	assert.Empty(t, works[2].Images, "items without url are dropped")
}

func TestDecodeWorksEmptyValuesFallBack(t *testing.T) {
	payload := `[
		{"id": 1, "title": "", "slug": "a", "attributes": {"title": "From Attributes", "slug": "ignored"}},
		{"id": 2, "slug": "b", "category": {"id": 3}, "service": {"data": {"id": 5, "attributes": {"title": ""}}}}
	]`

	works, errs := DecodeWorks([]byte(payload))
	require.Empty(t, errs)
	require.Len(t, works, 2)

	assert.Equal(t, "From Attributes", works[0].Title)
	assert.Equal(t, "a", works[0].Slug)
	assert.Equal(t, &Relation{ID: 3, Title: "Uncategorized"}, works[1].Category)
	assert.Equal(t, &Relation{ID: 5, Title: "Uncategorized"}, works[1].Service)
	assert.Equal(t, "uncategorized", Category{ID: 3, Title: works[1].Category.Title}.Slug())
}

func TestDecodeWorksSkipsBrokenEntries(t *testing.T) {
	payload := `[{"id": "not-a-number", "slug": "x"}, {"id": 2, "slug": "ok"}, 5]`

	works, errs := DecodeWorks([]byte(payload))
	assert.Len(t, errs, 2)
	require.Len(t, works, 1)
	assert.Equal(t, "ok", works[0].Slug)

	_, errs = DecodeWorks([]byte(`{"not":"a list"}`))
	assert.Len(t, errs, 1)
}

func TestDecodeSiteEntities(t *testing.T) {
	services, errs := DecodeServices([]byte(`[
		{"id": 1, "title": "UI Design", "description": "Pixels", "category": {"id": 2, "title": "Design"}},
		{"id": 3, "attributes": {"title": "Backend", "category": {"data": {"id": 4, "attributes": {"title": "Engineering"}}}}},
		{"id": 5, "title": "Orphan"}
	]`))
	require.Empty(t, errs)
	require.Len(t, services, 3)
	assert.Equal(t, Relation{ID: 2, Title: "Design"}, services[0].Category)
	assert.Equal(t, Relation{ID: 4, Title: "Engineering"}, services[1].Category)
	assert.Equal(t, Uncategorized, services[2].Category)
	assert.Len(t, ServicesIn(services, 2), 1)

	categories, errs := DecodeCategories([]byte(`[{"id": 2, "title": "App Development"}, {"id": 4, "attributes": {"title": "UI/UX Design"}}]`))
	require.Empty(t, errs)
	require.Len(t, categories, 2)
	assert.Equal(t, "app-development", categories[0].Slug())
	assert.Equal(t, "uiux-design", categories[1].Slug())

	c, ok := FindCategory(categories, "uiux-design")
	assert.True(t, ok)
	assert.Equal(t, int64(4), c.ID)
	c, _ = FindCategory(categories, "nope")
	assert.Equal(t, int64(2), c.ID)

	clients, errs := DecodeClients([]byte(`[{"id": 1, "name": "Acme", "logo": {"url": "/acme.svg", "name": "acme.svg"}}, {"id": 2, "title": "Beta"}]`))
	require.Empty(t, errs)
	require.Len(t, clients, 2)
	assert.Equal(t, "/acme.svg", clients[0].Logo.URL)
	assert.Equal(t, "Beta", clients[1].Name)
}

func TestDecodeAbout(t *testing.T) {
	about, err := DecodeAbout([]byte(`{
		"id": 1,
		"story": "First paragraph.\n\nSecond paragraph.\n\n",
		"values": {"company_values": [{"title": "Craft", "description": "We care."}]},
		"contact": "Say hi",
		"gallery_title": "Studio",
		"thumbnail": {"url": "/about.jpg"},
		"gallery": [{"id": 1, "url": "/g1.jpg"}, {"id": 2, "url": "/g2.jpg"}],
		"workcta_thumbnail": null
	}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"First paragraph.", "Second paragraph."}, about.StoryParagraphs())
	require.Len(t, about.Values, 1)
	assert.Equal(t, "Craft", about.Values[0].Title)
	require.NotNil(t, about.Thumbnail)
	assert.Equal(t, "/about.jpg", about.Thumbnail.URL)
	assert.Len(t, about.Gallery, 2)
	assert.Nil(t, about.WorkCTAThumbnail)

	_, err = DecodeAbout([]byte(`"nope"`))
	assert.Error(t, err)
}

func TestFilterAndWindow(t *testing.T) {
	items := []WorkItem{
		{Slug: "a", Category: Relation{ID: 1, Title: "Web App"}},
		{Slug: "b", Category: Relation{ID: 2, Title: "Mobile"}},
		{Slug: "c", Category: Relation{ID: 1, Title: "Web App"}, Image: nil},
		{Slug: "d", Category: Uncategorized},
	}

	assert.Len(t, FilterByCategory(items, ""), 4)
	assert.Len(t, FilterByCategory(items, "all"), 4)
	assert.Equal(t, []string{"a", "c"}, slugs(FilterByCategory(items, "web-app")))
	assert.Equal(t, []string{"d"}, slugs(FilterByCategory(items, "uncategorized")))

	visible, more := Window(items, 3)
	assert.Len(t, visible, 3)
	assert.True(t, more)
	visible, more = Window(items, 6)
	assert.Len(t, visible, 4)
	assert.False(t, more)
}
