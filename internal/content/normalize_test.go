// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *Normalizer {
	return NewNormalizer(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func rel(id int64, title string) *Relation {
	return &Relation{ID: id, Title: title}
}

func work(id int64, slug string, service, category *Relation) RawWork {
	return RawWork{ID: id, Slug: slug, Title: "Work " + slug, Service: service, Category: category}
}

func slugs(items []WorkItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Slug)
	}
	return out
}

func TestNormalizeNotFound(t *testing.T) {
	raw := []RawWork{work(1, "a", nil, nil), work(2, "b", nil, nil)}

	_, err := seeded(1).Normalize(raw, "missing-slug")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = seeded(1).Normalize(nil, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNormalizeDefaultsMissingRelations(t *testing.T) {
	raw := []RawWork{{ID: 1, Slug: "a", Description: "Plain description"}}

	detail, err := seeded(1).Normalize(raw, "a")
	require.NoError(t, err)

	assert.Equal(t, Relation{ID: 0, Title: "Uncategorized"}, detail.Work.Category)
	assert.Equal(t, Uncategorized, detail.Work.Service)
	assert.Equal(t, UntitledWork, detail.Work.Title)
	assert.Equal(t, "Plain description", detail.Work.Summary)
	assert.NotNil(t, detail.Work.Article)
	assert.Empty(t, detail.Related)
}

func TestNormalizeRelatedFromPeers(t *testing.T) {
	design := rel(10, "Design")
	web := rel(20, "Web")
	other := rel(30, "Other")
	mobile := rel(40, "Mobile")

	raw := []RawWork{
		work(1, "target", design, web),
		work(2, "same-cat-1", other, web),
		work(3, "same-cat-2", other, web),
		work(4, "same-svc", design, mobile),
		work(5, "same-svc-2", design, mobile),
		work(6, "unrelated", other, mobile),
		work(7, "no-relations", nil, nil),
	}
	eligible := []string{"same-cat-1", "same-cat-2", "same-svc", "same-svc-2"}

	for seed := uint64(0); seed < 50; seed++ {
		detail, err := seeded(seed).Normalize(raw, "target")
		require.NoError(t, err)
		got := slugs(detail.Related)

		require.Len(t, got, RelatedLimit, "seed %d", seed)
		assert.NotContains(t, got, "target")
		for _, s := range got {
			assert.Contains(t, eligible, s, "seed %d", seed)
		}
		assert.Len(t, uniq(got), RelatedLimit, "duplicates for seed %d", seed)
	}
}

func TestNormalizeRelatedFillsFromComplement(t *testing.T) {
	web := rel(20, "Web")
	raw := []RawWork{
		work(1, "target", rel(10, "Design"), web),
		work(2, "peer", rel(11, "Other"), web),
		work(3, "filler-1", rel(12, "X"), rel(21, "Y")),
		work(4, "filler-2", nil, nil),
		work(5, "filler-3", rel(13, "Z"), nil),
	}

	for seed := uint64(0); seed < 30; seed++ {
		detail, err := seeded(seed).Normalize(raw, "target")
		require.NoError(t, err)
		got := slugs(detail.Related)

		require.Len(t, got, RelatedLimit)
		assert.Equal(t, "peer", got[0], "peers come first")
		assert.NotContains(t, got, "target")
		assert.Len(t, uniq(got), RelatedLimit)
	}
}

func TestNormalizeSmallCorpus(t *testing.T) {
	raw := []RawWork{
		work(1, "target", nil, nil),
		work(2, "b", nil, nil),
		work(3, "c", nil, nil),
	}
	detail, err := seeded(7).Normalize(raw, "target")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, slugs(detail.Related))
}

func TestNormalizeSelectionVaries(t *testing.T) {
	web := rel(20, "Web")
	raw := []RawWork{work(0, "target", nil, web)}
	for i := 1; i <= 8; i++ {
		raw = append(raw, work(int64(i), fmt.Sprintf("peer-%d", i), rel(1, "S"), web))
	}

	seen := make(map[string]bool)
	n := seeded(42)
	for range 20 {
		detail, err := n.Normalize(raw, "target")
		require.NoError(t, err)
		seen[fmt.Sprint(slugs(detail.Related))] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestNormalizeDeterministicWithSeed(t *testing.T) {
	web := rel(20, "Web")
	raw := []RawWork{work(0, "target", nil, web)}
	for i := 1; i <= 6; i++ {
		raw = append(raw, work(int64(i), fmt.Sprintf("peer-%d", i), rel(1, "S"), web))
	}

	a, err := seeded(9).Normalize(raw, "target")
	require.NoError(t, err)
	b, err := seeded(9).Normalize(raw, "target")
	require.NoError(t, err)
	assert.Equal(t, slugs(a.Related), slugs(b.Related))
}

func TestSampleDoesNotModifyInput(t *testing.T) {
	in := []int{1, 2, 3, 4, 5}
	out := Sample(seeded(3), in, 3)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, in)
	assert.Len(t, out, 3)

	all := Sample(seeded(3), in, 10)
	assert.ElementsMatch(t, in, all)
}

func TestList(t *testing.T) {
	raw := []RawWork{work(1, "a", rel(1, "S"), nil), {ID: 2, Slug: "b"}}
	items := seeded(1).List(raw)
	require.Len(t, items, 2)
	assert.Equal(t, "S", items[0].Service.Title)
	assert.Equal(t, Uncategorized, items[0].Category)
	assert.Equal(t, UntitledWork, items[1].Title)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short", 10))
	assert.Equal(t, "Hello world", Excerpt("<p>Hello <b>world</b></p>", 100))
	assert.Equal(t, "one two...", Excerpt("one two three four", 9))
	assert.Equal(t, "a b", Excerpt("  a \n\t b  ", 10))
	assert.Equal(t, "héllo...", Excerpt("héllo wörld ünïcode", 8))
}

func uniq(in []string) map[string]bool {
	m := make(map[string]bool, len(in))
	for _, s := range in {
		m[s] = true
	}
	return m
}
