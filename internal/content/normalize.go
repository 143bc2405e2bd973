// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"errors"
	"math/rand/v2"
	"sync"
)

// RelatedLimit is the number of related works shown on a detail page.
const RelatedLimit = 3

// ErrNotFound is returned when no work matches the requested slug.
var ErrNotFound = errors.New("work not found")

// Normalizer builds canonical work shapes. Its random source drives the
// related-work selection and can be seeded for tests.
type Normalizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewNormalizer creates a normalizer drawing from src.
// A nil src uses a randomly seeded PCG source.
func NewNormalizer(src rand.Source) *Normalizer {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Normalizer{rng: rand.New(src)}
}

// Shuffle permutes n elements uniformly using swap.
func (n *Normalizer) Shuffle(count int, swap func(i, j int)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rng.Shuffle(count, swap)
}

// Sample returns up to k elements of items in uniformly random order.
// The input slice is not modified.
func Sample[T any](n *Normalizer, items []T, k int) []T {
	out := make([]T, len(items))
	copy(out, items)
	n.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if k < len(out) {
		out = out[:k]
	}
	return out
}

// Normalize locates the work with the given slug and builds its detail view.
// It returns ErrNotFound if the slug is absent.
//
// Related works are peers sharing the target's category or service, chosen
// in random order. When fewer than RelatedLimit peers exist the remaining
// slots are filled randomly from every other entry.
func (n *Normalizer) Normalize(raw []RawWork, slug string) (Detail, error) {
	target := -1
	for i := range raw {
		if raw[i].Slug == slug {
			target = i
			break
		}
	}
	if target < 0 || slug == "" {
		return Detail{}, ErrNotFound
	}
	t := raw[target]

	var peers, rest []RawWork
	for i, w := range raw {
		if i == target || w.Slug == slug {
			continue
		}
		if isPeer(t, w) {
			peers = append(peers, w)
		} else {
			rest = append(rest, w)
		}
	}

	selected := Sample(n, peers, RelatedLimit)
	if missing := RelatedLimit - len(selected); missing > 0 {
		// Every peer is already selected here, so the complement is rest.
		selected = append(selected, Sample(n, rest, missing)...)
	}

	related := make([]WorkItem, 0, len(selected))
	for _, w := range selected {
		related = append(related, itemFrom(w))
	}

	return Detail{Work: workFrom(t), Related: related}, nil
}

// List converts raw entries into listing items, preserving order.
func (n *Normalizer) List(raw []RawWork) []WorkItem {
	items := make([]WorkItem, 0, len(raw))
	for _, w := range raw {
		items = append(items, itemFrom(w))
	}
	return items
}

// isPeer reports whether w shares a category or service with target.
// Peers must carry both relations.
func isPeer(target, w RawWork) bool {
	if w.Service == nil || w.Category == nil {
		return false
	}
	if target.Category != nil && target.Category.ID != 0 && w.Category.ID == target.Category.ID {
		return true
	}
	return target.Service != nil && target.Service.ID != 0 && w.Service.ID == target.Service.ID
}
