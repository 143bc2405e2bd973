// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/101teams/compro-101-fe/internal/cache"
)

// fakeFetcher serves canned payloads and counts calls per key.
type fakeFetcher struct {
	mu       sync.Mutex
	payloads map[Collection]string
	calls    map[string]int
	err      error
}

func newFakeFetcher(payloads map[Collection]string) *fakeFetcher {
	return &fakeFetcher{payloads: payloads, calls: make(map[string]int)}
}

func (f *fakeFetcher) Fetch(_ context.Context, col Collection, locale string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[cacheKey(col, locale)]++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.payloads[col]
	if !ok {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(p), nil
}

func (f *fakeFetcher) count(col Collection, locale string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[cacheKey(col, locale)]
}

func newMemory(t *testing.T) cache.Cacher {
	t.Helper()
	c := cache.NewMemoryCache(cache.MemoryOptions{DefaultTTL: time.Hour})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCachedFetchServesFromCache(t *testing.T) {
	f := newFakeFetcher(map[Collection]string{Works: `[{"id":1}]`})
	c := NewCached(f, newMemory(t), time.Minute, nil)
	ctx := context.Background()

	for range 3 {
		data, err := c.Fetch(ctx, Works, "en")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":1}]`, string(data))
	}
	assert.Equal(t, 1, f.count(Works, "en"))

	_, err := c.Fetch(ctx, Works, "id")
	require.NoError(t, err)
	assert.Equal(t, 1, f.count(Works, "id"), "locales are cached separately")
}

func TestCachedInvalidate(t *testing.T) {
	f := newFakeFetcher(map[Collection]string{Works: `[]`, Services: `[]`})
	var logs bytes.Buffer
	c := NewCached(f, newMemory(t), time.Minute, slog.New(slog.NewTextHandler(&logs, nil)))
	ctx := context.Background()

	for _, loc := range []string{"en", "id"} {
		_, _ = c.Fetch(ctx, Works, loc)
		_, _ = c.Fetch(ctx, Services, loc)
	}

	require.NoError(t, c.Invalidate(ctx, "api::work.work"))
	_, _ = c.Fetch(ctx, Works, "en")
	_, _ = c.Fetch(ctx, Works, "id")
	_, _ = c.Fetch(ctx, Services, "en")

	assert.Equal(t, 2, f.count(Works, "en"))
	assert.Equal(t, 2, f.count(Works, "id"))
	assert.Equal(t, 1, f.count(Services, "en"))

	require.NoError(t, c.Invalidate(ctx, "something-else"))
	_, _ = c.Fetch(ctx, Services, "en")
	assert.Equal(t, 2, f.count(Services, "en"))

	assert.Contains(t, logs.String(), `msg="invalidating content cache" collection=works`)
	assert.Contains(t, logs.String(), `msg="clearing content cache" model=something-else`)
}

func TestCachedWarm(t *testing.T) {
	f := newFakeFetcher(map[Collection]string{Works: `[]`})
	c := NewCached(f, newMemory(t), time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, c.Warm(ctx, []string{"en", "id"}))
	for _, col := range AllCollections {
		assert.Equal(t, 1, f.count(col, "en"))
		assert.Equal(t, 1, f.count(col, "id"))
	}

	_, _ = c.Fetch(ctx, Works, "en")
	assert.Equal(t, 1, f.count(Works, "en"), "warm fills the cache")
	assert.Equal(t, 10, c.Stats().Items)
}

func TestCachedWarmReportsErrors(t *testing.T) {
	f := newFakeFetcher(nil)
	f.err = errors.New("down")
	c := NewCached(f, newMemory(t), time.Minute, nil)

	err := c.Warm(context.Background(), []string{"en"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "works/en")
	assert.Equal(t, 1, f.count(About, "en"), "warm continues after a failure")
}
