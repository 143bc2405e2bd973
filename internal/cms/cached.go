// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/101teams/compro-101-fe/internal/cache"
)

// Cached serves collections from a cache, loading misses from the
// underlying Fetcher.
type Cached struct {
	next  Fetcher
	store cache.Cacher
	typed  *cache.TypedCache[json.RawMessage]
	logger *slog.Logger
}

// NewCached wraps next with store. ttl is the lifetime of each payload.
func NewCached(next Fetcher, store cache.Cacher, ttl time.Duration, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{
		next:   next,
		store:  store,
		typed:  cache.NewTypedCache[json.RawMessage](store, ttl),
		logger: logger,
	}
}

func cacheKey(collection Collection, locale string) string {
	return string(collection) + ":" + locale
}

// Fetch returns the cached payload or loads and stores it.
func (c *Cached) Fetch(ctx context.Context, collection Collection, locale string) (json.RawMessage, error) {
	return c.typed.GetOrLoad(ctx, cacheKey(collection, locale), func(ctx context.Context) (json.RawMessage, error) {
		return c.next.Fetch(ctx, collection, locale)
	})
}

// Refresh reloads a collection from the CMS and overwrites the cached copy.
func (c *Cached) Refresh(ctx context.Context, collection Collection, locale string) error {
	data, err := c.next.Fetch(ctx, collection, locale)
	if err != nil {
		return err
	}
	return c.typed.Set(ctx, cacheKey(collection, locale), data)
}

// Warm refreshes every collection for each locale. It keeps going after
// failures and returns them joined.
func (c *Cached) Warm(ctx context.Context, locales []string) error {
	var errs []error
	for _, locale := range locales {
		for _, col := range AllCollections {
			if err := c.Refresh(ctx, col, locale); err != nil {
				errs = append(errs, fmt.Errorf("%s/%s: %w", col, locale, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Invalidate drops the cached payloads of the collection a webhook model
// maps to, for all locales. Unknown models clear the whole cache.
func (c *Cached) Invalidate(ctx context.Context, model string) error {
	col, ok := CollectionForModel(model)
	if !ok {
		c.logger.InfoContext(ctx, "clearing content cache", "model", model)
		return c.store.Clear(ctx)
	}
	c.logger.InfoContext(ctx, "invalidating content cache", "collection", string(col))
	return c.store.DeleteByPrefix(ctx, string(col)+":")
}

// Stats exposes the cache statistics for the health endpoint.
func (c *Cached) Stats() cache.Stats {
	return c.store.Stats()
}
