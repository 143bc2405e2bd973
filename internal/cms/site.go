// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"context"
	"log/slog"

	"github.com/101teams/compro-101-fe/internal/content"
)

// Site decodes CMS collections into content entities.
type Site struct {
	fetcher Fetcher
}

// NewSite reads collections through f.
func NewSite(f Fetcher) *Site {
	return &Site{fetcher: f}
}

// Works returns the raw work entries for locale.
func (s *Site) Works(ctx context.Context, locale string) ([]content.RawWork, error) {
	return decodeCollection(ctx, s.fetcher, Works, locale, content.DecodeWorks)
}

// Services returns the services for locale.
func (s *Site) Services(ctx context.Context, locale string) ([]content.Service, error) {
	return decodeCollection(ctx, s.fetcher, Services, locale, content.DecodeServices)
}

// Categories returns the categories for locale.
func (s *Site) Categories(ctx context.Context, locale string) ([]content.Category, error) {
	return decodeCollection(ctx, s.fetcher, Categories, locale, content.DecodeCategories)
}

// Clients returns the clients for locale.
func (s *Site) Clients(ctx context.Context, locale string) ([]content.Client, error) {
	return decodeCollection(ctx, s.fetcher, Clients, locale, content.DecodeClients)
}

// About returns the about page for locale. A missing single type yields an
// empty About.
func (s *Site) About(ctx context.Context, locale string) (content.About, error) {
	data, err := s.fetcher.Fetch(ctx, About, locale)
	if err != nil {
		if IsNotFound(err) {
			return content.About{}, nil
		}
		return content.About{}, err
	}
	if string(data) == "null" {
		return content.About{}, nil
	}
	about, err := content.DecodeAbout(data)
	if err != nil {
		slog.WarnContext(ctx, "discarding undecodable about entry", "locale", locale, "error", err)
		return content.About{}, nil
	}
	return about, nil
}

func decodeCollection[T any](ctx context.Context, f Fetcher, col Collection, locale string, decode func([]byte) ([]T, []error)) ([]T, error) {
	data, err := f.Fetch(ctx, col, locale)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	items, errs := decode(data)
	for _, e := range errs {
		slog.WarnContext(ctx, "skipping undecodable entry", "collection", string(col), "locale", locale, "error", e)
	}
	return items, nil
}
