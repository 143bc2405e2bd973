// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/101teams/compro-101-fe/internal/consent"
	"github.com/101teams/compro-101-fe/internal/i18n"
)

// ContextKey is the type for request context keys set by this package.
type ContextKey string

// Context keys.
const (
	ContextKeyLocale ContextKey = "locale"
	ContextKeyPath   ContextKey = "path"
)

// Locale validates the {locale} URL parameter and stores it in the request
// context. Unsupported locales are passed to notFound. The locale cookie is
// refreshed whenever it differs from the URL.
func Locale(jar consent.Jar, notFound http.Handler) func(http.Handler) http.Handler {
	if notFound == nil {
		notFound = http.NotFoundHandler()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := strings.ToLower(chi.URLParam(r, "locale"))
			if !i18n.IsSupported(locale) {
				notFound.ServeHTTP(w, r)
				return
			}

			if current, ok := jar.Locale(r); !ok || current != locale {
				jar.SetLocale(w, locale)
			}

			ctx := context.WithValue(r.Context(), ContextKeyLocale, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LocaleFromContext returns the locale set by Locale, or the default.
func LocaleFromContext(ctx context.Context) string {
	if locale, ok := ctx.Value(ContextKeyLocale).(string); ok && locale != "" {
		return locale
	}
	return i18n.DefaultLocale
}

// PreferredLocale picks the locale for an unprefixed request: the locale
// cookie when it names a supported locale, then Accept-Language, then the
// default.
func PreferredLocale(r *http.Request, jar consent.Jar) string {
	if v, ok := jar.Locale(r); ok {
		if v = strings.ToLower(v); i18n.IsSupported(v) {
			return v
		}
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return i18n.Match(accept)
	}
	return i18n.DefaultLocale
}

// RequestPath stores the request path in the context for log records.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PathFromContext returns the path stored by RequestPath.
func PathFromContext(ctx context.Context) string {
	p, _ := ctx.Value(ContextKeyPath).(string)
	return p
}
