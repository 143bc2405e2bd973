// Package render provides the template functions used by site themes.
package render

import (
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/101teams/compro-101-fe/internal/blocks"
	"github.com/101teams/compro-101-fe/internal/content"
	"github.com/101teams/compro-101-fe/internal/i18n"
	"github.com/101teams/compro-101-fe/internal/markup"
	"github.com/101teams/compro-101-fe/internal/media"
)

// Translator resolves message keys. theme.Manager implements it.
type Translator interface {
	Translate(lang, key string, args ...any) string
}

// Config holds what the template functions need at render time.
type Config struct {
	// MediaOrigin is the CMS origin relative media paths resolve against.
	MediaOrigin string
	// AssetVersion is appended to static asset URLs for cache busting.
	AssetVersion string
	Translator   Translator
}

// Funcs returns the template function map for themes.
func Funcs(cfg Config) template.FuncMap {
	translate := func(lang, key string, args ...any) string {
		if cfg.Translator != nil {
			return cfg.Translator.Translate(lang, key, args...)
		}
		return i18n.T(lang, key, args...)
	}
	renderer := blocks.Renderer{Origin: cfg.MediaOrigin}

	return template.FuncMap{
		"T": translate,
		// TOr translates key, or returns fallback when the value is non-empty.
		"TOr": func(lang, key, value string) string {
			if strings.TrimSpace(value) != "" {
				return value
			}
			return translate(lang, key)
		},

		"mediaURL": func(item media.Item) string {
			return item.URLFor(cfg.MediaOrigin)
		},
		"mediaFormat": func(item media.Item, name string) string {
			return item.FormatURL(name, cfg.MediaOrigin)
		},
		"resolve": func(path string) string {
			return media.Resolve(path, cfg.MediaOrigin)
		},
		"renderable": media.Renderable,
		"hero": func(items []media.Item) *media.Item {
			if it, ok := media.Hero(items); ok {
				return &it
			}
			return nil
		},
		"imageCount": func(items []media.Item) int {
			n, _ := media.Count(items)
			return n
		},
		"videoCount": func(items []media.Item) int {
			_, n := media.Count(items)
			return n
		},

		"blocks": func(doc blocks.Document) template.HTML {
			return blocks.HTML(renderer.Render(doc))
		},
		"markdown": markup.Markdown,
		"excerpt":  content.Excerpt,

		"localePath": LocalePath,
		"asset": func(path string) string {
			u := "/static/" + strings.TrimPrefix(path, "/")
			if cfg.AssetVersion != "" {
				u += "?v=" + url.QueryEscape(cfg.AssetVersion)
			}
			return u
		},
		"query": func(base string, pairs ...any) string {
			return withQuery(base, pairs...)
		},

		"formatDate": FormatDate,
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
		"seq": func(start, end int) []int {
			var result []int
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
			return result
		},
		"dict": dict,
	}
}

// LocalePath prefixes path with the locale segment.
func LocalePath(locale, path string) string {
	if path == "" || path == "/" {
		return "/" + locale
	}
	return "/" + locale + "/" + strings.TrimPrefix(path, "/")
}

var idMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatDate formats t for display in locale. The zero time gives "".
func FormatDate(t time.Time, locale string) string {
	if t.IsZero() {
		return ""
	}
	if locale == "id" {
		return t.Format("2") + " " + idMonths[t.Month()-1] + " " + t.Format("2006")
	}
	return t.Format("January 2, 2006")
}

// withQuery appends key/value pairs to base, skipping empty values.
func withQuery(base string, pairs ...any) string {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		k, _ := pairs[i].(string)
		v := toString(pairs[i+1])
		if k != "" && v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}

// dict builds a map from alternating keys and values, for passing several
// values into a partial.
func dict(pairs ...any) map[string]any {
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if k, ok := pairs[i].(string); ok {
			m[k] = pairs[i+1]
		}
	}
	return m
}
