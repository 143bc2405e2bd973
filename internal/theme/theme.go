// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

// Package theme provides theme loading and page rendering for the site.
package theme

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"regexp"
)

// blankLinesRegex matches two or more consecutive newlines (with optional whitespace between).
var blankLinesRegex = regexp.MustCompile(`(\r?\n\s*){2,}`)

// baseLayout is the layout every page is rendered into.
const baseLayout = "layouts/base.html"

// Config represents the configuration loaded from theme.json.
type Config struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Author      string            `json:"author"`
	Description string            `json:"description"`
	Templates   map[string]string `json:"templates"`
	Settings    []Setting         `json:"settings"`
}

// Setting represents a configurable option for a theme.
type Setting struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Type    string `json:"type"` // text, color, image
	Default string `json:"default"`
}

// Theme represents a loaded theme with its templates and configuration.
type Theme struct {
	Name         string                       // directory name (used as identifier)
	Config       Config                       // parsed theme.json
	Templates    *template.Template           // parsed templates
	Static       fs.FS                        // static assets, nil when the theme has none
	Translations map[string]map[string]string // lang -> key -> translation (optional overrides)
	IsEmbedded   bool                         // true if theme is embedded in binary
}

// GetTemplate returns the page template name for a logical page, honoring
// overrides from theme.json.
func (t *Theme) GetTemplate(name string) string {
	if path, ok := t.Config.Templates[name]; ok {
		return path
	}
	return name
}

// RenderPage renders a page template within the base layout. The page's
// "content" block is bound to the layout's {{template "content" .}} call
// on a clone, so concurrent renders never share state.
func (t *Theme) RenderPage(w io.Writer, pageName string, data any) error {
	if t.Templates.Lookup(baseLayout) == nil {
		return fmt.Errorf("base layout not found")
	}

	contentName := "content_" + t.GetTemplate(pageName)
	if t.Templates.Lookup(contentName) == nil {
		return fmt.Errorf("content template not found: %s", contentName)
	}

	clone, err := t.Templates.Clone()
	if err != nil {
		return fmt.Errorf("cloning template: %w", err)
	}
	contentDef := fmt.Sprintf(`{{define "content"}}{{template %q .}}{{end}}`, contentName)
	if _, err := clone.Parse(contentDef); err != nil {
		return fmt.Errorf("parsing content definition: %w", err)
	}

	var buf bytes.Buffer
	if err := clone.ExecuteTemplate(&buf, baseLayout, data); err != nil {
		return err
	}

	compacted := blankLinesRegex.ReplaceAll(buf.Bytes(), []byte("\n"))
	_, err = w.Write(compacted)
	return err
}

// HasPage reports whether the theme defines the given page.
func (t *Theme) HasPage(pageName string) bool {
	return t.Templates.Lookup("content_"+t.GetTemplate(pageName)) != nil
}

// Translate returns a theme-specific translation, if any.
func (t *Theme) Translate(lang, key string) (string, bool) {
	if t.Translations == nil {
		return "", false
	}
	translation, ok := t.Translations[lang][key]
	return translation, ok
}

// Setting returns the default value of a theme setting.
func (t *Theme) Setting(key string) string {
	for _, s := range t.Config.Settings {
		if s.Key == key {
			return s.Default
		}
	}
	return ""
}
