// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package theme_test

import (
	"bytes"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/101teams/compro-101-fe/internal/i18n"
	"github.com/101teams/compro-101-fe/internal/render"
	"github.com/101teams/compro-101-fe/internal/theme"
	"github.com/101teams/compro-101-fe/internal/themes"
)

func TestMain(m *testing.M) {
	if err := i18n.Init(slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testThemeFS() fstest.MapFS {
	return fstest.MapFS{
		"plain/theme.json": {Data: []byte(`{
			"name": "Plain",
			"version": "0.1.0",
			"templates": {"landing": "home"},
			"settings": [{"key": "contact_email", "type": "text", "default": "hi@example.com"}]
		}`)},
		"plain/templates/layouts/base.html": {Data: []byte(`<html>{{template "nav.html" .}}


<main>{{template "content" .}}</main><footer>{{setting "contact_email"}}</footer></html>`)},
		"plain/templates/partials/nav.html": {Data: []byte(`<nav>{{T .Locale "nav.home"}}</nav>`)},
		"plain/templates/pages/home.html":   {Data: []byte(`{{define "content"}}<h1>{{.Title}}</h1>{{end}}`)},
		"plain/templates/pages/about.html":  {Data: []byte(`{{define "content"}}<p>about {{.Title}}</p>{{end}}`)},
		"plain/locales/id/messages.json": {Data: []byte(`{"language": "id", "messages": [
			{"id": "nav.home", "message": "Home", "translation": "Depan"}
		]}`)},
		"plain/static/css/site.css": {Data: []byte(`body{}`)},
		"broken/theme.json":         {Data: []byte(`{not json`)},
		"README.md":                 {Data: []byte(`not a theme`)},
	}
}

func newManager(t *testing.T, fsys fs.FS, customDir string) *theme.Manager {
	t.Helper()
	m := theme.NewManager(fsys, customDir, testLogger())
	m.SetFuncMap(render.Funcs(render.Config{Translator: m}))
	require.NoError(t, m.LoadThemes())
	return m
}

type pageData struct {
	Locale string
	Title  string
}

func TestLoadThemesSkipsBrokenThemes(t *testing.T) {
	m := newManager(t, testThemeFS(), "")

	assert.Equal(t, []string{"plain"}, m.Names())
	_, err := m.GetTheme("broken")
	assert.Error(t, err)
	assert.Error(t, m.SetActiveTheme("missing"))
}

func TestRenderPage(t *testing.T) {
	m := newManager(t, testThemeFS(), "")
	require.NoError(t, m.SetActiveTheme("plain"))
	active := m.GetActiveTheme()
	require.NotNil(t, active)

	var buf bytes.Buffer
	require.NoError(t, active.RenderPage(&buf, "home", pageData{Locale: "id", Title: "<Hello>"}))
	out := buf.String()

	assert.Contains(t, out, "<nav>Depan</nav>", "theme translation overrides catalog")
	assert.Contains(t, out, "<h1>&lt;Hello&gt;</h1>")
	assert.Contains(t, out, "<footer>hi@example.com</footer>")
	assert.NotContains(t, out, "\n\n", "blank lines are compacted")

	buf.Reset()
	require.NoError(t, active.RenderPage(&buf, "landing", pageData{Locale: "en", Title: "x"}))
	assert.Contains(t, buf.String(), "<h1>x</h1>", "theme.json maps landing to home")
	assert.Contains(t, buf.String(), "<nav>Home</nav>")

	buf.Reset()
	require.NoError(t, active.RenderPage(&buf, "about", pageData{Locale: "en", Title: "y"}))
	assert.Contains(t, buf.String(), "<p>about y</p>")

	assert.True(t, active.HasPage("about"))
	assert.False(t, active.HasPage("missing"))
	assert.Error(t, active.RenderPage(&buf, "missing", nil))
}

func TestThemeStaticAndSettings(t *testing.T) {
	m := newManager(t, testThemeFS(), "")
	plain, err := m.GetTheme("plain")
	require.NoError(t, err)

	require.NotNil(t, plain.Static)
	data, err := fs.ReadFile(plain.Static, "css/site.css")
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(data))

	assert.Equal(t, "hi@example.com", plain.Setting("contact_email"))
	assert.Equal(t, "", plain.Setting("unknown"))
	assert.True(t, plain.IsEmbedded)
}

func TestManagerTranslateFallsBackToCatalog(t *testing.T) {
	m := newManager(t, testThemeFS(), "")
	assert.Equal(t, i18n.T("id", "nav.home"), m.Translate("id", "nav.home"), "no active theme")

	require.NoError(t, m.SetActiveTheme("plain"))
	assert.Equal(t, "Depan", m.Translate("id", "nav.home"))
	assert.Equal(t, i18n.T("id", "nav.about"), m.Translate("id", "nav.about"))
	assert.Equal(t, "3 images", m.Translate("en", "workDetails.mediaImages", 3))
}

func TestCustomDirOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "plain", "theme.json"), `{"name": "Custom Plain", "version": "2.0.0"}`)
	writeFile(t, filepath.Join(dir, "plain", "templates", "layouts", "base.html"), `custom:{{template "content" .}}`)
	writeFile(t, filepath.Join(dir, "plain", "templates", "pages", "home.html"), `{{define "content"}}{{.Title}}{{end}}`)

	m := newManager(t, testThemeFS(), dir)
	plain, err := m.GetTheme("plain")
	require.NoError(t, err)
	assert.False(t, plain.IsEmbedded)
	assert.Equal(t, "2.0.0", plain.Config.Version)

	var buf bytes.Buffer
	require.NoError(t, plain.RenderPage(&buf, "home", pageData{Title: "t"}))
	assert.Equal(t, "custom:t", strings.TrimSpace(buf.String()))
}

func TestMissingCustomDirIsNotFatal(t *testing.T) {
	m := newManager(t, testThemeFS(), filepath.Join(t.TempDir(), "nope"))
	assert.Equal(t, []string{"plain"}, m.Names())
}

func TestEmbeddedDefaultTheme(t *testing.T) {
	m := newManager(t, themes.FS, "")
	require.NoError(t, m.SetActiveTheme("default"))
	active := m.GetActiveTheme()

	for _, page := range []string{"home", "about", "works", "work", "cookies", "404", "error"} {
		assert.True(t, active.HasPage(page), page)
	}
	for _, partial := range []string{"header.html", "footer.html", "cookie-banner.html", "notice.html", "work-card.html", "works-display.html", "media-item.html"} {
		assert.NotNil(t, active.Templates.Lookup(partial), partial)
	}

	require.NotNil(t, active.Static)
	_, err := fs.Stat(active.Static, "css/site.css")
	assert.NoError(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
