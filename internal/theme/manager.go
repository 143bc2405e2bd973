// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/101teams/compro-101-fe/internal/i18n"
)

// Manager loads themes and tracks the active one. Embedded themes are
// always available; a theme of the same name in customDir replaces one.
type Manager struct {
	embedded    fs.FS
	customDir   string
	activeTheme *Theme
	themes      map[string]*Theme
	mu          sync.RWMutex
	logger      *slog.Logger
	funcMap     template.FuncMap
}

// NewManager creates a new theme manager. customDir may be empty.
func NewManager(embedded fs.FS, customDir string, logger *slog.Logger) *Manager {
	return &Manager{
		embedded:  embedded,
		customDir: customDir,
		themes:    make(map[string]*Theme),
		logger:    logger,
		funcMap:   template.FuncMap{"setting": func(string) string { return "" }},
	}
}

// SetFuncMap sets the template function map to use when parsing templates.
// A "setting" function reading the active theme's settings is added.
func (m *Manager) SetFuncMap(funcMap template.FuncMap) {
	fm := make(template.FuncMap, len(funcMap)+1)
	maps.Copy(fm, funcMap)
	fm["setting"] = func(key string) string {
		if t := m.GetActiveTheme(); t != nil {
			return t.Setting(key)
		}
		return ""
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcMap = fm
}

// LoadThemes loads the embedded themes, then those under customDir.
func (m *Manager) LoadThemes() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.embedded != nil {
		if err := m.loadFrom(m.embedded, true); err != nil {
			return fmt.Errorf("loading embedded themes: %w", err)
		}
	}

	if m.customDir != "" {
		if _, err := os.Stat(m.customDir); errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn("themes directory does not exist", "path", m.customDir)
		} else if err := m.loadFrom(os.DirFS(m.customDir), false); err != nil {
			return fmt.Errorf("loading custom themes: %w", err)
		}
	}

	m.logger.Info("themes loaded", "count", len(m.themes))
	return nil
}

func (m *Manager) loadFrom(root fs.FS, embedded bool) error {
	entries, err := fs.ReadDir(root, ".")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		sub, err := fs.Sub(root, name)
		if err != nil {
			return err
		}
		t, err := m.loadTheme(name, sub, embedded)
		if err != nil {
			m.logger.Warn("failed to load theme", "theme", name, "error", err)
			continue
		}
		if prev, ok := m.themes[name]; ok && prev.IsEmbedded && !embedded {
			m.logger.Info("custom theme overrides embedded", "theme", name)
		}
		m.themes[name] = t
		m.logger.Debug("loaded theme", "theme", name, "version", t.Config.Version, "embedded", embedded)
	}
	return nil
}

// loadTheme loads a single theme rooted at fsys.
func (m *Manager) loadTheme(name string, fsys fs.FS, embedded bool) (*Theme, error) {
	configData, err := fs.ReadFile(fsys, "theme.json")
	if err != nil {
		return nil, fmt.Errorf("reading theme.json: %w", err)
	}
	var config Config
	if err := json.Unmarshal(configData, &config); err != nil {
		return nil, fmt.Errorf("parsing theme.json: %w", err)
	}

	templates, err := m.parseTemplates(fsys)
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	t := &Theme{
		Name:         name,
		Config:       config,
		Templates:    templates,
		Translations: m.loadThemeTranslations(name, fsys),
		IsEmbedded:   embedded,
	}
	if st, err := fs.Stat(fsys, "static"); err == nil && st.IsDir() {
		t.Static, _ = fs.Sub(fsys, "static")
	}
	return t, nil
}

// loadThemeTranslations reads locales/{lang}/messages.json overrides.
// Returns nil when the theme has none.
func (m *Manager) loadThemeTranslations(name string, fsys fs.FS) map[string]map[string]string {
	translations := make(map[string]map[string]string)
	for _, lang := range i18n.SupportedLocales {
		msgPath := path.Join("locales", lang, "messages.json")
		data, err := fs.ReadFile(fsys, msgPath)
		if err != nil {
			continue
		}

		var msgFile i18n.MessageFile
		if err := json.Unmarshal(data, &msgFile); err != nil {
			m.logger.Warn("failed to parse theme translations", "theme", name, "path", msgPath, "error", err)
			continue
		}

		translations[lang] = make(map[string]string, len(msgFile.Messages))
		for _, msg := range msgFile.Messages {
			translations[lang][msg.ID] = msg.Translation
		}
	}
	if len(translations) == 0 {
		return nil
	}
	return translations
}

// parseTemplates parses layouts, partials and pages into one set. Layouts
// keep their relative path as name, partials their file name, and each
// page's {{define "content"}} is renamed to content_<page>.
func (m *Manager) parseTemplates(fsys fs.FS) (*template.Template, error) {
	tmpl := template.New("").Funcs(m.funcMap)

	for _, dir := range []string{"templates/layouts", "templates/partials"} {
		files, err := htmlFiles(fsys, dir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			content, err := fs.ReadFile(fsys, f)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", f, err)
			}
			name := strings.TrimPrefix(f, "templates/")
			if dir == "templates/partials" {
				name = path.Base(f)
			}
			if _, err := tmpl.New(name).Parse(string(content)); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", f, err)
			}
		}
	}

	pages, err := htmlFiles(fsys, "templates/pages")
	if err != nil {
		return nil, err
	}
	for _, f := range pages {
		content, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("reading page %s: %w", f, err)
		}
		contentName := "content_" + strings.TrimSuffix(path.Base(f), ".html")
		wrapped := strings.Replace(string(content), `{{define "content"}}`, fmt.Sprintf(`{{define %q}}`, contentName), 1)
		if _, err := tmpl.New(strings.TrimPrefix(f, "templates/")).Parse(wrapped); err != nil {
			return nil, fmt.Errorf("parsing page %s: %w", f, err)
		}
	}

	return tmpl, nil
}

func htmlFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".html" {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// SetActiveTheme sets the active theme by name.
func (m *Manager) SetActiveTheme(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.themes[name]
	if !ok {
		return fmt.Errorf("theme not found: %s", name)
	}
	m.activeTheme = t
	m.logger.Info("active theme set", "theme", name)
	return nil
}

// GetActiveTheme returns the currently active theme.
func (m *Manager) GetActiveTheme() *Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeTheme
}

// GetTheme returns a theme by name.
func (m *Manager) GetTheme(name string) (*Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.themes[name]
	if !ok {
		return nil, fmt.Errorf("theme not found: %s", name)
	}
	return t, nil
}

// Names returns the sorted names of the loaded themes.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.themes))
	for name := range m.themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Translate returns a translation for the given key, checking the active
// theme first, then falling back to the global i18n catalog.
func (m *Manager) Translate(lang, key string, args ...any) string {
	m.mu.RLock()
	t := m.activeTheme
	m.mu.RUnlock()

	if t != nil {
		if translation, ok := t.Translate(lang, key); ok {
			if len(args) > 0 {
				return fmt.Sprintf(translation, args...)
			}
			return translation
		}
	}
	return i18n.T(lang, key, args...)
}
