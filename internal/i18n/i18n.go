// Package i18n provides the site's localized strings and locale matching.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales
var localesFS embed.FS

// Message represents a single translatable message.
type Message struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Translation string `json:"translation"`
}

// MessageFile represents the structure of a messages JSON file.
type MessageFile struct {
	Language string    `json:"language"`
	Messages []Message `json:"messages"`
}

// Catalog holds all translations for all supported locales.
type Catalog struct {
	mu           sync.RWMutex
	translations map[string]map[string]string // locale -> key -> translation
	matcher      language.Matcher
	supported    []language.Tag
	defaultLang  string
	logger       *slog.Logger
}

var catalog *Catalog

// DefaultLocale is used when no other preference applies.
const DefaultLocale = "en"

// SupportedLocales lists the site locales. The first entry is the default.
var SupportedLocales = []string{"en", "id"}

// Init loads the embedded catalogs.
func Init(logger *slog.Logger) error {
	c := &Catalog{
		translations: make(map[string]map[string]string),
		defaultLang:  DefaultLocale,
		logger:       logger,
	}

	tags := make([]language.Tag, 0, len(SupportedLocales))
	for _, loc := range SupportedLocales {
		tags = append(tags, language.MustParse(loc))
	}
	c.supported = tags
	c.matcher = language.NewMatcher(tags)

	for _, loc := range SupportedLocales {
		if err := c.loadLanguage(loc); err != nil {
			return fmt.Errorf("failed to load locale %s: %w", loc, err)
		}
	}
	catalog = c

	if logger != nil {
		base := Keys(DefaultLocale)
		for _, loc := range SupportedLocales[1:] {
			have := Keys(loc)
			missing := 0
			for _, k := range base {
				if _, ok := slices.BinarySearch(have, k); !ok {
					missing++
				}
			}
			if missing > 0 {
				logger.Warn("locale catalog incomplete", "locale", loc, "missing", missing)
			}
		}
		logger.Info("i18n initialized", "locales", SupportedLocales)
	}
	return nil
}

func (c *Catalog) loadLanguage(lang string) error {
	path := fmt.Sprintf("locales/%s/messages.json", lang)
	data, err := localesFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var msgFile MessageFile
	if err := json.Unmarshal(data, &msgFile); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.translations[lang] = make(map[string]string, len(msgFile.Messages))
	for _, msg := range msgFile.Messages {
		c.translations[lang][msg.ID] = msg.Translation
	}
	if c.logger != nil {
		c.logger.Debug("loaded translations", "locale", lang, "count", len(msgFile.Messages))
	}
	return nil
}

// T translates key into lang, falling back to the default locale and then
// to the key itself. Args are applied with fmt.Sprintf.
func T(lang, key string, args ...any) string {
	if catalog == nil {
		return key
	}

	catalog.mu.RLock()
	translation, ok := catalog.translations[lang][key]
	if !ok && lang != catalog.defaultLang {
		translation, ok = catalog.translations[catalog.defaultLang][key]
		if ok && catalog.logger != nil {
			catalog.logger.Debug("missing translation, using default", "key", key, "locale", lang)
		}
	}
	catalog.mu.RUnlock()

	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(translation, args...)
	}
	return translation
}

// Match returns the supported locale that best fits an Accept-Language
// header or a bare language code.
func Match(acceptLang string) string {
	if catalog == nil || strings.TrimSpace(acceptLang) == "" {
		return DefaultLocale
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(acceptLang)
		if err != nil {
			return catalog.defaultLang
		}
		tags = []language.Tag{tag}
	}

	_, idx, conf := catalog.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(catalog.supported) {
		return catalog.defaultLang
	}
	return SupportedLocales[idx]
}

// IsSupported reports whether locale is one of the site locales.
func IsSupported(locale string) bool {
	return slices.Contains(SupportedLocales, locale)
}

// TranslationCount returns the number of translations loaded for a locale.
func TranslationCount(lang string) int {
	if catalog == nil {
		return 0
	}
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()
	return len(catalog.translations[lang])
}

// Keys returns the sorted message keys of a locale.
func Keys(lang string) []string {
	if catalog == nil {
		return nil
	}
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()
	keys := make([]string, 0, len(catalog.translations[lang]))
	for k := range catalog.translations[lang] {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
