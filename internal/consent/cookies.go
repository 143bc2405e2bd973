// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package consent

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

// Cookie names.
const (
	CookieConsent     = "cookie_consent"
	CookieLocale      = "locale"
	CookiePreferences = "prefs"
)

// Cookie lifetimes.
const (
	ConsentMaxAge     = 365 * 24 * time.Hour
	LocaleMaxAge      = 180 * 24 * time.Hour
	PreferencesMaxAge = 365 * 24 * time.Hour
)

// Jar reads and writes the consent cookies. Secure marks cookies for
// HTTPS-only delivery and should be set in production.
type Jar struct {
	Secure bool
}

// Level returns the stored consent level. A missing or unknown value gives
// None and false.
func (j Jar) Level(r *http.Request) (Level, bool) {
	v, ok := read(r, CookieConsent)
	if !ok {
		return None, false
	}
	return ParseLevel(v)
}

// SetLevel stores the consent level.
func (j Jar) SetLevel(w http.ResponseWriter, l Level) {
	j.write(w, CookieConsent, l.String(), ConsentMaxAge)
}

// Locale returns the stored locale cookie value, unvalidated.
func (j Jar) Locale(r *http.Request) (string, bool) {
	return read(r, CookieLocale)
}

// SetLocale stores the locale.
func (j Jar) SetLocale(w http.ResponseWriter, locale string) {
	j.write(w, CookieLocale, locale, LocaleMaxAge)
}

// Preferences decodes the prefs cookie. Missing or invalid JSON gives empty
// preferences.
func (j Jar) Preferences(r *http.Request) Preferences {
	v, ok := read(r, CookiePreferences)
	if !ok {
		return Preferences{}
	}
	var p Preferences
	if err := json.Unmarshal([]byte(v), &p); err != nil {
		return Preferences{}
	}
	p.ViewMode = ParseViewMode(string(p.ViewMode))
	return p
}

// UpdatePreferences merges u into the stored preferences, writes the result
// and returns it.
func (j Jar) UpdatePreferences(w http.ResponseWriter, r *http.Request, u Preferences) Preferences {
	merged := j.Preferences(r).Merge(u)
	data, err := json.Marshal(merged)
	if err != nil {
		return merged
	}
	j.write(w, CookiePreferences, string(data), PreferencesMaxAge)
	return merged
}

// Clear deletes the consent and prefs cookies. The locale cookie is kept.
func (j Jar) Clear(w http.ResponseWriter) {
	for _, name := range []string{CookieConsent, CookiePreferences} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			Secure:   j.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (j Jar) write(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    url.QueryEscape(value),
		Path:     "/",
		Expires:  time.Now().Add(maxAge),
		MaxAge:   int(maxAge.Seconds()),
		Secure:   j.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func read(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return "", false
	}
	return v, v != ""
}
