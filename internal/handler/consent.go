// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strings"

	"github.com/101teams/compro-101-fe/internal/consent"
	"github.com/101teams/compro-101-fe/internal/i18n"
	"github.com/101teams/compro-101-fe/internal/middleware"
	"github.com/101teams/compro-101-fe/internal/util"
)

// Cookies renders the cookie policy and consent management page.
func (h *FrontendHandler) Cookies(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	h.render(w, r, "cookies", CookiesData{
		BaseTemplateData: h.base(r, i18n.T(locale, "cookiesPage.title")),
		Saved:            r.URL.Query().Get("saved") == "1",
	})
}

// SetConsent handles POST /{locale}/cookies/consent. The form carries the
// chosen level and an optional local return path.
func (h *FrontendHandler) SetConsent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	level, ok := consent.ParseLevel(r.PostFormValue("level"))
	if !ok {
		http.Error(w, "Invalid consent level", http.StatusBadRequest)
		return
	}
	h.jar.SetLevel(w, level)
	h.logger.InfoContext(r.Context(), "consent updated", "level", level.String())

	http.Redirect(w, r, h.returnPath(r, "/cookies?saved=1"), http.StatusSeeOther)
}

// ClearConsent handles POST /{locale}/cookies/clear. The locale cookie is kept.
func (h *FrontendHandler) ClearConsent(w http.ResponseWriter, r *http.Request) {
	h.jar.Clear(w)
	h.logger.InfoContext(r.Context(), "consent cleared")

	locale := middleware.LocaleFromContext(r.Context())
	http.Redirect(w, r, "/"+locale+"/cookies?saved=1", http.StatusSeeOther)
}

// UpdatePreferences handles POST /{locale}/prefs. Recognized fields are
// viewMode and dismiss (repeatable).
func (h *FrontendHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var update consent.Preferences
	if v := r.PostFormValue("viewMode"); v != "" {
		update.ViewMode = consent.ParseViewMode(v)
		if update.ViewMode == "" {
			http.Error(w, "Invalid view mode", http.StatusBadRequest)
			return
		}
	}
	for _, id := range r.PostForm["dismiss"] {
		if id = strings.TrimSpace(id); id != "" {
			update.DismissedModals = append(update.DismissedModals, id)
		}
	}
	h.jar.UpdatePreferences(w, r, update)

	http.Redirect(w, r, h.returnPath(r, "/"), http.StatusSeeOther)
}

// returnPath resolves the form's "return" field to a local path, falling
// back to fallback under the current locale.
func (h *FrontendHandler) returnPath(r *http.Request, fallback string) string {
	locale := middleware.LocaleFromContext(r.Context())
	if fallback == "/" {
		fallback = ""
	}
	return util.LocalRedirect(r.PostFormValue("return"), "/"+locale+fallback)
}
