// Package handler provides HTTP handlers for the agency site.
package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/101teams/compro-101-fe/internal/blocks"
	"github.com/101teams/compro-101-fe/internal/consent"
	"github.com/101teams/compro-101-fe/internal/content"
	"github.com/101teams/compro-101-fe/internal/i18n"
	"github.com/101teams/compro-101-fe/internal/markup"
	"github.com/101teams/compro-101-fe/internal/media"
	"github.com/101teams/compro-101-fe/internal/middleware"
	"github.com/101teams/compro-101-fe/internal/theme"
	"github.com/101teams/compro-101-fe/internal/util"
)

// Listing and sampling sizes used by the pages.
const (
	WorksPageSize = 3
	MaxWorksShown = 100
	ClientsShown  = 8

	// GalleryNoticeID is the modal id of the gallery announcement.
	GalleryNoticeID = "gallery-notice"
)

// Site is the content source the pages read from.
type Site interface {
	Works(ctx context.Context, locale string) ([]content.RawWork, error)
	Services(ctx context.Context, locale string) ([]content.Service, error)
	Categories(ctx context.Context, locale string) ([]content.Category, error)
	Clients(ctx context.Context, locale string) ([]content.Client, error)
	About(ctx context.Context, locale string) (content.About, error)
}

// BaseTemplateData contains common fields expected by all page templates.
type BaseTemplateData struct {
	Title   string
	Locale  string
	Locales []string
	// Path is the request path without the locale prefix, used by the
	// language switcher.
	Path string
	Year int

	Consent    consent.Level
	HasConsent bool
	ShowBanner bool
	Prefs      consent.Preferences
	ReturnTo   string

	Version string
}

// HomeData is the home page model.
type HomeData struct {
	BaseTemplateData

	Categories     []content.Category
	ActiveCategory content.Category
	Services       []content.Service

	Clients []content.Client

	Featured      []content.WorkItem
	FeaturedIndex int
	FeaturedWork  *content.WorkItem

	Gallery []content.WorkItem

	Display WorksDisplay

	ShowNotice bool
}

// WorksDisplay is the category-filtered, paged work grid. Filter is the
// active category slug, empty for all works.
type WorksDisplay struct {
	Categories []content.Category
	Filter     string
	Items      []content.WorkItem
	Total      int
	Show       int
	NextShow   int
	HasMore    bool
}

// WorksData is the work listing page model.
type WorksData struct {
	BaseTemplateData
	Display WorksDisplay
}

// WorkData is the work detail page model.
type WorkData struct {
	BaseTemplateData
	Work     content.Work
	Related  []content.WorkItem
	ViewMode consent.ViewMode
	Selected int
	Images   int
	Videos   int
}

// AboutData is the about page model.
type AboutData struct {
	BaseTemplateData
	About    content.About
	Services []content.Service
	Empty    bool
}

// CookiesData is the cookie policy page model.
type CookiesData struct {
	BaseTemplateData
	Saved bool
}

// ErrorData is the model of the 404 and error pages.
type ErrorData struct {
	BaseTemplateData
	Status     int
	MessageKey string
}

// FrontendConfig holds the optional settings of a FrontendHandler.
type FrontendConfig struct {
	// MediaOrigin resolves relative media paths in exported articles.
	MediaOrigin string
	Version     string
	// Normalizer defaults to a randomly seeded one.
	Normalizer *content.Normalizer
}

// FrontendHandler handles public site routes.
type FrontendHandler struct {
	site         Site
	themeManager *theme.Manager
	normalizer   *content.Normalizer
	renderer     blocks.Renderer
	jar          consent.Jar
	version      string
	logger       *slog.Logger
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(site Site, themeManager *theme.Manager, jar consent.Jar, cfg FrontendConfig, logger *slog.Logger) *FrontendHandler {
	if cfg.Normalizer == nil {
		cfg.Normalizer = content.NewNormalizer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FrontendHandler{
		site:         site,
		themeManager: themeManager,
		normalizer:   cfg.Normalizer,
		renderer:     blocks.Renderer{Origin: cfg.MediaOrigin},
		jar:          jar,
		version:      cfg.Version,
		logger:       logger,
	}
}

// RootRedirect sends "/" to the visitor's preferred locale.
func (h *FrontendHandler) RootRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/"+middleware.PreferredLocale(r, h.jar), http.StatusFound)
}

// Home handles the home page.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := middleware.LocaleFromContext(ctx)

	var (
		services   []content.Service
		categories []content.Category
		clients    []content.Client
		raw        []content.RawWork
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { services, err = h.site.Services(gctx, locale); return })
	g.Go(func() (err error) { categories, err = h.site.Categories(gctx, locale); return })
	g.Go(func() (err error) { raw, err = h.site.Works(gctx, locale); return })
	g.Go(func() error {
		var err error
		if clients, err = h.site.Clients(gctx, locale); err != nil {
			h.logger.WarnContext(gctx, "clients unavailable", "locale", locale, "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		h.renderUnavailable(w, r, err)
		return
	}

	items := h.normalizer.List(raw)
	data := HomeData{
		BaseTemplateData: h.base(r, i18n.T(locale, "nav.home")),
		Categories:       categories,
		Clients:          content.Sample(h.normalizer, clients, ClientsShown),
		Featured:         items,
		Gallery:          content.WithImages(items),
		Display:          buildDisplay(r, items, categories),
	}
	if active, ok := content.FindCategory(categories, r.URL.Query().Get("service")); ok {
		data.ActiveCategory = active
		data.Services = content.ServicesIn(services, active.ID)
	}
	if len(items) > 0 {
		data.FeaturedIndex = clampIndex(queryInt(r, "featured", 0), len(items))
		data.FeaturedWork = &items[data.FeaturedIndex]
	}
	data.ShowNotice = !data.Prefs.Dismissed(GalleryNoticeID) && len(data.Gallery) > 0

	h.render(w, r, "home", data)
}

// Works handles the work listing.
func (h *FrontendHandler) Works(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := middleware.LocaleFromContext(ctx)

	var (
		raw        []content.RawWork
		categories []content.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { raw, err = h.site.Works(gctx, locale); return })
	g.Go(func() (err error) { categories, err = h.site.Categories(gctx, locale); return })
	if err := g.Wait(); err != nil {
		h.renderUnavailable(w, r, err)
		return
	}

	h.render(w, r, "works", WorksData{
		BaseTemplateData: h.base(r, i18n.T(locale, "works.title")),
		Display:          buildDisplay(r, h.normalizer.List(raw), categories),
	})
}

// WorkDetail handles a single work page.
func (h *FrontendHandler) WorkDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := middleware.LocaleFromContext(ctx)

	detail, ok := h.loadDetail(w, r)
	if !ok {
		return
	}

	prefs := h.jar.Preferences(r)
	mode := consent.ParseViewMode(r.URL.Query().Get("view"))
	if mode != "" && mode != prefs.ViewMode {
		prefs = h.jar.UpdatePreferences(w, r, consent.Preferences{ViewMode: mode})
	}
	if mode == "" {
		mode = prefs.ViewMode
	}
	if mode == "" {
		mode = consent.ViewSlider
	}

	base := h.base(r, detail.Work.Title)
	base.Prefs = prefs
	data := WorkData{
		BaseTemplateData: base,
		Work:             detail.Work,
		Related:          detail.Related,
		ViewMode:         mode,
		Selected:         clampIndex(queryInt(r, "media", 0), len(media.Renderable(detail.Work.Image))),
	}
	data.Images, data.Videos = media.Count(detail.Work.Image)

	h.logger.DebugContext(ctx, "work detail", "locale", locale, "slug", detail.Work.Slug, "related", len(detail.Related))
	h.render(w, r, "work", data)
}

// WorkMarkdown exports a work's article as Markdown. If conversion fails
// the article's plain text is sent instead.
func (h *FrontendHandler) WorkMarkdown(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.loadDetail(w, r)
	if !ok {
		return
	}

	body, err := markup.ToMarkdown(string(blocks.HTML(h.renderer.Render(detail.Work.Article))))
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to convert article, exporting plain text", "slug", detail.Work.Slug, "error", err)
		body = blocks.PlainText(detail.Work.Article)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", detail.Work.Title)
	if detail.Work.Summary != "" {
		fmt.Fprintf(&buf, "%s\n\n", detail.Work.Summary)
	}
	buf.WriteString(strings.TrimSpace(body))
	buf.WriteString("\n")

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// About handles the about page. A failed services fetch only hides that
// section.
func (h *FrontendHandler) About(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := middleware.LocaleFromContext(ctx)

	about, err := h.site.About(ctx, locale)
	if err != nil {
		h.renderUnavailable(w, r, err)
		return
	}
	services, err := h.site.Services(ctx, locale)
	if err != nil {
		h.logger.WarnContext(ctx, "services unavailable", "locale", locale, "error", err)
	}

	h.render(w, r, "about", AboutData{
		BaseTemplateData: h.base(r, i18n.T(locale, "about.title")),
		About:            about,
		Services:         services,
		Empty:            about.Story == "" && len(about.Values) == 0 && len(about.Gallery) == 0,
	})
}

// NotFound renders the themed 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "errors.notFound")
}

func (h *FrontendHandler) loadDetail(w http.ResponseWriter, r *http.Request) (content.Detail, bool) {
	ctx := r.Context()
	locale := middleware.LocaleFromContext(ctx)
	slug := chi.URLParam(r, "slug")

	raw, err := h.site.Works(ctx, locale)
	if err != nil {
		h.renderUnavailable(w, r, err)
		return content.Detail{}, false
	}
	detail, err := h.normalizer.Normalize(raw, slug)
	if errors.Is(err, content.ErrNotFound) {
		h.renderError(w, r, http.StatusNotFound, "workDetails.notFound")
		return content.Detail{}, false
	}
	if err != nil {
		h.renderUnavailable(w, r, err)
		return content.Detail{}, false
	}
	return detail, true
}

func (h *FrontendHandler) base(r *http.Request, title string) BaseTemplateData {
	locale := middleware.LocaleFromContext(r.Context())
	level, ok := h.jar.Level(r)
	path := r.URL.Path
	if prefix := "/" + locale; path == prefix {
		path = "/"
	} else if strings.HasPrefix(path, prefix+"/") {
		path = strings.TrimPrefix(path, prefix)
	}

	returnTo := r.URL.Path
	if r.URL.RawQuery != "" {
		returnTo += "?" + r.URL.RawQuery
	}

	return BaseTemplateData{
		Title:      title,
		Locale:     locale,
		Locales:    i18n.SupportedLocales,
		Path:       path,
		Year:       time.Now().Year(),
		Consent:    level,
		HasConsent: ok,
		ShowBanner: !ok && path != "/cookies",
		Prefs:      h.jar.Preferences(r),
		ReturnTo:   returnTo,
		Version:    h.version,
	}
}

// render renders a page using the active theme.
func (h *FrontendHandler) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	h.renderStatus(w, r, http.StatusOK, page, data)
}

func (h *FrontendHandler) renderStatus(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	activeTheme := h.themeManager.GetActiveTheme()
	if activeTheme == nil {
		h.logger.ErrorContext(r.Context(), "no active theme")
		http.Error(w, "No active theme", http.StatusInternalServerError)
		return
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := activeTheme.RenderPage(buf, page, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render template", "template", page, "error", err)
		http.Error(w, "Template rendering error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError renders the themed error page. messageKey prefixes the
// ".title" and ".description" translation keys.
func (h *FrontendHandler) renderError(w http.ResponseWriter, r *http.Request, status int, messageKey string) {
	// Routes outside the locale group carry no locale yet.
	if _, ok := r.Context().Value(middleware.ContextKeyLocale).(string); !ok {
		r = r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyLocale, localeFromPath(r, h.jar)))
	}
	locale := middleware.LocaleFromContext(r.Context())

	page := "error"
	if status == http.StatusNotFound {
		if t := h.themeManager.GetActiveTheme(); t == nil || t.HasPage("404") {
			page = "404"
		}
	}
	h.renderStatus(w, r, status, page, ErrorData{
		BaseTemplateData: h.base(r, i18n.T(locale, messageKey+".title")),
		Status:           status,
		MessageKey:       messageKey,
	})
}

func (h *FrontendHandler) renderUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "cms request failed", "error", err)
	h.renderError(w, r, http.StatusBadGateway, "errors.unavailable")
}

// localeFromPath returns the supported locale prefixing the path, or the
// visitor's preferred locale.
func localeFromPath(r *http.Request, jar consent.Jar) string {
	seg, _, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if seg = strings.ToLower(seg); i18n.IsSupported(seg) {
		return seg
	}
	return middleware.PreferredLocale(r, jar)
}

func buildDisplay(r *http.Request, items []content.WorkItem, categories []content.Category) WorksDisplay {
	filter := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category")))
	if filter == "all" || !util.IsValidSlug(filter) {
		filter = ""
	}
	show := queryInt(r, "show", WorksPageSize)
	if show < WorksPageSize {
		show = WorksPageSize
	}
	if show > MaxWorksShown {
		show = MaxWorksShown
	}

	filtered := content.FilterByCategory(items, filter)
	visible, more := content.Window(filtered, show)
	return WorksDisplay{
		Categories: categories,
		Filter:     filter,
		Items:      visible,
		Total:      len(filtered),
		Show:       show,
		NextShow:   min(show+WorksPageSize, MaxWorksShown),
		HasMore:    more && show < MaxWorksShown,
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return v
}

func clampIndex(i, n int) int {
	if i < 0 || i >= n {
		return 0
	}
	return i
}

// Mount registers the localized page and consent routes on r.
func (h *FrontendHandler) Mount(r chi.Router) {
	r.Get("/", h.RootRedirect)
	r.Route("/{locale}", func(r chi.Router) {
		r.Use(middleware.Locale(h.jar, http.HandlerFunc(h.NotFound)))
		r.Get("/", h.Home)
		r.Get("/about", h.About)
		r.Get("/work", h.Works)
		r.Get("/work/{slug}", h.WorkDetail)
		r.Get("/work/{slug}/markdown", h.WorkMarkdown)
		r.Get("/cookies", h.Cookies)
		r.Post("/cookies/consent", h.SetConsent)
		r.Post("/cookies/clear", h.ClearConsent)
		r.Post("/prefs", h.UpdatePreferences)
		r.NotFound(h.NotFound)
	})
	r.NotFound(h.NotFound)
}
