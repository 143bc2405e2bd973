// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/101teams/compro-101-fe/internal/cache"
	"github.com/101teams/compro-101-fe/internal/cms"
	"github.com/101teams/compro-101-fe/internal/config"
	"github.com/101teams/compro-101-fe/internal/consent"
	"github.com/101teams/compro-101-fe/internal/handler"
	"github.com/101teams/compro-101-fe/internal/i18n"
	"github.com/101teams/compro-101-fe/internal/logging"
	"github.com/101teams/compro-101-fe/internal/middleware"
	"github.com/101teams/compro-101-fe/internal/render"
	"github.com/101teams/compro-101-fe/internal/scheduler"
	"github.com/101teams/compro-101-fe/internal/theme"
	"github.com/101teams/compro-101-fe/internal/themes"
	"github.com/101teams/compro-101-fe/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

const staticMaxAge = 30 * 24 * time.Hour

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "compro - agency website frontend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMPRO_CMS_ORIGIN       CMS base URL (default: http://127.0.0.1:1337)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMPRO_CMS_API_KEY      CMS API token (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMPRO_SERVER_PORT      Server port (default: 3000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMPRO_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMPRO_CSRF_KEY         Form protection key (required in production, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMPRO_REDIS_URL        Redis URL for a shared content cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COMPRO_WEBHOOK_SECRET   Enables POST /webhooks/cms (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}
	if *showVersion {
		_, _ = fmt.Println(versionInfo.String())
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(versionInfo version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	recorder := logging.NewRecorder(50)
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logging.ParseLevel(cfg.LogLevel)})
	logger := slog.New(logging.NewContextHandler(textHandler, recorder))
	slog.SetDefault(logger)

	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}
	slog.Info("i18n system initialized", "messages", i18n.TranslationCount(i18n.DefaultLocale))

	store, err := cache.New(cfg.Cache())
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	backend := store.Stats().Backend
	if cfg.UseRedisCache() && backend != "redis" {
		slog.Warn("cache initialized", "backend", backend, "note", "Redis unavailable, using fallback")
	} else {
		slog.Info("cache initialized", "backend", backend)
	}

	cmsClient := cms.NewClient(cfg.CMSOrigin, cfg.CMSAPIKey, cfg.CMSTimeout)
	cmsClient.UserAgent = versionInfo.UserAgent()
	cached := cms.NewCached(cmsClient, store, cfg.CacheTTL, logger)
	site := cms.NewSite(cached)

	var sched *scheduler.Scheduler
	if cfg.WarmSchedule != "" {
		sched = scheduler.New(cached, i18n.SupportedLocales, cfg.WarmSchedule, logger)
		go func() { _ = sched.Run(context.Background()) }()
		if err := sched.Start(); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		defer sched.Stop()
	}

	themeManager := theme.NewManager(themes.FS, cfg.ThemesDir, logger)
	themeManager.SetFuncMap(render.Funcs(render.Config{
		MediaOrigin:  cmsClient.Origin(),
		AssetVersion: appVersion,
		Translator:   themeManager,
	}))
	if err := themeManager.LoadThemes(); err != nil {
		return fmt.Errorf("loading themes: %w", err)
	}
	if err := themeManager.SetActiveTheme(cfg.ActiveTheme); err != nil {
		slog.Warn("falling back to default theme", "theme", cfg.ActiveTheme, "error", err)
		if err := themeManager.SetActiveTheme("default"); err != nil {
			return fmt.Errorf("setting theme: %w", err)
		}
	}
	activeTheme := themeManager.GetActiveTheme()
	slog.Info("theme manager initialized", "themes", themeManager.Names(), "active", activeTheme.Name)

	jar := consent.Jar{Secure: !cfg.IsDevelopment()}
	frontendHandler := handler.NewFrontendHandler(site, themeManager, jar, handler.FrontendConfig{
		MediaOrigin: cmsClient.Origin(),
		Version:     appVersion,
	}, logger)

	healthCfg := handler.HealthConfig{
		Cache:    store,
		CMS:      cmsClient,
		Recorder: recorder,
		Token:    cfg.HealthToken,
		Version:  versionInfo.String(),
	}
	if sched != nil {
		healthCfg.Warmup = sched
	}
	healthHandler := handler.NewHealthHandler(healthCfg)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestPath)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment(), cmsClient.Origin())))
	r.Use(middleware.Timeout(cfg.RequestTimeout, nil))
	r.Use(middleware.StripTrailingSlash)

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	if activeTheme.Static != nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(activeTheme.Static)))
		r.Handle("/static/*", middleware.StaticCache(staticMaxAge)(static))
	}

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.CSRFKey), cfg.IsDevelopment(), cfg.ServerPort))
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	debouncer := cms.NewDebouncer(cached, cms.DefaultDebounceConfig(), logger)
	defer debouncer.Stop()

	r.Group(func(r chi.Router) {
		r.Use(rateLimiter.Middleware)
		r.Use(middleware.SkipCSRF("/webhooks/"))
		r.Use(csrfMiddleware)

		if cfg.WebhookEnabled() {
			webhookHandler := handler.NewWebhookHandler(debouncer, cfg.WebhookSecret, logger)
			r.Post("/webhooks/cms", webhookHandler.Receive)
			slog.Info("CMS webhook enabled", "path", "/webhooks/cms")
		}

		frontendHandler.Mount(r)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "cms", cmsClient.Origin())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
