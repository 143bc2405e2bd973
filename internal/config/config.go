// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"

	"github.com/101teams/compro-101-fe/internal/cache"
	"github.com/101teams/compro-101-fe/internal/scheduler"
)

// knownWeakSecrets contains example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	CMSOrigin  string        `env:"COMPRO_CMS_ORIGIN" envDefault:"http://127.0.0.1:1337"`
	CMSAPIKey  string        `env:"COMPRO_CMS_API_KEY"`
	CMSTimeout time.Duration `env:"COMPRO_CMS_TIMEOUT" envDefault:"10s"`

	ServerHost string `env:"COMPRO_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"COMPRO_SERVER_PORT" envDefault:"3000"`
	Env        string `env:"COMPRO_ENV" envDefault:"development"`
	LogLevel   string `env:"COMPRO_LOG_LEVEL" envDefault:"info"`

	// Cache configuration. RedisURL selects a shared Redis cache; CacheMaxSize
	// bounds the memory backend.
	RedisURL     string        `env:"COMPRO_REDIS_URL"`
	CachePrefix  string        `env:"COMPRO_CACHE_PREFIX" envDefault:"compro:"`
	CacheTTL     time.Duration `env:"COMPRO_CACHE_TTL" envDefault:"5m"`
	CacheMaxSize int           `env:"COMPRO_CACHE_MAX_SIZE" envDefault:"1000"`

	// ThemesDir holds custom themes that override the embedded ones.
	ThemesDir   string `env:"COMPRO_THEMES_DIR"`
	ActiveTheme string `env:"COMPRO_ACTIVE_THEME" envDefault:"default"`

	// WarmSchedule is a standard cron spec. Empty disables warm-up.
	WarmSchedule string `env:"COMPRO_WARM_SCHEDULE" envDefault:"*/10 * * * *"`

	CSRFKey       string `env:"COMPRO_CSRF_KEY"`
	WebhookSecret string `env:"COMPRO_WEBHOOK_SECRET"`
	// HealthToken unlocks the detailed /health report as a Bearer token.
	HealthToken   string `env:"COMPRO_HEALTH_TOKEN"`

	RequestTimeout time.Duration `env:"COMPRO_REQUEST_TIMEOUT" envDefault:"30s"`
	RateLimitRPS   float64       `env:"COMPRO_RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int           `env:"COMPRO_RATE_LIMIT_BURST" envDefault:"30"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// WebhookEnabled reports whether the CMS webhook route is served.
func (c Config) WebhookEnabled() bool {
	return c.WebhookSecret != ""
}

// Cache returns the cache backend configuration. A Redis outage falls
// back to the memory backend.
func (c Config) Cache() cache.Config {
	return cache.Config{
		RedisURL:         c.RedisURL,
		Prefix:           c.CachePrefix,
		DefaultTTL:       c.CacheTTL,
		MaxSize:          c.CacheMaxSize,
		CleanupInterval:  time.Minute,
		FallbackToMemory: true,
	}
}

// MinCSRFKeyLength is the minimum length of the CSRF key in production.
const MinCSRFKeyLength = 32

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.CMSOrigin = strings.TrimSuffix(cfg.CMSOrigin, "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	switch c.Env {
	case "development", "production":
	default:
		errs = append(errs, fmt.Errorf("COMPRO_ENV must be development or production, got %q", c.Env))
	}

	if u, err := url.Parse(c.CMSOrigin); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("COMPRO_CMS_ORIGIN must be an absolute http(s) URL, got %q", c.CMSOrigin))
	}

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("COMPRO_SERVER_PORT out of range: %d", c.ServerPort))
	}

	if c.WarmSchedule != "" {
		if err := scheduler.ValidateSchedule(c.WarmSchedule); err != nil {
			errs = append(errs, fmt.Errorf("COMPRO_WARM_SCHEDULE: %w", err))
		}
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("COMPRO_RATE_LIMIT_RPS and COMPRO_RATE_LIMIT_BURST must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("COMPRO_REQUEST_TIMEOUT must be positive"))
	}

	if err := c.validateCSRFKey(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (c *Config) validateCSRFKey() error {
	if c.CSRFKey == "" && c.IsDevelopment() {
		c.CSRFKey = strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
		slog.Warn("COMPRO_CSRF_KEY not set; using a random key for this process")
		return nil
	}

	if len(c.CSRFKey) < MinCSRFKeyLength {
		return fmt.Errorf("COMPRO_CSRF_KEY must be at least %d bytes long, got %d bytes; "+
			"generate one with: openssl rand -base64 32",
			MinCSRFKeyLength, len(c.CSRFKey))
	}
	for _, weak := range knownWeakSecrets {
		if c.CSRFKey == weak {
			return errors.New("COMPRO_CSRF_KEY is a known default value and must not be used")
		}
	}
	if !hasMinimumEntropy(c.CSRFKey) {
		slog.Warn("COMPRO_CSRF_KEY has low character diversity; " +
			"consider generating a random key with: openssl rand -base64 32")
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
