// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/101teams/compro-101-fe/internal/cache"
	"github.com/101teams/compro-101-fe/internal/logging"
)

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WarmupStatus reports the cache warm-up schedule.
type WarmupStatus interface {
	LastRun() (time.Time, error)
	NextRun() time.Time
}

// HealthConfig wires the health checks. Nil fields are skipped.
type HealthConfig struct {
	Cache    cache.Cacher
	CMS      Pinger
	Warmup   WarmupStatus
	Recorder *logging.Recorder
	// Token grants access to the detailed report as a Bearer token.
	Token   string
	Version string
	// CheckTimeout bounds each dependency check. Defaults to 3s.
	CheckTimeout time.Duration
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	cfg       HealthConfig
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(cfg HealthConfig) *HealthHandler {
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 3 * time.Second
	}
	return &HealthHandler{cfg: cfg, startTime: time.Now()}
}

// HealthStatusPublic is the minimal health response for unauthenticated callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the detailed report for authenticated callers.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Cache     *cache.Stats     `json:"cache,omitempty"`
	Warmup    *Warmup          `json:"warmup,omitempty"`
	Events    []logging.Event  `json:"recent_events,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Warmup describes the last and next cache warm-up runs.
type Warmup struct {
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health. The cache is required for a healthy status;
// an unreachable CMS degrades it, since cached pages can still be served.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]Check, 2)
	if h.cfg.Cache != nil {
		checks["cache"] = h.check(r.Context(), h.cfg.Cache)
	}
	if h.cfg.CMS != nil {
		checks["cms"] = h.check(r.Context(), h.cfg.CMS)
	}

	overallStatus := "healthy"
	statusCode := http.StatusOK
	if c, ok := checks["cms"]; ok && c.Status != "healthy" {
		overallStatus = "degraded"
	}
	if c, ok := checks["cache"]; ok && c.Status != "healthy" {
		overallStatus = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)

	// Unauthenticated callers get minimal response
	if !h.isAuthenticated(r) {
		_ = json.NewEncoder(w).Encode(HealthStatusPublic{Status: overallStatus})
		return
	}

	status := HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.cfg.Version,
		Checks:    checks,
		Warmup:    h.warmup(),
	}
	if h.cfg.Cache != nil {
		stats := h.cfg.Cache.Stats()
		status.Cache = &stats
	}
	if h.cfg.Recorder != nil {
		status.Events = h.cfg.Recorder.Recent()
	}
	if r.URL.Query().Get("verbose") == "true" {
		status.System = systemInfo()
	}

	_ = json.NewEncoder(w).Encode(status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// Readiness handles GET /health/ready. The site is ready once its cache
// answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.cfg.Cache == nil {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
		return
	}

	c := h.check(r.Context(), h.cfg.Cache)
	if c.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
		return
	}

	w.WriteHeader(http.StatusServiceUnavailable)
	resp := map[string]string{"status": "not_ready"}
	// Only include error details for authenticated callers
	if h.isAuthenticated(r) {
		resp["message"] = c.Message
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// isAuthenticated reports whether the request carries the configured Bearer
// token. An empty token disables the detailed report.
func (h *HealthHandler) isAuthenticated(r *http.Request) bool {
	return bearerMatches(r, h.cfg.Token)
}

func (h *HealthHandler) check(ctx context.Context, p Pinger) Check {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.CheckTimeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency.String(),
		}
	}
	return Check{
		Status:  "healthy",
		Message: "Connected",
		Latency: latency.String(),
	}
}

func (h *HealthHandler) warmup() *Warmup {
	if h.cfg.Warmup == nil {
		return nil
	}
	wu := &Warmup{}
	last, err := h.cfg.Warmup.LastRun()
	if !last.IsZero() {
		wu.LastRun = &last
	}
	if err != nil {
		wu.LastError = err.Error()
	}
	if next := h.cfg.Warmup.NextRun(); !next.IsZero() {
		wu.NextRun = &next
	}
	return wu
}

// bearerMatches compares the request's Bearer token with token in constant
// time. An empty token never matches.
func bearerMatches(r *http.Request, token string) bool {
	if token == "" {
		return false
	}
	scheme, value, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(value)), []byte(token)) == 1
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
