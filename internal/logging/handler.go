// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides the slog handler used by the site. It adds request
// attributes from the context and keeps the most recent warnings and errors
// in memory for the health endpoint.
package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/101teams/compro-101-fe/internal/middleware"
)

// Event categories.
const (
	CategoryCMS     = "cms"
	CategoryCache   = "cache"
	CategoryConsent = "consent"
	CategoryHTTP    = "http"
	CategorySystem  = "system"
)

// Event is a retained WARN or ERROR record.
type Event struct {
	Time      time.Time `json:"time"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
}

// Recorder is a fixed-size ring of recent events. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
}

// NewRecorder creates a recorder keeping the last size events.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = 50
	}
	return &Recorder{events: make([]Event, size)}
}

func (rec *Recorder) add(e Event) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.events[rec.next] = e
	rec.next = (rec.next + 1) % len(rec.events)
	if rec.next == 0 {
		rec.full = true
	}
}

// Recent returns the retained events, newest first.
func (rec *Recorder) Recent() []Event {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	n := rec.next
	if rec.full {
		n = len(rec.events)
	}
	out := make([]Event, 0, n)
	for i := 1; i <= n; i++ {
		idx := (rec.next - i + len(rec.events)) % len(rec.events)
		out = append(out, rec.events[idx])
	}
	return out
}

// ContextHandler wraps another handler, adding request_id and path
// attributes when present in the context. Records at or above the
// recorder level are also kept in the recorder.
type ContextHandler struct {
	inner    slog.Handler
	recorder *Recorder
	level    slog.Level
}

// NewContextHandler wraps inner. A nil recorder disables event retention.
func NewContextHandler(inner slog.Handler, recorder *Recorder) *ContextHandler {
	return &ContextHandler{inner: inner, recorder: recorder, level: slog.LevelWarn}
}

// Enabled implements slog.Handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	reqID := chimw.GetReqID(ctx)
	if reqID != "" {
		r.AddAttrs(slog.String("request_id", reqID))
	}
	if p := middleware.PathFromContext(ctx); p != "" {
		r.AddAttrs(slog.String("path", p))
	}

	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if h.recorder != nil && r.Level >= h.level {
		h.recorder.add(Event{
			Time:      r.Time,
			Level:     r.Level.String(),
			Category:  category(r),
			Message:   r.Message,
			RequestID: reqID,
		})
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs), recorder: h.recorder, level: h.level}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name), recorder: h.recorder, level: h.level}
}

// category returns the "category" attribute or infers one from the message.
func category(r slog.Record) string {
	var c string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			c = a.Value.String()
			return false
		}
		return true
	})
	if c != "" {
		return c
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "cms") || strings.Contains(msg, "fetch") || strings.Contains(msg, "webhook"):
		return CategoryCMS
	case strings.Contains(msg, "cache"):
		return CategoryCache
	case strings.Contains(msg, "consent") || strings.Contains(msg, "cookie"):
		return CategoryConsent
	case strings.Contains(msg, "request") || strings.Contains(msg, "rate limit"):
		return CategoryHTTP
	default:
		return CategorySystem
	}
}

// ParseLevel maps debug, info, warn and error to slog levels.
// Anything else gives info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
