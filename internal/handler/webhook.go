// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// maxWebhookBody limits the size of webhook payloads.
const maxWebhookBody = 64 << 10

// Invalidator drops cached content for a CMS model.
type Invalidator interface {
	Invalidate(ctx context.Context, model string) error
}

// WebhookEvent is the payload the CMS posts on content changes.
type WebhookEvent struct {
	Event string `json:"event"`
	Model string `json:"model"`
}

// WebhookHandler receives CMS change notifications.
type WebhookHandler struct {
	cache  Invalidator
	secret string
	logger *slog.Logger
}

// NewWebhookHandler creates a webhook handler authenticated by secret.
func NewWebhookHandler(cache Invalidator, secret string, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{cache: cache, secret: secret, logger: logger}
}

// Receive handles POST /webhooks/cms.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if !bearerMatches(r, h.secret) {
		h.logger.WarnContext(r.Context(), "webhook rejected", "reason", "invalid token")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var ev WebhookEvent
	body := io.LimitReader(r.Body, maxWebhookBody)
	if err := json.NewDecoder(body).Decode(&ev); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	ev.Model = strings.TrimSpace(ev.Model)

	if err := h.cache.Invalidate(r.Context(), ev.Model); err != nil {
		h.logger.ErrorContext(r.Context(), "webhook cache invalidation failed", "model", ev.Model, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "invalidation failed")
		return
	}

	h.logger.InfoContext(r.Context(), "webhook processed", "event", ev.Event, "model", ev.Model)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"event":   ev.Event,
		"model":   ev.Model,
	})
}
