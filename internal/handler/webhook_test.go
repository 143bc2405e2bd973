// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeInvalidator struct {
	models []string
	err    error
}

func (f *fakeInvalidator) Invalidate(_ context.Context, model string) error {
	f.models = append(f.models, model)
	return f.err
}

func TestWebhookReceive(t *testing.T) {
	tests := []struct {
		name       string
		auth       string
		body       string
		invErr     error
		wantCode   int
		wantModels []string
	}{
		{"entry published", "Bearer hook-secret", `{"event":"entry.publish","model":" work "}`, nil, http.StatusAccepted, []string{"work"}},
		{"media event without model", "Bearer hook-secret", `{"event":"media.update"}`, nil, http.StatusAccepted, []string{""}},
		{"missing token", "", `{"event":"entry.update","model":"work"}`, nil, http.StatusUnauthorized, nil},
		{"wrong token", "Bearer nope", `{"event":"entry.update","model":"work"}`, nil, http.StatusUnauthorized, nil},
		{"bad json", "Bearer hook-secret", `{"event":`, nil, http.StatusBadRequest, nil},
		{"invalidation fails", "Bearer hook-secret", `{"event":"entry.delete","model":"client"}`, errors.New("redis down"), http.StatusInternalServerError, []string{"client"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &fakeInvalidator{err: tt.invErr}
			h := NewWebhookHandler(inv, "hook-secret", testLogger())

			req := httptest.NewRequest(http.MethodPost, "/webhooks/cms", strings.NewReader(tt.body))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			h.Receive(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantModels, inv.models)
		})
	}
}

func TestWebhookResponseBody(t *testing.T) {
	h := NewWebhookHandler(&fakeInvalidator{}, "hook-secret", nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/cms", strings.NewReader(`{"event":"entry.update","model":"service"}`))
	req.Header.Set("Authorization", "Bearer hook-secret")
	w := httptest.NewRecorder()
	h.Receive(w, req)

	assert.JSONEq(t, `{"success":true,"event":"entry.update","model":"service"}`, w.Body.String())
}
