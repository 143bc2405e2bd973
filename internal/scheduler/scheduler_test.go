// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type recordingWarmer struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (w *recordingWarmer) Warm(_ context.Context, locales []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, locales)
	return w.err
}

func (w *recordingWarmer) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.calls)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidateSchedule(t *testing.T) {
	valid := []string{"*/5 * * * *", "@every 10m", "@hourly"}
	for _, s := range valid {
		if err := ValidateSchedule(s); err != nil {
			t.Errorf("ValidateSchedule(%q) = %v", s, err)
		}
	}
	invalid := []string{"", "every five minutes", "* * *"}
	for _, s := range invalid {
		if err := ValidateSchedule(s); err == nil {
			t.Errorf("ValidateSchedule(%q) expected error", s)
		}
	}
}

func TestScheduler_Run(t *testing.T) {
	w := &recordingWarmer{}
	s := New(w, []string{"en", "id"}, "@every 1h", discardLogger())

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if w.count() != 1 || len(w.calls[0]) != 2 {
		t.Errorf("unexpected warm calls: %v", w.calls)
	}
	if last, err := s.LastRun(); last.IsZero() || err != nil {
		t.Errorf("LastRun() = %v, %v", last, err)
	}

	w.err = errors.New("cms down")
	if err := s.Run(context.Background()); err == nil {
		t.Error("expected Run to return the warm error")
	}
	if _, err := s.LastRun(); err == nil {
		t.Error("expected LastRun to keep the error")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	w := &recordingWarmer{}
	s := New(w, []string{"en"}, "@every 1h", discardLogger())

	if !s.NextRun().IsZero() {
		t.Error("expected zero NextRun before Start")
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if next := s.NextRun(); next.Before(time.Now()) {
		t.Errorf("NextRun() = %v, want a future time", next)
	}
	s.Stop()
}

func TestScheduler_StartRejectsBadSchedule(t *testing.T) {
	s := New(&recordingWarmer{}, nil, "not a schedule", discardLogger())
	if err := s.Start(); err == nil {
		t.Error("expected error for invalid schedule")
	}
}
