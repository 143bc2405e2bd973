// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler keeps the content cache warm on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Warmer refreshes cached content for the given locales.
type Warmer interface {
	Warm(ctx context.Context, locales []string) error
}

// Scheduler runs the cache warm-up job.
type Scheduler struct {
	cron     *cron.Cron
	logger   *slog.Logger
	warmer   Warmer
	locales  []string
	schedule string
	timeout  time.Duration

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// New creates a scheduler that warms locales on schedule, a standard
// five-field cron expression or a descriptor such as "@every 5m".
func New(warmer Warmer, locales []string, schedule string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger,
		warmer:   warmer,
		locales:  locales,
		schedule: schedule,
		timeout:  time.Minute,
	}
}

// ValidateSchedule reports whether schedule parses as a cron spec.
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// Start registers the warm-up job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { _ = s.Run(context.Background()) }); err != nil {
		return fmt.Errorf("scheduling cache warm-up: %w", err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.schedule, "locales", s.locales)
	return nil
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Run performs one warm-up pass immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.warmer.Warm(ctx, s.locales)

	s.mu.Lock()
	s.lastRun, s.lastErr = start, err
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("cache warm-up incomplete", "duration", time.Since(start), "error", err)
		return err
	}
	s.logger.Debug("cache warmed", "duration", time.Since(start))
	return nil
}

// LastRun returns the start time and result of the most recent pass.
func (s *Scheduler) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

// NextRun returns the next scheduled run, or the zero time before Start.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
