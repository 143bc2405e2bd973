// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Invalidator drops cached content for a CMS model.
type Invalidator interface {
	Invalidate(ctx context.Context, model string) error
}

// DebounceConfig holds debouncer configuration.
type DebounceConfig struct {
	// Interval is the quiet period after the last event for a collection.
	Interval time.Duration
	// MaxWait bounds how long a busy collection can be held back.
	MaxWait time.Duration
	// Timeout bounds each delayed invalidation.
	Timeout time.Duration
}

// DefaultDebounceConfig returns default debounce configuration.
func DefaultDebounceConfig() DebounceConfig {
	return DebounceConfig{
		Interval: 1 * time.Second,
		MaxWait:  5 * time.Second,
		Timeout:  10 * time.Second,
	}
}

// allCollections is the pending key for models that clear the whole cache.
const allCollections = "*"

type pendingInvalidation struct {
	model     string
	timer     *time.Timer
	firstSeen time.Time
}

// Debouncer coalesces bursts of webhook invalidations per collection. A
// pending full clear absorbs every other pending invalidation.
type Debouncer struct {
	next    Invalidator
	config  DebounceConfig
	logger  *slog.Logger
	pending map[string]*pendingInvalidation
	stopped bool
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewDebouncer creates a debouncer in front of next.
func NewDebouncer(next Invalidator, config DebounceConfig, logger *slog.Logger) *Debouncer {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer{
		next:    next,
		config:  config,
		logger:  logger,
		pending: make(map[string]*pendingInvalidation),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func invalidationKey(model string) string {
	if col, ok := CollectionForModel(model); ok {
		return string(col)
	}
	return allCollections
}

// Invalidate queues model for invalidation and returns immediately. After
// Stop it invalidates synchronously.
func (d *Debouncer) Invalidate(ctx context.Context, model string) error {
	key := invalidationKey(model)
	now := time.Now()

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return d.next.Invalidate(ctx, model)
	}
	defer d.mu.Unlock()

	if _, ok := d.pending[allCollections]; ok && key != allCollections {
		d.logger.Debug("invalidation covered by pending cache clear", "model", model)
		return nil
	}
	if key == allCollections {
		for k, pi := range d.pending {
			if k != allCollections {
				pi.timer.Stop()
				delete(d.pending, k)
			}
		}
	}

	if existing, ok := d.pending[key]; ok {
		existing.model = model
		if now.Sub(existing.firstSeen) >= d.config.MaxWait {
			d.dispatchLocked(key)
			return nil
		}
		existing.timer.Reset(d.config.Interval)
		d.logger.Debug("invalidation debounced", "key", key, "wait_time", now.Sub(existing.firstSeen))
		return nil
	}

	pi := &pendingInvalidation{model: model, firstSeen: now}
	pi.timer = time.AfterFunc(d.config.Interval, func() {
		d.mu.Lock()
		d.dispatchLocked(key)
		d.mu.Unlock()
	})
	d.pending[key] = pi
	d.logger.Debug("invalidation queued", "key", key, "model", model)
	return nil
}

// dispatchLocked runs a pending invalidation. Must be called with lock held.
func (d *Debouncer) dispatchLocked(key string) {
	pi, ok := d.pending[key]
	if !ok {
		return
	}
	pi.timer.Stop()
	delete(d.pending, key)

	d.wg.Add(1)
	go func(model string) {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(d.ctx), d.config.Timeout)
		defer cancel()
		if err := d.next.Invalidate(ctx, model); err != nil {
			d.logger.Error("cache invalidation failed", "model", model, "error", err)
		}
	}(pi.model)
}

// Flush immediately runs all pending invalidations.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flushLocked()
}

func (d *Debouncer) flushLocked() {
	for key := range d.pending {
		d.dispatchLocked(key)
	}
}

// Stop flushes pending invalidations and waits for them to finish. No
// invalidation is queued once Stop has begun.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	if n := len(d.pending); n > 0 {
		d.logger.Info("flushing pending invalidations", "count", n)
	}
	d.flushLocked()
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
}

// Pending returns the number of queued invalidations.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
