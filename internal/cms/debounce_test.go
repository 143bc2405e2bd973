// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	mu     sync.Mutex
	models []string
	err    error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, model string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models = append(r.models, model)
	return r.err
}

func (r *recordingInvalidator) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.models)
	slices.Sort(out)
	return out
}

// slowConfig keeps timers from firing during a test.
func slowConfig() DebounceConfig {
	return DebounceConfig{Interval: time.Hour, MaxWait: 2 * time.Hour, Timeout: time.Second}
}

func TestDebouncerCoalescesPerCollection(t *testing.T) {
	rec := &recordingInvalidator{}
	d := NewDebouncer(rec, slowConfig(), nil)

	ctx := context.Background()
	for _, model := range []string{"work", "api::work.work", "works", "client"} {
		require.NoError(t, d.Invalidate(ctx, model))
	}
	assert.Equal(t, 2, d.Pending())
	assert.Empty(t, rec.calls(), "nothing runs before the interval")

	d.Stop()
	assert.Equal(t, []string{"client", "works"}, rec.calls(), "latest model name per collection")
	assert.Zero(t, d.Pending())
}

func TestDebouncerFullClearAbsorbsOthers(t *testing.T) {
	rec := &recordingInvalidator{}
	d := NewDebouncer(rec, slowConfig(), nil)

	ctx := context.Background()
	require.NoError(t, d.Invalidate(ctx, "work"))
	require.NoError(t, d.Invalidate(ctx, "upload.file"))
	require.NoError(t, d.Invalidate(ctx, "service"))
	assert.Equal(t, 1, d.Pending())

	d.Stop()
	assert.Equal(t, []string{"upload.file"}, rec.calls())
}

func TestDebouncerFiresAfterInterval(t *testing.T) {
	rec := &recordingInvalidator{}
	d := NewDebouncer(rec, DebounceConfig{Interval: 10 * time.Millisecond, MaxWait: time.Second, Timeout: time.Second}, nil)
	t.Cleanup(d.Stop)

	require.NoError(t, d.Invalidate(context.Background(), "about"))
	require.Eventually(t, func() bool {
		return slices.Equal(rec.calls(), []string{"about"})
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, d.Pending())
}

func TestDebouncerMaxWait(t *testing.T) {
	rec := &recordingInvalidator{}
	d := NewDebouncer(rec, DebounceConfig{Interval: time.Hour, MaxWait: 0, Timeout: time.Second}, nil)
	t.Cleanup(d.Stop)

	ctx := context.Background()
	require.NoError(t, d.Invalidate(ctx, "category"))
	require.NoError(t, d.Invalidate(ctx, "category"), "second event exceeds max wait and dispatches")
	require.Eventually(t, func() bool {
		return len(rec.calls()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestDebouncerAfterStopIsSynchronous(t *testing.T) {
	rec := &recordingInvalidator{err: errors.New("redis down")}
	d := NewDebouncer(rec, slowConfig(), nil)
	d.Stop()

	err := d.Invalidate(context.Background(), "work")
	assert.EqualError(t, err, "redis down")
	assert.Equal(t, []string{"work"}, rec.calls())
}

func TestDebouncerStopRacesInvalidate(t *testing.T) {
	rec := &recordingInvalidator{}
	d := NewDebouncer(rec, DebounceConfig{Interval: time.Millisecond, MaxWait: time.Millisecond, Timeout: time.Second}, nil)

	ctx := context.Background()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				assert.NoError(t, d.Invalidate(ctx, "work"))
			}
		}()
	}
	time.Sleep(2 * time.Millisecond)
	d.Stop()
	d.Stop()
	wg.Wait()

	assert.Zero(t, d.Pending())
	calls := len(rec.calls())
	require.NoError(t, d.Invalidate(ctx, "client"))
	assert.Len(t, rec.calls(), calls+1, "invalidations after Stop run synchronously")
}
