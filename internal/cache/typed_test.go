// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

func TestTypedCache_SetGet(t *testing.T) {
	mc := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = mc.Close() }()
	tc := NewTypedCache[payload](mc, time.Minute)
	ctx := context.Background()

	_, ok := tc.Get(ctx, "p")
	assert.False(t, ok)

	require.NoError(t, tc.Set(ctx, "p", payload{Slug: "a", Count: 2}))
	got, ok := tc.Get(ctx, "p")
	require.True(t, ok)
	assert.Equal(t, payload{Slug: "a", Count: 2}, got)

	require.NoError(t, tc.Delete(ctx, "p"))
	_, ok = tc.Get(ctx, "p")
	assert.False(t, ok)
}

func TestTypedCache_CorruptEntryIsMiss(t *testing.T) {
	mc := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = mc.Close() }()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "p", []byte("{not json"), 0))
	_, ok := NewTypedCache[payload](mc, time.Minute).Get(ctx, "p")
	assert.False(t, ok)
}

func TestTypedCache_RawMessage(t *testing.T) {
	mc := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = mc.Close() }()
	tc := NewTypedCache[json.RawMessage](mc, time.Minute)
	ctx := context.Background()

	require.NoError(t, tc.Set(ctx, "works:en", json.RawMessage(`[{"id":1}]`)))
	got, ok := tc.Get(ctx, "works:en")
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":1}]`, string(got))
}

func TestTypedCache_GetOrLoad(t *testing.T) {
	mc := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = mc.Close() }()
	tc := NewTypedCache[payload](mc, time.Minute)
	ctx := context.Background()

	var calls atomic.Int32
	load := func(context.Context) (payload, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return payload{Slug: "loaded"}, nil
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := tc.GetOrLoad(ctx, "k", load)
			assert.NoError(t, err)
			assert.Equal(t, "loaded", v.Slug)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(10))
	before := calls.Load()
	_, err := tc.GetOrLoad(ctx, "k", load)
	require.NoError(t, err)
	assert.Equal(t, before, calls.Load(), "cached value must not reload")
}

func TestTypedCache_GetOrLoadError(t *testing.T) {
	mc := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = mc.Close() }()
	tc := NewTypedCache[payload](mc, time.Minute)

	boom := errors.New("boom")
	_, err := tc.GetOrLoad(context.Background(), "k", func(context.Context) (payload, error) {
		return payload{}, boom
	})
	assert.ErrorIs(t, err, boom)
	_, ok := tc.Get(context.Background(), "k")
	assert.False(t, ok, "errors are not cached")
}
