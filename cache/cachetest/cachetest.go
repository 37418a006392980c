// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cachetest provides a conformance suite for cache.Store
// implementations.
package cachetest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gogama/reqx/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A Factory creates an empty store whose freshness checks use now as
// the current time.
type Factory func(t *testing.T, now func() time.Time) cache.Store

// TestStore runs the conformance suite against stores made by f.
func TestStore(t *testing.T, f Factory) {
	t.Run("miss", func(t *testing.T) { testMiss(t, f) })
	t.Run("round trip", func(t *testing.T) { testRoundTrip(t, f) })
	t.Run("use age", func(t *testing.T) { testUseAge(t, f) })
	t.Run("error status never returned", func(t *testing.T) { testErrorStatus(t, f) })
	t.Run("replace", func(t *testing.T) { testReplace(t, f) })
	t.Run("nil entry", func(t *testing.T) { testNilEntry(t, f) })
	t.Run("concurrent", func(t *testing.T) { testConcurrent(t, f) })
}

var epoch = time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)

func entry(status int, date time.Time, body string) *cache.Entry {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if !date.IsZero() {
		h.Set("Date", date.Format(http.TimeFormat))
	}
	return &cache.Entry{
		StatusCode: status,
		Header:     h,
		MIMEType:   "application/json",
		Body:       []byte(body),
		StoredAt:   date,
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func testMiss(t *testing.T, f Factory) {
	s := f(t, time.Now)
	e, err := s.Lookup(context.Background(), "GET:https://example.com/missing")
	assert.NoError(t, err)
	assert.Nil(t, e)
	e, err = s.LookupFresh(context.Background(), "GET:https://example.com/missing", time.Hour)
	assert.NoError(t, err)
	assert.Nil(t, e)
}

func testRoundTrip(t *testing.T, f Factory) {
	ctx := context.Background()
	s := f(t, func() time.Time { return epoch })
	in := entry(200, epoch, `{"a":1}`)
	require.NoError(t, s.Store(ctx, "k", in))

	out, err := s.Lookup(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.StatusCode, out.StatusCode)
	assert.Equal(t, in.MIMEType, out.MIMEType)
	assert.Equal(t, in.Body, out.Body)
	assert.Equal(t, in.Header, out.Header)
	assert.True(t, in.StoredAt.Equal(out.StoredAt))
}

func testUseAge(t *testing.T, f Factory) {
	ctx := context.Background()
	const age = 30 * time.Second
	c := &clock{now: epoch}
	s := f(t, c.Now)
	require.NoError(t, s.Store(ctx, "k", entry(200, epoch, "x")))

	c.Set(epoch.Add(age - time.Second))
	e, err := s.LookupFresh(ctx, "k", age)
	require.NoError(t, err)
	assert.NotNil(t, e, "age-1 must hit")

	c.Set(epoch.Add(age + time.Second))
	e, err = s.LookupFresh(ctx, "k", age)
	require.NoError(t, err)
	assert.Nil(t, e, "age+1 must miss")

	e, err = s.Lookup(ctx, "k")
	require.NoError(t, err)
	assert.NotNil(t, e, "lookup ignores age")

	e, err = s.LookupFresh(ctx, "k", cache.Infinite)
	require.NoError(t, err)
	assert.NotNil(t, e, "infinite ignores age")
}

func testErrorStatus(t *testing.T, f Factory) {
	ctx := context.Background()
	s := f(t, func() time.Time { return epoch })
	require.NoError(t, s.Store(ctx, "k", entry(500, epoch, "boom")))

	e, err := s.Lookup(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, e)

	e, err = s.LookupFresh(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.Nil(t, e)

	a := cache.Decide(cache.Criteria{Policy: cache.ReturnCacheDataElseLoad}, true, cache.Outcome{Stage: cache.BeforeNetwork})
	e, err = cache.Read(ctx, s, "k", a)
	require.NoError(t, err)
	assert.Nil(t, e)
}

func testReplace(t *testing.T, f Factory) {
	ctx := context.Background()
	s := f(t, func() time.Time { return epoch })
	require.NoError(t, s.Store(ctx, "k", entry(200, epoch, "old")))
	require.NoError(t, s.Store(ctx, "k", entry(201, epoch, "new")))
	e, err := s.Lookup(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, 201, e.StatusCode)
	assert.Equal(t, "new", string(e.Body))
}

func testNilEntry(t *testing.T, f Factory) {
	s := f(t, time.Now)
	assert.ErrorIs(t, s.Store(context.Background(), "k", nil), cache.ErrNilEntry)
}

func testConcurrent(t *testing.T, f Factory) {
	ctx := context.Background()
	s := f(t, time.Now)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i)
			for j := 0; j < 20; j++ {
				body := fmt.Sprintf("%d-%d", i, j)
				assert.NoError(t, s.Store(ctx, key, entry(200, time.Time{}, body)))
				e, err := s.Lookup(ctx, key)
				assert.NoError(t, err)
				if assert.NotNil(t, e) {
					assert.Equal(t, body, string(e.Body))
				}
			}
		}(i)
	}
	wg.Wait()
}
