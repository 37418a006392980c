// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gogama/reqx/cache"
	"github.com/gogama/reqx/cache/redisstore"
	"github.com/gogama/reqx/encoder"
	"github.com/gogama/reqx/timeout"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestLoadFrom(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadFrom(map[string]string{})
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, "reqx", cfg.UserAgent)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, CacheNone, cfg.Cache)
		assert.Equal(t, "UseAge", cfg.CachePolicy)
		assert.Equal(t, 5*time.Minute, cfg.CacheMaxAge)
		assert.Equal(t, 1, cfg.RateBurst)
		assert.Nil(t, cfg.Criteria())
	})
	t.Run("values", func(t *testing.T) {
		cfg, err := LoadFrom(map[string]string{
			"REQX_BASE_URL":       "https://api.example.com/v1",
			"REQX_TIMEOUT":        "250ms",
			"REQX_USER_AGENT":     "tool/2",
			"REQX_HEADERS":        "X-A: 1;X-B:2",
			"REQX_LOG_LEVEL":      "warn",
			"REQX_LOG_FORMAT":     "text",
			"REQX_CACHE":          "memory",
			"REQX_CACHE_POLICY":   "ReturnCacheDataElseLoad",
			"REQX_CACHE_MAX_AGE":  "1h",
			"REQX_ARRAY_ENCODING": "brackets",
			"REQX_RATE_LIMIT":     "2.5",
			"REQX_RATE_BURST":     "3",
			"OTHER_TIMEOUT":       "garbage",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/v1", cfg.BaseURL)
		assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
		assert.Equal(t, []string{"X-A: 1", "X-B:2"}, cfg.Headers)
		assert.Equal(t, 2.5, cfg.RateLimit)
		assert.Equal(t, &cache.Criteria{Policy: cache.ReturnCacheDataElseLoad, MaxAge: time.Hour}, cfg.Criteria())
	})
	t.Run("parse error", func(t *testing.T) {
		_, err := LoadFrom(map[string]string{"REQX_TIMEOUT": "soon"})
		assert.ErrorContains(t, err, "reqx/config")
	})
	t.Run("invalid", func(t *testing.T) {
		testCases := map[string]string{
			"REQX_BASE_URL":       "/relative",
			"REQX_TIMEOUT":        "0s",
			"REQX_HEADERS":        "novalue",
			"REQX_LOG_LEVEL":      "loud",
			"REQX_LOG_FORMAT":     "xml",
			"REQX_CACHE":          "disk",
			"REQX_CACHE_POLICY":   "Sometimes",
			"REQX_CACHE_MAX_AGE":  "-1s",
			"REQX_ARRAY_ENCODING": "commas",
			"REQX_RATE_LIMIT":     "-1",
		}
		for name, value := range testCases {
			t.Run(name, func(t *testing.T) {
				_, err := LoadFrom(map[string]string{name: value})
				assert.Error(t, err)
			})
		}
		_, err := LoadFrom(map[string]string{"REQX_RATE_LIMIT": "1", "REQX_RATE_BURST": "0"})
		assert.Error(t, err)
	})
}

func TestConfig_NewClient(t *testing.T) {
	t.Run("memory cache", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "tool/2", r.Header.Get("User-Agent"))
			assert.Equal(t, "1", r.Header.Get("X-A"))
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(r.URL.Path))
		}))
		defer server.Close()

		cfg, err := LoadFrom(map[string]string{
			"REQX_BASE_URL":   server.URL + "/v1/",
			"REQX_USER_AGENT": "tool/2",
			"REQX_HEADERS":    "X-A:1",
			"REQX_CACHE":      "memory",
			"REQX_LOG_LEVEL":  "debug",
			"REQX_RATE_LIMIT": "100",
		})
		require.NoError(t, err)
		var logs bytes.Buffer
		reg := prometheus.NewRegistry()
		cl, closeFn, err := cfg.NewClient(&logs, reg)
		require.NoError(t, err)
		defer func() { assert.NoError(t, closeFn()) }()

		assert.IsType(t, &cache.MemoryStore{}, cl.Cache)
		assert.IsType(t, &rate.Limiter{}, cl.Limiter)
		assert.Equal(t, timeout.Fixed(5*time.Second), cl.TimeoutPolicy)
		res, err := cl.Get(context.Background(), "items")
		require.NoError(t, err)
		assert.Equal(t, "/v1/items", string(res.Body))
		assert.Contains(t, logs.String(), "request finished")

		families, err := reg.Gather()
		require.NoError(t, err)
		assert.NotEmpty(t, families)
	})
	t.Run("file cache", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := LoadFrom(map[string]string{
			"REQX_CACHE":          "file",
			"REQX_CACHE_DIR":      dir,
			"REQX_ARRAY_ENCODING": "indexed",
		})
		require.NoError(t, err)
		cl, closeFn, err := cfg.NewClient(nil, nil)
		require.NoError(t, err)
		require.NoError(t, closeFn())
		require.IsType(t, &cache.FileStore{}, cl.Cache)
		assert.Equal(t, dir, cl.Cache.(*cache.FileStore).Dir())
		assert.Equal(t, encoder.BracketsWithIndex, cl.Arrays)
		assert.Nil(t, cl.Limiter)
		assert.Nil(t, cl.Handlers)
	})
	t.Run("redis cache", func(t *testing.T) {
		cfg, err := LoadFrom(map[string]string{
			"REQX_CACHE":     "redis",
			"REQX_REDIS_URL": "redis://localhost:6379/2",
			"REQX_REDIS_TTL": "10m",
		})
		require.NoError(t, err)
		cl, closeFn, err := cfg.NewClient(nil, nil)
		require.NoError(t, err)
		defer func() { _ = closeFn() }()
		require.IsType(t, &redisstore.Store{}, cl.Cache)
		assert.Equal(t, 10*time.Minute, cl.Cache.(*redisstore.Store).TTL)
	})
	t.Run("invalid", func(t *testing.T) {
		cfg := &Config{Timeout: -1}
		_, _, err := cfg.NewClient(nil, nil)
		assert.Error(t, err)
	})
}
