// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config builds a reqx.Client from REQX_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gogama/reqx"
	"github.com/gogama/reqx/cache"
	"github.com/gogama/reqx/cache/redisstore"
	"github.com/gogama/reqx/encoder"
	"github.com/gogama/reqx/logging"
	"github.com/gogama/reqx/metrics"
	"github.com/gogama/reqx/timeout"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// Prefix is prepended to every variable name.
const Prefix = "REQX_"

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
)

// Config holds the client configuration.
type Config struct {
	BaseURL   string        `env:"BASE_URL"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"5s"`
	UserAgent string        `env:"USER_AGENT" envDefault:"reqx"`
	Headers   []string      `env:"HEADERS" envSeparator:";"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Cache       string        `env:"CACHE" envDefault:"none"`
	CacheDir    string        `env:"CACHE_DIR"`
	RedisURL    string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	RedisTTL    time.Duration `env:"REDIS_TTL"`
	CachePolicy string        `env:"CACHE_POLICY" envDefault:"UseAge"`
	CacheMaxAge time.Duration `env:"CACHE_MAX_AGE" envDefault:"5m"`

	ArrayEncoding string `env:"ARRAY_ENCODING" envDefault:"repeat"`
	DateLayout    string `env:"DATE_LAYOUT"`

	// RateLimit is the sustained request rate per second. Zero means
	// no limit.
	RateLimit float64 `env:"RATE_LIMIT"`
	RateBurst int     `env:"RATE_BURST" envDefault:"1"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom reads the configuration from environ, a map from variable
// name, including Prefix, to value.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("reqx/config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values which Load cannot check by type alone.
func (c *Config) Validate() error {
	var errs []error
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%sBASE_URL must be an absolute URL, got %q", Prefix, c.BaseURL))
		}
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%sTIMEOUT must be positive, got %s", Prefix, c.Timeout))
	}
	for _, h := range c.Headers {
		if name, _, ok := strings.Cut(h, ":"); !ok || strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("%sHEADERS entry %q is not name:value", Prefix, h))
		}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Cache) {
	case CacheNone, CacheMemory, CacheFile, CacheRedis:
	default:
		errs = append(errs, fmt.Errorf("%sCACHE must be one of none, memory, file, redis, got %q", Prefix, c.Cache))
	}
	if _, err := cache.ParsePolicy(c.CachePolicy); err != nil {
		errs = append(errs, err)
	}
	if c.CacheMaxAge < 0 {
		errs = append(errs, fmt.Errorf("%sCACHE_MAX_AGE must not be negative", Prefix))
	}
	if _, err := encoder.ParseArrayEncoding(c.ArrayEncoding); err != nil {
		errs = append(errs, err)
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("%sRATE_LIMIT must not be negative", Prefix))
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("%sRATE_BURST must be at least 1", Prefix))
	}
	return errors.Join(errs...)
}

// Criteria returns the cache criteria to attach to requests, or nil if
// caching is disabled.
func (c *Config) Criteria() *cache.Criteria {
	if strings.EqualFold(c.Cache, CacheNone) || c.Cache == "" {
		return nil
	}
	p, _ := cache.ParsePolicy(c.CachePolicy)
	return &cache.Criteria{Policy: p, MaxAge: c.CacheMaxAge}
}

// NewClient builds a client from c. Log output goes to logOut. If reg
// is not nil, request metrics are registered with it. The returned
// close function releases the cache backend and must be called when
// the client is no longer used.
func (c *Config) NewClient(logOut io.Writer, reg prometheus.Registerer) (*reqx.Client, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	level, _ := logging.ParseLevel(c.LogLevel)
	format, _ := logging.ParseFormat(c.LogFormat)
	arrays, _ := encoder.ParseArrayEncoding(c.ArrayEncoding)

	cl := &reqx.Client{
		UserAgent:     c.UserAgent,
		TimeoutPolicy: timeout.Fixed(c.Timeout),
		Logger:        logging.New(logging.Config{Level: level, Format: format, Output: logOut}),
		Arrays:        arrays,
		DateLayout:    c.DateLayout,
	}
	if c.BaseURL != "" {
		cl.BaseURL, _ = url.Parse(c.BaseURL)
	}
	for _, h := range c.Headers {
		name, value, _ := strings.Cut(h, ":")
		if cl.Header == nil {
			cl.Header = http.Header{}
		}
		cl.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	if c.RateLimit > 0 {
		cl.Limiter = rate.NewLimiter(rate.Limit(c.RateLimit), c.RateBurst)
	}
	if reg != nil {
		g := &reqx.HandlerGroup{}
		metrics.New(reg).Install(g)
		cl.Handlers = g
	}

	closer := func() error { return nil }
	switch strings.ToLower(c.Cache) {
	case CacheMemory:
		cl.Cache = cache.NewMemoryStore()
	case CacheFile:
		dir := c.CacheDir
		if dir == "" {
			base, err := os.UserCacheDir()
			if err != nil {
				return nil, nil, fmt.Errorf("reqx/config: %w", err)
			}
			dir = filepath.Join(base, "reqx")
		}
		s, err := cache.NewFileStore(dir)
		if err != nil {
			return nil, nil, err
		}
		cl.Cache = s
	case CacheRedis:
		rc, err := redisstore.Connect(c.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		s := redisstore.New(rc)
		s.TTL = c.RedisTTL
		cl.Cache = s
		closer = rc.Close
	}
	return cl, closer, nil
}
