// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics exports Prometheus metrics for request executions.
//
// A Collector is a reqx.Handler. Install it into the handler group of
// a client to start counting:
//
//	handlers := &reqx.HandlerGroup{}
//	metrics.New(prometheus.DefaultRegisterer).Install(handlers)
//	client := &reqx.Client{Handlers: handlers}
package metrics

import (
	"errors"

	"github.com/gogama/reqx"
	"github.com/gogama/reqx/request"
	"github.com/gogama/reqx/transient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "reqx"

// Outcome label values of the requests_total counter. Transport errors
// use the snake_case name of their transient.Category, or "transport"
// when the category is transient.Not.
const (
	OutcomeSuccess   = "success"
	OutcomeCache     = "cache"
	OutcomeHTTPError = "http_error"
	OutcomeTransport = "transport"
)

// Event label values of the cache_events_total counter.
const (
	CacheHit          = "hit"
	CacheMiss         = "miss"
	CacheStored       = "stored"
	CacheStoreError   = "store_error"
	CacheFallbackHit  = "fallback_hit"
	CacheFallbackMiss = "fallback_miss"
)

// A Collector records request executions. It is safe for concurrent
// use.
type Collector struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	inFlight    *prometheus.GaugeVec
	cacheEvents *prometheus.CounterVec
}

// New creates a Collector and registers its metrics with reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "requests_total",
				Help:      "Total request executions by method and outcome.",
			},
			[]string{"method", "outcome"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of request executions in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		inFlight: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "requests_in_flight",
				Help:      "Request executions started but not yet ended.",
			},
			[]string{"method"},
		),
		cacheEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cache_events_total",
				Help:      "Cache reads, writes and fallbacks by method and event.",
			},
			[]string{"method", "event"},
		),
	}
}

// Install adds c to g for every event it records.
func (c *Collector) Install(g *reqx.HandlerGroup) {
	for _, evt := range []reqx.Event{
		reqx.BeforeExecutionStart,
		reqx.AfterCacheCheck,
		reqx.AfterCacheStore,
		reqx.AfterCacheFallback,
		reqx.AfterExecutionEnd,
	} {
		g.PushBack(evt, c)
	}
}

// Handle records evt for e.
func (c *Collector) Handle(evt reqx.Event, e *request.Execution) {
	method := e.Plan.Method
	switch evt {
	case reqx.BeforeExecutionStart:
		c.inFlight.WithLabelValues(method).Inc()
	case reqx.AfterCacheCheck:
		c.cacheEvents.WithLabelValues(method, pick(e.FromCache, CacheHit, CacheMiss)).Inc()
	case reqx.AfterCacheStore:
		stored := e.Value(reqx.CacheStoreErrKey) == nil
		c.cacheEvents.WithLabelValues(method, pick(stored, CacheStored, CacheStoreError)).Inc()
	case reqx.AfterCacheFallback:
		c.cacheEvents.WithLabelValues(method, pick(e.FromCache, CacheFallbackHit, CacheFallbackMiss)).Inc()
	case reqx.AfterExecutionEnd:
		c.inFlight.WithLabelValues(method).Dec()
		c.requests.WithLabelValues(method, Outcome(e)).Inc()
		c.duration.WithLabelValues(method).Observe(e.Duration().Seconds())
	}
}

// Outcome returns the outcome label value for an ended execution.
func Outcome(e *request.Execution) string {
	if e.Err == nil {
		return pick(e.FromCache, OutcomeCache, OutcomeSuccess)
	}
	var se *reqx.ServiceError
	if errors.As(e.Err, &se) {
		return OutcomeHTTPError
	}
	if cat := transient.Categorize(e.Err); cat != transient.Not {
		return cat.String()
	}
	return OutcomeTransport
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
