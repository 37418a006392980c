// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gogama/reqx/cache"
	"github.com/gogama/reqx/decoder"
	"github.com/gogama/reqx/encoder"
	"github.com/gogama/reqx/formdata"
	"github.com/gogama/reqx/logging"
	"github.com/gogama/reqx/query"
	"github.com/gogama/reqx/request"
	"github.com/gogama/reqx/timeout"
	"github.com/google/uuid"
)

// A Client is an HTTP client with a typed request facade, structural
// body encoders and a policy-driven response cache. Its zero value is
// a valid configuration.
//
// The zero value client uses http.DefaultClient as the HTTPDoer,
// timeout.DefaultPolicy as the timeout policy, the built-in decoder
// registry, no cache store, no logger and no event handlers.
//
// Client holds no per-request state and is safe for concurrent use by
// multiple goroutines once configured. Its fields must not be changed
// while requests are in flight.
//
// Every request runs through the same state machine, recorded on the
// returned request.Execution:
//
//	CacheCheck -> NetworkDispatch -> ErrorClassification
//	           -> (CacheFallback) -> Decode -> Done
//
// A cache read happens before the network only if the plan carries
// cache criteria, a Cache store is set, and the criteria policy calls
// for it. A transport error ends the execution at once as a
// *url.Error. A response outside 2xx becomes a *ServiceError of kind
// HTTPError, which the policy may replace with a cached response.
type Client struct {
	// HTTPDoer specifies the mechanics of sending HTTP requests and
	// receiving responses.
	//
	// If HTTPDoer is nil, http.DefaultClient from the standard net/http
	// package is used.
	HTTPDoer HTTPDoer

	// BaseURL is the URL that routes are resolved against. If nil,
	// every route must be an absolute URL.
	BaseURL *url.URL

	// Header holds headers added to every request. Options may
	// override them.
	Header http.Header

	// UserAgent is sent as the User-Agent header unless Header or an
	// option sets one.
	UserAgent string

	// TimeoutPolicy specifies how to set the timeout on requests which
	// do not carry their own.
	//
	// If TimeoutPolicy is nil, timeout.DefaultPolicy is used.
	TimeoutPolicy timeout.Policy

	// Cache is the response cache store. If nil, cache criteria on
	// requests are ignored.
	Cache cache.Store

	// Decoders maps response media types to decoders. If nil, the
	// built-in registry from decoder.NewRegistry is used.
	Decoders *decoder.Registry

	// Logger receives the client's log messages. If nil, nothing is
	// logged.
	Logger logging.Logger

	// Handlers allows custom handler chains to be invoked when
	// designated events occur during execution of a request plan.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup

	// Limiter, if set, is waited on before every network dispatch.
	Limiter Limiter

	// Arrays selects how arrays are named by the query and multipart
	// encoders.
	Arrays encoder.ArrayEncoding

	// DateLayout overrides the time.Time layout used by the encoders.
	DateLayout string

	// MIMETypes maps file extensions to media types for multipart file
	// parts, ahead of the built-in table.
	MIMETypes map[string]string

	// FS, if set, is the file system multipart file references are
	// read from. Otherwise they are read from the OS.
	FS fs.FS

	// Deliverer runs Go callbacks. If nil, callbacks run on the
	// goroutine that executed the request.
	Deliverer Deliverer
}

var defaultDecoders = decoder.NewRegistry()

// NewPlan builds a request plan for route, resolved against BaseURL,
// with the client's default headers and the given options applied.
func (c *Client) NewPlan(ctx context.Context, method, route string, opts ...Option) (*request.Plan, error) {
	u, err := request.ResolveURL(c.BaseURL, route)
	if err != nil {
		return nil, err
	}
	p, err := request.NewPlanURL(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	for name, values := range c.Header {
		p.Header[name] = append([]string(nil), values...)
	}
	if c.UserAgent != "" && p.Header.Get("User-Agent") == "" {
		p.Header.Set("User-Agent", c.UserAgent)
	}
	enc := c.Encoders()
	for _, opt := range opts {
		if err = opt(p, enc); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Encoders returns the structural encoders configured on the client.
func (c *Client) Encoders() Encoders {
	return Encoders{
		Query: query.Encoder{
			Arrays:     c.Arrays,
			DateLayout: c.DateLayout,
		},
		Multipart: formdata.Encoder{
			Arrays:     c.Arrays,
			DateLayout: c.DateLayout,
			MIMETypes:  c.MIMETypes,
			FS:         c.FS,
		},
	}
}

// Do executes a request plan and returns the execution, following the
// cache policy of the plan, the timeout policy set on Client, and
// low-level policy set on the underlying HTTPDoer.
//
// The returned Execution is never nil. If an error is returned, the
// Err field of the Execution references the same error. The error is
// either a *url.Error, for transport failures including timeouts and
// cancellation, or a *ServiceError of kind HTTPError.
//
// When the error is nil, the Execution's Body holds the complete body
// of the result, taken from the network or from the cache as FromCache
// reports.
func (c *Client) Do(p *request.Plan) (*request.Execution, error) {
	e := &request.Execution{
		Plan:  p,
		ID:    uuid.NewString(),
		State: request.CacheCheck,
		Start: time.Now(),
	}
	c.Handlers.run(BeforeExecutionStart, e)
	c.log(e, logging.Debug, "request started", nil)

	if p.Cache != nil && c.Cache != nil {
		e.CacheKey = p.CacheKey()
		a := cache.Decide(*p.Cache, true, cache.Outcome{Stage: cache.BeforeNetwork})
		if a.Kind == cache.ReadCacheFirst || a.Kind == cache.ReadCacheFirstNoAgeCheck {
			c.readCache(e, a)
			c.Handlers.run(AfterCacheCheck, e)
			if e.FromCache {
				return c.end(e)
			}
			c.log(e, logging.Trace, "cache miss", nil)
		}
	}

	e.State = request.NetworkDispatch
	c.dispatch(e)
	if e.Err != nil {
		return c.end(e)
	}

	e.State = request.ErrorClassification
	status := e.Response.StatusCode
	if status >= 200 && status < 300 {
		if e.CacheKey != "" && cache.Cacheable(e.Response.Header) {
			c.writeCache(e)
		}
		return c.end(e)
	}

	e.Err = httpError(status, e.Response.Header, e.Body)
	if e.CacheKey != "" {
		a := cache.Decide(*p.Cache, true, cache.Outcome{Stage: cache.HTTPFailed, StatusCode: status})
		if a.Kind == cache.FallbackToCacheOnError {
			e.State = request.CacheFallback
			c.readCache(e, a)
			if e.FromCache {
				e.Err = nil
				c.log(e, logging.Notice, "HTTP error replaced by cached response", map[string]string{
					logging.StatusKey: strconv.Itoa(status),
				})
			}
			c.Handlers.run(AfterCacheFallback, e)
		}
	}
	return c.end(e)
}

func (c *Client) dispatch(e *request.Execution) {
	p := e.Plan
	d := p.Timeout
	if d <= 0 {
		d = c.timeoutPolicy().Timeout(e)
	}
	ctx, cancel := withTimeout(p.Context(), d)
	defer cancel()

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			e.Err = urlErrorWrap(p, err)
			return
		}
	}

	e.Request = p.ToRequest(ctx)
	c.Handlers.run(BeforeDispatch, e)
	var err error
	e.Response, err = c.doer().Do(e.Request)
	if err != nil {
		e.Response = nil
		e.Err = urlErrorWrap(p, err)
	} else {
		c.readBody(e)
	}
	c.Handlers.run(AfterDispatch, e)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 || d == 1<<63-1 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (c *Client) readBody(e *request.Execution) {
	defer func() {
		_ = e.Response.Body.Close()
	}()
	c.Handlers.run(BeforeReadBody, e)
	var err error
	e.Body, err = io.ReadAll(e.Response.Body)
	if err != nil {
		e.Err = urlErrorWrap(e.Plan, err)
	}
}

func (c *Client) readCache(e *request.Execution, a cache.Action) {
	entry, err := cache.Read(e.Plan.Context(), c.Cache, e.CacheKey, a)
	if err != nil {
		c.log(e, logging.Warning, "cache read failed", map[string]string{
			logging.ErrorKey: err.Error(),
		})
		return
	}
	if entry == nil {
		return
	}
	e.CacheEntry = entry
	e.FromCache = true
	e.Body = entry.Body
	c.log(e, logging.Debug, "cache hit", nil)
}

func (c *Client) writeCache(e *request.Execution) {
	entry := &cache.Entry{
		StatusCode: e.Response.StatusCode,
		Header:     e.Response.Header.Clone(),
		MIMEType:   decoder.MediaType(e.Response.Header.Get("Content-Type")),
		Body:       e.Body,
	}
	if err := c.Cache.Store(e.Plan.Context(), e.CacheKey, entry); err != nil {
		e.SetValue(CacheStoreErrKey, err)
		c.log(e, logging.Warning, "cache write failed", map[string]string{
			logging.ErrorKey: err.Error(),
		})
	}
	c.Handlers.run(AfterCacheStore, e)
}

func (c *Client) end(e *request.Execution) (*request.Execution, error) {
	if e.Err == nil {
		e.State = request.Decode
		c.log(e, logging.Trace, "result ready", nil)
	}
	e.State = request.Done
	e.End = time.Now()
	c.Handlers.run(AfterExecutionEnd, e)

	md := map[string]string{
		logging.StatusKey:   strconv.Itoa(e.StatusCode()),
		logging.DurationKey: strconv.FormatInt(e.Duration().Milliseconds(), 10),
	}
	switch {
	case e.Err == nil:
		c.log(e, logging.Info, "request finished", md)
	case e.Canceled():
		md[logging.ErrorKey] = e.Err.Error()
		c.log(e, logging.Debug, "request canceled", md)
	default:
		md[logging.ErrorKey] = e.Err.Error()
		c.log(e, logging.Error, "request failed", md)
	}
	return e, e.Err
}

func (c *Client) log(e *request.Execution, level logging.Level, msg string, md map[string]string) {
	if c.Logger == nil {
		return
	}
	if md == nil {
		md = make(map[string]string, 5)
	}
	md[logging.RequestIDKey] = e.ID
	md[logging.MethodKey] = e.Plan.Method
	md[logging.StateKey] = e.State.String()
	if e.Plan.URL != nil {
		md[logging.URLKey] = e.Plan.URL.String()
	}
	if e.CacheKey != "" {
		md[logging.CacheKey] = e.CacheKey
	}
	c.Logger.Log(level, msg, md)
}

// CloseIdleConnections invokes the same method on the client's
// underlying HTTPDoer.
//
// If the HTTPDoer has no CloseIdleConnections method, this method does
// nothing.
func (c *Client) CloseIdleConnections() {
	if ic, ok := c.doer().(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (c *Client) doer() HTTPDoer {
	if c.HTTPDoer == nil {
		return http.DefaultClient
	}
	return c.HTTPDoer
}

func (c *Client) timeoutPolicy() timeout.Policy {
	if c.TimeoutPolicy == nil {
		return timeout.DefaultPolicy
	}
	return c.TimeoutPolicy
}

func (c *Client) decoders() *decoder.Registry {
	if c.Decoders == nil {
		return defaultDecoders
	}
	return c.Decoders
}

func urlErrorWrap(p *request.Plan, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}
	return &url.Error{
		Op:  urlErrorOp(p.Method),
		URL: p.URL.String(),
		Err: err,
	}
}

// urlErrorOp is lifted from net/http/client.go.
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
