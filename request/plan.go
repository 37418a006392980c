// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"
	"time"

	"github.com/gogama/reqx/cache"
	"golang.org/x/net/http/httpguts"
)

const nilCtxMsg = "reqx/request: nil context"

// A Plan describes one logical HTTP request for execution by a
// client: what to send, how long to wait for it, and whether and how
// the response cache takes part.
//
// Unlike an http.Request, a Plan carries a fully buffered body, so it
// may be turned into a wire request more than once (for example by an
// event handler that wants to log the body) without consuming it.
type Plan struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.).
	// An empty string means GET.
	Method string

	// URL specifies the absolute URL to access.
	URL *urlpkg.URL

	// Header contains the request header fields to be sent.
	Header http.Header

	// Body is the pre-buffered request body to be sent. A nil or
	// empty body means no request body.
	Body []byte

	// Host optionally overrides the Host header to send. If empty, the
	// value of URL.Host is sent.
	Host string

	// Cache holds the caching criteria for the plan. A nil value means
	// the response cache is neither read nor written.
	Cache *cache.Criteria

	// Timeout is the maximum time to wait for the response, including
	// reading the body. Zero means the client's timeout policy decides.
	Timeout time.Duration

	// ctx allows the entire Plan exec to be cancelled. It should only
	// be modified by copying the whole Plan using WithContext.
	ctx context.Context
}

// NewPlan wraps NewPlanWithContext using the background context.
//
// Use it to build a plan for Client.Do outside any base URL, for
// example when the URL is already absolute.
func NewPlan(method, url string, body interface{}) (*Plan, error) {
	return NewPlanWithContext(context.Background(), method, url, body)
}

// NewPlanWithContext returns a new Plan given a method, URL, and
// optional body.
//
// Parameter body may be nil (empty body), or it may be a string,
// []byte, io.Reader, or io.ReadCloser. See BodyBytes.
func NewPlanWithContext(ctx context.Context, method, url string, body interface{}) (*Plan, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, err
	}
	b, err := BodyBytes(body)
	if err != nil {
		return nil, err
	}
	return newPlan(ctx, method, u, b)
}

// NewPlanURL returns a new Plan for an already parsed URL. It is the
// form used after route resolution.
func NewPlanURL(ctx context.Context, method string, u *urlpkg.URL, body []byte) (*Plan, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if u == nil {
		return nil, errors.New("reqx/request: nil URL")
	}
	u2 := *u
	return newPlan(ctx, method, &u2, body)
}

func newPlan(ctx context.Context, method string, u *urlpkg.URL, body []byte) (*Plan, error) {
	if method == "" {
		method = http.MethodGet
	}
	if !ValidMethod(method) {
		return nil, fmt.Errorf("reqx/request: invalid method %q", method)
	}
	u.Host = removeEmptyPort(u.Host)
	return &Plan{
		ctx:    ctx,
		Method: method,
		URL:    u,
		Header: make(http.Header),
		Body:   body,
		Host:   u.Host,
	}, nil
}

// Context returns the request plan's context. The context controls
// cancellation of the overall request plan. To change the context, use
// WithContext.
//
// The returned context is always non-nil; it defaults to the
// background context.
func (p *Plan) Context() context.Context {
	if p.ctx != nil {
		return p.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of p with its context changed to
// ctx, which must be non-nil. Client.Do runs the copy under ctx.
func (p *Plan) WithContext(ctx context.Context) *Plan {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	p2 := new(Plan)
	*p2 = *p
	p2.ctx = ctx
	return p2
}

// SetHeader validates the header field name and value and sets it on
// the plan, replacing any existing values.
func (p *Plan) SetHeader(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("reqx/request: invalid header name %q", name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("reqx/request: invalid value for header %q", name)
	}
	if p.Header == nil {
		p.Header = make(http.Header)
	}
	p.Header.Set(name, value)
	return nil
}

// SetBasicAuth sets the request plan's Authorization header to use HTTP
// Basic Authentication with the provided username and password.
func (p *Plan) SetBasicAuth(username, password string) {
	p.Header.Set("Authorization", "Basic "+basicAuth(username, password))
}

// CacheKey returns the key under which the plan's response is cached.
func (p *Plan) CacheKey() string {
	return cache.Key(p.Method, p.URL)
}

// ToRequest creates an HTTP request corresponding to the given request
// plan. The context of the new request is set to ctx, which may not be
// nil.
func (p *Plan) ToRequest(ctx context.Context) *http.Request {
	r := &http.Request{
		Method:     p.Method,
		URL:        p.URL,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     p.Header,
		Host:       p.Host,
	}
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if len(p.Body) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(p.Body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(p.Body)), nil
		}
		r.ContentLength = int64(len(p.Body))
	}
	return r.WithContext(ctx)
}

// ValidMethod reports whether method is a syntactically valid HTTP
// method token (RFC 7230 section 3.2.6).
func ValidMethod(method string) bool {
	return method != "" && strings.IndexFunc(method, func(r rune) bool {
		return !httpguts.IsTokenRune(r)
	}) == -1
}

// See RFC 7617: the user-id and password are joined by a single colon
// and base64 encoded, not URL encoded.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}

// removeEmptyPort strips the empty port in "host:" to "host" as
// mandated by RFC 3986 section 6.2.3.
func removeEmptyPort(host string) string {
	if strings.LastIndex(host, ":") > strings.LastIndex(host, "]") {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
