// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"net/http"
	"strings"

	"github.com/gogama/reqx/cache"
)

// Request builds a plan for method and route with opts, executes it,
// and returns the raw result.
//
// The result is nil with a nil error when the response had no body.
func (c *Client) Request(ctx context.Context, method, route string, opts ...Option) (*Result, error) {
	p, err := c.NewPlan(ctx, method, route, opts...)
	if err != nil {
		return nil, err
	}
	e, err := c.Do(p)
	if err != nil {
		return nil, err
	}
	return newResult(e), nil
}

// Send is like Request but discards the result.
func (c *Client) Send(ctx context.Context, method, route string, opts ...Option) error {
	_, err := c.Request(ctx, method, route, opts...)
	return err
}

// Get issues a GET for route.
func (c *Client) Get(ctx context.Context, route string, opts ...Option) (*Result, error) {
	return c.Request(ctx, http.MethodGet, route, opts...)
}

// Delete issues a DELETE for route.
func (c *Client) Delete(ctx context.Context, route string, opts ...Option) (*Result, error) {
	return c.Request(ctx, http.MethodDelete, route, opts...)
}

// Post issues a POST for route with the given body.
func (c *Client) Post(ctx context.Context, route string, body Body, opts ...Option) (*Result, error) {
	return c.Request(ctx, http.MethodPost, route, withBody(body, opts)...)
}

// Put issues a PUT for route with the given body.
func (c *Client) Put(ctx context.Context, route string, body Body, opts ...Option) (*Result, error) {
	return c.Request(ctx, http.MethodPut, route, withBody(body, opts)...)
}

// Patch issues a PATCH for route with the given body.
func (c *Client) Patch(ctx context.Context, route string, body Body, opts ...Option) (*Result, error) {
	return c.Request(ctx, http.MethodPatch, route, withBody(body, opts)...)
}

func withBody(body Body, opts []Option) []Option {
	all := make([]Option, 0, len(opts)+1)
	all = append(all, WithBody(body))
	return append(all, opts...)
}

// Head issues a HEAD for route and returns the response headers.
func (c *Client) Head(ctx context.Context, route string, opts ...Option) (http.Header, error) {
	p, err := c.NewPlan(ctx, http.MethodHead, route, opts...)
	if err != nil {
		return nil, err
	}
	e, err := c.Do(p)
	if err != nil {
		return nil, err
	}
	return e.Header(), nil
}

// Options issues an OPTIONS for route and returns the methods listed
// in the response's Allow header, in the order given.
func (c *Client) Options(ctx context.Context, route string, opts ...Option) ([]string, error) {
	p, err := c.NewPlan(ctx, http.MethodOptions, route, opts...)
	if err != nil {
		return nil, err
	}
	e, err := c.Do(p)
	if err != nil {
		return nil, err
	}
	return ParseAllow(e.Header()), nil
}

// ParseAllow returns the methods listed in the Allow header fields of
// h. Empty elements are skipped.
func ParseAllow(h http.Header) []string {
	var methods []string
	for _, v := range h.Values("Allow") {
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				methods = append(methods, m)
			}
		}
	}
	return methods
}

// Cached reads the response for method and route from the cache only,
// without going to the network.
//
// If the options attach criteria with the UseAge or
// ReloadReturnCacheDataWithAgeCheckIfError policy, the entry must be
// within the criteria's maximum age. A missing, stale or non-2xx entry
// is a CacheNotFound error, as is a client with no cache store.
func (c *Client) Cached(ctx context.Context, method, route string, opts ...Option) (*Result, error) {
	p, err := c.NewPlan(ctx, method, route, opts...)
	if err != nil {
		return nil, err
	}
	if c.Cache == nil {
		return nil, &ServiceError{Kind: CacheNotFound}
	}
	a := cache.Action{Kind: cache.ReadCacheFirstNoAgeCheck, MaxAge: cache.Infinite}
	if p.Cache != nil {
		switch p.Cache.Policy {
		case cache.UseAge, cache.ReloadReturnCacheDataWithAgeCheckIfError:
			a = cache.Action{Kind: cache.ReadCacheFirst, MaxAge: p.Cache.MaxAge}
		}
	}
	entry, err := cache.Read(p.Context(), c.Cache, p.CacheKey(), a)
	if err != nil {
		return nil, &ServiceError{Kind: Generic, Err: err}
	}
	if entry == nil {
		return nil, &ServiceError{Kind: CacheNotFound}
	}
	return entryResult(entry), nil
}

// Go executes the request asynchronously and passes its outcome to
// done, through the client's Deliverer when one is set.
func (c *Client) Go(ctx context.Context, method, route string, done func(*Result, error), opts ...Option) {
	go func() {
		r, err := c.Request(ctx, method, route, opts...)
		f := func() { done(r, err) }
		if c.Deliverer != nil {
			c.Deliverer.Deliver(f)
		} else {
			f()
		}
	}()
}
