// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gogama/reqx/cache"
	"github.com/gogama/reqx/query"
	"github.com/gogama/reqx/request"
)

// An Option customises a request plan before it is executed. Options
// run in the order given, after the client's default headers are set.
type Option func(p *request.Plan, enc Encoders) error

// WithQuery appends values to the URL query, keys in sorted order.
func WithQuery(values url.Values) Option {
	return func(p *request.Plan, _ Encoders) error {
		appendQuery(p.URL, query.Join(query.FromValues(values)))
		return nil
	}
}

// WithQueryObject appends v, structurally encoded by the client's
// query encoder, to the URL query.
func WithQueryObject(v interface{}) Option {
	return func(p *request.Plan, enc Encoders) error {
		s, err := enc.Query.String(v)
		if err != nil {
			return err
		}
		appendQuery(p.URL, s)
		return nil
	}
}

// WithHeader sets a request header, replacing any value set by the
// client's defaults or an earlier option.
func WithHeader(name, value string) Option {
	return func(p *request.Plan, _ Encoders) error {
		return p.SetHeader(name, value)
	}
}

// WithBasicAuth sets the Authorization header for HTTP Basic
// Authentication.
func WithBasicAuth(username, password string) Option {
	return func(p *request.Plan, _ Encoders) error {
		p.SetBasicAuth(username, password)
		return nil
	}
}

// WithBody encodes b as the request body and sets the Content-Type
// header it declares. A nil Body is the same as Empty.
func WithBody(b Body) Option {
	return func(p *request.Plan, enc Encoders) error {
		if b == nil {
			p.Body = nil
			return nil
		}
		data, contentType, err := b.Encode(enc)
		if err != nil {
			return err
		}
		p.Body = data
		if contentType != "" {
			p.Header.Set("Content-Type", contentType)
		}
		return nil
	}
}

// WithCache attaches caching criteria to the request.
func WithCache(c cache.Criteria) Option {
	return func(p *request.Plan, _ Encoders) error {
		if c.MaxAge < 0 {
			return fmt.Errorf("reqx: negative cache max age %s", c.MaxAge)
		}
		p.Cache = &c
		return nil
	}
}

// WithTimeout sets the request's timeout, overriding the client's
// timeout policy.
func WithTimeout(d time.Duration) Option {
	return func(p *request.Plan, _ Encoders) error {
		if d <= 0 {
			return fmt.Errorf("reqx: non-positive timeout %s", d)
		}
		p.Timeout = d
		return nil
	}
}

func appendQuery(u *url.URL, q string) {
	switch {
	case q == "":
	case u.RawQuery == "":
		u.RawQuery = q
	default:
		u.RawQuery += "&" + q
	}
}
