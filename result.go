// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"net/http"

	"github.com/gogama/reqx/cache"
	"github.com/gogama/reqx/decoder"
	"github.com/gogama/reqx/request"
)

// A Result is the raw outcome of a successful request. A nil *Result
// with a nil error means the response had no content.
type Result struct {
	// MIMEType is the media type of Body, without parameters.
	MIMEType string
	// Body is the complete response body.
	Body []byte
	// StatusCode is the HTTP status of the response. It is the stored
	// status when FromCache is true.
	StatusCode int
	// Header holds the response headers.
	Header http.Header
	// FromCache reports whether the result was served by the cache.
	FromCache bool
}

func newResult(e *request.Execution) *Result {
	if len(e.Body) == 0 {
		return nil
	}
	r := &Result{
		Body:       e.Body,
		StatusCode: e.StatusCode(),
		Header:     e.Header(),
		FromCache:  e.FromCache,
	}
	if e.FromCache && e.CacheEntry.MIMEType != "" {
		r.MIMEType = e.CacheEntry.MIMEType
	} else {
		r.MIMEType = decoder.MediaType(r.Header.Get("Content-Type"))
	}
	return r
}

func entryResult(entry *cache.Entry) *Result {
	if len(entry.Body) == 0 {
		return nil
	}
	mimeType := entry.MIMEType
	if mimeType == "" {
		mimeType = decoder.MediaType(entry.Header.Get("Content-Type"))
	}
	return &Result{
		MIMEType:   mimeType,
		Body:       entry.Body,
		StatusCode: entry.StatusCode,
		Header:     entry.Header,
		FromCache:  true,
	}
}

// Decode decodes r into a value of type T using the decoder registered
// in reg for r's media type. A nil reg means the built-in registry.
//
// A nil r (no content) is a Generic error, as is a decoder failure,
// which is wrapped. A media type with no decoder is an
// UnrecognizedEncoding error.
func Decode[T any](reg *decoder.Registry, r *Result) (T, error) {
	var v T
	if r == nil {
		return v, &ServiceError{Kind: Generic, Err: errNoContent}
	}
	if reg == nil {
		reg = defaultDecoders
	}
	d, ok := reg.Lookup(r.MIMEType)
	if !ok {
		return v, &ServiceError{
			Kind:        UnrecognizedEncoding,
			StatusCode:  r.StatusCode,
			Body:        r.Body,
			ContentType: r.Header.Get("Content-Type"),
			MIMEType:    r.MIMEType,
		}
	}
	if err := d.Decode(r.Body, &v); err != nil {
		var zero T
		return zero, &ServiceError{Kind: Generic, MIMEType: r.MIMEType, Err: err}
	}
	return v, nil
}

// DecodeOptional is like Decode except that a nil r yields a nil
// pointer and no error.
func DecodeOptional[T any](reg *decoder.Registry, r *Result) (*T, error) {
	if r == nil {
		return nil, nil
	}
	v, err := Decode[T](reg, r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Fetch issues a request through c and decodes the result with the
// client's decoders.
func Fetch[T any](ctx context.Context, c *Client, method, route string, opts ...Option) (T, error) {
	r, err := c.Request(ctx, method, route, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](c.decoders(), r)
}

// FetchOptional is like Fetch but decodes with DecodeOptional.
func FetchOptional[T any](ctx context.Context, c *Client, method, route string, opts ...Option) (*T, error) {
	r, err := c.Request(ctx, method, route, opts...)
	if err != nil {
		return nil, err
	}
	return DecodeOptional[T](c.decoders(), r)
}
