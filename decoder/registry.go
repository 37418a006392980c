// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package decoder maps response MIME types to body decoders.
package decoder

import (
	"mime"
	"sort"
	"strings"
	"sync"
)

// A Decoder decodes a response body into the value pointed to by v.
type Decoder interface {
	Decode(data []byte, v interface{}) error
}

// The DecoderFunc type is an adapter to allow the use of ordinary
// functions as decoders. If f is a function with the appropriate
// signature, DecoderFunc(f) is a Decoder that calls f.
type DecoderFunc func(data []byte, v interface{}) error

// Decode calls f(data, v).
func (f DecoderFunc) Decode(data []byte, v interface{}) error {
	return f(data, v)
}

// A Registry is a table of decoders keyed by media type. It is safe
// for concurrent use.
//
// The zero value is an empty registry.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

// NewRegistry returns a registry holding the built-in decoders for
// JSON, YAML, XML, plain text and binary bodies.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register("application/json", JSON)
	r.Register("text/json", JSON)
	r.Register("application/yaml", YAML)
	r.Register("application/x-yaml", YAML)
	r.Register("text/yaml", YAML)
	r.Register("application/xml", XML)
	r.Register("text/xml", XML)
	r.Register("text/plain", Text)
	r.Register("application/octet-stream", Binary)
	return r
}

// Register adds d to the registry under mimeType, replacing any
// decoder previously registered for the same media type. Parameters
// such as charset are ignored.
func (r *Registry) Register(mimeType string, d Decoder) {
	if d == nil {
		panic("reqx/decoder: nil decoder")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.decoders == nil {
		r.decoders = make(map[string]Decoder)
	}
	r.decoders[MediaType(mimeType)] = d
}

// Lookup returns the decoder for mimeType.
//
// If no decoder is registered for the exact media type, and the media
// type has a structured syntax suffix such as "+json", the decoder
// registered for "application/<suffix>" is returned. So a decoder
// registered for "application/json" also decodes
// "application/problem+json".
func (r *Registry) Lookup(mimeType string) (Decoder, bool) {
	mt := MediaType(mimeType)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.decoders[mt]; ok {
		return d, true
	}
	if i := strings.LastIndexByte(mt, '+'); i >= 0 && i < len(mt)-1 {
		d, ok := r.decoders["application/"+mt[i+1:]]
		return d, ok
	}
	return nil, false
}

// MediaTypes returns the registered media types in sorted order.
func (r *Registry) MediaTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.decoders))
	for mt := range r.decoders {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// MediaType strips parameters from a Content-Type value and lower
// cases the remainder, so "Application/JSON; charset=utf-8" becomes
// "application/json".
func MediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
		mt = strings.ToLower(strings.TrimSpace(mt))
	}
	return mt
}
