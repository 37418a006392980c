// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package query encodes Go values as URL query strings.
//
// Values are first flattened by package encoder; every resulting field
// becomes one name/value Item. Names and values are percent-encoded
// using the unreserved character set [A-Za-z0-9-._~], and items are
// joined with '&' in field order.
package query

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/gogama/reqx/encoder"
)

// ErrUnsupportedValue is returned, wrapped, when a value contains a
// leaf which only has meaning in a multipart body, namely an
// encoder.FileRef or an encoder.MixedBody.
var ErrUnsupportedValue = errors.New("reqx/query: value cannot be query encoded")

// An Item is one query parameter.
type Item struct {
	Name  string
	Value string
}

// An Encoder converts Go values to query parameters. The zero value
// uses encoder.RepeatKey for slices and encoder.DefaultDateLayout for
// dates.
type Encoder struct {
	Arrays     encoder.ArrayEncoding
	DateLayout string
}

// Items encodes v into an ordered list of query items.
//
// Null leaves become items with an empty value. Binary leaves are
// encoded with standard base64.
func (e Encoder) Items(v interface{}) ([]Item, error) {
	fields, err := encoder.Encode(v, encoder.Options{
		Arrays:     e.Arrays,
		DateLayout: e.DateLayout,
	})
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(fields))
	for _, f := range fields {
		var value string
		switch f.Value.Kind {
		case encoder.Null:
		case encoder.Binary:
			value = base64.StdEncoding.EncodeToString(f.Value.Data)
		case encoder.File, encoder.Mixed:
			return nil, fmt.Errorf("%w: %s field %q", ErrUnsupportedValue, f.Value.Kind, f.Path)
		default:
			value = f.Value.Text
		}
		items = append(items, Item{Name: f.Path, Value: value})
	}
	return items, nil
}

// String encodes v into a percent-encoded query string without a
// leading '?'.
func (e Encoder) String(v interface{}) (string, error) {
	items, err := e.Items(v)
	if err != nil {
		return "", err
	}
	return Join(items), nil
}

// Bytes is like String but returns the UTF-8 bytes of the query
// string, suitable for an application/x-www-form-urlencoded body.
func (e Encoder) Bytes(v interface{}) ([]byte, error) {
	s, err := e.String(v)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Join percent-encodes items and joins them with '&'.
func Join(items []Item) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(Escape(item.Name))
		b.WriteByte('=')
		b.WriteString(Escape(item.Value))
	}
	return b.String()
}

// FromValues converts url.Values into items, sorted by name as
// url.Values.Encode does.
func FromValues(values url.Values) []Item {
	if len(values) == 0 {
		return nil
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	var items []Item
	for _, name := range names {
		for _, value := range values[name] {
			items = append(items, Item{Name: name, Value: value})
		}
	}
	return items
}

// Parse splits a query string into items, preserving their order and
// any repeated names. It is the inverse of Join. A leading '?' is
// ignored.
func Parse(s string) ([]Item, error) {
	s = strings.TrimPrefix(s, "?")
	var items []Item
	for s != "" {
		var pair string
		pair, s, _ = strings.Cut(s, "&")
		if pair == "" {
			continue
		}
		rawName, rawValue, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(rawName)
		if err != nil {
			return nil, err
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{Name: name, Value: value})
	}
	return items, nil
}
