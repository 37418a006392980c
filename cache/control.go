// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Directives are the parsed Cache-Control directives of a response.
type Directives struct {
	NoStore        bool
	NoCache        bool
	MustRevalidate bool
	Public         bool
	Private        bool
	MaxAge         *time.Duration
}

// ParseCacheControl parses a Cache-Control header value. Unknown
// directives and malformed values are ignored.
func ParseCacheControl(value string) Directives {
	var d Directives
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, arg, hasArg := strings.Cut(part, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if hasArg {
			arg = strings.Trim(strings.TrimSpace(arg), `"`)
		}
		switch name {
		case "no-store":
			d.NoStore = true
		case "no-cache":
			d.NoCache = true
		case "must-revalidate":
			d.MustRevalidate = true
		case "public":
			d.Public = true
		case "private":
			d.Private = true
		case "max-age":
			if seconds, err := strconv.Atoi(arg); err == nil && seconds >= 0 {
				maxAge := time.Duration(seconds) * time.Second
				d.MaxAge = &maxAge
			}
		}
	}
	return d
}

// Cacheable reports whether a response with header h may be written
// to a cache. A response is cacheable unless its Cache-Control header
// carries no-cache or no-store.
func Cacheable(h http.Header) bool {
	for _, v := range h.Values("Cache-Control") {
		d := ParseCacheControl(v)
		if d.NoCache || d.NoStore {
			return false
		}
	}
	return true
}
