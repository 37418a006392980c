// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	urlpkg "net/url"
	"strings"
)

// ResolveURL appends route to the path of base.
//
// Exactly one slash separates the base path and the route, whatever
// slashes either side carries. An empty route yields a copy of base.
// A query string on the route is appended to the query of base. An
// absolute http or https route is returned as-is, and base may then be
// nil. Any other scheme-like prefix, as in "items:batchGet", is part of
// the route path. A route naming a host without a scheme is rejected.
func ResolveURL(base *urlpkg.URL, route string) (*urlpkg.URL, error) {
	r, err := urlpkg.Parse(route)
	if err != nil {
		return nil, err
	}
	switch {
	case r.Scheme == "http" || r.Scheme == "https":
		return r, nil
	case r.Host != "":
		return nil, fmt.Errorf("reqx/request: route %q names a host but no http or https scheme", route)
	case r.Scheme != "":
		if r, err = urlpkg.Parse("/" + route); err != nil {
			return nil, err
		}
	}
	if base == nil {
		return nil, fmt.Errorf("reqx/request: relative route %q with no base URL", route)
	}

	u := *base
	if base.User != nil {
		user := *base.User
		u.User = &user
	}
	if r.Path != "" {
		u.Path = joinPath(base.Path, r.Path)
		u.RawPath = ""
		if base.RawPath != "" || r.RawPath != "" {
			u.RawPath = joinPath(base.EscapedPath(), r.EscapedPath())
		}
	}
	if r.RawQuery != "" {
		if u.RawQuery == "" {
			u.RawQuery = r.RawQuery
		} else {
			u.RawQuery += "&" + r.RawQuery
		}
	}
	if r.Fragment != "" {
		u.Fragment = r.Fragment
		u.RawFragment = r.RawFragment
	}
	return &u, nil
}

func joinPath(base, route string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(route, "/")
}
