// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"errors"
	"net/url"
	"time"
)

// ErrNilEntry is returned when a nil entry is passed to Store.
var ErrNilEntry = errors.New("reqx/cache: nil entry")

// A Store holds cached responses keyed by request.
//
// A lookup which finds nothing returns a nil Entry and a nil error.
// Implementations must be safe for concurrent use, and must never
// return an entry which is not Usable.
type Store interface {
	// Lookup returns the entry stored under key, regardless of its age.
	Lookup(ctx context.Context, key string) (*Entry, error)
	// LookupFresh returns the entry stored under key if it is no older
	// than maxAge.
	LookupFresh(ctx context.Context, key string, maxAge time.Duration) (*Entry, error)
	// Store writes e under key, replacing any previous entry.
	Store(ctx context.Context, key string, e *Entry) error
}

// Key returns the cache key of a request: its method and URL joined by
// a colon.
func Key(method string, u *url.URL) string {
	if u == nil {
		return method + ":"
	}
	return method + ":" + u.String()
}

// Read performs the cache read called for by a ReadCacheFirst,
// ReadCacheFirstNoAgeCheck or FallbackToCacheOnError action. It
// returns nil if the store has no usable entry.
func Read(ctx context.Context, s Store, key string, a Action) (*Entry, error) {
	var e *Entry
	var err error
	if a.Kind == ReadCacheFirstNoAgeCheck || a.MaxAge == Infinite {
		e, err = s.Lookup(ctx, key)
	} else {
		e, err = s.LookupFresh(ctx, key, a.MaxAge)
	}
	if err != nil || !Usable(e) {
		return nil, err
	}
	return e, nil
}
