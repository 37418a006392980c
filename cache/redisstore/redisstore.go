// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package redisstore implements cache.Store on Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gogama/reqx/cache"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix is prepended to every key when Store.Prefix is empty.
const DefaultPrefix = "reqx:cache:"

// A Store keeps cache entries as JSON strings in Redis.
type Store struct {
	// Prefix is prepended to cache keys to form Redis keys. If empty,
	// DefaultPrefix is used.
	Prefix string

	// TTL is the Redis expiration set on every entry. Zero means
	// entries do not expire. Expiration is independent of the maximum
	// age checked by LookupFresh.
	TTL time.Duration

	// Now returns the current time for freshness checks. If nil,
	// time.Now is used.
	Now func() time.Time

	client redis.Cmdable
}

// New returns a store using client.
func New(client redis.Cmdable) *Store {
	return &Store{client: client}
}

// Connect creates a Redis client from a redis:// URL or a bare
// host:port address.
func Connect(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("reqx/redisstore: parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

func (s *Store) key(key string) string {
	if s.Prefix == "" {
		return DefaultPrefix + key
	}
	return s.Prefix + key
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) get(ctx context.Context, key string) (*cache.Entry, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var e cache.Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	if !cache.Usable(&e) {
		return nil, nil
	}
	return &e, nil
}

// Lookup implements cache.Store.
func (s *Store) Lookup(ctx context.Context, key string) (*cache.Entry, error) {
	return s.get(ctx, key)
}

// LookupFresh implements cache.Store.
func (s *Store) LookupFresh(ctx context.Context, key string, maxAge time.Duration) (*cache.Entry, error) {
	e, err := s.get(ctx, key)
	if e == nil || err != nil || !cache.Fresh(e, maxAge, s.now()) {
		return nil, err
	}
	return e, nil
}

// Store implements cache.Store.
func (s *Store) Store(ctx context.Context, key string, e *cache.Entry) error {
	if e == nil {
		return cache.ErrNilEntry
	}
	c := *e
	if c.StoredAt.IsZero() {
		c.StoredAt = s.now()
	}
	raw, err := json.Marshal(&c)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), raw, s.TTL).Err()
}
