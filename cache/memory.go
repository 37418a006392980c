// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const memoryShards = 16

// A MemoryStore is a Store held in process memory. Keys are spread
// over a fixed number of shards, each with its own lock, so writes to
// different keys rarely contend.
//
// MemoryStore never evicts entries.
type MemoryStore struct {
	// Now returns the current time for freshness checks. If nil,
	// time.Now is used.
	Now func() time.Time

	shards [memoryShards]memoryShard
}

type memoryShard struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i].entries = make(map[string]*Entry)
	}
	return s
}

func (s *MemoryStore) shard(key string) *memoryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.shards[h.Sum32()%memoryShards]
}

func (s *MemoryStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *MemoryStore) get(key string) *Entry {
	sh := s.shard(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	e := sh.entries[key]
	if !Usable(e) {
		return nil
	}
	return e.Clone()
}

// Lookup implements Store.
func (s *MemoryStore) Lookup(_ context.Context, key string) (*Entry, error) {
	return s.get(key), nil
}

// LookupFresh implements Store.
func (s *MemoryStore) LookupFresh(_ context.Context, key string, maxAge time.Duration) (*Entry, error) {
	e := s.get(key)
	if e == nil || !Fresh(e, maxAge, s.now()) {
		return nil, nil
	}
	return e, nil
}

// Store implements Store.
func (s *MemoryStore) Store(_ context.Context, key string, e *Entry) error {
	if e == nil {
		return ErrNilEntry
	}
	c := e.Clone()
	if c.StoredAt.IsZero() {
		c.StoredAt = s.now()
	}
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.entries == nil {
		sh.entries = make(map[string]*Entry)
	}
	sh.entries[key] = c
	return nil
}

// Delete removes the entry stored under key.
func (s *MemoryStore) Delete(key string) {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.entries, key)
}

// Len returns the number of stored entries, usable or not.
func (s *MemoryStore) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		n += len(sh.entries)
		sh.mu.RUnlock()
	}
	return n
}
