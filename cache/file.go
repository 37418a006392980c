// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// A FileStore is a Store which keeps one JSON file per entry in a
// directory. Entries are written to a temporary file and renamed into
// place, so a concurrent reader sees either the old entry or the new
// one.
type FileStore struct {
	// Now returns the current time for freshness checks. If nil,
	// time.Now is used.
	Now func() time.Time

	dir string
}

// NewFileStore returns a FileStore rooted at dir, creating the
// directory if necessary.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the entries.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}

func (s *FileStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *FileStore) read(key string) (*Entry, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if !Usable(&e) {
		return nil, nil
	}
	return &e, nil
}

// Lookup implements Store.
func (s *FileStore) Lookup(_ context.Context, key string) (*Entry, error) {
	return s.read(key)
}

// LookupFresh implements Store.
func (s *FileStore) LookupFresh(_ context.Context, key string, maxAge time.Duration) (*Entry, error) {
	e, err := s.read(key)
	if e == nil || err != nil || !Fresh(e, maxAge, s.now()) {
		return nil, err
	}
	return e, nil
}

// Store implements Store.
func (s *FileStore) Store(_ context.Context, key string, e *Entry) error {
	if e == nil {
		return ErrNilEntry
	}
	c := *e
	if c.StoredAt.IsZero() {
		c.StoredAt = s.now()
	}
	data, err := json.Marshal(&c)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".entry-*")
	if err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(key))
}
