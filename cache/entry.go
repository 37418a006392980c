// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"bytes"
	"net/http"
	"time"
)

// An Entry is a response held in a cache store.
type Entry struct {
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header,omitempty"`
	MIMEType   string      `json:"mime_type,omitempty"`
	Body       []byte      `json:"body,omitempty"`
	StoredAt   time.Time   `json:"stored_at"`
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	c.Header = e.Header.Clone()
	if e.Body != nil {
		c.Body = bytes.Clone(e.Body)
	}
	return &c
}

// Usable reports whether e may be returned by a cache read. Entries
// recording a non-2xx response are never usable.
func Usable(e *Entry) bool {
	return e != nil && e.StatusCode >= 200 && e.StatusCode <= 299
}

// Fresh reports whether e is no older than maxAge at time now.
//
// The age of an entry is measured from the Date header of the stored
// response. An entry with no Date header, or one that cannot be
// parsed, is always fresh, as is any entry when maxAge is Infinite.
func Fresh(e *Entry, maxAge time.Duration, now time.Time) bool {
	if maxAge == Infinite {
		return true
	}
	date, ok := responseDate(e.Header)
	if !ok {
		return true
	}
	return now.Sub(date) <= maxAge
}

func responseDate(h http.Header) (time.Time, bool) {
	v := h.Get("Date")
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(http.TimeFormat, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
