// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"syscall"
)

// A Category is the category of a transport error.
type Category int

const (
	// Not indicates an error which is none of the categories below,
	// or no error at all.
	Not Category = iota
	// Timeout indicates a client-side timeout. Categorize returns
	// Timeout if the error or any of its wrapped causes has a Timeout
	// method reporting true. This includes context.DeadlineExceeded.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (syscall.ECONNREFUSED). The service may be starting up.
	ConnRefused
	// ConnReset indicates the remote host reset a previously active
	// connection (syscall.ECONNRESET).
	ConnReset
	// Canceled indicates the request's context was canceled by the
	// caller (context.Canceled).
	Canceled
)

var categoryNames = [...]string{
	Not:         "not",
	Timeout:     "timeout",
	ConnRefused: "conn_refused",
	ConnReset:   "conn_reset",
	Canceled:    "canceled",
}

// String returns a short snake_case name for the category, suitable as
// a metric label value.
func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Categorize returns the category of err. The checks are made in the
// order Timeout, Canceled, ConnReset, ConnRefused, so an error which
// is both a timeout and a reset is a Timeout.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var t hasTimeout
	if errors.As(err, &t) && t.Timeout() {
		return Timeout
	}

	if errors.Is(err, context.Canceled) {
		return Canceled
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		}
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
