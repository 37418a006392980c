// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/reqx/cache"
	"github.com/gogama/reqx/transient"
)

// A State is a step of the plan execution state machine.
type State int

const (
	// CacheCheck is the state in which the response cache is consulted
	// before going to the network.
	CacheCheck State = iota
	// NetworkDispatch is the state in which the request is sent and
	// the response read.
	NetworkDispatch
	// ErrorClassification is the state in which the response status
	// is classified as success or HTTP error.
	ErrorClassification
	// CacheFallback is the state in which a cached response is looked
	// for to replace an HTTP error.
	CacheFallback
	// Decode is the state in which the result is handed over for
	// decoding.
	Decode
	// Done is the final state.
	Done
)

var stateNames = [...]string{
	CacheCheck:          "CacheCheck",
	NetworkDispatch:     "NetworkDispatch",
	ErrorClassification: "ErrorClassification",
	CacheFallback:       "CacheFallback",
	Decode:              "Decode",
	Done:                "Done",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(?)"
}

// An Execution represents the state of a single Plan execution.
//
// When a request plan execution is requested, an Execution is created
// for it. The Execution is updated as the plan execution moves through
// its states and is ultimately returned as the return value of the
// plan execution.
//
// Timeout policies and event handlers may set values on an Execution
// using its SetValue method and read them back using the Value method.
// However, they should treat the structure's exported field values as
// immutable, as the execution state is vital to the correct
// functioning of the plan execution logic. Limited exceptions include
// making reasonable changes to the http.Request before it is sent (for
// example to sign it).
type Execution struct {
	// Plan specifies the request plan being executed. It is never nil.
	Plan *Plan

	// ID uniquely identifies the execution in log output.
	ID string

	// State is the current state of the execution.
	State State

	// Start is the start time of the execution.
	Start time.Time

	// End is the end time of the execution. It contains the zero value
	// until the execution ends.
	End time.Time

	// CacheKey is the key of the plan in the response cache. It is
	// empty if the cache takes no part in the execution.
	CacheKey string

	// CacheEntry is the cached response used to satisfy the execution,
	// either before dispatch or as a fallback after an HTTP error. It
	// is nil when the response came from the network.
	CacheEntry *cache.Entry

	// FromCache indicates whether the result was taken from the cache.
	FromCache bool

	// Request specifies the HTTP request sent, or about to be sent.
	// It is nil if the execution never reached the network.
	Request *http.Request

	// Response specifies the HTTP response received. It is nil if the
	// network was not used or the request ended in a transport error.
	// Its body is always closed; use Body instead.
	Response *http.Response

	// Err indicates the error ending the execution so far. Transport
	// errors have the type *url.Error. HTTP error statuses and decode
	// failures are reported by the client as its own error type.
	Err error

	// Body is the complete response body, or the cached body when
	// FromCache is true.
	Body []byte

	data context.Context
}

// StatusCode returns the status code of the result. It is the cached
// status when FromCache is true and the network status otherwise. If
// there is no response, 0 is returned.
func (e *Execution) StatusCode() int {
	if e.FromCache && e.CacheEntry != nil {
		return e.CacheEntry.StatusCode
	}
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// Header returns the response headers of the result, following the
// same rules as StatusCode. A nil header is returned if there is no
// response.
func (e *Execution) Header() http.Header {
	if e.FromCache && e.CacheEntry != nil {
		return e.CacheEntry.Header
	}
	if e.Response == nil {
		return nil
	}
	return e.Response.Header
}

// Duration returns the duration of the execution.
//
// If the execution has not yet started, the duration is zero. If the
// execution has ended, the duration returned is equal to End minus
// Start. Otherwise, it is equal to the current time minus Start.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return 0
	} else if !e.Ended() {
		return time.Since(e.Start)
	}
	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// Timeout indicates whether Err currently contains a non-nil value
// which indicates a timeout.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// Canceled indicates whether Err currently contains a non-nil value
// which indicates the plan's context was canceled.
func (e *Execution) Canceled() bool {
	return transient.Categorize(e.Err) == transient.Canceled
}

// SetValue allows event handlers to store arbitrary data in the
// execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue: it may not be nil, it must be comparable, and it
// should not be of a built-in type.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}
	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	if e.data == nil {
		return nil
	}
	return e.data.Value(key)
}
