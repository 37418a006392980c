// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to extend it with custom
// functionality such as metrics, tracing or request signing.
type Event int

const (
	// BeforeExecutionStart identifies the event that occurs before the
	// plan execution starts.
	//
	// When Client fires BeforeExecutionStart, the execution's plan,
	// ID and start time are set, and its state is CacheCheck.
	BeforeExecutionStart Event = iota
	// AfterCacheCheck identifies the event that occurs after the cache
	// was read ahead of the network.
	//
	// It fires only when the plan has cache criteria, the client has a
	// store, and the policy calls for a cache read first. If the cache
	// satisfied the request, the execution's FromCache field is true
	// and no network events follow.
	AfterCacheCheck
	// BeforeDispatch identifies the event that occurs before the HTTP
	// request is sent.
	//
	// When Client fires BeforeDispatch, the execution's request field
	// is set to the HTTP request that WILL BE sent after all
	// BeforeDispatch handlers have finished. Handlers may modify the
	// request, but should clone its URL and Header before changing
	// them, as these initially reference the same fields in the plan.
	BeforeDispatch
	// BeforeReadBody identifies the event that occurs after the
	// request has resulted in an HTTP response (as opposed to an error)
	// but before the response body is read and buffered.
	//
	// Handlers may replace the execution's response field, for example
	// to decompress the body.
	BeforeReadBody
	// AfterDispatch identifies the event that occurs after the network
	// dispatch ends, whether it succeeded or not.
	//
	// When Client fires AfterDispatch, either the response field or
	// the error field or both are set. Both are set only when reading
	// the body failed.
	AfterDispatch
	// AfterCacheStore identifies the event that occurs after a
	// successful response was written to the cache store. The error
	// field is untouched: a failed write is logged and also reported
	// through this event via the execution value CacheStoreErrKey.
	AfterCacheStore
	// AfterCacheFallback identifies the event that occurs after the
	// cache was consulted to replace an HTTP error response. If an
	// entry was found, FromCache is true and the error field is nil.
	AfterCacheFallback
	// AfterExecutionEnd identifies the event that occurs after the plan
	// execution ends.
	//
	// When Client fires AfterExecutionEnd, the execution's state is
	// Done, its end time is set, and its error field holds the error
	// the client will return, if any.
	AfterExecutionEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel
	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeExecutionStart",
	"AfterCacheCheck",
	"BeforeDispatch",
	"BeforeReadBody",
	"AfterDispatch",
	"AfterCacheStore",
	"AfterCacheFallback",
	"AfterExecutionEnd",
}

// Events returns a slice containing all events which can occur in a
// request plan execution by Client, in the order in which they would
// occur.
func Events() []Event {
	evts := make([]Event, numEvents)
	for i := range evts {
		evts[i] = Event(i)
	}
	return evts
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}

// cacheStoreErrKey is the type of CacheStoreErrKey.
type cacheStoreErrKey struct{}

// CacheStoreErrKey is the execution value key under which the client
// records the error of a failed cache write, for handlers of the
// AfterCacheStore event.
var CacheStoreErrKey = cacheStoreErrKey{}
