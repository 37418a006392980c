// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"net/http"
	"time"
)

// A Stage identifies how far a request has progressed when Decide is
// consulted.
type Stage int

const (
	// BeforeNetwork is the stage before anything has been attempted.
	BeforeNetwork Stage = iota
	// CacheMissed means the cache was read first and had no usable
	// entry.
	CacheMissed
	// NetworkFailed means the transport failed to produce a response.
	NetworkFailed
	// HTTPFailed means the server responded with a non-2xx status.
	HTTPFailed
	// Succeeded means the server responded with a 2xx status.
	Succeeded
)

var stageNames = []string{
	"BeforeNetwork",
	"CacheMissed",
	"NetworkFailed",
	"HTTPFailed",
	"Succeeded",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "Stage(?)"
	}
	return stageNames[s]
}

// An Outcome is the state of a request passed to Decide. StatusCode
// is meaningful only for HTTPFailed and Succeeded.
type Outcome struct {
	Stage      Stage
	StatusCode int
}

// A Kind is the type of an Action.
type Kind int

const (
	// GoToNetwork sends the request to the server.
	GoToNetwork Kind = iota
	// ReadCacheFirst reads an entry no older than Action.MaxAge before
	// going to the network.
	ReadCacheFirst
	// ReadCacheFirstNoAgeCheck reads an entry of any age before going
	// to the network.
	ReadCacheFirstNoAgeCheck
	// FallbackToCacheOnError replaces an error response by an entry no
	// older than Action.MaxAge, if there is one.
	FallbackToCacheOnError
	// Propagate returns the current outcome to the caller unchanged.
	Propagate
)

var kindNames = []string{
	"GoToNetwork",
	"ReadCacheFirst",
	"ReadCacheFirstNoAgeCheck",
	"FallbackToCacheOnError",
	"Propagate",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(?)"
	}
	return kindNames[k]
}

// An Action is the decision returned by Decide.
type Action struct {
	Kind   Kind
	MaxAge time.Duration
}

// Decide maps cache criteria, the availability of a store, and the
// outcome of a request so far, to the next action.
//
// Decide is a pure function. Network failures and the status codes
// 401, 403, 404 and 410 are never masked by a cache fallback.
func Decide(c Criteria, storeAvailable bool, o Outcome) Action {
	switch o.Stage {
	case BeforeNetwork:
		if !storeAvailable {
			return Action{Kind: GoToNetwork}
		}
		switch c.Policy {
		case UseAge:
			return Action{Kind: ReadCacheFirst, MaxAge: c.MaxAge}
		case ReturnCacheDataElseLoad:
			return Action{Kind: ReadCacheFirstNoAgeCheck, MaxAge: Infinite}
		default:
			return Action{Kind: GoToNetwork}
		}
	case CacheMissed:
		return Action{Kind: GoToNetwork}
	case HTTPFailed:
		if !storeAvailable || neverMasked(o.StatusCode) {
			return Action{Kind: Propagate}
		}
		switch c.Policy {
		case UseAgeReturnCacheDataIfError, ReloadReturnCacheDataIfError:
			return Action{Kind: FallbackToCacheOnError, MaxAge: Infinite}
		case ReloadReturnCacheDataWithAgeCheckIfError:
			return Action{Kind: FallbackToCacheOnError, MaxAge: c.MaxAge}
		default:
			return Action{Kind: Propagate}
		}
	default:
		return Action{Kind: Propagate}
	}
}

func neverMasked(statusCode int) bool {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusGone:
		return true
	default:
		return false
	}
}
