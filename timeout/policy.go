// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"strings"
	"time"

	"github.com/gogama/reqx/request"
)

// A Policy decides the timeout to apply to the network dispatch of a
// request plan execution. The timeout covers sending the request and
// reading the whole response body.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout for the dispatch of e. A value of
	// zero or less means no timeout.
	Timeout(e *request.Execution) time.Duration
}

// DefaultPolicy is the default timeout policy. It sets a fixed timeout
// of 5 seconds.
var DefaultPolicy Policy = Fixed(5 * time.Second)

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(1<<63 - 1)

// Fixed constructs a timeout policy that always returns d.
func Fixed(d time.Duration) Policy {
	return fixed(d)
}

type fixed time.Duration

func (f fixed) Timeout(_ *request.Execution) time.Duration {
	return time.Duration(f)
}

// ByMethod constructs a timeout policy that looks up the timeout by
// the plan's HTTP method, falling back to def for methods which are
// not listed. Method names are matched case-insensitively.
//
// For example, to give uploads more time than reads:
//
//	p := ByMethod(Fixed(2*time.Second), map[string]time.Duration{
//		"POST": 30 * time.Second,
//		"PUT":  30 * time.Second,
//	})
func ByMethod(def Policy, timeouts map[string]time.Duration) Policy {
	if def == nil {
		def = DefaultPolicy
	}
	m := make(map[string]time.Duration, len(timeouts))
	for method, d := range timeouts {
		m[strings.ToUpper(method)] = d
	}
	return byMethod{def: def, timeouts: m}
}

type byMethod struct {
	def      Policy
	timeouts map[string]time.Duration
}

func (p byMethod) Timeout(e *request.Execution) time.Duration {
	if e.Plan != nil {
		if d, ok := p.timeouts[strings.ToUpper(e.Plan.Method)]; ok {
			return d
		}
	}
	return p.def.Timeout(e)
}
