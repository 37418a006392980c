// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// A Policy selects how a request interacts with the cache.
type Policy int

const (
	// UseAge reads the cache first and uses an entry only if it is
	// younger than the maximum age. Otherwise the request goes to the
	// network.
	UseAge Policy = iota
	// UseAgeReturnCacheDataIfError always goes to the network first. If
	// the server responds with an error, any cached entry is returned
	// instead, regardless of its age.
	UseAgeReturnCacheDataIfError
	// ReturnCacheDataElseLoad uses any cached entry regardless of its
	// age, and goes to the network only on a miss.
	ReturnCacheDataElseLoad
	// ReloadReturnCacheDataIfError always goes to the network first. If
	// the server responds with an error, any cached entry is returned
	// instead, regardless of its age.
	ReloadReturnCacheDataIfError
	// ReloadReturnCacheDataWithAgeCheckIfError always goes to the
	// network first. If the server responds with an error, a cached
	// entry younger than the maximum age is returned instead.
	ReloadReturnCacheDataWithAgeCheckIfError
)

var policyNames = []string{
	"UseAge",
	"UseAgeReturnCacheDataIfError",
	"ReturnCacheDataElseLoad",
	"ReloadReturnCacheDataIfError",
	"ReloadReturnCacheDataWithAgeCheckIfError",
}

// String returns the name of the policy.
func (p Policy) String() string {
	if p < 0 || int(p) >= len(policyNames) {
		return fmt.Sprintf("Policy(%d)", int(p))
	}
	return policyNames[p]
}

// ParsePolicy returns the policy whose name matches s, ignoring case.
func ParsePolicy(s string) (Policy, error) {
	for i, name := range policyNames {
		if strings.EqualFold(name, s) {
			return Policy(i), nil
		}
	}
	return 0, fmt.Errorf("reqx/cache: unknown policy %q", s)
}

// Infinite is a maximum age which disables staleness checking.
const Infinite = time.Duration(math.MaxInt64)

// Criteria attach a cache policy and a maximum age to a request.
type Criteria struct {
	Policy Policy
	MaxAge time.Duration
}
