// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	const maxAge = 5 * time.Minute
	testCases := []struct {
		policy   Policy
		store    bool
		outcome  Outcome
		expected Action
	}{
		// Before the network.
		{UseAge, true, Outcome{Stage: BeforeNetwork}, Action{Kind: ReadCacheFirst, MaxAge: maxAge}},
		{ReturnCacheDataElseLoad, true, Outcome{Stage: BeforeNetwork}, Action{Kind: ReadCacheFirstNoAgeCheck, MaxAge: Infinite}},
		{UseAgeReturnCacheDataIfError, true, Outcome{Stage: BeforeNetwork}, Action{Kind: GoToNetwork}},
		{ReloadReturnCacheDataIfError, true, Outcome{Stage: BeforeNetwork}, Action{Kind: GoToNetwork}},
		{ReloadReturnCacheDataWithAgeCheckIfError, true, Outcome{Stage: BeforeNetwork}, Action{Kind: GoToNetwork}},
		{UseAge, false, Outcome{Stage: BeforeNetwork}, Action{Kind: GoToNetwork}},
		{ReturnCacheDataElseLoad, false, Outcome{Stage: BeforeNetwork}, Action{Kind: GoToNetwork}},
		// Cache miss.
		{UseAge, true, Outcome{Stage: CacheMissed}, Action{Kind: GoToNetwork}},
		{ReturnCacheDataElseLoad, true, Outcome{Stage: CacheMissed}, Action{Kind: GoToNetwork}},
		// Network failures never fall back.
		{UseAge, true, Outcome{Stage: NetworkFailed}, Action{Kind: Propagate}},
		{UseAgeReturnCacheDataIfError, true, Outcome{Stage: NetworkFailed}, Action{Kind: Propagate}},
		{ReloadReturnCacheDataIfError, true, Outcome{Stage: NetworkFailed}, Action{Kind: Propagate}},
		{ReloadReturnCacheDataWithAgeCheckIfError, true, Outcome{Stage: NetworkFailed}, Action{Kind: Propagate}},
		// HTTP failures.
		{UseAge, true, Outcome{Stage: HTTPFailed, StatusCode: 500}, Action{Kind: Propagate}},
		{ReturnCacheDataElseLoad, true, Outcome{Stage: HTTPFailed, StatusCode: 500}, Action{Kind: Propagate}},
		{UseAgeReturnCacheDataIfError, true, Outcome{Stage: HTTPFailed, StatusCode: 500}, Action{Kind: FallbackToCacheOnError, MaxAge: Infinite}},
		{ReloadReturnCacheDataIfError, true, Outcome{Stage: HTTPFailed, StatusCode: 503}, Action{Kind: FallbackToCacheOnError, MaxAge: Infinite}},
		{ReloadReturnCacheDataWithAgeCheckIfError, true, Outcome{Stage: HTTPFailed, StatusCode: 429}, Action{Kind: FallbackToCacheOnError, MaxAge: maxAge}},
		{ReloadReturnCacheDataIfError, false, Outcome{Stage: HTTPFailed, StatusCode: 500}, Action{Kind: Propagate}},
		// Success.
		{UseAge, true, Outcome{Stage: Succeeded, StatusCode: 200}, Action{Kind: Propagate}},
		{ReloadReturnCacheDataIfError, true, Outcome{Stage: Succeeded, StatusCode: 204}, Action{Kind: Propagate}},
	}
	for _, testCase := range testCases {
		name := fmt.Sprintf("%s/store=%t/%s/%d", testCase.policy, testCase.store, testCase.outcome.Stage, testCase.outcome.StatusCode)
		t.Run(name, func(t *testing.T) {
			actual := Decide(Criteria{Policy: testCase.policy, MaxAge: maxAge}, testCase.store, testCase.outcome)
			assert.Equal(t, testCase.expected, actual)
		})
	}
}

func TestDecide_NeverMasked(t *testing.T) {
	policies := []Policy{
		UseAge,
		UseAgeReturnCacheDataIfError,
		ReturnCacheDataElseLoad,
		ReloadReturnCacheDataIfError,
		ReloadReturnCacheDataWithAgeCheckIfError,
	}
	statuses := []int{
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusGone,
	}
	for _, p := range policies {
		for _, status := range statuses {
			a := Decide(Criteria{Policy: p, MaxAge: Infinite}, true, Outcome{Stage: HTTPFailed, StatusCode: status})
			assert.Equal(t, Propagate, a.Kind, "%s %d", p, status)
		}
	}
}

func TestPolicy(t *testing.T) {
	for i, name := range policyNames {
		p, err := ParsePolicy(name)
		require.NoError(t, err)
		assert.Equal(t, Policy(i), p)
		assert.Equal(t, name, p.String())
	}
	p, err := ParsePolicy("returncachedataelseload")
	require.NoError(t, err)
	assert.Equal(t, ReturnCacheDataElseLoad, p)
	_, err = ParsePolicy("sometimes")
	assert.EqualError(t, err, `reqx/cache: unknown policy "sometimes"`)
	assert.Equal(t, "Policy(9)", Policy(9).String())
	assert.Equal(t, "Stage(?)", Stage(-1).String())
	assert.Equal(t, "FallbackToCacheOnError", FallbackToCacheOnError.String())
}
