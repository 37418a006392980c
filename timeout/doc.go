// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for choosing the deadline applied
// to a request plan's network dispatch. A generic interface for timeout
// policies is provided, Policy, along with policy generating functions
// and built-in policies.
//
// A timeout set directly on a plan always takes precedence over the
// client's policy.
package timeout
