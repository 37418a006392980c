// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies transport errors from request
// execution: timeouts, refused and reset connections, and cancellation.
// The client uses it to tell a timeout from a cancellation, and the
// metrics and logging layers use it to label failures.
//
// Package transient depends only on the standard library.
package transient
