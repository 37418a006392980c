// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"net/http"

	"github.com/gogama/reqx/request"
)

// An HTTPDoer implements a Do method in the same manner as the Go
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the Go
	// standard library http.Client.
	Do(r *http.Request) (*http.Response, error)
}

// A Doer executes request plans.
type Doer interface {
	Do(p *request.Plan) (*request.Execution, error)
}

// A Requester issues a request for a route and returns the raw result.
type Requester interface {
	Request(ctx context.Context, method, route string, opts ...Option) (*Result, error)
}

// An IdleCloser closes idle connections. Both http.Client and Client
// implement it.
type IdleCloser interface {
	CloseIdleConnections()
}

// An Executor is the full interface of Client used by code that wants
// to accept a substitute, for example in tests.
type Executor interface {
	Doer
	Requester
	IdleCloser
}

// A Limiter throttles dispatches. Wait blocks until a dispatch may
// proceed or ctx is done. *rate.Limiter from golang.org/x/time/rate
// implements it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// A Deliverer runs result callbacks for Client.Go on an execution
// context chosen by the caller, such as a UI or event loop.
type Deliverer interface {
	Deliver(f func())
}

// The DelivererFunc type is an adapter to allow the use of ordinary
// functions as Deliverers.
type DelivererFunc func(f func())

// Deliver calls d(f).
func (d DelivererFunc) Deliver(f func()) {
	d(f)
}

// A ChanDeliverer delivers callbacks by sending them on the channel.
// The owner of the channel runs them by receiving and calling them:
//
//	d := make(reqx.ChanDeliverer)
//	client.Deliverer = d
//	...
//	for f := range d {
//		f()
//	}
type ChanDeliverer chan func()

// Deliver sends f on the channel, blocking until it is received.
func (d ChanDeliverer) Deliver(f func()) {
	d <- f
}
