// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the types Plan, which describes one logical
HTTP request, and Execution, which records the progress of a Plan
through the client's state machine.

A Plan looks like a stripped-down http.Request with the server-side
fields removed and the body replaced by a pre-buffered []byte. On top
of that it carries optional cache criteria and a per-request timeout:

	base, _ := url.Parse("https://api.example.com/v1/")
	u, err := request.ResolveURL(base, "/items")
	...
	p, err := request.NewPlanURL(ctx, "GET", u, nil)
	...
	p.Cache = &cache.Criteria{Policy: cache.UseAge, MaxAge: time.Minute}
	e, err := client.Do(p)

An Execution moves through the states CacheCheck, NetworkDispatch,
ErrorClassification, CacheFallback (only after an HTTP error), Decode
and Done. It is both the output of the client's Do method and the input
to the event handlers the client fires at each transition. You will
typically not allocate Execution values yourself.
*/
package request
