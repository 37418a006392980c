// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package reqx provides an HTTP client with a typed request facade,
structural request encoders, a MIME-keyed response decoder registry and
a policy-driven response cache.

Create a Client to begin making requests. The zero value works, but
most programs set a base URL that routes are resolved against:

	base, _ := url.Parse("https://api.example.com/v1")
	client := &reqx.Client{BaseURL: base}

	res, err := client.Get(ctx, "items", reqx.WithQuery(url.Values{"page": {"2"}}))
	...
	res, err = client.Post(ctx, "items", reqx.JSON(item))
	...
	err = client.Send(ctx, "DELETE", "items/42")

Request bodies are built from Go values. Form and Multipart walk any
struct, map, slice or scalar; a multipart body may hold blobs, file
references and nested multipart/mixed parts:

	type upload struct {
		Title string          `form:"title"`
		Doc   encoder.FileRef `form:"doc"`
	}
	res, err := client.Post(ctx, "docs", reqx.Multipart(upload{
		Title: "report",
		Doc:   encoder.FileRef{Path: "report.pdf"},
	}))

Results decode into typed values by media type:

	item, err := reqx.Fetch[Item](ctx, client, "GET", "items/42")
	maybe, err := reqx.FetchOptional[Item](ctx, client, "GET", "items/43")

To cache responses, set a store on the client and attach criteria to
requests:

	client.Cache = cache.NewMemoryStore()
	res, err := client.Get(ctx, "items",
		reqx.WithCache(cache.Criteria{Policy: cache.UseAge, MaxAge: time.Minute}))

A response with status 401, 403, 404 or 410 is never replaced by a
cached one, and a transport error is never masked.

To hook into the client's request execution, install a handler into the
appropriate handler chain:

	handlers := &reqx.HandlerGroup{}
	handlers.PushBack(reqx.BeforeDispatch, reqx.HandlerFunc(
		func(_ reqx.Event, e *request.Execution) {
			e.Request.Header.Set("X-Request-Id", e.ID)
		}))
	client.Handlers = handlers

Errors are either transport errors of type *url.Error, passed through
unchanged, or *ServiceError values classified by ErrorKind. Use
errors.Is with ErrHTTP, ErrCacheNotFound, ErrUnrecognizedEncoding or
ErrGeneric to test the kind.
*/
package reqx
