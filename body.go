// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"encoding/json"
	"net/url"

	"github.com/gogama/reqx/formdata"
	"github.com/gogama/reqx/query"
)

// Media types set by the built-in body variants.
const (
	MIMEJSON      = "application/json"
	MIMEForm      = "application/x-www-form-urlencoded"
	MIMEMultipart = "multipart/form-data"
)

// Encoders holds the structural encoders a Body or Option may use.
// The client builds it from its own configuration.
type Encoders struct {
	Query     query.Encoder
	Multipart formdata.Encoder
}

// A Body produces the bytes and content type of a request body.
//
// An empty content type leaves the Content-Type header untouched.
type Body interface {
	Encode(enc Encoders) (data []byte, contentType string, err error)
}

// The BodyFunc type is an adapter to allow the use of ordinary
// functions as request bodies.
type BodyFunc func(enc Encoders) ([]byte, string, error)

// Encode calls f(enc).
func (f BodyFunc) Encode(enc Encoders) ([]byte, string, error) {
	return f(enc)
}

// JSON returns a body holding v marshalled with encoding/json.
func JSON(v interface{}) Body {
	return JSONAs(v, MIMEJSON)
}

// JSONAs is like JSON but declares the given media type, for example
// "application/merge-patch+json".
func JSONAs(v interface{}, mimeType string) Body {
	return BodyFunc(func(Encoders) ([]byte, string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return b, mimeType, nil
	})
}

// Form returns an application/x-www-form-urlencoded body. A url.Values
// is encoded key by key in sorted order; any other value goes through
// the client's query encoder.
func Form(v interface{}) Body {
	return BodyFunc(func(enc Encoders) ([]byte, string, error) {
		if values, ok := v.(url.Values); ok {
			return []byte(query.Join(query.FromValues(values))), MIMEForm, nil
		}
		b, err := enc.Query.Bytes(v)
		if err != nil {
			return nil, "", err
		}
		return b, MIMEForm, nil
	})
}

// Multipart returns a multipart/form-data body built from v by the
// client's multipart encoder. File references in v are read when the
// body is encoded, and any failure aborts the request.
func Multipart(v interface{}) Body {
	return BodyFunc(func(enc Encoders) ([]byte, string, error) {
		b, err := enc.Multipart.Encode(v)
		if err != nil {
			return nil, "", err
		}
		return b.Data, b.ContentType(), nil
	})
}

// Raw returns a body holding data as-is. An empty mimeType sends no
// Content-Type header.
func Raw(data []byte, mimeType string) Body {
	return BodyFunc(func(Encoders) ([]byte, string, error) {
		return data, mimeType, nil
	})
}

// Empty returns a body with no content.
func Empty() Body {
	return BodyFunc(func(Encoders) ([]byte, string, error) {
		return nil, "", nil
	})
}
