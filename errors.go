// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"errors"
	"fmt"
	"net/http"
)

// An ErrorKind classifies a ServiceError.
type ErrorKind int

const (
	// Generic is an unclassified error, for example a decoder failure
	// or a missing body where one was required.
	Generic ErrorKind = iota
	// CacheNotFound means a cache-only read found no usable entry.
	CacheNotFound
	// UnrecognizedEncoding means no decoder is registered for the
	// response's media type.
	UnrecognizedEncoding
	// HTTPError means the server answered with a status outside the
	// 2xx range.
	HTTPError
)

var errorKindNames = []string{
	"Generic",
	"CacheNotFound",
	"UnrecognizedEncoding",
	"HTTPError",
}

func (k ErrorKind) String() string {
	if k < Generic || k > HTTPError {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

// Sentinels for use with errors.Is. A *ServiceError matches the
// sentinel of its kind.
var (
	ErrGeneric              = errors.New("reqx: generic error")
	ErrCacheNotFound        = errors.New("reqx: cache entry not found")
	ErrUnrecognizedEncoding = errors.New("reqx: unrecognized encoding")
	ErrHTTP                 = errors.New("reqx: HTTP error")
)

var errNoContent = errors.New("no content")

func (k ErrorKind) sentinel() error {
	switch k {
	case CacheNotFound:
		return ErrCacheNotFound
	case UnrecognizedEncoding:
		return ErrUnrecognizedEncoding
	case HTTPError:
		return ErrHTTP
	default:
		return ErrGeneric
	}
}

// A ServiceError is an error produced by the client itself, as opposed
// to a transport error, which is always a *url.Error.
//
// Fields not relevant to the kind are left at their zero values.
// StatusCode, Body and ContentType describe the HTTP response for
// HTTPError, and MIMEType names the undecodable media type for
// UnrecognizedEncoding.
type ServiceError struct {
	Kind        ErrorKind
	StatusCode  int
	Body        []byte
	ContentType string
	MIMEType    string
	Err         error
}

func (e *ServiceError) Error() string {
	switch e.Kind {
	case HTTPError:
		return fmt.Sprintf("reqx: HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	case UnrecognizedEncoding:
		return fmt.Sprintf("reqx: unrecognized encoding %q", e.MIMEType)
	case CacheNotFound:
		return ErrCacheNotFound.Error()
	default:
		if e.Err != nil {
			return "reqx: " + e.Err.Error()
		}
		return ErrGeneric.Error()
	}
}

// Unwrap returns the underlying cause, if any.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for the error's kind.
func (e *ServiceError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func httpError(status int, header http.Header, body []byte) *ServiceError {
	return &ServiceError{
		Kind:        HTTPError,
		StatusCode:  status,
		Body:        body,
		ContentType: header.Get("Content-Type"),
	}
}
