// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"io"
)

// BodyBytes converts a generic body parameter to a byte slice for use
// as a request plan body. NewPlanWithContext uses it to accept the
// bodies of plans passed directly to Client.Do.
//
// A nil body yields a nil slice. A string or []byte is converted
// directly. An io.Reader is read to the end and, if it is also an
// io.Closer, closed. Read and close errors are returned with a nil
// slice. Any other type is an error.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case io.Reader:
		b, err := io.ReadAll(x)
		if c, ok := x.(io.Closer); ok {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("reqx/request: invalid body type %T (use nil, string, []byte or io.Reader)", body)
	}
}
