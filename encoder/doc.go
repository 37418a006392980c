// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package encoder flattens arbitrary Go values into an ordered list of
(path, value) fields.

The flattened form is the common ground for the two structured body
encodings supported by reqx: URL query strings (package query) and
multipart/form-data bodies (package formdata). Both specializations
consume the same field list, so a value encodes to the same logical
set of names regardless of the wire format chosen.

Struct fields are visited in declaration order. Nested struct field
names are joined with a dot, so the value

	struct {
		User struct {
			Name string
		}
	}{}

produces a single field with path "User.Name". Field names may be
overridden with a `form:"name"` struct tag (or, failing that, the name
from a `json:"name"` tag). A tag value of "-" excludes the field.

Slices and arrays produce one field per element. How the element path
is derived from the slice path is controlled by ArrayEncoding.

Leaf values are formatted by type: booleans as "true" or "false",
numbers in canonical decimal, time.Time values with a fixed
locale-independent layout, and byte slices as binary data. Nil
pointers, interfaces, maps and slices emit a single Null field at their
path rather than being omitted, so optional values always appear in the
output. Empty non-nil maps and slices produce no fields.

The special leaf types Blob, FileRef and MixedBody carry extra information
used by the multipart encoder.
*/
package encoder
