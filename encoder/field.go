// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package encoder

// A Kind identifies the type of an encoded leaf Value.
type Kind int

const (
	// String is a textual leaf, including values produced by an
	// encoding.TextMarshaler.
	String Kind = iota
	// Int is a signed or unsigned integer leaf.
	Int
	// Float is a floating point leaf.
	Float
	// Bool is a boolean leaf.
	Bool
	// Null is the leaf emitted for a nil pointer, interface, map or
	// slice.
	Null
	// Date is a time.Time leaf formatted with the date layout.
	Date
	// Binary is a raw byte leaf, from a []byte or a Blob value.
	Binary
	// File is a reference to a file whose contents are resolved by the
	// multipart encoder.
	File
	// Mixed is a nested composite value encoded by the multipart
	// encoder as its own multipart/mixed body.
	Mixed
)

var kindNames = []string{
	"String",
	"Int",
	"Float",
	"Bool",
	"Null",
	"Date",
	"Binary",
	"File",
	"Mixed",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(?)"
	}
	return kindNames[k]
}

// A Value is one encoded leaf.
//
// Text holds the formatted value for every kind except Binary, File
// and Mixed. Data holds the raw bytes of a Binary value. Filename and
// MIMEType are set from Blob and FileRef leaves when the caller
// provided them. FilePath locates the file of a File leaf, and Nested
// holds the unencoded value of a Mixed leaf.
type Value struct {
	Kind     Kind
	Text     string
	Data     []byte
	Filename string
	MIMEType string
	FilePath string
	Textual  bool
	Nested   interface{}
}

// IsText reports whether the value is represented as text on the wire
// rather than as an attachment.
func (v Value) IsText() bool {
	switch v.Kind {
	case Binary:
		return v.Textual
	case File, Mixed:
		return false
	default:
		return true
	}
}

// A Field is one (path, value) unit produced by Encode. Paths need not
// be unique; with RepeatKey every element of a slice shares the path
// of the slice.
type Field struct {
	Path  string
	Value Value
}
