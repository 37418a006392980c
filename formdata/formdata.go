// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package formdata encodes Go values as multipart/form-data bodies.
//
// Values are flattened by package encoder and every field becomes one
// part. Scalar fields are sent as plain text parts. Binary fields,
// files and nested multipart/mixed values are sent as attachments with
// a resolved Content-Type.
//
// The boundary delimiting the parts is random, and is verified not to
// occur anywhere in the serialized parts before it is used.
package formdata

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gogama/reqx/encoder"
)

// A Body is an encoded multipart body together with the boundary that
// delimits its parts.
type Body struct {
	Data     []byte
	Boundary string
}

// ContentType returns the value of the Content-Type header to send
// with the body.
func (b *Body) ContentType() string {
	return "multipart/form-data; boundary=" + b.Boundary
}

// A FileError is returned when the contents of an encoder.FileRef
// cannot be read. When encoding fails with a FileError no body is
// produced.
type FileError struct {
	Field string
	Path  string
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("reqx/formdata: field %q: reading %s: %v", e.Field, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// An Encoder converts Go values into multipart/form-data bodies.
//
// The zero value is ready to use. It reads file references from the
// operating system and draws boundaries from crypto/rand.
type Encoder struct {
	// Arrays selects the path strategy for slice elements.
	Arrays encoder.ArrayEncoding

	// DateLayout is the time.Time layout. If empty,
	// encoder.DefaultDateLayout is used.
	DateLayout string

	// MIMETypes maps a lower case file extension, without the leading
	// dot, to a MIME type. It is consulted before the built-in table
	// when resolving the Content-Type of an attachment.
	MIMETypes map[string]string

	// FS, if not nil, is the file system from which encoder.FileRef
	// paths are read. If nil, paths are read with os.ReadFile.
	FS fs.FS

	// Rand is the source of boundary entropy. If nil, crypto/rand is
	// used.
	Rand io.Reader
}

// Encode encodes v into a multipart/form-data body.
func (e Encoder) Encode(v interface{}) (*Body, error) {
	parts, err := e.parts(v)
	if err != nil {
		return nil, err
	}
	boundary, err := e.boundary(parts)
	if err != nil {
		return nil, err
	}
	return &Body{Data: frame(boundary, parts), Boundary: boundary}, nil
}

// parts flattens v and serializes every field into a part consisting
// of its headers, a blank line and its data.
func (e Encoder) parts(v interface{}) ([][]byte, error) {
	fields, err := encoder.Encode(v, encoder.Options{
		Arrays:     e.Arrays,
		DateLayout: e.DateLayout,
	})
	if err != nil {
		return nil, err
	}

	parts := make([][]byte, 0, len(fields))
	for _, f := range fields {
		p, err := e.part(f)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

func (e Encoder) part(f encoder.Field) ([]byte, error) {
	var filename, contentType string
	var data []byte

	switch f.Value.Kind {
	case encoder.Null:
	case encoder.Binary:
		data = f.Value.Data
		if !f.Value.Textual {
			filename = f.Value.Filename
			contentType = e.resolveType(f.Value.MIMEType, filename)
		}
	case encoder.File:
		b, err := e.readFile(f.Value.FilePath)
		if err != nil {
			return nil, &FileError{Field: f.Path, Path: f.Value.FilePath, Err: err}
		}
		data = b
		filename = f.Value.Filename
		if filename == "" {
			filename = e.base(f.Value.FilePath)
		}
		contentType = e.resolveType(f.Value.MIMEType, filename)
	case encoder.Mixed:
		nested, err := e.Encode(f.Value.Nested)
		if err != nil {
			return nil, err
		}
		data = nested.Data
		contentType = "multipart/mixed; boundary=" + nested.Boundary
	default:
		data = []byte(f.Value.Text)
	}

	var b bytes.Buffer
	b.WriteString(`Content-Disposition: form-data; name="`)
	b.WriteString(escapeQuotes(f.Path))
	b.WriteByte('"')
	if filename != "" {
		b.WriteString(`; filename="`)
		b.WriteString(escapeQuotes(filename))
		b.WriteByte('"')
	}
	if contentType != "" {
		b.WriteString("\r\nContent-Type: ")
		b.WriteString(contentType)
	}
	b.WriteString("\r\n\r\n")
	b.Write(data)
	return b.Bytes(), nil
}

func (e Encoder) readFile(name string) ([]byte, error) {
	if e.FS != nil {
		return fs.ReadFile(e.FS, name)
	}
	return os.ReadFile(name)
}

func (e Encoder) base(name string) string {
	if e.FS != nil {
		return path.Base(name)
	}
	return filepath.Base(name)
}

func (e Encoder) randReader() io.Reader {
	if e.Rand != nil {
		return e.Rand
	}
	return rand.Reader
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r", "%0D", "\n", "%0A")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// frame joins parts into a body delimited by boundary.
func frame(boundary string, parts [][]byte) []byte {
	var b bytes.Buffer
	for i, p := range parts {
		if i > 0 {
			b.WriteString("\r\n")
		}
		b.WriteString("--")
		b.WriteString(boundary)
		b.WriteString("\r\n")
		b.Write(p)
	}
	if len(parts) > 0 {
		b.WriteString("\r\n")
	}
	b.WriteString("--")
	b.WriteString(boundary)
	b.WriteString("--\r\n")
	return b.Bytes()
}
