// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package decoder

import (
	"encoding"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// An UnsupportedTargetError is returned by the Text and Binary decoders
// when asked to decode into a type they cannot fill.
type UnsupportedTargetError struct {
	Decoder string
	Type    reflect.Type
}

func (e *UnsupportedTargetError) Error() string {
	return fmt.Sprintf("reqx/decoder: %s decoder cannot decode into %v", e.Decoder, e.Type)
}

var (
	// JSON decodes bodies with encoding/json.
	JSON Decoder = DecoderFunc(json.Unmarshal)

	// YAML decodes bodies with gopkg.in/yaml.v3.
	YAML Decoder = DecoderFunc(yaml.Unmarshal)

	// XML decodes bodies with encoding/xml.
	XML Decoder = DecoderFunc(xml.Unmarshal)

	// Text decodes a body into a *string, a *[]byte or an
	// encoding.TextUnmarshaler.
	Text Decoder = DecoderFunc(decodeText)

	// Binary decodes a body into a *[]byte.
	Binary Decoder = DecoderFunc(decodeBinary)
)

func decodeText(data []byte, v interface{}) error {
	switch x := v.(type) {
	case *string:
		*x = string(data)
	case *[]byte:
		*x = append((*x)[:0], data...)
	case encoding.TextUnmarshaler:
		return x.UnmarshalText(data)
	default:
		return &UnsupportedTargetError{Decoder: "text", Type: reflect.TypeOf(v)}
	}
	return nil
}

func decodeBinary(data []byte, v interface{}) error {
	x, ok := v.(*[]byte)
	if !ok {
		return &UnsupportedTargetError{Decoder: "binary", Type: reflect.TypeOf(v)}
	}
	*x = append((*x)[:0], data...)
	return nil
}
