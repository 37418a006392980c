// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package encoder

import (
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// An ArrayEncoding selects how the path of a slice element is derived
// from the path of the slice.
type ArrayEncoding int

const (
	// RepeatKey gives every element the path of the slice itself, for
	// example "tags", "tags". The receiver must accept repeated keys as
	// a multi-value list.
	RepeatKey ArrayEncoding = iota
	// Brackets appends "[]" to the slice path for every element, for
	// example "tags[]", "tags[]".
	Brackets
	// BracketsWithIndex appends the zero-based element index in
	// brackets, for example "tags[0]", "tags[1]".
	BracketsWithIndex
)

// String returns the name of the array encoding.
func (a ArrayEncoding) String() string {
	switch a {
	case RepeatKey:
		return "RepeatKey"
	case Brackets:
		return "Brackets"
	case BracketsWithIndex:
		return "BracketsWithIndex"
	default:
		return "ArrayEncoding(" + strconv.Itoa(int(a)) + ")"
	}
}

// ParseArrayEncoding converts a configuration string ("repeat",
// "brackets" or "indexed") into an ArrayEncoding.
func ParseArrayEncoding(s string) (ArrayEncoding, error) {
	switch strings.ToLower(s) {
	case "", "repeat", "repeatkey":
		return RepeatKey, nil
	case "brackets":
		return Brackets, nil
	case "indexed", "bracketswithindex":
		return BracketsWithIndex, nil
	default:
		return RepeatKey, fmt.Errorf("reqx/encoder: unknown array encoding %q", s)
	}
}

func (a ArrayEncoding) elementPath(path string, i int) string {
	switch a {
	case Brackets:
		return path + "[]"
	case BracketsWithIndex:
		return path + "[" + strconv.Itoa(i) + "]"
	default:
		return path
	}
}

// DefaultDateLayout is the layout used to format time.Time leaves when
// Options.DateLayout is empty. It is the Go spelling of
// yyyy-MM-ddTHH:mm:ssZZZZZ.
const DefaultDateLayout = "2006-01-02T15:04:05Z07:00"

// Options controls Encode.
type Options struct {
	// Arrays selects the element path strategy for slices and arrays.
	Arrays ArrayEncoding
	// DateLayout is the time.Time layout. If empty, DefaultDateLayout
	// is used.
	DateLayout string
}

// A Blob is a binary leaf with optional attachment metadata.
//
// In query encoding a Blob is base64 encoded. In multipart encoding it
// becomes its own part carrying Data verbatim, unless Textual is set,
// in which case it is sent as a plain text part.
type Blob struct {
	Data     []byte
	Filename string
	MIMEType string
	Textual  bool
}

// A FileRef is a leaf referring to a file whose full contents are read
// and attached when the value is multipart encoded. Filename defaults
// to the base name of Path.
type FileRef struct {
	Path     string
	Filename string
	MIMEType string
}

// A MixedBody is a composite leaf which the multipart encoder encodes
// independently, with its own boundary, into a nested multipart/mixed
// part.
type MixedBody struct {
	Value interface{}
}

// An UnsupportedTypeError is returned by Encode when it meets a value
// of a type it cannot flatten, such as a channel or a function.
type UnsupportedTypeError struct {
	Type reflect.Type
	Path string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("reqx/encoder: unsupported type %s at %q", e.Type, e.Path)
}

// A MarshalerError wraps an error returned by a value's MarshalText
// method.
type MarshalerError struct {
	Type reflect.Type
	Path string
	Err  error
}

func (e *MarshalerError) Error() string {
	return fmt.Sprintf("reqx/encoder: MarshalText for %s at %q: %v", e.Type, e.Path, e.Err)
}

func (e *MarshalerError) Unwrap() error {
	return e.Err
}

var (
	timeType          = reflect.TypeOf(time.Time{})
	blobType          = reflect.TypeOf(Blob{})
	fileRefType       = reflect.TypeOf(FileRef{})
	mixedBodyType     = reflect.TypeOf(MixedBody{})
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Encode flattens v into an ordered list of fields.
//
// The walk is depth-first. Fields are emitted in struct declaration
// order, map entries in ascending key order, and slice elements in
// index order, so encoding the same value twice yields identical
// output.
func Encode(v interface{}, opts Options) ([]Field, error) {
	if opts.DateLayout == "" {
		opts.DateLayout = DefaultDateLayout
	}
	s := &encodeState{opts: opts}
	if err := s.walk("", reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return s.fields, nil
}

// encodeState is the accumulator for one call to Encode.
type encodeState struct {
	opts   Options
	fields []Field
}

func (s *encodeState) emit(path string, v Value) {
	s.fields = append(s.fields, Field{Path: path, Value: v})
}

func (s *encodeState) walk(path string, v reflect.Value) error {
	if !v.IsValid() {
		s.emit(path, Value{Kind: Null})
		return nil
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			s.emit(path, Value{Kind: Null})
			return nil
		}
		return s.walk(path, v.Elem())
	case reflect.Map, reflect.Slice:
		if v.IsNil() {
			s.emit(path, Value{Kind: Null})
			return nil
		}
	}

	if ok, err := s.leaf(path, v); ok || err != nil {
		return err
	}

	switch v.Kind() {
	case reflect.Struct:
		return s.walkStruct(path, v)
	case reflect.Map:
		return s.walkMap(path, v)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := s.walk(s.opts.Arrays.elementPath(path, i), v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.String:
		s.emit(path, Value{Kind: String, Text: v.String()})
	case reflect.Bool:
		s.emit(path, Value{Kind: Bool, Text: strconv.FormatBool(v.Bool())})
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s.emit(path, Value{Kind: Int, Text: strconv.FormatInt(v.Int(), 10)})
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		s.emit(path, Value{Kind: Int, Text: strconv.FormatUint(v.Uint(), 10)})
	case reflect.Float32:
		s.emit(path, Value{Kind: Float, Text: strconv.FormatFloat(v.Float(), 'f', -1, 32)})
	case reflect.Float64:
		s.emit(path, Value{Kind: Float, Text: strconv.FormatFloat(v.Float(), 'f', -1, 64)})
	default:
		return &UnsupportedTypeError{Type: v.Type(), Path: path}
	}

	return nil
}

// leaf emits v as a single field if it is one of the special leaf
// types. It reports whether v was handled.
func (s *encodeState) leaf(path string, v reflect.Value) (bool, error) {
	t := v.Type()
	switch t {
	case timeType:
		tm := v.Interface().(time.Time)
		s.emit(path, Value{Kind: Date, Text: tm.Format(s.opts.DateLayout)})
		return true, nil
	case blobType:
		b := v.Interface().(Blob)
		s.emit(path, Value{
			Kind:     Binary,
			Data:     b.Data,
			Filename: b.Filename,
			MIMEType: b.MIMEType,
			Textual:  b.Textual,
		})
		return true, nil
	case fileRefType:
		f := v.Interface().(FileRef)
		s.emit(path, Value{
			Kind:     File,
			FilePath: f.Path,
			Filename: f.Filename,
			MIMEType: f.MIMEType,
		})
		return true, nil
	case mixedBodyType:
		s.emit(path, Value{Kind: Mixed, Nested: v.Interface().(MixedBody).Value})
		return true, nil
	}

	if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
		s.emit(path, Value{Kind: Binary, Data: v.Bytes()})
		return true, nil
	}

	if !t.Implements(textMarshalerType) && reflect.PtrTo(t).Implements(textMarshalerType) {
		if !v.CanAddr() {
			c := reflect.New(t).Elem()
			c.Set(v)
			v = c
		}
		v = v.Addr()
		t = v.Type()
	}
	if t.Implements(textMarshalerType) {
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return true, &MarshalerError{Type: t, Path: path, Err: err}
		}
		s.emit(path, Value{Kind: String, Text: string(text)})
		return true, nil
	}

	return false, nil
}

func (s *encodeState) walkStruct(path string, v reflect.Value) error {
	for _, f := range typeFields(v.Type()) {
		fv, ok := fieldByIndex(v, f.index)
		if !ok {
			continue
		}
		if err := s.walk(join(path, f.name), fv); err != nil {
			return err
		}
	}
	return nil
}

func (s *encodeState) walkMap(path string, v reflect.Value) error {
	if v.Len() == 0 {
		return nil
	}

	type entry struct {
		key   string
		value reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, err := mapKey(path, iter.Key())
		if err != nil {
			return err
		}
		entries = append(entries, entry{k, iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].key < entries[j].key
	})

	for _, e := range entries {
		if err := s.walk(join(path, e.key), e.value); err != nil {
			return err
		}
	}
	return nil
}

func mapKey(path string, k reflect.Value) (string, error) {
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if k.Kind() == reflect.Ptr && k.IsNil() {
			return "", nil
		}
		b, err := tm.MarshalText()
		if err != nil {
			return "", &MarshalerError{Type: k.Type(), Path: path, Err: err}
		}
		return string(b), nil
	}

	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	default:
		return "", &UnsupportedTypeError{Type: k.Type(), Path: path}
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

type structField struct {
	name  string
	index []int
}

// typeFields lists the encodable fields of struct type t in
// declaration order. Fields of untagged embedded structs are promoted
// in place, in the manner of encoding/json.
func typeFields(t reflect.Type) []structField {
	var fields []structField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, tagged := fieldName(sf)
		if name == "-" {
			continue
		}

		if sf.Anonymous && !tagged {
			ft := sf.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && !isLeafType(ft) {
				for _, f := range typeFields(ft) {
					f.index = append([]int{i}, f.index...)
					fields = append(fields, f)
				}
				continue
			}
		}

		if !sf.IsExported() {
			continue
		}

		fields = append(fields, structField{name: name, index: []int{i}})
	}
	return fields
}

func isLeafType(t reflect.Type) bool {
	switch t {
	case timeType, blobType, fileRefType, mixedBodyType:
		return true
	}
	return t.Implements(textMarshalerType) || reflect.PtrTo(t).Implements(textMarshalerType)
}

func fieldName(sf reflect.StructField) (string, bool) {
	tag, ok := sf.Tag.Lookup("form")
	if !ok {
		tag, ok = sf.Tag.Lookup("json")
	}
	if !ok {
		return sf.Name, false
	}
	if tag == "-" {
		return "-", true
	}
	name := tag
	if i := strings.IndexByte(tag, ','); i >= 0 {
		name = tag[:i]
	}
	if name == "" {
		return sf.Name, false
	}
	return name, true
}

// fieldByIndex is like reflect.Value.FieldByIndex but reports false
// instead of panicking when it meets a nil embedded pointer.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}
