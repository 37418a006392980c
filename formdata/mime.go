// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package formdata

import (
	"path"
	"strings"
)

// OctetStream is the Content-Type of an attachment whose type cannot
// be derived from an explicit MIME type or a file extension.
const OctetStream = "application/octet-stream"

var builtinTypes = map[string]string{
	"css":  "text/css",
	"csv":  "text/csv",
	"gif":  "image/gif",
	"gz":   "application/gzip",
	"htm":  "text/html",
	"html": "text/html",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"js":   "text/javascript",
	"json": "application/json",
	"md":   "text/markdown",
	"mp3":  "audio/mpeg",
	"mp4":  "video/mp4",
	"pdf":  "application/pdf",
	"png":  "image/png",
	"svg":  "image/svg+xml",
	"tar":  "application/x-tar",
	"txt":  "text/plain",
	"wasm": "application/wasm",
	"webp": "image/webp",
	"xml":  "application/xml",
	"yaml": "application/yaml",
	"yml":  "application/yaml",
	"zip":  "application/zip",
}

// resolveType picks the Content-Type of an attachment. An explicit
// type wins. Otherwise the extension of filename is looked up first in
// e.MIMETypes, then in the built-in table, and finally mapped to
// "application/<ext>".
func (e Encoder) resolveType(explicit, filename string) string {
	if explicit != "" {
		return explicit
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		return OctetStream
	}
	if t, ok := e.MIMETypes[ext]; ok {
		return t
	}
	if t, ok := builtinTypes[ext]; ok {
		return t
	}
	return "application/" + ext
}
