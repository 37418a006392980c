// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package query

const upperhex = "0123456789ABCDEF"

func unreserved(c byte) bool {
	return 'A' <= c && c <= 'Z' ||
		'a' <= c && c <= 'z' ||
		'0' <= c && c <= '9' ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

// Escape percent-encodes every byte of s outside the unreserved set
// [A-Za-z0-9-._~]. Unlike url.QueryEscape, a space becomes "%20", not
// "+".
func Escape(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	t := make([]byte, len(s)+2*n)
	j := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			t[j] = c
			j++
			continue
		}
		t[j] = '%'
		t[j+1] = upperhex[c>>4]
		t[j+2] = upperhex[c&15]
		j += 3
	}
	return string(t)
}
