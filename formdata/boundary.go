// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package formdata

import (
	"bytes"
	"encoding/base64"
	"io"
)

const (
	// BoundaryPrefix begins every generated boundary.
	BoundaryPrefix = "reqx-"

	// boundaryEntropy is the initial number of random bytes in a
	// boundary.
	boundaryEntropy = 16

	// collisionsPerEscalation is the number of consecutive collisions
	// tolerated before the number of random bytes is doubled.
	collisionsPerEscalation = 4
)

// boundary returns a random boundary which does not occur in any of
// parts.
//
// Every collision makes the next attempt more likely to succeed: after
// each run of collisionsPerEscalation collisions the entropy doubles.
// The boundary therefore eventually becomes longer than the longest
// part, at which point it cannot be a substring of any part and the
// loop ends.
func (e Encoder) boundary(parts [][]byte) (string, error) {
	longest := 0
	for _, p := range parts {
		if len(p) > longest {
			longest = len(p)
		}
	}

	r := e.randReader()
	n := boundaryEntropy
	collisions := 0
	for {
		token, err := randomToken(r, n)
		if err != nil {
			return "", err
		}
		if len(token) > longest || !collides(token, parts) {
			return token, nil
		}
		collisions++
		if collisions%collisionsPerEscalation == 0 {
			n *= 2
		}
	}
}

func randomToken(r io.Reader, n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return BoundaryPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

func collides(token string, parts [][]byte) bool {
	t := []byte(token)
	for _, p := range parts {
		if bytes.Contains(p, t) {
			return true
		}
	}
	return false
}
