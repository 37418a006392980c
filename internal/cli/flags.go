// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gogama/reqx/query"
	"github.com/spf13/pflag"
)

// pairs is a repeatable name<sep>value flag which keeps the order the
// values were given in.
type pairs struct {
	sep   string
	items []query.Item
}

var _ pflag.Value = (*pairs)(nil)

func newPairs(sep string) *pairs {
	return &pairs{sep: sep}
}

func (p *pairs) String() string {
	parts := make([]string, len(p.items))
	for i, item := range p.items {
		parts[i] = item.Name + p.sep + item.Value
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (p *pairs) Set(s string) error {
	name, value, ok := strings.Cut(s, p.sep)
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("expected name%svalue, got %q", p.sep, s)
	}
	if p.sep == ":" {
		value = strings.TrimSpace(value)
	}
	p.items = append(p.items, query.Item{Name: name, Value: value})
	return nil
}

func (p *pairs) Type() string {
	return "name" + p.sep + "value"
}

func (p *pairs) values() url.Values {
	if len(p.items) == 0 {
		return nil
	}
	v := make(url.Values, len(p.items))
	for _, item := range p.items {
		v.Add(item.Name, item.Value)
	}
	return v
}
