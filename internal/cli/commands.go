// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gogama/reqx"
	"github.com/gogama/reqx/encoder"
	"github.com/spf13/cobra"
)

func newFetchCommand(o *options, use, method string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ROUTE",
		Short: "Send a " + method + " request and print the response body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(s *session, opts []reqx.Option) error {
				res, err := s.client.Request(cmd.Context(), method, args[0], opts...)
				if err != nil {
					return err
				}
				return o.print(cmd, s, res)
			})
		},
	}
}

type bodyFlags struct {
	data        string
	contentType string
	json        string
	form        *pairs
	fields      *pairs
	files       *pairs
}

func newBodyCommand(o *options, use, method string) *cobra.Command {
	b := &bodyFlags{
		form:   newPairs("="),
		fields: newPairs("="),
		files:  newPairs("="),
	}
	cmd := &cobra.Command{
		Use:   use + " ROUTE",
		Short: "Send a " + method + " request with a body and print the response body",
		Long: `Send a ` + method + ` request with a body and print the response body.

At most one kind of body may be given: raw data (-d, prefix @ to read a
file), a JSON document (--json), form fields (--form) or multipart
fields and files (--field, --file).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := b.body()
			if err != nil {
				return err
			}
			return o.run(cmd, func(s *session, opts []reqx.Option) error {
				res, err := s.client.Request(cmd.Context(), method, args[0], append(opts, reqx.WithBody(body))...)
				if err != nil {
					return err
				}
				return o.print(cmd, s, res)
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&b.data, "data", "d", "", "raw request body, or @file")
	f.StringVar(&b.contentType, "content-type", "", "content type of raw data")
	f.StringVar(&b.json, "json", "", "JSON request body, or @file")
	f.Var(b.form, "form", "url-encoded form field (repeatable)")
	f.Var(b.fields, "field", "multipart text field (repeatable)")
	f.Var(b.files, "file", "multipart file field as name=path (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("data", "json", "form", "field")
	cmd.MarkFlagsMutuallyExclusive("data", "json", "form", "file")
	return cmd
}

func (b *bodyFlags) body() (reqx.Body, error) {
	switch {
	case b.data != "":
		data, err := readArg(b.data)
		if err != nil {
			return nil, err
		}
		return reqx.Raw(data, b.contentType), nil
	case b.json != "":
		data, err := readArg(b.json)
		if err != nil {
			return nil, err
		}
		return reqx.Raw(data, reqx.MIMEJSON), nil
	case len(b.form.items) > 0:
		return reqx.Form(b.form.values()), nil
	case len(b.fields.items) > 0 || len(b.files.items) > 0:
		return reqx.Multipart(b.multipart()), nil
	default:
		return reqx.Empty(), nil
	}
}

// multipart collects text fields and file references by name. A name
// given more than once becomes a list.
func (b *bodyFlags) multipart() map[string]interface{} {
	m := make(map[string]interface{})
	add := func(name string, v interface{}) {
		switch prev := m[name].(type) {
		case nil:
			m[name] = v
		case []interface{}:
			m[name] = append(prev, v)
		default:
			m[name] = []interface{}{prev, v}
		}
	}
	for _, item := range b.fields.items {
		add(item.Name, item.Value)
	}
	for _, item := range b.files.items {
		add(item.Name, encoder.FileRef{Path: item.Value})
	}
	return m
}

func readArg(s string) ([]byte, error) {
	if name, ok := strings.CutPrefix(s, "@"); ok {
		return os.ReadFile(name)
	}
	return []byte(s), nil
}

func newHeadCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "head ROUTE",
		Short: "Send a HEAD request and print the response headers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(s *session, opts []reqx.Option) error {
				h, err := s.client.Head(cmd.Context(), args[0], opts...)
				if err != nil {
					return err
				}
				return h.Write(cmd.OutOrStdout())
			})
		},
	}
}

func newOptionsCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "options ROUTE",
		Short: "Send an OPTIONS request and print the allowed methods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(s *session, opts []reqx.Option) error {
				methods, err := s.client.Options(cmd.Context(), args[0], opts...)
				if err != nil {
					return err
				}
				for _, m := range methods {
					fmt.Fprintln(cmd.OutOrStdout(), m)
				}
				return nil
			})
		},
	}
}

func newSendCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "send METHOD ROUTE",
		Short: "Send a request with any method and discard the response body",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(s *session, opts []reqx.Option) error {
				return s.client.Send(cmd.Context(), strings.ToUpper(args[0]), args[1], opts...)
			})
		},
	}
}

func newCachedCommand(o *options) *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "cached ROUTE",
		Short: "Print a cached response without going to the network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(s *session, opts []reqx.Option) error {
				res, err := s.client.Cached(cmd.Context(), strings.ToUpper(method), args[0], opts...)
				if err != nil {
					return err
				}
				return o.print(cmd, s, res)
			})
		},
	}
	cmd.Flags().StringVarP(&method, "method", "X", "GET", "method of the cached request")
	return cmd
}

func (o *options) print(cmd *cobra.Command, s *session, res *reqx.Result) error {
	w := cmd.OutOrStdout()
	if o.include {
		writeStatus(w, res)
	}
	if o.jq != "" {
		return runJQ(cmd.Context(), w, o.jq, s.client.Decoders, res)
	}
	if res == nil {
		return nil
	}
	_, err := w.Write(res.Body)
	if err == nil && len(res.Body) > 0 && res.Body[len(res.Body)-1] != '\n' && isTerminal(w) {
		_, err = io.WriteString(w, "\n")
	}
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
