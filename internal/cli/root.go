// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cli implements the reqx command line tool.
package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gogama/reqx"
	"github.com/gogama/reqx/cache"
	"github.com/gogama/reqx/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// Exit codes returned by ExitCode.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitTransport = 2
	ExitHTTP      = 3
)

type options struct {
	baseURL string
	headers *pairs
	query   *pairs
	timeout time.Duration
	policy  string
	maxAge  time.Duration
	jq      string
	include bool
	metrics bool
}

// NewRootCommand creates the root command. Configuration is read from
// REQX_* environment variables and overridden by flags.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	o := &options{
		headers: newPairs(":"),
		query:   newPairs("="),
	}
	cmd := &cobra.Command{
		Use:   "reqx",
		Short: "Send HTTP requests and decode the results",
		Long: `reqx sends HTTP requests through a reqx client configured from
REQX_* environment variables, for example REQX_BASE_URL, REQX_CACHE and
REQX_LOG_LEVEL. Flags override the environment.

Routes are resolved against the base URL unless they are absolute.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.PersistentFlags()
	f.StringVar(&o.baseURL, "base-url", "", "base URL routes are resolved against")
	f.VarP(o.headers, "header", "H", "request header (repeatable)")
	f.VarP(o.query, "query", "q", "query parameter (repeatable)")
	f.DurationVar(&o.timeout, "timeout", 0, "request timeout")
	f.StringVar(&o.policy, "cache-policy", "", "cache policy, for example UseAge or ReloadReturnCacheDataIfError")
	f.DurationVar(&o.maxAge, "max-age", 0, "maximum age of cached responses")
	f.StringVar(&o.jq, "jq", "", "jq filter applied to the decoded response body")
	f.BoolVarP(&o.include, "include", "i", false, "print the status line and response headers")
	f.BoolVar(&o.metrics, "metrics", false, "print request metrics to stderr when done")

	cmd.AddCommand(
		newFetchCommand(o, "get", http.MethodGet),
		newFetchCommand(o, "delete", http.MethodDelete),
		newBodyCommand(o, "post", http.MethodPost),
		newBodyCommand(o, "put", http.MethodPut),
		newBodyCommand(o, "patch", http.MethodPatch),
		newHeadCommand(o),
		newOptionsCommand(o),
		newSendCommand(o),
		newCachedCommand(o),
	)
	return cmd
}

// ExitCode maps an error returned by the root command to a process
// exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, reqx.ErrHTTP) {
		return ExitHTTP
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return ExitTransport
	}
	return ExitFailure
}

// A session is a configured client for one command invocation.
type session struct {
	client   *reqx.Client
	criteria *cache.Criteria
	registry *prometheus.Registry
	close    func() error
}

func (o *options) session() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if o.timeout != 0 {
		cfg.Timeout = o.timeout
	}
	if o.policy != "" {
		cfg.CachePolicy = o.policy
		if cfg.Cache == config.CacheNone {
			cfg.Cache = config.CacheMemory
		}
	}
	if o.maxAge != 0 {
		cfg.CacheMaxAge = o.maxAge
	}

	s := &session{}
	var reg prometheus.Registerer
	if o.metrics {
		s.registry = prometheus.NewRegistry()
		reg = s.registry
	}
	s.client, s.close, err = cfg.NewClient(nil, reg)
	if err != nil {
		return nil, err
	}
	s.criteria = cfg.Criteria()
	return s, nil
}

func (s *session) finish(w io.Writer) {
	if s.registry != nil {
		_ = writeMetrics(w, s.registry)
	}
	_ = s.close()
}

func (o *options) requestOptions(s *session) []reqx.Option {
	var opts []reqx.Option
	if q := o.query.values(); q != nil {
		opts = append(opts, reqx.WithQuery(q))
	}
	for _, h := range o.headers.items {
		opts = append(opts, reqx.WithHeader(h.Name, h.Value))
	}
	if s.criteria != nil {
		opts = append(opts, reqx.WithCache(*s.criteria))
	}
	return opts
}

func (o *options) run(cmd *cobra.Command, f func(*session, []reqx.Option) error) error {
	s, err := o.session()
	if err != nil {
		return err
	}
	defer s.finish(cmd.ErrOrStderr())
	return f(s, o.requestOptions(s))
}

func writeStatus(w io.Writer, res *reqx.Result) {
	if res == nil {
		return
	}
	src := ""
	if res.FromCache {
		src = " (cached)"
	}
	fmt.Fprintf(w, "HTTP %d %s%s\n", res.StatusCode, http.StatusText(res.StatusCode), src)
	_ = res.Header.Write(w)
	fmt.Fprintln(w)
}
