// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gogama/reqx/logging"
	"github.com/gogama/reqx/request"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testBase = "http://test.example/api"

func newTestClient(t *testing.T) (*Client, *mockHTTPDoer) {
	doer := newMockHTTPDoer(t)
	base, err := url.Parse(testBase)
	require.NoError(t, err)
	return &Client{
		HTTPDoer: doer,
		BaseURL:  base,
		Handlers: &HandlerGroup{},
	}, doer
}

func newResponse(status int, contentType, body string) *http.Response {
	h := http.Header{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

type mockHTTPDoer struct {
	mock.Mock
}

func newMockHTTPDoer(t *testing.T) *mockHTTPDoer {
	m := &mockHTTPDoer{}
	m.Test(t)
	return m
}

func (m *mockHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	err := args.Error(1)
	if resp, ok := args.Get(0).(*http.Response); ok {
		return resp, err
	}
	return nil, err
}

type mockHTTPDoerWithCloseIdleConnections struct {
	mockHTTPDoer
}

func newMockHTTPDoerWithCloseIdleConnections(t *testing.T) *mockHTTPDoerWithCloseIdleConnections {
	m := &mockHTTPDoerWithCloseIdleConnections{}
	m.Test(t)
	return m
}

func (m *mockHTTPDoerWithCloseIdleConnections) CloseIdleConnections() {
	m.Called()
}

type mockTimeoutPolicy struct {
	mock.Mock
}

func newMockTimeoutPolicy(t *testing.T) *mockTimeoutPolicy {
	m := &mockTimeoutPolicy{}
	m.Test(t)
	return m
}

func (m *mockTimeoutPolicy) Timeout(e *request.Execution) time.Duration {
	args := m.Called(e)
	return args.Get(0).(time.Duration)
}

type mockLimiter struct {
	mock.Mock
}

func newMockLimiter(t *testing.T) *mockLimiter {
	m := &mockLimiter{}
	m.Test(t)
	return m
}

func (m *mockLimiter) Wait(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (g *HandlerGroup) mock(evt Event) *mockHandler {
	if int(evt) < len(g.handlers) {
		for _, h := range g.handlers[evt] {
			if m, ok := h.(*mockHandler); ok {
				return m
			}
		}
	}
	m := &mockHandler{}
	g.PushBack(evt, m)
	return m
}

func (g *HandlerGroup) assertExpectations(t *testing.T) {
	if g.handlers == nil {
		return
	}
	for _, evt := range Events() {
		for _, h := range g.handlers[evt] {
			if m, ok := h.(*mockHandler); ok {
				m.AssertExpectations(t)
			}
		}
	}
}

type mockHandler struct {
	mock.Mock
}

func (m *mockHandler) Handle(evt Event, e *request.Execution) {
	m.Called(evt, e)
}

type trace struct {
	mu    sync.Mutex
	calls []string
}

func (tr *trace) get() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.calls...)
}

func (c *Client) addTraceHandlers() *trace {
	tr := &trace{}
	h := HandlerFunc(func(evt Event, _ *request.Execution) {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		tr.calls = append(tr.calls, evt.Name())
	})
	for _, evt := range Events() {
		c.Handlers.PushBack(evt, h)
	}
	return tr
}

type logEntry struct {
	level    logging.Level
	message  string
	metadata map[string]string
}

type logRecorder struct {
	mu      sync.Mutex
	entries []logEntry
}

func (r *logRecorder) Log(level logging.Level, message string, metadata map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{level, message, metadata})
}

func (r *logRecorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := make([]string, len(r.entries))
	for i := range r.entries {
		msgs[i] = r.entries[i].message
	}
	return msgs
}

type mockReadCloser struct {
	mock.Mock
}

func newMockReadCloser(t *testing.T) *mockReadCloser {
	m := &mockReadCloser{}
	m.Test(t)
	return m
}

func (m *mockReadCloser) Read(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *mockReadCloser) Close() error {
	args := m.Called()
	return args.Error(0)
}
