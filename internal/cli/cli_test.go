// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gogama/reqx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   string            `json:"query"`
	Header  map[string]string `json:"header"`
	Type    string            `json:"type"`
	Body    string            `json:"body"`
	Fields  map[string]string `json:"fields,omitempty"`
	Files   map[string]string `json:"files,omitempty"`
	Counter int               `json:"counter"`
}

func newServer(t *testing.T) *httptest.Server {
	var counter atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := counter.Add(1)
		switch r.URL.Path {
		case "/api/fail":
			w.WriteHeader(http.StatusBadGateway)
			return
		case "/api/allow":
			w.Header().Set("Allow", "GET, PUT")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		rec := received{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.RawQuery,
			Header:  map[string]string{"X-Key": r.Header.Get("X-Key")},
			Type:    r.Header.Get("Content-Type"),
			Counter: int(n),
		}
		if mt, params, err := mime.ParseMediaType(rec.Type); err == nil && mt == "multipart/form-data" {
			form, err := multipart.NewReader(r.Body, params["boundary"]).ReadForm(1 << 20)
			require.NoError(t, err)
			rec.Fields = map[string]string{}
			for name, v := range form.Value {
				rec.Fields[name] = strings.Join(v, ",")
			}
			rec.Files = map[string]string{}
			for name, fhs := range form.File {
				f, err := fhs[0].Open()
				require.NoError(t, err)
				b, _ := io.ReadAll(f)
				rec.Files[name] = fhs[0].Filename + ":" + string(b)
			}
		} else {
			b, _ := io.ReadAll(r.Body)
			rec.Body = string(b)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rec)
	}))
	t.Cleanup(server.Close)
	return server
}

func run(t *testing.T, server *httptest.Server, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--base-url", server.URL + "/api/"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeOutput(t *testing.T, out string) received {
	var rec received
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	return rec
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand(io.Discard, io.Discard)
	assert.Equal(t, "reqx", cmd.Use)
	assert.NotEmpty(t, cmd.Long)
	for _, name := range []string{"base-url", "header", "query", "timeout", "cache-policy", "max-age", "jq", "include", "metrics"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"get", "delete", "post", "put", "patch", "head", "options", "send", "cached"}, names)
}

func TestCommands(t *testing.T) {
	t.Setenv("REQX_LOG_LEVEL", "critical")
	server := newServer(t)

	t.Run("get", func(t *testing.T) {
		out, _, err := run(t, server, "get", "items", "-q", "b=2", "-q", "a=x y", "-H", "X-Key: k1")
		require.NoError(t, err)
		rec := decodeOutput(t, out)
		assert.Equal(t, "GET", rec.Method)
		assert.Equal(t, "/api/items", rec.Path)
		assert.Equal(t, "a=x%20y&b=2", rec.Query)
		assert.Equal(t, "k1", rec.Header["X-Key"])
	})
	t.Run("include", func(t *testing.T) {
		out, _, err := run(t, server, "-i", "delete", "items/1")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "HTTP 200 OK\r\n") || strings.HasPrefix(out, "HTTP 200 OK\n"), out)
		assert.Contains(t, out, "Content-Type: application/json")
	})
	t.Run("post json", func(t *testing.T) {
		out, _, err := run(t, server, "post", "items", "--json", `{"a":1}`)
		require.NoError(t, err)
		rec := decodeOutput(t, out)
		assert.Equal(t, "POST", rec.Method)
		assert.Equal(t, "application/json", rec.Type)
		assert.Equal(t, `{"a":1}`, rec.Body)
	})
	t.Run("put form", func(t *testing.T) {
		out, _, err := run(t, server, "put", "items/1", "--form", "n=a b", "--form", "m=1")
		require.NoError(t, err)
		rec := decodeOutput(t, out)
		assert.Equal(t, "application/x-www-form-urlencoded", rec.Type)
		assert.Equal(t, "m=1&n=a%20b", rec.Body)
	})
	t.Run("patch multipart", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "note.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))
		out, _, err := run(t, server, "patch", "items/1", "--field", "title=t", "--file", "doc="+path)
		require.NoError(t, err)
		rec := decodeOutput(t, out)
		assert.Equal(t, map[string]string{"title": "t"}, rec.Fields)
		assert.Equal(t, map[string]string{"doc": "note.txt:hello"}, rec.Files)
	})
	t.Run("post data file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "body.bin")
		require.NoError(t, os.WriteFile(path, []byte("raw"), 0o600))
		out, _, err := run(t, server, "post", "items", "-d", "@"+path, "--content-type", "text/plain")
		require.NoError(t, err)
		rec := decodeOutput(t, out)
		assert.Equal(t, "text/plain", rec.Type)
		assert.Equal(t, "raw", rec.Body)
	})
	t.Run("exclusive bodies", func(t *testing.T) {
		_, _, err := run(t, server, "post", "items", "-d", "x", "--json", "{}")
		assert.Error(t, err)
	})
	t.Run("jq", func(t *testing.T) {
		out, _, err := run(t, server, "get", "items", "--jq", ".method, .path")
		require.NoError(t, err)
		assert.Equal(t, "\"GET\"\n\"/api/items\"\n", out)
	})
	t.Run("bad jq", func(t *testing.T) {
		_, _, err := run(t, server, "get", "items", "--jq", ".[")
		assert.ErrorContains(t, err, "jq: parse")
	})
	t.Run("head", func(t *testing.T) {
		out, _, err := run(t, server, "head", "items")
		require.NoError(t, err)
		assert.Contains(t, out, "Content-Type: application/json")
	})
	t.Run("options", func(t *testing.T) {
		out, _, err := run(t, server, "options", "allow")
		require.NoError(t, err)
		assert.Equal(t, "GET\nPUT\n", out)
	})
	t.Run("send", func(t *testing.T) {
		out, _, err := run(t, server, "send", "purge", "items")
		require.NoError(t, err)
		assert.Empty(t, out)
	})
	t.Run("http error", func(t *testing.T) {
		_, _, err := run(t, server, "get", "fail")
		assert.ErrorIs(t, err, reqx.ErrHTTP)
		assert.Equal(t, ExitHTTP, ExitCode(err))
	})
	t.Run("cache", func(t *testing.T) {
		t.Setenv("REQX_CACHE", "file")
		t.Setenv("REQX_CACHE_DIR", t.TempDir())
		out, _, err := run(t, server, "get", "cached-item", "--cache-policy", "ReturnCacheDataElseLoad")
		require.NoError(t, err)
		first := decodeOutput(t, out)
		out, _, err = run(t, server, "-i", "cached", "cached-item")
		require.NoError(t, err)
		assert.Contains(t, out, "(cached)")
		out, _, err = run(t, server, "get", "cached-item", "--cache-policy", "ReturnCacheDataElseLoad")
		require.NoError(t, err)
		assert.Equal(t, first.Counter, decodeOutput(t, out).Counter)
		_, _, err = run(t, server, "cached", "other")
		assert.ErrorIs(t, err, reqx.ErrCacheNotFound)
	})
	t.Run("metrics", func(t *testing.T) {
		_, stderr, err := run(t, server, "--metrics", "get", "items")
		require.NoError(t, err)
		assert.Contains(t, stderr, `reqx_requests_total{method="GET",outcome="success"} 1`)
	})
	t.Run("bad config", func(t *testing.T) {
		t.Setenv("REQX_CACHE", "disk")
		_, _, err := run(t, server, "get", "items")
		assert.Error(t, err)
		assert.Equal(t, ExitFailure, ExitCode(err))
	})
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("x")))
	assert.Equal(t, ExitTransport, ExitCode(&url.Error{Op: "Get", URL: "u", Err: errors.New("refused")}))
	assert.Equal(t, ExitHTTP, ExitCode(&reqx.ServiceError{Kind: reqx.HTTPError, StatusCode: 500}))
}

func TestPairs(t *testing.T) {
	p := newPairs("=")
	require.NoError(t, p.Set("a=1"))
	require.NoError(t, p.Set("a=2=3"))
	require.NoError(t, p.Set("b="))
	assert.Error(t, p.Set("novalue"))
	assert.Error(t, p.Set("=x"))
	assert.Equal(t, "[a=1,a=2=3,b=]", p.String())
	assert.Equal(t, url.Values{"a": {"1", "2=3"}, "b": {""}}, p.values())
	assert.Equal(t, "name=value", p.Type())

	h := newPairs(":")
	require.NoError(t, h.Set("X-A:  v "))
	assert.Equal(t, "v", h.items[0].Value)
}
