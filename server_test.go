// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/gogama/reqx/timeout"
)

var httpServer = httptest.NewUnstartedServer(http.HandlerFunc(serverHandler))
var httpsServer = httptest.NewUnstartedServer(http.HandlerFunc(serverHandler))
var http2Server = httptest.NewUnstartedServer(http.HandlerFunc(serverHandler))
var servers = []*httptest.Server{httpServer, httpsServer, http2Server}

func TestMain(m *testing.M) {
	httpServer.Start()
	httpsServer.StartTLS()
	http2Server.EnableHTTP2 = true
	http2Server.StartTLS()
	for _, server := range servers {
		waitForServerStart(server)
	}
	code := m.Run()
	for _, server := range servers {
		server.Close()
	}
	os.Exit(code)
}

func waitForServerStart(server *httptest.Server) {
	cl := serverClient(server)
	cl.TimeoutPolicy = timeout.Fixed(2 * time.Second)
	var err error
	for i := 0; i < 10; i++ {
		var r *Result
		r, err = cl.Get(context.Background(), "", serverInstruction{StatusCode: 200, Body: "ok"}.option())
		if err == nil && r != nil && string(r.Body) == "ok" {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	panic(fmt.Sprintf("Test server startup failed: %v", err))
}

func serverName(server *httptest.Server) string {
	switch server {
	case httpServer:
		return "http"
	case httpsServer:
		return "https"
	case http2Server:
		return "http2"
	default:
		panic("unknown server")
	}
}

func serverClient(server *httptest.Server) *Client {
	base, err := url.Parse(server.URL + "/api/")
	if err != nil {
		panic(err)
	}
	return &Client{
		HTTPDoer: server.Client(),
		BaseURL:  base,
	}
}

const instructionHeader = "X-Test-Instruction"

// A serverInstruction tells the test server how to respond. A zero
// StatusCode asks the server to echo the request back as JSON.
type serverInstruction struct {
	HeaderPause time.Duration
	StatusCode  int
	Header      map[string]string
	Body        string
}

func (i serverInstruction) option() Option {
	b, err := json.Marshal(i)
	if err != nil {
		panic(err)
	}
	return WithHeader(instructionHeader, string(b))
}

type echo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Query       string `json:"query"`
	ContentType string `json:"content_type"`
	UserAgent   string `json:"user_agent"`
	Body        string `json:"body"`
}

func serverHandler(w http.ResponseWriter, req *http.Request) {
	var i serverInstruction
	if s := req.Header.Get(instructionHeader); s != "" {
		if err := json.Unmarshal([]byte(s), &i); err != nil {
			w.WriteHeader(400)
			_, _ = io.WriteString(w, fmt.Sprintf("bad instruction: %s", err.Error()))
			return
		}
	}

	b, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		w.WriteHeader(400)
		return
	}

	if i.StatusCode == 0 {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(echo{
			Method:      req.Method,
			Path:        req.URL.Path,
			Query:       req.URL.RawQuery,
			ContentType: req.Header.Get("Content-Type"),
			UserAgent:   req.Header.Get("User-Agent"),
			Body:        string(b),
		})
		return
	}

	for k, v := range i.Header {
		w.Header().Set(k, v)
	}

	select {
	case <-time.After(i.HeaderPause):
	case <-req.Context().Done():
		return
	}

	w.WriteHeader(i.StatusCode)
	_, _ = io.WriteString(w, i.Body)
}
