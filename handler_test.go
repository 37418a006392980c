// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"fmt"
	"testing"

	"github.com/gogama/reqx/request"
	"github.com/stretchr/testify/assert"
)

func TestHandlerGroup(t *testing.T) {
	var evts []string
	var execs []*request.Execution
	h1 := &testHandler{seq: 1, evts: &evts, execs: &execs}
	h2 := &testHandler{seq: 2, evts: &evts, execs: &execs}
	g := &HandlerGroup{}
	t.Run("PushBack", func(t *testing.T) {
		assert.PanicsWithValue(t, "reqx: nil handler", func() { g.PushBack(BeforeExecutionStart, nil) })
		assert.PanicsWithValue(t, "reqx: unknown event", func() { g.PushBack(Event(123), h1) })
		g.PushBack(BeforeExecutionStart, h1)
		g.PushBack(BeforeExecutionStart, h2)
		g.PushBack(AfterDispatch, h1)
		assert.Equal(t, 2, g.Len(BeforeExecutionStart))
		assert.Equal(t, 1, g.Len(AfterDispatch))
		assert.Equal(t, 0, g.Len(AfterCacheStore))
		assert.Equal(t, 0, g.Len(Event(-1)))
	})
	t.Run("run", func(t *testing.T) {
		e1 := &request.Execution{ID: "1"}
		e2 := &request.Execution{ID: "2"}
		g.run(AfterCacheFallback, e1)
		assert.Empty(t, evts)
		g.run(BeforeExecutionStart, e1)
		assert.Equal(t, []string{"1.BeforeExecutionStart", "2.BeforeExecutionStart"}, evts)
		assert.Equal(t, []*request.Execution{e1, e1}, execs)
		evts = evts[:0]
		execs = execs[:0]
		g.run(AfterDispatch, e2)
		assert.Equal(t, []string{"1.AfterDispatch"}, evts)
		assert.Equal(t, []*request.Execution{e2}, execs)
	})
	t.Run("nil group", func(t *testing.T) {
		var nilGroup *HandlerGroup
		assert.NotPanics(t, func() { nilGroup.run(BeforeDispatch, &request.Execution{}) })
		assert.Equal(t, 0, nilGroup.Len(BeforeDispatch))
	})
}

type testHandler struct {
	seq   int
	evts  *[]string
	execs *[]*request.Execution
}

func (h *testHandler) Handle(evt Event, e *request.Execution) {
	*h.evts = append(*h.evts, fmt.Sprintf("%d.%s", h.seq, evt))
	*h.execs = append(*h.execs, e)
}

func TestHandlerFunc(t *testing.T) {
	var gotEvt Event
	var gotExec *request.Execution
	h := HandlerFunc(func(evt Event, e *request.Execution) {
		gotEvt = evt
		gotExec = e
	})
	e := &request.Execution{}
	h.Handle(BeforeReadBody, e)
	assert.Equal(t, BeforeReadBody, gotEvt)
	assert.Same(t, e, gotExec)
}
