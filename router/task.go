// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"log/slog"
	"net/http"
)

type taskState uint8

const (
	stateInit taskState = iota
	stateInFlight
	stateDone
)

// Task drives one request from resolution to a finalized response.
//
// A task starts in the initial state. The first Poll resolves the request,
// selects the endpoint or fallback and polls its continuation. While the
// continuation is pending the task is in flight and must be polled again
// after its waker fires. A continuation that completes while goroutines it
// spawned are still running keeps the task pending until they return.
// Once Poll reports a response the task is done, and polling it again
// panics.
//
// Tasks are not safe for concurrent use; ServeHTTP shows the intended
// driver loop.
type Task struct {
	app    *App
	input  *Input
	state  taskState
	handle Handle
	// settled holds a terminal result waiting for spawned goroutines.
	settled *Poll
}

// NewTask returns a task for req in the initial state.
func (a *App) NewTask(req *http.Request) *Task {
	return &Task{
		app: a,
		input: &Input{
			req:   req,
			app:   a,
			waker: newWaker(),
		},
	}
}

// Wake returns the channel that fires when a pending continuation can
// make progress.
func (t *Task) Wake() <-chan struct{} {
	return t.input.waker.C()
}

// Result returns the routing verdict. It is the zero value before the
// first poll.
func (t *Task) Result() RouteResult {
	return t.input.result
}

// Done reports whether the task reached its terminal state.
func (t *Task) Done() bool {
	return t.state == stateDone
}

// Poll advances the task. It returns the finalized output and true once
// the task completes, or nil and false while the continuation is pending.
// Polling a completed task is a programming error and panics.
func (t *Task) Poll() (*Output, bool) {
	switch t.state {
	case stateDone:
		panic("router: task polled after completion")
	case stateInit:
		t.begin()
		t.state = stateInFlight
	}

	var p Poll
	if t.settled != nil {
		p = *t.settled
	} else {
		p = t.handle.Poll(t.input)
		if !p.IsReady() {
			return nil, false
		}
	}

	if t.input.settling() {
		t.settled = &p
		t.handle = nil
		return nil, false
	}

	t.state = stateDone
	t.handle = nil
	t.settled = nil
	out := t.finish(p.out, p.err)
	t.input.release()
	return out, true
}

// Abandon drops the task before completion. It releases everything the
// request acquired, including upgrade registrations, and never panics.
// Abandoning a completed task does nothing.
func (t *Task) Abandon() {
	if t.state == stateDone {
		return
	}
	t.state = stateDone
	t.handle = nil
	t.settled = nil
	t.input.upgrade = nil
	t.input.release()
}

// begin resolves the request and selects the continuation.
func (t *Task) begin() {
	a := t.app
	in := t.input
	req := in.req

	// Encoded slashes stay inside their segment: the escaped form is
	// recognized whenever it differs from the decoded one.
	path, escaped := req.URL.Path, false
	if req.URL.RawPath != "" && req.URL.EscapedPath() == req.URL.RawPath {
		path, escaped = req.URL.RawPath, true
	}
	if req.URL.Path == "" && req.RequestURI == "*" {
		path = "*"
	}

	res := a.Route(path, req.Method)
	in.result = res
	if res.Resource != nil {
		in.params = newParams(path, res.Resource.uri, res.Captures)
		in.params.escaped = escaped
	}

	if res.Verdict == FoundEndpoint {
		t.handle = res.Endpoint.handler.Handle()
		return
	}

	f := a.findFallback(res.Scope)
	if f == nil {
		f = defaultFallback
	}
	t.handle = f.Fallback(&FallbackContext{
		Verdict:    res.Verdict,
		Resource:   res.Resource,
		Candidates: res.Candidates,
		Scope:      res.Scope,
		Method:     req.Method,
	})
}

// finish turns the terminal result into the response.
func (t *Task) finish(out *Output, err error) *Output {
	in := t.input
	if err != nil {
		out = t.app.errorOutput(in, err)
	} else {
		if out == nil {
			out = Empty(http.StatusOK)
		}
		if out.Header == nil {
			out.Header = make(http.Header)
		}
		if in.cookies != nil {
			for _, ck := range in.cookies.Delta() {
				if v := ck.String(); v != "" {
					out.Header.Add("Set-Cookie", v)
				}
			}
		}
		for k, vs := range in.header {
			for _, v := range vs {
				out.Header.Add(k, v)
			}
		}
	}

	out.setContentLength()
	if in.result.FallbackHead || in.req.Method == http.MethodHead {
		out.stripBody()
	}
	return out
}

// errorOutput converts err with the configured formatter.
func (a *App) errorOutput(in *Input, err error) *Output {
	resp := a.formatter.Format(in.req, err)

	body, encErr := resp.Encode()
	if encErr != nil {
		in.Logger().Error("encoding error response failed", slog.Any("error", encErr))
		body = nil
	}
	out := Bytes(resp.Status, resp.ContentType, body)
	if !bodyAllowed(resp.Status) {
		out = Empty(resp.Status)
	}
	for k, vs := range resp.Headers {
		for _, v := range vs {
			out.Header.Add(k, v)
		}
	}

	level := slog.LevelDebug
	if resp.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	in.Logger().Log(in.Context(), level, "request failed",
		slog.Int("status", resp.Status),
		slog.Any("error", err),
	)
	return out
}
