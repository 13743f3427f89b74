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
	"context"
)

// Handler is the capability every endpoint implements.
//
// AllowedMethods lists the methods the handler answers; nil means it
// answers any method that has no more specific registration on the same
// resource. Handle returns a fresh continuation for one request.
type Handler interface {
	AllowedMethods() Methods
	Handle() Handle
}

// Handle is a per-request continuation.
//
// Poll is called by the request task until it reports a terminal result.
// A continuation that returns Pending must arrange for Input.Waker to be
// woken once it can make progress; the task is not polled again before
// that. Poll is never called again after a terminal result.
type Handle interface {
	Poll(in *Input) Poll
}

// HandleFunc adapts a function to the Handle interface.
type HandleFunc func(in *Input) Poll

// Poll calls f(in).
func (f HandleFunc) Poll(in *Input) Poll {
	return f(in)
}

// Poll is the result of polling a Handle: either a terminal output, a
// terminal error, or "not ready yet".
type Poll struct {
	out   *Output
	err   error
	ready bool
}

// Ready returns a terminal, successful poll result.
func Ready(out *Output) Poll {
	return Poll{out: out, ready: true}
}

// Fail returns a terminal, failed poll result.
func Fail(err error) Poll {
	return Poll{err: err, ready: true}
}

// Pending reports that the continuation cannot make progress yet.
func Pending() Poll {
	return Poll{}
}

// Complete turns a (value, error) pair into a terminal poll result.
func Complete(out *Output, err error) Poll {
	if err != nil {
		return Fail(err)
	}
	return Ready(out)
}

// IsReady reports whether the poll is terminal.
func (p Poll) IsReady() bool {
	return p.ready
}

// Result returns the terminal output or error. Both are nil for pending polls.
func (p Poll) Result() (*Output, error) {
	return p.out, p.err
}

// HandlerFunc is a synchronous handler answering any method.
// Use WithMethods or the Scope method helpers to restrict it.
//
// Example:
//
//	s.GET("/users/:id", router.HandlerFunc(func(in *router.Input) (*router.Output, error) {
//	    return router.Text(http.StatusOK, "user "+in.Param("id")), nil
//	}))
type HandlerFunc func(in *Input) (*Output, error)

// AllowedMethods returns nil: a bare HandlerFunc answers any method.
func (f HandlerFunc) AllowedMethods() Methods {
	return nil
}

// Handle returns a continuation that completes on its first poll.
func (f HandlerFunc) Handle() Handle {
	return HandleFunc(func(in *Input) Poll {
		return Complete(f(in))
	})
}

// AsyncFunc is a handler that runs on its own goroutine.
//
// The first poll starts the goroutine and reports Pending; the goroutine
// wakes the task when it finishes. The context passed to the function is
// canceled when the request is abandoned or when an outer continuation
// completes first, as the timeout modifier does. In the latter case the
// response is held back until the function returns, so it may keep using
// the Input until then.
//
// Example:
//
//	s.GET("/report", router.AsyncFunc(func(ctx context.Context, in *router.Input) (*router.Output, error) {
//	    report, err := buildReport(ctx)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return router.JSON(http.StatusOK, report)
//	}))
type AsyncFunc func(ctx context.Context, in *Input) (*Output, error)

// AllowedMethods returns nil: a bare AsyncFunc answers any method.
func (f AsyncFunc) AllowedMethods() Methods {
	return nil
}

// Handle returns a continuation that runs f on a goroutine.
func (f AsyncFunc) Handle() Handle {
	return &asyncHandle{fn: f}
}

type asyncResult struct {
	out *Output
	err error
}

type asyncHandle struct {
	fn   AsyncFunc
	done chan asyncResult
}

func (h *asyncHandle) Poll(in *Input) Poll {
	if h.done == nil {
		h.done = make(chan asyncResult, 1)
		in.spawn(func(ctx context.Context) {
			out, err := h.fn(ctx, in)
			h.done <- asyncResult{out: out, err: err}
		})
	}

	select {
	case r := <-h.done:
		return Complete(r.out, r.err)
	default:
		return Pending()
	}
}

// WithMethods restricts h to the given methods.
//
// Example:
//
//	s.Route("/users", router.WithMethods(listOrCreate, http.MethodGet, http.MethodPost))
func WithMethods(h Handler, methods ...string) Handler {
	return &methodHandler{Handler: h, methods: NewMethods(methods...)}
}

type methodHandler struct {
	Handler
	methods Methods
}

func (h *methodHandler) AllowedMethods() Methods {
	return h.methods
}
