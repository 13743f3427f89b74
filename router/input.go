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
	"bufio"
	"context"
	"log/slog"
	"net"
	"net/http"
	"reflect"
	"sync"
	"sync/atomic"
)

// UpgradeFunc takes over the connection after a 101 Switching Protocols
// response has been written. It owns conn and must close it.
type UpgradeFunc func(conn net.Conn, rw *bufio.ReadWriter)

// Waker signals the request task that a suspended continuation can make
// progress. Wake never blocks; multiple wakes before the next poll coalesce.
type Waker struct {
	ch chan struct{}
}

func newWaker() *Waker {
	return &Waker{ch: make(chan struct{}, 1)}
}

// Wake schedules the task to be polled again.
func (w *Waker) Wake() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

// C returns the channel the task driver waits on.
func (w *Waker) C() <-chan struct{} {
	return w.ch
}

// Input is the request-scoped state passed to continuations.
//
// An Input belongs to exactly one request and is never shared between
// requests. Apart from Logger its methods do not synchronize: work running
// on another goroutine (such as an AsyncFunc) owns the Input until it
// returns, and the task does not finalize a response before that.
type Input struct {
	req    *http.Request
	app    *App
	result RouteResult

	params   Params
	locals   map[any]any
	cookies  *Cookies
	header   http.Header
	upgrade  UpgradeFunc
	releases []func()
	waker    *Waker

	loggerOnce sync.Once
	logger     *slog.Logger

	detached atomic.Int32
	cancels  []context.CancelFunc
}

// Request returns the underlying HTTP request.
func (in *Input) Request() *http.Request { return in.req }

// Context returns the request context.
func (in *Input) Context() context.Context { return in.req.Context() }

// Method returns the request method.
func (in *Input) Method() string { return in.req.Method }

// Params returns the captured path parameters.
func (in *Input) Params() Params { return in.params }

// Param returns the path parameter called name, or "".
func (in *Input) Param(name string) string { return in.params.Value(name) }

// Scope returns the scope the request was resolved to.
func (in *Input) Scope() ScopeID { return in.result.Scope }

// Route returns the routing verdict of the request.
func (in *Input) Route() RouteResult { return in.result }

// Waker returns the waker of the request task.
func (in *Input) Waker() *Waker { return in.waker }

// Cookies returns the cookie jar, parsing the request cookies on first use.
func (in *Input) Cookies() *Cookies {
	if in.cookies == nil {
		in.cookies = newCookies(in.req, in.app.cookieCodec)
	}
	return in.cookies
}

// ResponseHeaders returns headers that are added to the successful
// response during finalization.
func (in *Input) ResponseHeaders() http.Header {
	if in.header == nil {
		in.header = make(http.Header)
	}
	return in.header
}

// Upgrade registers fn to take over the connection once a 101 response
// has been written. Only one upgrade can be registered per request; it is
// discarded when the request is abandoned.
func (in *Input) Upgrade(fn UpgradeFunc) error {
	if fn == nil {
		return ErrNilHandler
	}
	if in.upgrade != nil {
		return ErrAlreadyUpgraded
	}
	in.upgrade = fn
	return nil
}

// Logger returns a logger annotated with the request's routing verdict.
func (in *Input) Logger() *slog.Logger {
	in.loggerOnce.Do(func() {
		in.logger = in.app.logger.With(
			slog.String("method", in.req.Method),
			slog.String("path", in.req.URL.Path),
			slog.String("route", in.result.Pattern()),
			slog.String("verdict", in.result.Verdict.String()),
			slog.Int("scope", int(in.result.Scope)),
		)
	})
	return in.logger
}

// State returns the scope state of type t visible to this request.
func (in *Input) State(t reflect.Type) (any, bool) {
	return in.app.lookupState(in.result.Scope, t)
}

// StateOf returns the scope state of type T visible to the request: the
// value attached to the request's scope or to its nearest ancestor.
//
// Example:
//
//	cfg, ok := router.StateOf[*Config](in)
func StateOf[T any](in *Input) (T, bool) {
	v, ok := in.State(reflect.TypeFor[T]())
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// onRelease registers fn to run when the request completes or is abandoned.
func (in *Input) onRelease(fn func()) {
	in.releases = append(in.releases, fn)
}

// spawn runs fn on its own goroutine with a context derived from the
// request. The goroutine owns the Input until fn returns and wakes the
// task when it does.
func (in *Input) spawn(fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(in.Context())
	in.cancels = append(in.cancels, cancel)
	in.onRelease(cancel)

	in.detached.Add(1)
	waker := in.waker
	go func() {
		defer func() {
			in.detached.Add(-1)
			waker.Wake()
		}()
		fn(ctx)
	}()
}

// settling cancels every spawned goroutine and reports whether any of
// them is still running.
func (in *Input) settling() bool {
	if in.detached.Load() == 0 {
		return false
	}
	for _, cancel := range in.cancels {
		cancel()
	}
	return in.detached.Load() > 0
}

// release runs the release callbacks once.
func (in *Input) release() {
	for _, fn := range in.releases {
		fn()
	}
	in.releases = nil
}
