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
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"sync"

	"github.com/gorilla/securecookie"

	riverrors "rivaas.dev/scoped/errors"
	"rivaas.dev/scoped/router/compiler"
	"rivaas.dev/scoped/router/recognizer"
)

// App is a frozen, immutable routing application.
//
// An App is produced by New from a configure function that declares
// routes, scopes, state, modifiers and fallbacks. After New returns,
// nothing inside the App changes: Route and ServeHTTP are safe for
// unlimited concurrent use without locking.
type App struct {
	scopes     []*scopeNode
	resources  []*Resource
	recognizer *recognizer.Recognizer

	prefix         string
	fallbackHead   bool
	logger         *slog.Logger
	formatter      riverrors.Formatter
	diagnostics    DiagnosticHandler
	observability  []ObservabilityRecorder
	cookieHashKey  []byte
	cookieBlockKey []byte
	cookieCodec    *securecookie.SecureCookie

	enableH2C      bool
	serverTimeouts *serverTimeouts
	serverMu       sync.Mutex
	server         *http.Server
}

// New builds an application.
//
// configure receives the root scope and declares everything the
// application serves. Building is all-or-nothing: the first failing
// declaration aborts the build and is returned as a *BuildError, and no
// App is returned.
//
// Example:
//
//	app, err := router.New(func(s *router.Scope) {
//	    s.GET("/", index)
//	    s.Mount("/api", func(api *router.Scope) {
//	        api.GET("/users/:id", getUser)
//	        api.POST("/users", createUser)
//	    })
//	}, router.WithLogger(logger))
//	if err != nil {
//	    log.Fatalf("Failed to build application: %v", err)
//	}
//	http.ListenAndServe(":8080", app)
func New(configure func(*Scope), opts ...Option) (*App, error) {
	a := &App{
		prefix:       "/",
		fallbackHead: true,
		logger:       slog.New(slog.DiscardHandler),
		formatter:    riverrors.NewRFC9457(""),
	}
	for _, opt := range opts {
		opt(a)
	}

	rootPrefix, err := a.validate()
	if err != nil {
		return nil, fmt.Errorf("router configuration validation failed: %w", err)
	}

	b := newBuilder(a, rootPrefix)
	if configure != nil {
		configure(&Scope{b: b, id: RootScope})
	}
	if b.err != nil {
		a.logger.Error("application build failed", slog.Any("error", b.err))
		return nil, b.err
	}
	b.freeze()

	a.logger.Debug("application built",
		slog.Int("scopes", len(a.scopes)),
		slog.Int("resources", len(a.resources)),
	)
	return a, nil
}

// MustNew is like New but panics if the build fails.
func MustNew(configure func(*Scope), opts ...Option) *App {
	a, err := New(configure, opts...)
	if err != nil {
		panic(fmt.Sprintf("router.MustNew: %v", err))
	}
	return a
}

// validate checks the options and returns the compiled root prefix.
func (a *App) validate() (*compiler.Pattern, error) {
	prefix, err := compiler.Compile(a.prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrefix, err)
	}
	if prefix.IsAsterisk() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrefix, a.prefix)
	}
	if a.formatter == nil {
		return nil, ErrNilFormatter
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	a.cookieCodec, err = newCookieCodec(a.cookieHashKey, a.cookieBlockKey)
	if err != nil {
		return nil, err
	}
	return prefix, nil
}

// Resources returns every resource in registration order.
func (a *App) Resources() []*Resource {
	return a.resources
}

// Resource returns the resource with the given id.
func (a *App) Resource(id int) (*Resource, bool) {
	if id < 0 || id >= len(a.resources) {
		return nil, false
	}
	return a.resources[id], true
}

// Scope describes the scope with the given id.
func (a *App) Scope(id ScopeID) (ScopeInfo, bool) {
	if id < 0 || int(id) >= len(a.scopes) {
		return ScopeInfo{}, false
	}
	n := a.scopes[id]
	return ScopeInfo{
		ID:          n.id,
		Parent:      n.parent,
		Prefix:      n.prefix.String(),
		Ancestors:   n.ancestors,
		HasFallback: n.fallback != nil,
	}, true
}

// NumScopes returns the number of scopes including the root.
func (a *App) NumScopes() int {
	return len(a.scopes)
}

// lookupState walks from id to the root and returns the first value of type t.
func (a *App) lookupState(id ScopeID, t reflect.Type) (any, bool) {
	if id < 0 || int(id) >= len(a.scopes) {
		return nil, false
	}
	anc := a.scopes[id].ancestors
	for i := len(anc) - 1; i >= 0; i-- {
		if v, ok := a.scopes[anc[i]].state[t]; ok {
			return v, true
		}
	}
	return nil, false
}

// ScopeState returns the state of type T visible from scope id.
func ScopeState[T any](a *App, id ScopeID) (T, bool) {
	v, ok := a.lookupState(id, reflect.TypeFor[T]())
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}
