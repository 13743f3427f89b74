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
	"net/http"
	"reflect"

	"rivaas.dev/scoped/router/compiler"
)

// ScopeID identifies a scope. The root scope is RootScope; every mounted
// scope gets the next id in declaration order.
type ScopeID int

// RootScope is the id of the application's root scope.
const RootScope ScopeID = 0

// scopeNode is one frozen entry of the scope arena.
type scopeNode struct {
	id        ScopeID
	parent    ScopeID
	prefix    *compiler.Pattern
	ancestors []ScopeID
	fallback  Fallback
	state     map[reflect.Type]any
	modifiers []Modifier
}

// ScopeInfo describes a scope of a built App.
type ScopeInfo struct {
	ID     ScopeID
	Parent ScopeID
	Prefix string
	// Ancestors lists scope ids from the root to this scope, inclusive.
	Ancestors   []ScopeID
	HasFallback bool
}

// Scope is the build-time handle used to declare routes, nested scopes,
// state, modifiers and fallbacks. It is only valid inside the configure
// function passed to New or Mount.
//
// Declarations never fail individually: the first error is recorded and
// returned by New, and everything declared after it is ignored.
type Scope struct {
	b  *builder
	id ScopeID
}

// ID returns the id of the scope.
func (s *Scope) ID() ScopeID { return s.id }

// Prefix returns the fully resolved prefix of the scope.
func (s *Scope) Prefix() string { return s.node().prefix.String() }

func (s *Scope) node() *scopeNode { return s.b.scopes[s.id] }

func (s *Scope) failed() bool { return s.b.err != nil }

func (s *Scope) fail(pattern, method string, err error) {
	if s.b.err == nil {
		s.b.err = &BuildError{Scope: s.id, Pattern: pattern, Method: method, Err: err}
	}
}

// Route registers h at pattern for the methods h reports. A handler
// reporting no methods answers any method without a more specific
// registration on the same URI.
func (s *Scope) Route(pattern string, h Handler) {
	if s.failed() {
		return
	}
	if h == nil {
		s.fail(pattern, "", ErrNilHandler)
		return
	}
	s.b.register(s, pattern, h)
}

// Handle registers h at pattern for methods. Without methods it behaves
// like Route.
func (s *Scope) Handle(pattern string, h Handler, methods ...string) {
	if h != nil && len(methods) > 0 {
		h = WithMethods(h, methods...)
	}
	s.Route(pattern, h)
}

// GET registers h for GET requests at pattern.
func (s *Scope) GET(pattern string, h Handler) { s.Handle(pattern, h, http.MethodGet) }

// POST registers h for POST requests at pattern.
func (s *Scope) POST(pattern string, h Handler) { s.Handle(pattern, h, http.MethodPost) }

// PUT registers h for PUT requests at pattern.
func (s *Scope) PUT(pattern string, h Handler) { s.Handle(pattern, h, http.MethodPut) }

// PATCH registers h for PATCH requests at pattern.
func (s *Scope) PATCH(pattern string, h Handler) { s.Handle(pattern, h, http.MethodPatch) }

// DELETE registers h for DELETE requests at pattern.
func (s *Scope) DELETE(pattern string, h Handler) { s.Handle(pattern, h, http.MethodDelete) }

// HEAD registers h for HEAD requests at pattern.
func (s *Scope) HEAD(pattern string, h Handler) { s.Handle(pattern, h, http.MethodHead) }

// OPTIONS registers h for OPTIONS requests at pattern. Use the pattern "*"
// on the root scope to answer "OPTIONS *".
func (s *Scope) OPTIONS(pattern string, h Handler) { s.Handle(pattern, h, http.MethodOptions) }

// Mount declares a nested scope under prefix and configures it.
//
// Example:
//
//	s.Mount("/api/v1", func(api *router.Scope) {
//	    api.State(apiConfig)
//	    api.Fallback(apiNotFound)
//	    api.GET("/users/:id", getUser)
//	})
func (s *Scope) Mount(prefix string, configure func(*Scope)) {
	if s.failed() {
		return
	}

	p, err := compiler.Compile(prefix)
	if err != nil {
		s.fail(prefix, "", fmt.Errorf("%w: %w", ErrInvalidPrefix, err))
		return
	}
	if p.IsAsterisk() {
		s.fail(prefix, "", fmt.Errorf("%w: %w", ErrInvalidPrefix, compiler.ErrAsteriskWithPrefix))
		return
	}
	full, err := s.node().prefix.Join(p)
	if err != nil {
		s.fail(prefix, "", fmt.Errorf("%w: %w", ErrInvalidPrefix, err))
		return
	}

	child := s.b.newScope(s.id, full)
	s.b.diagnose(DiagScopeMounted, "scope mounted", map[string]any{
		"scope":  int(child.id),
		"parent": int(s.id),
		"prefix": full.String(),
	})
	if configure != nil {
		configure(&Scope{b: s.b, id: child.id})
	}
}

// With applies configure to this scope without creating a nested scope.
// It groups declarations that share setup code.
func (s *Scope) With(configure func(*Scope)) {
	if s.failed() || configure == nil {
		return
	}
	configure(s)
}

// State attaches v as scope state, keyed by its dynamic type. Requests
// resolved to this scope or any descendant without its own value of the
// same type observe v through StateOf. A second value of the same type on
// the same scope replaces the first.
func (s *Scope) State(v any) {
	if s.failed() {
		return
	}
	if v == nil {
		s.fail("", "", fmt.Errorf("%w: nil state", ErrNilHandler))
		return
	}
	n := s.node()
	if n.state == nil {
		n.state = make(map[reflect.Type]any)
	}
	n.state[reflect.TypeOf(v)] = v
}

// Use appends modifiers to the scope. They wrap every endpoint of this
// scope and its descendants, regardless of declaration order.
func (s *Scope) Use(mods ...Modifier) {
	if s.failed() {
		return
	}
	for _, m := range mods {
		if m == nil {
			s.fail("", "", fmt.Errorf("%w: nil modifier", ErrNilHandler))
			return
		}
	}
	n := s.node()
	n.modifiers = append(n.modifiers, mods...)
}

// Fallback sets the fallback for this scope. It answers requests resolved
// to this scope or to descendants without a fallback of their own when no
// endpoint matches.
func (s *Scope) Fallback(f Fallback) {
	if s.failed() {
		return
	}
	if f == nil {
		s.fail("", "", fmt.Errorf("%w: nil fallback", ErrNilHandler))
		return
	}
	s.node().fallback = f
}
