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

	"rivaas.dev/scoped/router/compiler"
)

// Endpoint is one (methods, handler) registration within a Resource.
type Endpoint struct {
	resource *Resource
	methods  Methods
	handler  Handler
	original Handler
}

// Resource returns the resource the endpoint belongs to.
func (e *Endpoint) Resource() *Resource { return e.resource }

// Methods returns the methods the endpoint answers; nil means any method.
func (e *Endpoint) Methods() Methods { return e.methods }

// Handler returns the handler with all scope modifiers applied.
func (e *Endpoint) Handler() Handler { return e.handler }

// Unwrapped returns the handler as it was registered.
func (e *Endpoint) Unwrapped() Handler { return e.original }

// Resource is the set of endpoints registered at one fully resolved URI
// within one scope.
type Resource struct {
	id        int
	scope     ScopeID
	uri       *compiler.Pattern
	endpoints []*Endpoint
	byMethod  map[string]int
	methods   Methods
	anyMethod int
	allow     string
}

func newResource(id int, scope ScopeID, uri *compiler.Pattern) *Resource {
	return &Resource{
		id:        id,
		scope:     scope,
		uri:       uri,
		byMethod:  make(map[string]int),
		anyMethod: -1,
	}
}

// ID returns the resource id, stable for the lifetime of the App.
func (r *Resource) ID() int { return r.id }

// Scope returns the scope the resource was declared in.
func (r *Resource) Scope() ScopeID { return r.scope }

// URI returns the fully resolved pattern.
func (r *Resource) URI() *compiler.Pattern { return r.uri }

// Endpoints returns the endpoints in registration order.
func (r *Resource) Endpoints() []*Endpoint { return r.endpoints }

// Methods returns the explicitly registered methods in registration order.
func (r *Resource) Methods() Methods { return r.methods }

// AllowHeader returns the precomputed Allow header value: the registered
// methods in registration order followed by OPTIONS.
func (r *Resource) AllowHeader() string { return r.allow }

// Endpoint returns the endpoint answering method: the explicit
// registration if any, else the endpoint answering any method.
func (r *Resource) Endpoint(method string) (*Endpoint, bool) {
	if i, ok := r.byMethod[method]; ok {
		return r.endpoints[i], true
	}
	if r.anyMethod >= 0 {
		return r.endpoints[r.anyMethod], true
	}
	return nil, false
}

// hasExplicit reports whether method is registered by name.
func (r *Resource) hasExplicit(method string) bool {
	_, ok := r.byMethod[method]
	return ok
}

// addEndpoint registers h for methods. Nothing is modified on conflict.
func (r *Resource) addEndpoint(methods Methods, h Handler) (*Endpoint, error) {
	if methods == nil {
		if r.anyMethod >= 0 {
			return nil, fmt.Errorf("%w: an any-method handler is already registered", ErrMethodConflict)
		}
	} else {
		if len(methods) == 0 {
			return nil, fmt.Errorf("%w: empty method set", ErrInvalidMethod)
		}
		for _, m := range methods {
			if !validMethod(m) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, m)
			}
			if r.hasExplicit(m) {
				return nil, fmt.Errorf("%w: %s", ErrMethodConflict, m)
			}
		}
	}

	ep := &Endpoint{resource: r, methods: methods, handler: h, original: h}
	idx := len(r.endpoints)
	r.endpoints = append(r.endpoints, ep)
	if methods == nil {
		r.anyMethod = idx
	}
	for _, m := range methods {
		r.byMethod[m] = idx
		r.methods = append(r.methods, m)
	}
	r.allow = r.methods.allowHeader()

	return ep, nil
}

// isAsteriskOptions reports whether methods is exactly {OPTIONS}.
func isAsteriskOptions(methods Methods) bool {
	return len(methods) == 1 && methods[0] == http.MethodOptions
}
