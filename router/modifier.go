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

// Modifier wraps a handler at build time.
//
// Modifiers registered with Scope.Use apply to every endpoint of the scope
// and of its descendants. Outer scopes wrap inner ones, and within a scope
// the first registered modifier is the outermost.
type Modifier interface {
	Modify(h Handler) Handler
}

// ModifierFunc adapts a function to the Modifier interface.
type ModifierFunc func(h Handler) Handler

// Modify calls f(h).
func (f ModifierFunc) Modify(h Handler) Handler {
	return f(h)
}

// MapResult returns a modifier that rewrites the terminal result of every
// wrapped handler. fn sees either a non-nil output or a non-nil error and
// returns the replacement.
//
// Example:
//
//	s.Use(router.MapResult(func(in *router.Input, out *router.Output, err error) (*router.Output, error) {
//	    if out != nil {
//	        out.Header.Set("X-Scope", "api")
//	    }
//	    return out, err
//	}))
func MapResult(fn func(in *Input, out *Output, err error) (*Output, error)) Modifier {
	return ModifierFunc(func(h Handler) Handler {
		return &mappedHandler{inner: h, fn: fn}
	})
}

type mappedHandler struct {
	inner Handler
	fn    func(in *Input, out *Output, err error) (*Output, error)
}

func (h *mappedHandler) AllowedMethods() Methods {
	return h.inner.AllowedMethods()
}

func (h *mappedHandler) Handle() Handle {
	inner := h.inner.Handle()
	return HandleFunc(func(in *Input) Poll {
		p := inner.Poll(in)
		if !p.IsReady() {
			return p
		}
		return Complete(h.fn(in, p.out, p.err))
	})
}

// chain applies modifiers so that mods[0] ends up outermost.
func chain(h Handler, mods []Modifier) Handler {
	for i := len(mods) - 1; i >= 0; i-- {
		h = mods[i].Modify(h)
	}
	return h
}
