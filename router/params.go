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
	"iter"
	"net/url"

	"rivaas.dev/scoped/router/compiler"
	"rivaas.dev/scoped/router/recognizer"
)

// Params gives access to the captured path parameters of a request.
//
// Values are slices of the request path; names come from the URI of the
// matched resource. When the request path carries encodings that decoding
// would change, such as %2F, the escaped path is matched and each value is
// unescaped on access, so "/users/a%2Fb" yields "a/b" for "/users/:id".
// The zero value has no parameters.
type Params struct {
	path     string
	escaped  bool
	uri      *compiler.Pattern
	captures []recognizer.Capture
}

func newParams(path string, uri *compiler.Pattern, captures []recognizer.Capture) Params {
	return Params{path: path, uri: uri, captures: captures}
}

// Len returns the number of captured parameters.
func (p Params) Len() int {
	return len(p.captures)
}

// Names returns the capture names in extraction order.
func (p Params) Names() []string {
	if p.uri == nil {
		return nil
	}
	return p.uri.CaptureNames()
}

// Index returns the i-th captured value.
func (p Params) Index(i int) string {
	c := p.captures[i]
	v := p.path[c.Start:c.End]
	if p.escaped {
		if u, err := url.PathUnescape(v); err == nil {
			return u
		}
	}
	return v
}

// Get returns the value captured under name.
func (p Params) Get(name string) (string, bool) {
	for i, n := range p.Names() {
		if n == name && i < len(p.captures) {
			return p.Index(i), true
		}
	}
	return "", false
}

// Value returns the value captured under name, or "".
func (p Params) Value(name string) string {
	v, _ := p.Get(name)
	return v
}

// CatchAll returns the remainder captured by a trailing catch-all segment.
func (p Params) CatchAll() (string, bool) {
	if p.uri == nil || len(p.captures) == 0 {
		return "", false
	}
	segs := p.uri.Segments()
	if len(segs) == 0 || segs[len(segs)-1].Kind != compiler.CatchAll {
		return "", false
	}
	return p.Index(len(p.captures) - 1), true
}

// All iterates over (name, value) pairs in extraction order.
func (p Params) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for i, n := range p.Names() {
			if i >= len(p.captures) {
				return
			}
			if !yield(n, p.Index(i)) {
				return
			}
		}
	}
}

// Map returns the parameters as a map.
func (p Params) Map() map[string]string {
	m := make(map[string]string, p.Len())
	for k, v := range p.All() {
		m[k] = v
	}
	return m
}
