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
	"net/http"
	"slices"
	"strings"
)

// Methods is an ordered set of HTTP methods.
// A nil Methods returned by Handler.AllowedMethods means "any method".
type Methods []string

// NewMethods normalizes methods to upper case and drops duplicates while
// keeping the first occurrence order. Invalid tokens are reported by the
// builder when the methods are registered.
func NewMethods(methods ...string) Methods {
	out := make(Methods, 0, len(methods))
	for _, m := range methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

// Contains reports whether m includes method.
func (m Methods) Contains(method string) bool {
	return slices.Contains(m, method)
}

// String joins the methods with ", " as used by the Allow header.
func (m Methods) String() string {
	return strings.Join(m, ", ")
}

// allowHeader returns the Allow value for m: m in order plus OPTIONS.
func (m Methods) allowHeader() string {
	if m.Contains(http.MethodOptions) {
		return m.String()
	}
	return strings.Join(append(slices.Clone(m), http.MethodOptions), ", ")
}

// validMethod reports whether m is a non-empty RFC 9110 token.
func validMethod(m string) bool {
	if m == "" {
		return false
	}
	for i := range len(m) {
		c := m[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0:
		default:
			return false
		}
	}
	return true
}
