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
	"errors"
	"fmt"
	"strings"

	"rivaas.dev/scoped/router/recognizer"
)

var (
	// ErrMethodConflict indicates that a method is already registered for a URI within its scope.
	ErrMethodConflict = errors.New("method already registered")

	// ErrDuplicateURI indicates that an equivalent URI is already registered by another resource.
	ErrDuplicateURI = recognizer.ErrDuplicateURI

	// ErrAsteriskWithoutOptions indicates an asterisk route that does not answer exactly OPTIONS.
	ErrAsteriskWithoutOptions = errors.New("asterisk route must only answer OPTIONS")

	// ErrInvalidPrefix indicates a scope prefix that cannot be used for mounting.
	ErrInvalidPrefix = errors.New("invalid scope prefix")

	// ErrNilHandler indicates that a nil handler, fallback or modifier was registered.
	ErrNilHandler = errors.New("handler must not be nil")

	// ErrInvalidMethod indicates a method token that is not a valid HTTP method.
	ErrInvalidMethod = errors.New("invalid HTTP method")

	// ErrNilFormatter indicates that WithErrorFormatter was given a nil formatter.
	ErrNilFormatter = errors.New("error formatter must not be nil")

	// ErrInvalidCookieKey indicates cookie keys that cannot be used to sign or encrypt cookies.
	ErrInvalidCookieKey = errors.New("invalid cookie key")

	// ErrNoCookieKeys indicates signed cookie access without configured keys.
	ErrNoCookieKeys = errors.New("no cookie keys configured")

	// ErrLocalExists indicates that a request-local value is already set.
	ErrLocalExists = errors.New("local value already set")

	// ErrAlreadyUpgraded indicates a second upgrade registration for the same request.
	ErrAlreadyUpgraded = errors.New("upgrade already registered")
)

// BuildError describes a failed declaration during application construction.
//
// Building is all-or-nothing: when New returns a BuildError no App is
// returned and nothing of the failed configuration is visible.
type BuildError struct {
	// Scope is the scope the failing declaration was made in.
	Scope ScopeID
	// Pattern is the route pattern or mount prefix involved, if any.
	Pattern string
	// Method is the conflicting method, if any.
	Method string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	var b strings.Builder
	b.WriteString("build failed")
	fmt.Fprintf(&b, " in scope %d", e.Scope)
	if e.Method != "" {
		b.WriteString(" for ")
		b.WriteString(e.Method)
	}
	if e.Pattern != "" {
		b.WriteString(" ")
		b.WriteString(e.Pattern)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *BuildError) Unwrap() error {
	return e.Err
}
