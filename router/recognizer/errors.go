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

package recognizer

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateURI indicates that an equivalent pattern is already registered.
	ErrDuplicateURI = errors.New("duplicate uri")

	// ErrInvalidID indicates a negative resource id.
	ErrInvalidID = errors.New("resource id must not be negative")
)

// ConflictError describes a pattern that collides with an already
// registered pattern. Capture names are ignored when detecting collisions.
type ConflictError struct {
	Pattern  string
	Existing int
	Err      error
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: %s conflicts with resource %d", e.Err, e.Pattern, e.Existing)
}

// Unwrap returns the underlying sentinel error.
func (e *ConflictError) Unwrap() error {
	return e.Err
}
