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

package compiler

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalidPattern indicates that a pattern is neither "*" nor starts with '/'.
	ErrInvalidPattern = errors.New("pattern must start with '/'")

	// ErrCatchAllNotLast indicates that a catch-all segment is followed by another segment.
	ErrCatchAllNotLast = errors.New("catch-all segment must be the last segment")

	// ErrDuplicateCaptureName indicates that two captures in one pattern share a name.
	ErrDuplicateCaptureName = errors.New("duplicate capture name")

	// ErrAsteriskWithPrefix indicates that the asterisk pattern was combined with a non-root prefix.
	ErrAsteriskWithPrefix = errors.New("asterisk pattern cannot be used with a prefix")

	// ErrEmptyCaptureName indicates a ':' or '*' segment without a name.
	ErrEmptyCaptureName = errors.New("capture name must not be empty")

	// ErrMissingCapture indicates that Render was called without a value for a capture.
	ErrMissingCapture = errors.New("missing capture value")

	// ErrInvalidCaptureValue indicates that a value cannot be substituted into a capture.
	ErrInvalidCaptureValue = errors.New("invalid capture value")
)

// PatternError describes a pattern that failed to compile or join.
type PatternError struct {
	Pattern string
	Err     error
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	return "invalid pattern " + strconv.Quote(e.Pattern) + ": " + e.Err.Error()
}

// Unwrap returns the underlying sentinel error.
func (e *PatternError) Unwrap() error {
	return e.Err
}
