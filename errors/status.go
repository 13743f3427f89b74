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

package errors

import (
	"errors"
	"net/http"
)

// WithStatus wraps an error with an explicit HTTP status code.
// The wrapped error implements ErrorType.
//
// If err is nil, the status text for the given status code is used as the
// error message.
//
// Example:
//
//	return errors.WithStatus(err, http.StatusNotFound)
//	return errors.WithStatus(nil, http.StatusNoContent) // nil allowed
func WithStatus(err error, status int) error {
	return &statusError{err: err, status: status}
}

// WithHeader wraps an error so that its response carries an extra header.
// Headers of wrapped errors are kept; the outermost value wins per key.
//
// Example:
//
//	err := errors.WithHeader(errors.WithStatus(nil, http.StatusMethodNotAllowed), "Allow", "GET, OPTIONS")
func WithHeader(err error, key, value string) error {
	h := make(http.Header, 1)
	h.Set(key, value)
	return &headerError{err: err, header: h}
}

// BadRequest marks err as a client error (400).
func BadRequest(err error) error {
	return WithStatus(err, http.StatusBadRequest)
}

// Internal marks err as a server error (500).
func Internal(err error) error {
	return WithStatus(err, http.StatusInternalServerError)
}

// StatusOf classifies err: the status of the first ErrorType in its chain,
// or 500 when there is none.
func StatusOf(err error) int {
	var typed ErrorType
	if errors.As(err, &typed) {
		return typed.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// HeadersOf returns the headers contributed by err, or nil.
func HeadersOf(err error) http.Header {
	var withHeaders ErrorHeaders
	if errors.As(err, &withHeaders) {
		return withHeaders.Headers()
	}
	return nil
}

// statusError wraps an error with an explicit status code.
type statusError struct {
	err    error
	status int
}

func (e *statusError) Error() string {
	if e.err == nil {
		return http.StatusText(e.status)
	}
	return e.err.Error()
}

func (e *statusError) Unwrap() error {
	return e.err
}

func (e *statusError) HTTPStatus() int {
	return e.status
}

// headerError wraps an error with extra response headers.
type headerError struct {
	err    error
	header http.Header
}

func (e *headerError) Error() string {
	if e.err == nil {
		return "error"
	}
	return e.err.Error()
}

func (e *headerError) Unwrap() error {
	return e.err
}

func (e *headerError) Headers() http.Header {
	inner := HeadersOf(e.err)
	if inner == nil {
		return e.header
	}
	merged := inner.Clone()
	for k, v := range e.header {
		merged[k] = v
	}
	return merged
}
