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

//go:build !integration

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// notFound is a domain error that classifies itself.
type notFound struct {
	resource string
}

func (e notFound) Error() string { return e.resource + " not found" }
func (notFound) HTTPStatus() int { return http.StatusNotFound }
func (notFound) Code() string { return "not_found" }

// invalidFields maps field names to their problems.
type invalidFields map[string]string

func (e invalidFields) Error() string { return fmt.Sprintf("%d invalid field(s)", len(e)) }
func (invalidFields) HTTPStatus() int { return http.StatusUnprocessableEntity }
func (e invalidFields) Details() any { return map[string]string(e) }

func TestRFC9457_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantTitle  string
		wantDetail string
		wantExt    map[string]any
	}{
		{
			name:       "plain error",
			err:        stderrors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   "about:blank",
			wantTitle:  "Internal Server Error",
			wantDetail: "boom",
			wantExt:    map[string]any{},
		},
		{
			name:       "bare status",
			err:        WithStatus(nil, http.StatusMethodNotAllowed),
			wantStatus: http.StatusMethodNotAllowed,
			wantType:   "about:blank",
			wantTitle:  "Method Not Allowed",
			wantDetail: "Method Not Allowed",
			wantExt:    map[string]any{},
		},
		{
			name:       "coded domain error",
			err:        notFound{resource: "note"},
			wantStatus: http.StatusNotFound,
			wantType:   "https://notes.example/problems/not_found",
			wantTitle:  "Not Found",
			wantDetail: "note not found",
			wantExt:    map[string]any{"code": "not_found"},
		},
		{
			name:       "wrapped domain error",
			err:        fmt.Errorf("loading note 7: %w", notFound{resource: "note"}),
			wantStatus: http.StatusNotFound,
			wantType:   "https://notes.example/problems/not_found",
			wantTitle:  "Not Found",
			wantDetail: "loading note 7: note not found",
			wantExt:    map[string]any{"code": "not_found"},
		},
		{
			name:       "field details",
			err:        invalidFields{"title": "required"},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   "about:blank",
			wantTitle:  "Unprocessable Entity",
			wantDetail: "1 invalid field(s)",
			wantExt:    map[string]any{"errors": map[string]string{"title": "required"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := &RFC9457{BaseURL: "https://notes.example/problems", DisableErrorID: true}
			response := f.Format(httptest.NewRequest(http.MethodGet, "/api/notes/7", nil), tt.err)

			assert.Equal(t, tt.wantStatus, response.Status)
			assert.Equal(t, "application/problem+json; charset=utf-8", response.ContentType)

			p, ok := response.Body.(ProblemDetail)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, tt.wantTitle, p.Title)
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, tt.wantDetail, p.Detail)
			assert.Equal(t, "/api/notes/7", p.Instance)
			assert.Equal(t, tt.wantExt, p.Extensions)
		})
	}
}

func TestRFC9457_AllowHeaderOnMethodNotAllowed(t *testing.T) {
	t.Parallel()

	err := WithHeader(WithStatus(nil, http.StatusMethodNotAllowed), "Allow", "GET, HEAD, OPTIONS")
	f := &RFC9457{DisableErrorID: true}
	response := f.Format(httptest.NewRequest(http.MethodPut, "/api/notes", nil), err)

	assert.Equal(t, http.StatusMethodNotAllowed, response.Status)
	assert.Equal(t, "GET, HEAD, OPTIONS", response.Headers.Get("Allow"))

	body, encErr := response.Encode()
	require.NoError(t, encErr)
	assert.JSONEq(t, `{
		"type": "about:blank",
		"title": "Method Not Allowed",
		"status": 405,
		"detail": "Method Not Allowed",
		"instance": "/api/notes"
	}`, string(body))
}

func TestRFC9457_NilRequest(t *testing.T) {
	t.Parallel()

	f := &RFC9457{DisableErrorID: true}
	response := f.Format(nil, BadRequest(stderrors.New("missing id")))

	p, ok := response.Body.(ProblemDetail)
	require.True(t, ok)
	assert.Empty(t, p.Instance)

	body, err := response.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"about:blank","title":"Bad Request","status":400,"detail":"missing id"}`, string(body))
}

func TestRFC9457_Resolvers(t *testing.T) {
	t.Parallel()

	f := &RFC9457{
		StatusResolver:   func(error) int { return http.StatusServiceUnavailable },
		TypeResolver:     func(error) string { return "urn:problem:unavailable" },
		ErrorIDGenerator: func() string { return "err-fixed" },
	}
	response := f.Format(httptest.NewRequest(http.MethodGet, "/readyz", nil), notFound{resource: "store"})

	assert.Equal(t, http.StatusServiceUnavailable, response.Status)
	p := response.Body.(ProblemDetail)
	assert.Equal(t, "urn:problem:unavailable", p.Type)
	assert.Equal(t, "Service Unavailable", p.Title)
	assert.Equal(t, "err-fixed", p.Extensions["error_id"])
	assert.Equal(t, "not_found", p.Extensions["code"])
}

func TestProblemDetail_ReservedExtensions(t *testing.T) {
	t.Parallel()

	p := ProblemDetail{
		Type:   "about:blank",
		Title:  "Not Found",
		Status: http.StatusNotFound,
		Extensions: map[string]any{
			"status": 200,
			"title":  "OK",
			"scope":  2,
		},
	}

	body, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"about:blank","title":"Not Found","status":404,"scope":2}`, string(body))
}

func TestSimple_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		formatter  *Simple
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "plain error",
			formatter:  NewSimple(),
			err:        stderrors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"boom"}`,
		},
		{
			name:       "coded domain error",
			formatter:  NewSimple(),
			err:        notFound{resource: "folder"},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"folder not found","code":"not_found"}`,
		},
		{
			name:       "field details",
			formatter:  NewSimple(),
			err:        invalidFields{"body": "too long"},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"error":"1 invalid field(s)","details":{"body":"too long"}}`,
		},
		{
			name:       "bare status",
			formatter:  NewSimple(),
			err:        WithStatus(nil, http.StatusMethodNotAllowed),
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   `{"error":"Method Not Allowed"}`,
		},
		{
			name:       "status resolver",
			formatter:  &Simple{StatusResolver: func(error) int { return http.StatusTeapot }},
			err:        notFound{resource: "kettle"},
			wantStatus: http.StatusTeapot,
			wantBody:   `{"error":"kettle not found","code":"not_found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			response := tt.formatter.Format(nil, tt.err)
			assert.Equal(t, tt.wantStatus, response.Status)
			assert.Equal(t, "application/json; charset=utf-8", response.ContentType)

			body, err := response.Encode()
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantBody, string(body))
		})
	}
}
