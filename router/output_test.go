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

package router

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestOutput_Constructors(t *testing.T) {
	t.Parallel()

	out := Text(http.StatusOK, "hi")
	assert.Equal(t, "text/plain; charset=utf-8", out.Header.Get("Content-Type"))
	n, known := out.ContentLength()
	assert.True(t, known)
	assert.Equal(t, int64(2), n)

	out, err := JSON(http.StatusCreated, map[string]int{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, out.Status)
	assert.Equal(t, "application/json; charset=utf-8", out.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, body(t, out))

	_, err = JSON(http.StatusOK, make(chan int))
	assert.Error(t, err)

	out = Redirect(http.StatusFound, "/login")
	assert.Equal(t, "/login", out.Header.Get("Location"))

	out = Stream(http.StatusOK, "text/event-stream", strings.NewReader("data"))
	_, known = out.ContentLength()
	assert.False(t, known)
}

func TestOutput_SetContentLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		out  *Output
		want string
	}{
		{name: "buffered", out: Text(http.StatusOK, "abc"), want: "3"},
		{name: "empty", out: Empty(http.StatusOK), want: "0"},
		{name: "no content", out: Empty(http.StatusNoContent), want: ""},
		{name: "not modified", out: Empty(http.StatusNotModified), want: ""},
		{name: "stream", out: Stream(http.StatusOK, "", strings.NewReader("x")), want: ""},
		{
			name: "already set",
			out: func() *Output {
				o := Text(http.StatusOK, "abc")
				o.Header.Set("Content-Length", "99")
				return o
			}(),
			want: "99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.out.setContentLength()
			assert.Equal(t, tt.want, tt.out.Header.Get("Content-Length"))
		})
	}
}

func TestOutput_WriteTo(t *testing.T) {
	t.Parallel()

	src := &closeRecorder{Reader: strings.NewReader("streamed body")}
	out := Stream(http.StatusAccepted, "text/plain", src)
	out.Header.Set("X-Custom", "1")

	w := httptest.NewRecorder()
	n, err := out.WriteTo(w)
	require.NoError(t, err)

	assert.Equal(t, int64(len("streamed body")), n)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Custom"))
	assert.Equal(t, "streamed body", w.Body.String())
	assert.True(t, src.closed)
}

func TestOutput_StripBody(t *testing.T) {
	t.Parallel()

	src := &closeRecorder{Reader: strings.NewReader("never sent")}
	out := Stream(http.StatusOK, "", src)
	out.stripBody()

	assert.True(t, src.closed)
	assert.Empty(t, body(t, out))

	w := httptest.NewRecorder()
	n, err := out.WriteTo(w)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMethods(t *testing.T) {
	t.Parallel()

	m := NewMethods("get", " POST ", "GET")
	assert.Equal(t, Methods{"GET", "POST"}, m)
	assert.True(t, m.Contains("POST"))
	assert.False(t, m.Contains("PUT"))
	assert.Equal(t, "GET, POST", m.String())
	assert.Equal(t, "GET, POST, OPTIONS", m.allowHeader())
	assert.Equal(t, "OPTIONS, GET", Methods{"OPTIONS", "GET"}.allowHeader())

	assert.True(t, validMethod("PROPFIND"))
	assert.False(t, validMethod(""))
	assert.False(t, validMethod("GET POST"))
}

func TestBuildError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	err := &BuildError{Scope: 2, Pattern: "/x", Method: "GET", Err: cause}

	assert.Equal(t, "build failed in scope 2 for GET /x: cause", err.Error())
	assert.ErrorIs(t, err, cause)
}
