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

package requestid

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/scoped/router"
)

func serve(t *testing.T, app *router.App, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	return w
}

func echoID(in *router.Input) (*router.Output, error) {
	return router.Text(http.StatusOK, Get(in)), nil
}

func TestRequestID_Generated(t *testing.T) {
	t.Parallel()

	app := router.MustNew(func(s *router.Scope) {
		s.Use(New())
		s.GET("/", router.HandlerFunc(echoID))
	})

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))

	id := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String(), "handler sees the same id")

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestRequestID_Options(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     []Option
		header   string
		clientID string
		check    func(t *testing.T, id string)
	}{
		{
			name:     "client id accepted",
			header:   "X-Request-ID",
			clientID: "client-123",
			check: func(t *testing.T, id string) {
				assert.Equal(t, "client-123", id)
			},
		},
		{
			name:     "client id rejected",
			opts:     []Option{WithAllowClientID(false)},
			header:   "X-Request-ID",
			clientID: "client-123",
			check: func(t *testing.T, id string) {
				assert.NotEqual(t, "client-123", id)
				assert.NotEmpty(t, id)
			},
		},
		{
			name:   "custom header",
			opts:   []Option{WithHeader("X-Correlation-ID")},
			header: "X-Correlation-ID",
			check: func(t *testing.T, id string) {
				assert.NotEmpty(t, id)
			},
		},
		{
			name:   "custom generator",
			opts:   []Option{WithGenerator(func() string { return "fixed" })},
			header: "X-Request-ID",
			check: func(t *testing.T, id string) {
				assert.Equal(t, "fixed", id)
			},
		},
		{
			name:   "ulid",
			opts:   []Option{WithULID()},
			header: "X-Request-ID",
			check: func(t *testing.T, id string) {
				assert.Len(t, id, 26)
				_, err := ulid.Parse(id)
				assert.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := router.MustNew(func(s *router.Scope) {
				s.Use(New(tt.opts...))
				s.GET("/", router.HandlerFunc(echoID))
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.clientID != "" {
				req.Header.Set(tt.header, tt.clientID)
			}
			w := serve(t, app, req)

			id := w.Header().Get(tt.header)
			tt.check(t, id)
			assert.Equal(t, id, w.Body.String())
		})
	}
}

func TestRequestID_ErrorResponse(t *testing.T) {
	t.Parallel()

	app := router.MustNew(func(s *router.Scope) {
		s.Use(New(WithGenerator(func() string { return "req-1" })))
		s.GET("/fail", router.HandlerFunc(func(*router.Input) (*router.Output, error) {
			return nil, errors.New("failed")
		}))
	})

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
}

func TestRequestID_NestedKeepsOuterID(t *testing.T) {
	t.Parallel()

	calls := 0
	app := router.MustNew(func(s *router.Scope) {
		s.Use(New(WithGenerator(func() string {
			calls++
			return "outer"
		})))
		s.Mount("/api", func(api *router.Scope) {
			api.Use(New(WithGenerator(func() string { return "inner" })))
			api.GET("/id", router.HandlerFunc(echoID))
		})
	})

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/api/id", nil))
	assert.Equal(t, "outer", w.Body.String())
	assert.Equal(t, 1, calls)
}
