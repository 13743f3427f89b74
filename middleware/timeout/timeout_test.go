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

package timeout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/scoped/logging"
	"rivaas.dev/scoped/router"
)

// slow waits for d or for its context to end, reporting the context error.
func slow(d time.Duration, canceled chan<- error) router.AsyncFunc {
	return func(ctx context.Context, _ *router.Input) (*router.Output, error) {
		select {
		case <-time.After(d):
			return router.Text(http.StatusOK, "done"), nil
		case <-ctx.Done():
			if canceled != nil {
				canceled <- ctx.Err()
			}
			return nil, ctx.Err()
		}
	}
}

func TestTimeout_Expires(t *testing.T) {
	t.Parallel()

	canceled := make(chan error, 1)
	app := router.MustNew(func(s *router.Scope) {
		s.Use(New(WithDuration(20*time.Millisecond), WithoutLogging()))
		s.GET("/slow", slow(time.Minute, canceled))
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, http.StatusRequestTimeout, w.Code)
	assert.Contains(t, w.Body.String(), ErrTimeout.Error())

	select {
	case err := <-canceled:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("handler context was not canceled")
	}
}

func TestTimeout_FastHandler(t *testing.T) {
	t.Parallel()

	app := router.MustNew(func(s *router.Scope) {
		s.Use(New(WithDuration(time.Second)))
		s.GET("/fast", slow(time.Millisecond, nil))
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "done", w.Body.String())
}

func TestTimeout_Skip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  Option
		path string
	}{
		{name: "exact path", opt: WithSkipPaths("/stream"), path: "/stream"},
		{name: "prefix", opt: WithSkipPrefix("/admin"), path: "/admin/report"},
		{name: "suffix", opt: WithSkipSuffix("/events"), path: "/feed/events"},
		{name: "custom", opt: WithSkip(func(in *router.Input) bool {
			return in.Request().Header.Get("X-No-Timeout") != ""
		}), path: "/custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := router.MustNew(func(s *router.Scope) {
				s.Use(New(WithDuration(5*time.Millisecond), tt.opt))
				s.GET("/*rest", slow(30*time.Millisecond, nil))
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("X-No-Timeout", "1")
			w := httptest.NewRecorder()
			app.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestTimeout_CustomHandler(t *testing.T) {
	t.Parallel()

	app := router.MustNew(func(s *router.Scope) {
		s.Use(New(
			WithDuration(10*time.Millisecond),
			WithoutLogging(),
			WithHandler(func(_ *router.Input, d time.Duration) (*router.Output, error) {
				return router.JSON(http.StatusServiceUnavailable, map[string]string{"timeout": d.String()})
			}),
		))
		s.GET("/slow", slow(time.Minute, nil))
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"timeout":"10ms"}`, w.Body.String())
}

func TestTimeout_AsyncHandlerStillRunning(t *testing.T) {
	t.Parallel()

	th := logging.NewTestHelper(t)
	app := router.MustNew(func(s *router.Scope) {
		s.Use(New(WithDuration(20 * time.Millisecond)))
		s.GET("/busy", router.AsyncFunc(func(ctx context.Context, in *router.Input) (*router.Output, error) {
			for {
				in.ResponseHeaders().Set("X-Busy", "1")
				in.Logger().Debug("still busy")
				select {
				case <-ctx.Done():
					time.Sleep(10 * time.Millisecond)
					in.ResponseHeaders().Set("X-Busy", "2")
					return nil, ctx.Err()
				case <-time.After(time.Millisecond):
				}
			}
		}))
	}, router.WithLogger(th.Logger.Logger()))

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/busy", nil))

	assert.Equal(t, http.StatusRequestTimeout, w.Code)
	assert.Empty(t, w.Header().Get("X-Busy"))
	assert.True(t, th.ContainsLog("request timeout"))
}
