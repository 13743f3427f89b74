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

package app

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"rivaas.dev/scoped/config"
	"rivaas.dev/scoped/logging"
	"rivaas.dev/scoped/middleware/requestid"
	"rivaas.dev/scoped/router"
	"rivaas.dev/scoped/tracing"
)

func testSettings(t *testing.T) *config.Settings {
	t.Helper()

	settings, err := config.LoadSettings(context.Background())
	require.NoError(t, err)
	settings.Server.Addr = "127.0.0.1:0"
	settings.Server.ShutdownTimeout = 5 * time.Second
	return settings
}

func testLogger(w io.Writer) *logging.Logger {
	return logging.MustNew(logging.WithJSONHandler(), logging.WithOutput(w))
}

func serve(a *App, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealthEndpoints_NoChecks(t *testing.T) {
	t.Parallel()

	a, err := New(testSettings(t), nil,
		WithLogger(testLogger(io.Discard)),
		WithHealthEndpoints(),
	)
	require.NoError(t, err)

	rec := serve(a, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = serve(a, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestHealthEndpoints_FailingChecks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		option HealthOption
		target string
	}{
		{
			name:   "liveness",
			option: WithLivenessCheck("goroutines", func(context.Context) error { return errors.New("too many") }),
			target: "/_system/healthz",
		},
		{
			name:   "readiness",
			option: WithReadinessCheck("db", func(context.Context) error { return errors.New("connection refused") }),
			target: "/_system/readyz",
		},
		{
			name: "readiness timeout",
			option: WithReadinessCheck("slow", func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			}),
			target: "/_system/readyz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, err := New(testSettings(t), nil,
				WithLogger(testLogger(io.Discard)),
				WithHealthEndpoints(
					WithHealthPrefix("/_system"),
					WithHealthTimeout(20*time.Millisecond),
					tt.option,
				),
			)
			require.NoError(t, err)

			rec := serve(a, http.MethodGet, tt.target)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
			assert.Contains(t, rec.Body.String(), "health_check_failed")
		})
	}
}

func TestHealthEndpoints_PassingChecks(t *testing.T) {
	t.Parallel()

	a, err := New(testSettings(t), nil,
		WithLogger(testLogger(io.Discard)),
		WithHealthEndpoints(
			WithHealthzPath("/live"),
			WithReadyzPath("/ready"),
			WithLivenessCheck("process", func(context.Context) error { return nil }),
			WithReadinessCheck("cache", func(context.Context) error { return nil }),
		),
	)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/live").Code)
	assert.Equal(t, http.StatusNoContent, serve(a, http.MethodGet, "/ready").Code)
	assert.Equal(t, http.StatusNotFound, serve(a, http.MethodGet, "/healthz").Code)
}

func TestRunChecks(t *testing.T) {
	t.Parallel()

	failures := runChecks(context.Background(), map[string]CheckFunc{
		"ok":   func(context.Context) error { return nil },
		"down": func(context.Context) error { return errors.New("down") },
		"slow": func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}, 10*time.Millisecond)

	assert.Len(t, failures, 2)
	assert.Equal(t, "down", failures["down"])
	assert.Equal(t, context.DeadlineExceeded.Error(), failures["slow"])
	assert.Empty(t, runChecks(context.Background(), nil, time.Second))
}

func TestNew_BuiltinModifiers(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	a, err := New(testSettings(t), func(s *router.Scope) {
		s.GET("/id", router.HandlerFunc(func(in *router.Input) (*router.Output, error) {
			return router.Text(http.StatusOK, requestid.Get(in)), nil
		}))
		s.GET("/panic", router.HandlerFunc(func(*router.Input) (*router.Output, error) {
			panic("boom")
		}))
	}, WithLogger(testLogger(&logs)))
	require.NoError(t, err)

	rec := serve(a, http.MethodGet, "/id")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Body.String(), 26, "ULID request id")
	assert.Equal(t, rec.Body.String(), rec.Header().Get("X-Request-ID"))

	rec = serve(a, http.MethodGet, "/panic")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
	assert.Contains(t, logs.String(), "panic recovered")
}

func TestNew_RequestTimeout(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	settings.Server.RequestTimeout = 20 * time.Millisecond

	a, err := New(settings, func(s *router.Scope) {
		s.GET("/slow", router.AsyncFunc(func(ctx context.Context, _ *router.Input) (*router.Output, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return router.Empty(http.StatusNoContent), nil
			}
		}))
	}, WithLogger(testLogger(io.Discard)))
	require.NoError(t, err)

	assert.Equal(t, http.StatusRequestTimeout, serve(a, http.MethodGet, "/slow").Code)
}

func TestNew_Compression(t *testing.T) {
	t.Parallel()

	report := strings.Repeat("scope resolution report\n", 100)
	settings := testSettings(t)
	settings.Server.Compression = true
	settings.Server.CompressionMinSize = 64

	a, err := New(settings, func(s *router.Scope) {
		s.GET("/report", router.HandlerFunc(func(*router.Input) (*router.Output, error) {
			return router.Text(http.StatusOK, report), nil
		}))
		s.GET("/short", router.HandlerFunc(func(*router.Input) (*router.Output, error) {
			return router.Text(http.StatusOK, "ok"), nil
		}))
	}, WithLogger(testLogger(io.Discard)))
	require.NoError(t, err)

	get := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		a.Router().ServeHTTP(rec, req)
		return rec
	}

	rec := get("/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", rec.Header().Get("Vary"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, report, string(body))

	rec = get("/short")
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", rec.Body.String())
}

func TestNew_Modifiers(t *testing.T) {
	t.Parallel()

	tagged := router.MapResult(func(_ *router.Input, out *router.Output, err error) (*router.Output, error) {
		if out != nil {
			out.Header.Set("X-Tagged", "yes")
		}
		return out, err
	})

	a, err := New(testSettings(t), func(s *router.Scope) {
		s.GET("/", router.HandlerFunc(func(*router.Input) (*router.Output, error) {
			return router.Empty(http.StatusNoContent), nil
		}))
	}, WithLogger(testLogger(io.Discard)), WithModifiers(tagged))
	require.NoError(t, err)

	assert.Equal(t, "yes", serve(a, http.MethodGet, "/").Header().Get("X-Tagged"))
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid log level", func(t *testing.T) {
		t.Parallel()

		settings := testSettings(t)
		settings.Logging.Level = "loud"
		_, err := New(settings, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logging")
	})

	t.Run("route conflicts with health endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := New(testSettings(t), func(s *router.Scope) {
			s.GET("/healthz", router.HandlerFunc(func(*router.Input) (*router.Output, error) {
				return router.Empty(http.StatusOK), nil
			}))
		}, WithLogger(testLogger(io.Discard)), WithHealthEndpoints())
		require.Error(t, err)
		assert.ErrorIs(t, err, router.ErrMethodConflict)
	})

	t.Run("MustNew panics", func(t *testing.T) {
		t.Parallel()

		settings := testSettings(t)
		settings.Logging.Level = "loud"
		assert.Panics(t, func() { MustNew(settings, nil) })
	})
}

func TestNew_Tracing(t *testing.T) {
	t.Parallel()

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	a, err := New(testSettings(t), func(s *router.Scope) {
		s.Mount("/users", func(users *router.Scope) {
			users.GET("/:id", router.HandlerFunc(func(in *router.Input) (*router.Output, error) {
				return router.Text(http.StatusOK, in.Param("id")), nil
			}))
		})
	},
		WithLogger(testLogger(io.Discard)),
		WithHealthEndpoints(),
		WithTracingOptions(tracing.WithTracerProvider(tp)),
	)
	require.NoError(t, err)

	serve(a, http.MethodGet, "/users/7")
	serve(a, http.MethodGet, "/healthz")

	ended := spans.Ended()
	require.Len(t, ended, 1, "health endpoints are not traced")
	assert.Equal(t, "GET /users/:id", ended[0].Name())
}

func TestNew_MetricsAndAccessLog(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	settings.Metrics.Enabled = true
	settings.Logging.AccessLog = true

	var logs bytes.Buffer
	a, err := New(settings, func(s *router.Scope) {
		s.GET("/", router.HandlerFunc(func(*router.Input) (*router.Output, error) {
			return router.Text(http.StatusOK, "hi"), nil
		}))
	}, WithLogger(testLogger(&logs)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Metrics().Shutdown(context.Background()) })

	require.NotNil(t, a.Metrics())
	serve(a, http.MethodGet, "/")
	assert.Contains(t, logs.String(), `"msg":"request"`)
	assert.Contains(t, logs.String(), `"verdict":"found_endpoint"`)

	h, err := a.Metrics().Handler()
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRun_Lifecycle(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	a, err := New(testSettings(t), func(s *router.Scope) {
		s.GET("/", router.HandlerFunc(func(*router.Input) (*router.Output, error) {
			return router.Text(http.StatusOK, "hello"), nil
		}))
	}, WithLogger(testLogger(io.Discard)), WithOutput(&out))
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})

	a.OnStart(func(context.Context) error { record("start"); return nil })
	a.OnReady(func() { record("ready"); close(ready) })
	a.OnShutdown(func(context.Context) { record("shutdown 1") })
	a.OnShutdown(func(context.Context) { record("shutdown 2") })
	a.OnStop(func() { record("stop") })
	a.OnStop(func() { panic("ignored") })

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
	}

	resp, err := http.Get("http://" + a.Addr() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	assert.ErrorIs(t, a.Run(ctx), ErrAlreadyRunning)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"start", "ready", "shutdown 2", "shutdown 1", "stop"}, order)
	assert.Empty(t, a.Addr())
	assert.Contains(t, out.String(), "Scopes:")
	assert.Contains(t, out.String(), "Methods")
}

func TestRun_StartHookError(t *testing.T) {
	t.Parallel()

	a, err := New(testSettings(t), nil, WithLogger(testLogger(io.Discard)), WithoutBanner())
	require.NoError(t, err)

	a.OnStart(func(context.Context) error { return errors.New("db unreachable") })
	a.OnReady(func() { t.Error("OnReady must not run") })

	err = a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OnStart hook 0 failed")
	assert.Contains(t, err.Error(), "db unreachable")
}

func TestRun_ListenError(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	settings.Server.Addr = "127.0.0.1:99999"
	a, err := New(settings, nil, WithLogger(testLogger(io.Discard)), WithoutBanner())
	require.NoError(t, err)

	err = a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
}

func TestPrintRoutes(t *testing.T) {
	t.Parallel()

	noop := router.HandlerFunc(func(*router.Input) (*router.Output, error) {
		return router.Empty(http.StatusNoContent), nil
	})
	a, err := New(testSettings(t), func(s *router.Scope) {
		s.Mount("/users", func(users *router.Scope) {
			users.GET("/:id", noop)
			users.Fallback(router.FallbackFunc(router.DefaultFallback))
		})
		s.Route("/any", noop)
	}, WithLogger(testLogger(io.Discard)))
	require.NoError(t, err)

	rows := routeRows(a.Router())
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"GET", "/users/:id", "1 /users", "yes"}, rows[0])
	assert.Equal(t, []string{"*", "/any", "0 /", "-"}, rows[1])

	var out bytes.Buffer
	a.PrintRoutes(&out)
	assert.Contains(t, out.String(), "Fallback")
	assert.Contains(t, out.String(), "/users/:id")

	empty, err := New(testSettings(t), nil, WithLogger(testLogger(io.Discard)))
	require.NoError(t, err)
	out.Reset()
	empty.PrintRoutes(&out)
	assert.Equal(t, "No routes registered\n", out.String())
}

func TestDisplayAddr(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.0.0.0:8080", displayAddr(":8080"))
	assert.Equal(t, "localhost:8080", displayAddr("localhost:8080"))
	assert.True(t, strings.HasPrefix(displayAddr(":0"), "0.0.0.0"))
}

// Not parallel: it compares goroutine counts.
func TestNew_FailedBuildStopsTelemetry(t *testing.T) {
	settings := testSettings(t)
	settings.Metrics.Enabled = true
	settings.Metrics.Provider = "stdout"
	settings.Tracing.Provider = "stdout"

	conflicting := func(s *router.Scope) {
		s.GET("/healthz", router.HandlerFunc(func(*router.Input) (*router.Output, error) {
			return router.Empty(http.StatusOK), nil
		}))
	}

	before := runtime.NumGoroutine()
	for range 10 {
		_, err := New(settings, conflicting, WithLogger(testLogger(io.Discard)), WithoutBanner(), WithHealthEndpoints())
		require.ErrorIs(t, err, router.ErrMethodConflict)
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, 2*time.Second, 20*time.Millisecond, "exporter goroutines of failed builds keep running")
}
