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

package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/scoped/router"
)

func newApp(t *testing.T, tracer *Tracer) *router.App {
	t.Helper()

	app, err := router.New(func(s *router.Scope) {
		s.Mount("/users", func(users *router.Scope) {
			users.GET("/:id", router.HandlerFunc(func(in *router.Input) (*router.Output, error) {
				span := trace.SpanFromContext(in.Context())
				span.AddEvent("user loaded")
				return router.Text(http.StatusOK, "user "+in.Param("id")), nil
			}))
		})
		s.GET("/boom", router.HandlerFunc(func(*router.Input) (*router.Output, error) {
			return nil, errors.New("database unavailable")
		}))
		s.GET("/healthz", router.HandlerFunc(func(*router.Input) (*router.Output, error) {
			return router.Empty(http.StatusNoContent), nil
		}))
	}, router.WithObservability(tracer))
	require.NoError(t, err)
	return app
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracer_SpanPerRequest(t *testing.T) {
	t.Parallel()

	tracer, spans := TestingTracer(t)
	app := newApp(t, tracer)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	span := ended[0]

	assert.Equal(t, "GET /users/:id", span.Name())
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())
	assert.Equal(t, codes.Unset, span.Status().Code)

	a := attrs(span)
	assert.Equal(t, "GET", a["http.request.method"].AsString())
	assert.Equal(t, "/users/42", a["url.path"].AsString())
	assert.Equal(t, "/users/:id", a["http.route"].AsString())
	assert.Equal(t, int64(200), a["http.response.status_code"].AsInt64())
	assert.Equal(t, "found_endpoint", a["router.verdict"].AsString())
	assert.Equal(t, int64(1), a["router.scope"].AsInt64())
	assert.Equal(t, "test-service", a["service.name"].AsString())

	require.Len(t, span.Events(), 1)
	assert.Equal(t, "user loaded", span.Events()[0].Name)
}

func TestTracer_Outcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		target     string
		wantName   string
		wantStatus int64
		wantCode   codes.Code
		verdict    string
	}{
		{name: "not found", method: http.MethodGet, target: "/missing", wantName: "GET _not_found", wantStatus: 404, wantCode: codes.Unset, verdict: "not_found"},
		{name: "method not allowed", method: http.MethodPost, target: "/healthz", wantName: "POST /healthz", wantStatus: 405, wantCode: codes.Unset, verdict: "found_resource"},
		{name: "handler error", method: http.MethodGet, target: "/boom", wantName: "GET /boom", wantStatus: 500, wantCode: codes.Error, verdict: "found_endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tracer, spans := TestingTracer(t)
			app := newApp(t, tracer)
			app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.target, nil))

			ended := spans.Ended()
			require.Len(t, ended, 1)
			assert.Equal(t, tt.wantName, ended[0].Name())
			assert.Equal(t, tt.wantCode, ended[0].Status().Code)

			a := attrs(ended[0])
			assert.Equal(t, tt.wantStatus, a["http.response.status_code"].AsInt64())
			assert.Equal(t, tt.verdict, a["router.verdict"].AsString())
		})
	}
}

func TestTracer_PropagatesTraceContext(t *testing.T) {
	t.Parallel()

	tracer, spans := TestingTracer(t)
	app := newApp(t, tracer)

	req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	app.ServeHTTP(httptest.NewRecorder(), req)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", ended[0].SpanContext().TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", ended[0].Parent().SpanID().String())
	assert.True(t, ended[0].Parent().IsRemote())
}

// neverReady is an endpoint whose continuation never completes.
type neverReady struct{}

func (neverReady) AllowedMethods() router.Methods { return nil }

func (neverReady) Handle() router.Handle {
	return router.HandleFunc(func(*router.Input) router.Poll { return router.Pending() })
}

func TestTracer_Abandoned(t *testing.T) {
	t.Parallel()

	tracer, spans := TestingTracer(t)
	app := router.MustNew(func(s *router.Scope) {
		s.GET("/wait", neverReady{})
	}, router.WithObservability(tracer))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wait", nil).WithContext(ctx))

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "request abandoned", ended[0].Status().Description)

	a := attrs(ended[0])
	assert.True(t, a["router.abandoned"].AsBool())
	assert.Equal(t, int64(router.StatusClientClosedRequest), a["http.response.status_code"].AsInt64())
}

func TestTracer_ExcludedPaths(t *testing.T) {
	t.Parallel()

	tracer, spans := TestingTracer(t,
		WithExcludePaths("/healthz"),
		WithExcludePrefixes("/internal/"),
		WithExcludePatterns(`^/users/9+$`),
	)
	app := newApp(t, tracer)

	for _, target := range []string{"/healthz", "/internal/debug", "/users/99", "/users/1"} {
		app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "/users/1", attrs(ended[0])["url.path"].AsString())
}

func TestTracer_HeadersAndHooks(t *testing.T) {
	t.Parallel()

	var started, finished int
	var finishedStatus int
	tracer, spans := TestingTracer(t,
		WithHeaders("X-Tenant"),
		WithSpanStartHook(func(_ context.Context, span trace.Span, req *http.Request) {
			started++
			span.SetAttributes(attribute.String("app.client", req.Header.Get("X-Client")))
		}),
		WithSpanFinishHook(func(_ trace.Span, status int) {
			finished++
			finishedStatus = status
		}),
	)
	app := newApp(t, tracer)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Tenant", "acme")
	req.Header.Set("X-Client", "cli")
	app.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 1, started)
	assert.Equal(t, 1, finished)
	assert.Equal(t, http.StatusNoContent, finishedStatus)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	a := attrs(ended[0])
	assert.Equal(t, "acme", a["http.request.header.x-tenant"].AsString())
	assert.Equal(t, "cli", a["app.client"].AsString())
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr string
	}{
		{name: "multiple providers", opts: []Option{WithStdout(), WithOTLP("localhost:4317")}, wantErr: "multiple providers configured"},
		{name: "empty service name", opts: []Option{WithServiceName("")}, wantErr: "service name cannot be empty"},
		{name: "empty service version", opts: []Option{WithServiceVersion("")}, wantErr: "service version cannot be empty"},
		{name: "sample rate", opts: []Option{WithSampleRate(1.5)}, wantErr: "sample rate must be between"},
		{name: "bad pattern", opts: []Option{WithExcludePatterns("[")}, wantErr: "invalid regex pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_OTLPDefersToStart(t *testing.T) {
	t.Parallel()

	tracer, err := New(WithOTLPHTTP("http://localhost:4318"))
	require.NoError(t, err)
	assert.Nil(t, tracer.TracerProvider())

	// Without a provider requests pass through untraced.
	ctx, state := tracer.OnRequestStart(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, state)
	assert.False(t, trace.SpanFromContext(ctx).SpanContext().IsValid())

	require.NoError(t, tracer.Shutdown(context.Background()))
}

func TestNew_NoopProvider(t *testing.T) {
	t.Parallel()

	tracer, err := New(WithSampleRate(0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })

	app := newApp(t, tracer)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSplitEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		want     string
		insecure bool
	}{
		{in: "http://localhost:4318", want: "localhost:4318", insecure: true},
		{in: "https://collector:4318/v1/traces", want: "collector:4318", insecure: false},
		{in: "collector:4318", want: "collector:4318", insecure: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, insecure := splitEndpoint(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.insecure, insecure)
		})
	}
}

func TestInjectTraceContext(t *testing.T) {
	t.Parallel()

	tracer, _ := TestingTracer(t)
	ctx, span := tracer.TracerProvider().Tracer("test").Start(context.Background(), "outgoing")
	defer span.End()

	headers := http.Header{}
	tracer.InjectTraceContext(ctx, headers)
	assert.Contains(t, headers.Get("traceparent"), span.SpanContext().TraceID().String())
}
