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

package logging

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"rivaas.dev/scoped/router"
)

// DiagnosticHandler returns a [router.DiagnosticHandler] that logs router
// diagnostics. Build events are logged at debug level, request and server
// anomalies at warn level.
//
// Example:
//
//	logger := logging.MustNew(logging.WithConsoleHandler())
//	app := router.MustNew(configure,
//	    router.WithLogger(logger.Logger()),
//	    router.WithDiagnostics(logging.DiagnosticHandler(logger.Logger())),
//	)
func DiagnosticHandler(logger *slog.Logger) router.DiagnosticHandler {
	return router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
		level := slog.LevelWarn
		switch e.Kind {
		case router.DiagRouteRegistered, router.DiagScopeMounted, router.DiagH2CEnabled:
			level = slog.LevelDebug
		}

		attrs := make([]slog.Attr, 0, len(e.Fields)+1)
		attrs = append(attrs, slog.String("kind", string(e.Kind)))
		for k, v := range e.Fields {
			attrs = append(attrs, slog.Any(k, v))
		}
		logger.LogAttrs(context.Background(), level, e.Message, attrs...)
	})
}

// AccessLogOption configures [AccessLog].
type AccessLogOption func(*accessLog)

// WithExcludePaths skips access logging for exact request paths.
//
// Example:
//
//	logging.AccessLog(logger, logging.WithExcludePaths("/healthz", "/metrics"))
func WithExcludePaths(paths ...string) AccessLogOption {
	return func(a *accessLog) {
		for _, p := range paths {
			a.exclude[p] = true
		}
	}
}

// WithSlowThreshold marks requests slower than d as slow and logs them at
// warn level.
func WithSlowThreshold(d time.Duration) AccessLogOption {
	return func(a *accessLog) { a.slow = d }
}

// WithErrorsOnly logs only failed, abandoned and slow requests.
func WithErrorsOnly() AccessLogOption {
	return func(a *accessLog) { a.errorsOnly = true }
}

// AccessLog returns a [router.ObservabilityRecorder] writing one record
// per served request. Register it after a tracing recorder so the records
// carry trace and span ids.
//
// Level selection: 5xx is error; 4xx, abandoned and slow requests are
// warn; everything else is info.
func AccessLog(logger *slog.Logger, opts ...AccessLogOption) router.ObservabilityRecorder {
	a := &accessLog{logger: logger, exclude: make(map[string]bool)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type accessLog struct {
	logger     *slog.Logger
	exclude    map[string]bool
	slow       time.Duration
	errorsOnly bool
}

var accessLogState = struct{}{}

func (a *accessLog) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	if a.exclude[req.URL.Path] {
		return ctx, nil
	}
	return ctx, accessLogState
}

func (a *accessLog) OnRequestEnd(ctx context.Context, _ any, info router.RequestInfo) {
	slow := a.slow > 0 && info.Duration > a.slow

	level := slog.LevelInfo
	switch {
	case info.Status >= 500:
		level = slog.LevelError
	case info.Status >= 400, info.Abandoned, slow:
		level = slog.LevelWarn
	}
	if a.errorsOnly && level == slog.LevelInfo {
		return
	}

	attrs := []slog.Attr{
		slog.String("method", info.Method),
		slog.String("path", info.Path),
		slog.String("route", info.Route),
		slog.String("verdict", info.Verdict.String()),
		slog.Int("scope", int(info.Scope)),
		slog.Int("status", info.Status),
		slog.Int64("size", info.Size),
		slog.Duration("duration", info.Duration),
	}
	if info.Abandoned {
		attrs = append(attrs, slog.Bool("abandoned", true))
	}
	if slow {
		attrs = append(attrs, slog.Bool("slow", true))
	}
	if info.Err != nil {
		attrs = append(attrs, slog.String("error", info.Err.Error()))
	}
	a.logger.LogAttrs(ctx, level, "request", attrs...)
}
