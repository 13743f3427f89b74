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

package router

import (
	"log/slog"
	"time"

	riverrors "rivaas.dev/scoped/errors"
)

// Option configures an App.
type Option func(*App)

// WithPrefix mounts the whole application under prefix.
//
// Example:
//
//	app := router.MustNew(configure, router.WithPrefix("/api/v1"))
func WithPrefix(prefix string) Option {
	return func(a *App) {
		a.prefix = prefix
	}
}

// WithFallbackHead controls whether HEAD requests are answered by the GET
// endpoint of a resource that has no explicit HEAD endpoint. The response
// body is dropped while its headers, including Content-Length, are kept.
//
// Default: true
func WithFallbackHead(enabled bool) Option {
	return func(a *App) {
		a.fallbackHead = enabled
	}
}

// WithLogger sets the logger used for build messages and request loggers.
// By default nothing is logged.
//
// Example:
//
//	logger := logging.MustNew(logging.WithConsoleHandler())
//	app := router.MustNew(configure, router.WithLogger(logger.Logger()))
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithErrorFormatter sets the formatter that turns handler errors into
// responses.
//
// Default: errors.NewRFC9457("")
func WithErrorFormatter(f riverrors.Formatter) Option {
	return func(a *App) {
		a.formatter = f
	}
}

// WithDiagnostics sets a diagnostic handler for the application.
//
// Diagnostic events are optional informational events emitted while
// building and serving. The application behaves the same whether
// diagnostics are collected or not.
//
// Example with logging:
//
//	handler := router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
//	    slog.Debug(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	app := router.MustNew(configure, router.WithDiagnostics(handler))
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(a *App) {
		a.diagnostics = handler
	}
}

// WithObservability adds recorders that observe every request served
// through ServeHTTP. Recorders are started in order and ended in reverse
// order.
func WithObservability(recorders ...ObservabilityRecorder) Option {
	return func(a *App) {
		for _, r := range recorders {
			if r != nil {
				a.observability = append(a.observability, r)
			}
		}
	}
}

// WithCookieKeys enables signed cookies (Cookies.SetSigned and
// Cookies.GetSigned). hashKey authenticates cookie values; an optional
// blockKey of 16, 24 or 32 bytes also encrypts them.
func WithCookieKeys(hashKey, blockKey []byte) Option {
	return func(a *App) {
		a.cookieHashKey = hashKey
		a.cookieBlockKey = blockKey
	}
}

// WithH2C enables HTTP/2 Cleartext support for Serve.
//
// Only use in development or behind a trusted load balancer. Do not enable
// on public-facing servers without TLS.
//
// Example:
//
//	app := router.MustNew(configure, router.WithH2C(true))
//	app.Serve(":8080")
func WithH2C(enable bool) Option {
	return func(a *App) {
		a.enableH2C = enable
	}
}

// WithServerTimeouts configures the timeouts of the server started by
// Serve and ServeTLS.
//
// Default: 5s read header, 15s read, 30s write, 60s idle.
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(a *App) {
		a.serverTimeouts = &serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}

// serverTimeouts holds HTTP server timeout configuration.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

func defaultServerTimeouts() *serverTimeouts {
	return &serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}
