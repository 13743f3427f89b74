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
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	riverrors "rivaas.dev/scoped/errors"
)

// ServeHTTP drives a request task to completion and writes its output.
//
// The task is polled until it completes. While its continuation is pending
// ServeHTTP waits for the task's waker or for the request context to end;
// in the latter case the task is abandoned and nothing is written.
// A 101 Switching Protocols output with a registered upgrade callback
// hijacks the connection and hands it to the callback.
func (a *App) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()

	// Observability lifecycle - start
	ctx := req.Context()
	var states []any
	if len(a.observability) > 0 {
		states = make([]any, len(a.observability))
		for i, rec := range a.observability {
			ctx, states[i] = rec.OnRequestStart(ctx, req)
		}
		if ctx != req.Context() {
			req = req.WithContext(ctx)
		}
	}

	t := a.NewTask(req)
	info := RequestInfo{Method: req.Method, Path: req.URL.Path}

	out, ok := drive(ctx, t)
	switch {
	case !ok:
		info.Abandoned = true
		info.Status = StatusClientClosedRequest
		info.Err = context.Cause(ctx)
		a.diagnose(DiagRequestAbandoned, "request abandoned before completion", map[string]any{
			"method": req.Method,
			"path":   req.URL.Path,
			"route":  t.Result().Pattern(),
		})
	case out.Status == http.StatusSwitchingProtocols && t.input.upgrade != nil:
		info.Status = out.Status
		if err := hijack(w, out, t.input.upgrade); err != nil {
			info.Err = err
			a.diagnose(DiagUpgradeFailed, "protocol upgrade failed", map[string]any{
				"route": t.Result().Pattern(),
				"error": err.Error(),
			})
			failed := a.errorOutput(t.input, riverrors.Internal(err))
			failed.setContentLength()
			info.Status = failed.Status
			info.Size, _ = failed.WriteTo(w)
		}
	default:
		info.Status = out.Status
		n, err := out.WriteTo(w)
		info.Size = n
		if err != nil {
			info.Err = err
			a.diagnose(DiagWriteFailed, "writing response failed", map[string]any{
				"route": t.Result().Pattern(),
				"error": err.Error(),
			})
		}
	}

	res := t.Result()
	info.Route = res.Pattern()
	info.Verdict = res.Verdict
	info.Scope = res.Scope
	info.Duration = time.Since(start)

	// Observability lifecycle - end
	for i := len(a.observability) - 1; i >= 0; i-- {
		if states[i] != nil {
			a.observability[i].OnRequestEnd(ctx, states[i], info)
		}
	}
}

// drive polls t until it completes or ctx ends. It reports false when the
// task was abandoned.
func drive(ctx context.Context, t *Task) (*Output, bool) {
	for {
		if out, ok := t.Poll(); ok {
			return out, true
		}
		select {
		case <-t.Wake():
		case <-ctx.Done():
			t.Abandon()
			return nil, false
		}
	}
}

// hijack writes the 101 status line and headers directly to the connection
// and passes it to fn, which then owns it.
func hijack(w http.ResponseWriter, out *Output, fn UpgradeFunc) error {
	conn, rw, err := http.NewResponseController(w).Hijack()
	if err != nil {
		return fmt.Errorf("hijack connection: %w", err)
	}

	if _, err = fmt.Fprintf(rw, "HTTP/1.1 %d %s\r\n", out.Status, http.StatusText(out.Status)); err == nil {
		if err = out.Header.Write(rw); err == nil {
			if _, err = rw.WriteString("\r\n"); err == nil {
				err = rw.Flush()
			}
		}
	}
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("write upgrade response: %w", err)
	}

	fn(conn, rw)
	return nil
}

// Serve starts the HTTP server on the specified address.
// Automatically enables h2c if configured via WithH2C.
//
// This method follows the stdlib pattern: it blocks until the server exits.
// For graceful shutdown, use the Shutdown method from another goroutine.
//
// Example:
//
//	app := router.MustNew(configure)
//
//	go func() {
//	    if err := app.Serve(":8080"); err != nil && err != http.ErrServerClosed {
//	        log.Fatal(err)
//	    }
//	}()
//
//	quit := make(chan os.Signal, 1)
//	signal.Notify(quit, os.Interrupt)
//	<-quit
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	app.Shutdown(ctx)
func (a *App) Serve(addr string) error {
	srv := a.NewServer(addr)
	a.logger.Info("server listening", slog.String("addr", addr), slog.Bool("h2c", a.enableH2C))

	return srv.ListenAndServe()
}

// NewServer returns an unstarted server for addr configured with the
// application's timeouts and H2C setting. Shutdown stops the most recently
// created server, so callers that manage their own listener can still
// shut down through the App.
func (a *App) NewServer(addr string) *http.Server {
	h := http.Handler(a)

	if a.enableH2C {
		h = h2c.NewHandler(h, &http2.Server{})
		a.diagnose(DiagH2CEnabled, "H2C enabled; use only in dev or behind a trusted LB", nil)
	}

	return a.newServer(addr, h)
}

// ServeTLS starts the HTTPS server. HTTP/2 is enabled via ALPN.
//
// Protocol upgrades need HTTP/1.1; clients negotiating HTTP/2 cannot be
// hijacked and receive a 500 response instead.
func (a *App) ServeTLS(addr, certFile, keyFile string) error {
	srv := a.newServer(addr, a)
	a.logger.Info("server listening", slog.String("addr", addr), slog.Bool("tls", true))

	return srv.ListenAndServeTLS(certFile, keyFile)
}

func (a *App) newServer(addr string, h http.Handler) *http.Server {
	timeouts := a.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
		ErrorLog:          slog.NewLogLogger(a.logger.Handler(), slog.LevelWarn),
	}

	a.serverMu.Lock()
	a.server = srv
	a.serverMu.Unlock()

	return srv
}

// Shutdown gracefully shuts down the server started by Serve or ServeTLS
// without interrupting active connections. It returns nil if no server is
// running.
func (a *App) Shutdown(ctx context.Context) error {
	a.serverMu.Lock()
	srv := a.server
	a.server = nil
	a.serverMu.Unlock()

	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}
