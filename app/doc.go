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

// Package app assembles a scoped routing application into a runnable
// service.
//
// # Overview
//
// The router package builds and serves a frozen scope tree. The app
// package wraps it with what a deployed service needs:
//
//   - Logging, metrics and tracing configured from [config.Settings]
//   - Panic recovery, request IDs and request timeouts on every endpoint
//   - Liveness and readiness endpoints
//   - Lifecycle hooks (OnStart, OnReady, OnShutdown, OnStop)
//   - Graceful shutdown bounded by the configured timeout
//   - A startup banner and a route table
//
// Use the router package directly when the surrounding service already
// owns these concerns.
//
// # Quick Start
//
//	settings, err := config.LoadSettings(ctx, config.WithEnv("SCOPED_"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	a := app.MustNew(settings, func(s *router.Scope) {
//	    s.Mount("/users", func(users *router.Scope) {
//	        users.GET("/:id", getUser)
//	    })
//	}, app.WithHealthEndpoints())
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := a.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Modifier Order
//
// Endpoints are wrapped, outermost first, in recovery, request ID, the
// request timeout, modifiers passed with [WithModifiers], and then the
// modifiers of each scope on the way down to the endpoint.
//
// # Health Endpoints
//
// [WithHealthEndpoints] registers GET /healthz and GET /readyz. Checks run
// concurrently with a per-check timeout. A failing check answers 503 with
// a problem document listing the failures; otherwise /healthz answers
// 200 "ok" and /readyz answers 204.
package app
