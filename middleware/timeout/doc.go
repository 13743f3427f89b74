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

// Package timeout provides a modifier that bounds how long a request may
// stay in flight.
//
// The deadline starts at the first poll of the wrapped endpoint. A timer
// wakes the request task when it passes, and the next poll answers with the
// timeout result instead of polling the endpoint again. Completing the
// request releases it, which cancels the context of router.AsyncFunc
// handlers still running.
//
// # Basic Usage
//
//	import "rivaas.dev/scoped/middleware/timeout"
//
//	app := router.MustNew(func(s *router.Scope) {
//	    s.Use(timeout.New()) // Uses 30s default timeout
//	    s.GET("/report", report)
//	})
//
// # Configuration Options
//
//   - WithDuration: Maximum duration for request processing (default: 30s)
//   - WithLogger: Custom slog.Logger for timeout events (default: request logger)
//   - WithHandler: Custom result for timed out requests
//   - WithSkipPaths, WithSkipPrefix, WithSkipSuffix, WithSkip: Exclusions
//
// # Timeout Behavior
//
// Enforcement is cooperative: a synchronous handler that blocks inside a
// single poll finishes that poll before the deadline is checked. Handlers
// with long-running work should use router.AsyncFunc and watch ctx.Done().
// By default a timed out request is answered with 408 Request Timeout.
package timeout
