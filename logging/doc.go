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

// Package logging builds the structured logger used by scoped applications
// and connects it to the router.
//
// Logger wraps log/slog with three handler types:
//   - JSONHandler: structured JSON, the default, for production
//   - TextHandler: key=value pairs
//   - ConsoleHandler: colored single-line output for development
//
// Every record logged with a context that carries an OpenTelemetry span gets
// trace_id and span_id attributes. Attributes named password, token, secret,
// api_key, authorization or cookie are redacted.
//
// # Quick Start
//
//	logger := logging.MustNew(
//	    logging.WithConsoleHandler(),
//	    logging.WithServiceName("api"),
//	    logging.WithDebugLevel(),
//	)
//
//	app := router.MustNew(configure,
//	    router.WithLogger(logger.Logger()),
//	    router.WithDiagnostics(logging.DiagnosticHandler(logger.Logger())),
//	    router.WithObservability(logging.AccessLog(logger.Logger())),
//	)
//
// # Dynamic Level
//
// SetLevel changes the level of every logger derived from Logger(),
// including the per-request loggers handed out by the router:
//
//	_ = logger.SetLevel(logging.LevelDebug)
//
// # Testing
//
// NewTestHelper captures JSON output in memory:
//
//	th := logging.NewTestHelper(t)
//	th.Logger.Logger().Info("hello", "user", 42)
//	th.AssertLog(t, "INFO", "hello", map[string]any{"user": 42})
package logging
