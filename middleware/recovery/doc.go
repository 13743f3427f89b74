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

// Package recovery provides a modifier that recovers from panics in
// request handlers.
//
// A panic while polling a wrapped endpoint is logged with a stack trace and
// turned into a 500 error response instead of crashing the server. The
// active OpenTelemetry span, if any, is marked with exception attributes.
//
// # Basic Usage
//
//	import "rivaas.dev/scoped/middleware/recovery"
//
//	app := router.MustNew(func(s *router.Scope) {
//	    s.Use(recovery.New())
//	    s.GET("/", index)
//	})
//
// Register it on the root scope so it wraps every endpoint. Panics raised on
// goroutines started by a handler, including router.AsyncFunc handlers,
// are outside its reach.
//
// # Configuration Options
//
//   - WithStackTrace: Enable/disable stack trace logging (default: true)
//   - WithStackSize: Maximum stack trace size in bytes (default: 4KB)
//   - WithLogger: Custom logger function for panic messages
//   - WithHandler: Custom recovery result
//
// # OpenTelemetry Integration
//
//   - exception.escaped: Set to true for panics
//   - exception.type: Type of the panic value
//   - exception.message: String representation of the panic value
package recovery
