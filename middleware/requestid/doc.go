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

// Package requestid provides a modifier that assigns every request a unique
// id for log correlation and tracing.
//
// The id is taken from the request header when clients may supply one, or
// generated otherwise, stored as a request-local value and echoed in the
// response header of successful and failed responses alike.
//
// # Basic Usage
//
//	import "rivaas.dev/scoped/middleware/requestid"
//
//	app := router.MustNew(func(s *router.Scope) {
//	    s.Use(requestid.New())
//	    s.GET("/users/:id", getUser)
//	})
//
// # Request ID Generation
//
// By default, UUID v7 is used. UUID v7 is time-ordered and lexicographically
// sortable (RFC 9562). Use [WithULID] for the compact 26-character ULID
// form, or [WithGenerator] for a custom format.
//
//   - UUID v7 (default): 018f3e9a-1b2c-7def-8000-abcdef123456 (36 chars)
//   - ULID: 01ARZ3NDEKTSV4RRFFQ69G5FAV (26 chars)
//
// # Accessing Request ID
//
//	func getUser(in *router.Input) (*router.Output, error) {
//	    in.Logger().Info("loading user", "request_id", requestid.Get(in))
//	    ...
//	}
package requestid
