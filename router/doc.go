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

// Package router provides a scoped HTTP request router.
//
// An application is declared once, through a configure function that
// receives the root Scope, and then frozen into an immutable App. Scopes
// form a tree: each carries a path prefix, typed state, modifiers and an
// optional fallback, and all of them are inherited by nested scopes.
//
// # Quick Start
//
//	app := router.MustNew(func(s *router.Scope) {
//	    s.GET("/", router.HandlerFunc(func(in *router.Input) (*router.Output, error) {
//	        return router.Text(http.StatusOK, "Hello"), nil
//	    }))
//
//	    s.Mount("/users", func(users *router.Scope) {
//	        users.State(&UserStore{})
//	        users.GET("/:id", getUser)
//	        users.DELETE("/:id", deleteUser)
//	    })
//	})
//	http.ListenAndServe(":8080", app)
//
// # Patterns
//
// Patterns are "/"-separated segments. ":name" captures one non-empty
// segment, "*name" captures the possibly empty remainder and must come
// last. A trailing slash is significant. The pattern "*" matches the
// asterisk-form target of "OPTIONS *" and is only allowed at the root.
//
// # Resolution
//
// App.Route resolves a path and method to one of three verdicts:
//
//   - FoundEndpoint: a resource matched and has an endpoint for the method
//   - FoundResource: a resource matched but the method is not allowed
//   - NotFound: no resource matched
//
// Literal segments win over parameters, and parameters win over
// catch-alls. Requests that reach no endpoint are answered by the fallback
// of the innermost scope that the request was resolved to, or by
// DefaultFallback, which replies 404, 405 with Allow, or 204 with Allow
// for OPTIONS.
//
// # Handlers
//
// A Handler produces a fresh Handle for every request. The Handle is
// polled until it reports a result; a pending Handle arranges for the
// task's Waker to fire when it can make progress. HandlerFunc adapts a
// synchronous function, AsyncFunc runs a function on its own goroutine.
//
// Errors returned by handlers are converted to responses by the
// configured errors.Formatter. Use errors.WithStatus to choose the status.
//
// # Lifecycle
//
// ServeHTTP is a ready-made driver. Custom drivers use App.NewTask and
// Task.Poll, waiting on Task.Wake between polls, and call Task.Abandon
// when the client goes away.
package router
