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

// Package errors turns handler errors into HTTP responses.
//
// A handler or modifier that fails returns a plain Go error. The router
// hands that error to a Formatter, which decides the status, body and
// extra headers of the response. Two formatters are provided:
//   - RFC9457: Problem Details (application/problem+json), the router default
//   - Simple: a flat JSON object with an "error" field
//
// # Classifying errors
//
// Errors opt into richer responses by implementing small interfaces:
//
//   - ErrorType: HTTPStatus() picks the status code (500 otherwise)
//   - ErrorDetails: Details() adds structured data such as field errors
//   - ErrorCode: Code() adds a machine-readable code
//   - ErrorHeaders: Headers() contributes headers such as Allow
//
// Existing errors are wrapped rather than redefined:
//
//	func getUser(in *router.Input) (*router.Output, error) {
//		id, err := strconv.Atoi(in.Param("id"))
//		if err != nil {
//			return nil, errors.BadRequest(err)
//		}
//		u, err := users.Find(in.Context(), id)
//		if err != nil {
//			return nil, errors.WithStatus(err, http.StatusNotFound)
//		}
//		return router.JSON(http.StatusOK, u)
//	}
//
// StatusOf classifies any error the same way the formatters do, which lets
// access logs and metrics agree with what the client saw.
//
// # Choosing a formatter
//
//	app := router.MustNew(configure,
//		router.WithErrorFormatter(errors.NewSimple()),
//	)
//
// Formatters run on the request path after a handler failed; they must not
// block.
package errors
