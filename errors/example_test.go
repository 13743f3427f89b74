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

package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	"rivaas.dev/scoped/errors"
)

// ExampleRFC9457 demonstrates how to use the RFC9457 formatter.
func ExampleRFC9457() {
	formatter := errors.NewRFC9457("https://api.example.com/problems")
	req := httptest.NewRequest(http.MethodPost, "/api/users", nil)

	response := formatter.Format(req, stderrors.New("validation failed"))

	fmt.Printf("Status: %d\n", response.Status)
	fmt.Printf("Content-Type: %s\n", response.ContentType)
	// Output:
	// Status: 500
	// Content-Type: application/problem+json; charset=utf-8
}

// ExampleSimple demonstrates how to use the Simple formatter.
func ExampleSimple() {
	formatter := errors.NewSimple()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)

	response := formatter.Format(req, errors.BadRequest(stderrors.New("missing id")))
	body, _ := response.Encode()

	fmt.Printf("Status: %d\n", response.Status)
	fmt.Println(string(body))
	// Output:
	// Status: 400
	// {"error":"missing id"}
}

// ExampleWithHeader demonstrates an error that carries response headers.
func ExampleWithHeader() {
	err := errors.WithHeader(errors.WithStatus(nil, http.StatusMethodNotAllowed), "Allow", "GET, OPTIONS")

	response := errors.NewSimple().Format(httptest.NewRequest(http.MethodPut, "/users", nil), err)

	fmt.Println(response.Status, response.Headers.Get("Allow"))
	// Output: 405 GET, OPTIONS
}

// ExampleRFC9457_customErrorID demonstrates custom error ID generation.
func ExampleRFC9457_customErrorID() {
	formatter := &errors.RFC9457{
		BaseURL: "https://api.example.com/problems",
		ErrorIDGenerator: func() string {
			return "custom-id-12345"
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	response := formatter.Format(req, stderrors.New("test error"))

	body := response.Body.(errors.ProblemDetail)
	fmt.Printf("Error ID: %v\n", body.Extensions["error_id"])
	// Output:
	// Error ID: custom-id-12345
}
