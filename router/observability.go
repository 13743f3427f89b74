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
	"net/http"
	"time"
)

// StatusClientClosedRequest is reported to recorders for requests whose
// context ended before a response was produced. Nothing is written to the
// client in that case.
const StatusClientClosedRequest = 499

// ObservabilityRecorder provides lifecycle hooks for served requests.
// Implementations typically collect metrics, create trace spans or write
// access logs.
//
// Lifecycle:
//  1. ServeHTTP calls OnRequestStart(ctx, req) before routing and always
//     continues with the returned context.
//  2. The request task runs to completion or is abandoned.
//  3. ServeHTTP calls OnRequestEnd with the state returned by
//     OnRequestStart and a RequestInfo describing the outcome, unless
//     that state was nil.
//
// Recorders are started in registration order and ended in reverse order.
// All methods must be safe for concurrent use.
type ObservabilityRecorder interface {
	// OnRequestStart is called before routing begins. Returning a nil
	// state excludes the request from OnRequestEnd, but the returned
	// context is used either way.
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)

	// OnRequestEnd is called after the response was written or the
	// request was abandoned.
	OnRequestEnd(ctx context.Context, state any, info RequestInfo)
}

// RequestInfo describes a finished request.
type RequestInfo struct {
	Method string
	Path   string
	// Route is the matched URI pattern, or "_not_found".
	Route   string
	Verdict Verdict
	Scope   ScopeID
	Status  int
	// Size is the number of body bytes written.
	Size     int64
	Duration time.Duration
	// Abandoned reports a request whose context ended first.
	Abandoned bool
	// Err is the write or upgrade error, if any.
	Err error
}
