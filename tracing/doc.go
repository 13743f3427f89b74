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

// Package tracing provides OpenTelemetry tracing for scoped applications.
//
// A [Tracer] implements router.ObservabilityRecorder. It continues traces
// propagated with W3C trace context headers and creates one server span per
// request. Once the request is resolved, the span is named after the
// method and matched route ("GET /users/:id") and annotated with the
// routing verdict, the scope and the response status. Abandoned requests
// and 5xx responses mark the span as failed.
//
// # Basic Usage
//
//	tracer := tracing.MustNew(
//	    tracing.WithServiceName("api"),
//	    tracing.WithOTLP("localhost:4317", tracing.OTLPInsecure()),
//	)
//	if err := tracer.Start(ctx); err != nil { // connects OTLP exporters
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(context.Background())
//
//	app := router.MustNew(configure, router.WithObservability(tracer))
//
// Handlers reach the span through the request context:
//
//	span := trace.SpanFromContext(in.Context())
//	span.AddEvent("cache miss")
//
// # Providers
//
//   - [NoopProvider] (default): spans are created but not exported
//   - [StdoutProvider]: pretty-printed spans on stdout
//   - [OTLPProvider]: OTLP over gRPC
//   - [OTLPHTTPProvider]: OTLP over HTTP
//
// By default, this package does NOT set the global OpenTelemetry tracer
// provider. Use [WithGlobalTracerProvider] for global registration.
package tracing
