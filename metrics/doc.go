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

// Package metrics provides OpenTelemetry-based HTTP metrics for scoped
// applications. It supports Prometheus, OTLP and stdout exporters.
//
// A [Recorder] implements router.ObservabilityRecorder. Registered on an
// application it records, per request:
//   - http_requests_total: counter
//   - http_request_duration_seconds: histogram
//   - http_response_size_bytes: histogram
//   - http_requests_active: up-down counter
//   - router_requests_abandoned_total: counter
//
// Requests are labeled with method, matched route pattern, status code,
// resolution verdict and scope. Unmatched requests use the "_not_found"
// route, so raw paths never become label values.
//
// # Basic Usage
//
//	recorder := metrics.MustNew(metrics.WithServiceName("api"))
//	defer recorder.Shutdown(context.Background())
//
//	app := router.MustNew(configure, router.WithObservability(recorder))
//
//	h, _ := recorder.Handler()
//	go http.ListenAndServe(":9090", h) // Prometheus scrape endpoint
//
// # Global State
//
// By default, this package does NOT set the global OpenTelemetry meter provider.
// Use [WithGlobalMeterProvider] if you want global registration.
//
// # Custom Metrics
//
//	_ = recorder.IncrementCounter(ctx, "orders_created",
//	    attribute.String("channel", "web"))
//	_ = recorder.SetGauge(ctx, "queue_depth", 42)
//
// Custom metric names are validated and limited (default 1000) to prevent
// unbounded metric creation. Names starting with http_ or router_ are
// reserved.
package metrics
