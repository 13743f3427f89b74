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

package metrics

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// metricNameRegex validates metric names according to OpenTelemetry conventions.
var metricNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]*$`)

const maxMetricNameLength = 255

// Reserved metric name prefixes that should not be used for custom metrics.
var reservedPrefixes = []string{
	"__",      // Prometheus internals
	"http_",   // built-in HTTP metrics
	"router_", // built-in router metrics
}

// limitError is returned when the custom metrics limit is reached.
type limitError struct {
	metricName string
	limit      int
}

func (e *limitError) Error() string {
	return fmt.Sprintf("metrics limit reached: cannot create '%s' (limit: %d)", e.metricName, e.limit)
}

func validateMetricName(name string) error {
	if name == "" {
		return fmt.Errorf("metric name cannot be empty")
	}
	if len(name) > maxMetricNameLength {
		return fmt.Errorf("metric name too long: %d characters (max %d)", len(name), maxMetricNameLength)
	}
	if !metricNameRegex.MatchString(name) {
		return fmt.Errorf("invalid metric name '%s': must start with letter and contain only alphanumeric, underscore, dot, or hyphen", name)
	}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return fmt.Errorf("metric name '%s' uses reserved prefix '%s'", name, prefix)
		}
	}
	return nil
}

// initializeMetrics creates the built-in instruments.
func (r *Recorder) initializeMetrics() error {
	var err error

	r.requestDuration, err = r.meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(r.durationBuckets...),
	)
	if err != nil {
		return fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	r.requestCount, err = r.meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create request count counter: %w", err)
	}

	r.activeRequests, err = r.meter.Int64UpDownCounter(
		"http_requests_active",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create active requests gauge: %w", err)
	}

	r.responseSize, err = r.meter.Int64Histogram(
		"http_response_size_bytes",
		metric.WithDescription("Size of HTTP response bodies in bytes"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(r.sizeBuckets...),
	)
	if err != nil {
		return fmt.Errorf("failed to create response size histogram: %w", err)
	}

	r.abandonedCount, err = r.meter.Int64Counter(
		"router_requests_abandoned_total",
		metric.WithDescription("Requests whose context ended before a response was produced"),
	)
	if err != nil {
		return fmt.Errorf("failed to create abandoned requests counter: %w", err)
	}

	return nil
}

// IncrementCounter increments a custom counter metric by 1.
//
// Example:
//
//	_ = recorder.IncrementCounter(ctx, "greetings_total",
//	    attribute.String("lang", "en"))
func (r *Recorder) IncrementCounter(ctx context.Context, name string, attributes ...attribute.KeyValue) error {
	return r.AddCounter(ctx, name, 1, attributes...)
}

// AddCounter adds a value to a custom counter metric.
func (r *Recorder) AddCounter(ctx context.Context, name string, value int64, attributes ...attribute.KeyValue) error {
	counter, err := getOrCreate(r, r.customCounters, name, func() (metric.Int64Counter, error) {
		return r.meter.Int64Counter(name, metric.WithDescription("Custom counter metric"))
	})
	if err != nil {
		r.emitWarning("Custom metric rejected", "name", name, "error", err)
		return fmt.Errorf("add counter %q: %w", name, err)
	}
	counter.Add(ctx, value, metric.WithAttributes(attributes...))
	return nil
}

// RecordHistogram records a value in a custom histogram metric.
func (r *Recorder) RecordHistogram(ctx context.Context, name string, value float64, attributes ...attribute.KeyValue) error {
	histogram, err := getOrCreate(r, r.customHistograms, name, func() (metric.Float64Histogram, error) {
		return r.meter.Float64Histogram(name, metric.WithDescription("Custom histogram metric"))
	})
	if err != nil {
		r.emitWarning("Custom metric rejected", "name", name, "error", err)
		return fmt.Errorf("record histogram %q: %w", name, err)
	}
	histogram.Record(ctx, value, metric.WithAttributes(attributes...))
	return nil
}

// SetGauge sets a custom gauge metric.
func (r *Recorder) SetGauge(ctx context.Context, name string, value float64, attributes ...attribute.KeyValue) error {
	gauge, err := getOrCreate(r, r.customGauges, name, func() (metric.Float64Gauge, error) {
		return r.meter.Float64Gauge(name, metric.WithDescription("Custom gauge metric"))
	})
	if err != nil {
		r.emitWarning("Custom metric rejected", "name", name, "error", err)
		return fmt.Errorf("set gauge %q: %w", name, err)
	}
	gauge.Record(ctx, value, metric.WithAttributes(attributes...))
	return nil
}

// getOrCreate returns the instrument registered under name in m, creating
// it with create on first use. Safe for concurrent use.
func getOrCreate[T any](r *Recorder, m map[string]T, name string, create func() (T, error)) (T, error) {
	r.customMu.RLock()
	inst, ok := m[name]
	r.customMu.RUnlock()
	if ok {
		return inst, nil
	}

	var zero T
	if err := validateMetricName(name); err != nil {
		return zero, err
	}

	r.customMu.Lock()
	defer r.customMu.Unlock()

	if inst, ok := m[name]; ok {
		return inst, nil
	}
	if r.customMetricCount >= r.maxCustomMetrics {
		return zero, &limitError{metricName: name, limit: r.maxCustomMetrics}
	}

	inst, err := create()
	if err != nil {
		return zero, err
	}
	m[name] = inst
	r.customMetricCount++
	return inst, nil
}

// CustomMetricCount returns the number of custom metrics created.
func (r *Recorder) CustomMetricCount() int {
	r.customMu.RLock()
	defer r.customMu.RUnlock()
	return r.customMetricCount
}
