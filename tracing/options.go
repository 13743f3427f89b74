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

package tracing

import (
	"fmt"
	"log/slog"
	"regexp"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Option defines functional options for tracing configuration.
type Option func(*Tracer)

// WithTracerProvider uses a custom OpenTelemetry TracerProvider. Provider
// options are ignored and [Tracer.Shutdown] leaves the provider running.
//
// Example:
//
//	recorder := tracetest.NewSpanRecorder()
//	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
//	tracer := tracing.MustNew(tracing.WithTracerProvider(tp))
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(t *Tracer) {
		t.tracerProvider = provider
		t.customTracerProvider = true
	}
}

// WithGlobalTracerProvider registers the tracer provider as the global
// OpenTelemetry tracer provider.
func WithGlobalTracerProvider() Option {
	return func(t *Tracer) {
		t.registerGlobal = true
	}
}

// WithServiceName sets the service name.
func WithServiceName(name string) Option {
	return func(t *Tracer) {
		t.serviceName = name
	}
}

// WithServiceVersion sets the service version.
func WithServiceVersion(version string) Option {
	return func(t *Tracer) {
		t.serviceVersion = version
	}
}

// WithSampleRate sets the fraction of new traces that are sampled, from
// 0.0 to 1.0. Requests continuing a remote trace follow its decision.
// Ignored for custom tracer providers.
func WithSampleRate(rate float64) Option {
	return func(t *Tracer) {
		t.sampleRate = rate
	}
}

// WithCustomPropagator sets the propagator used to extract incoming trace
// context. Default: W3C trace context and baggage.
func WithCustomPropagator(propagator propagation.TextMapPropagator) Option {
	return func(t *Tracer) {
		t.propagator = propagator
	}
}

// WithEventHandler sets a custom [EventHandler] for internal operational events.
func WithEventHandler(handler EventHandler) Option {
	return func(t *Tracer) {
		t.eventHandler = handler
	}
}

// WithLogger logs internal operational events to logger.
func WithLogger(logger *slog.Logger) Option {
	return WithEventHandler(DefaultEventHandler(logger))
}

// WithSpanStartHook sets a hook called after each request span starts.
func WithSpanStartHook(hook SpanStartHook) Option {
	return func(t *Tracer) {
		t.spanStartHook = hook
	}
}

// WithSpanFinishHook sets a hook called before each request span ends.
func WithSpanFinishHook(hook SpanFinishHook) Option {
	return func(t *Tracer) {
		t.spanFinishHook = hook
	}
}

// WithHeaders records the given request headers as span attributes
// named http.request.header.<name>.
func WithHeaders(headers ...string) Option {
	return func(t *Tracer) {
		t.recordHeaders = append(t.recordHeaders, headers...)
	}
}

// WithExcludePaths excludes exact request paths from tracing.
func WithExcludePaths(paths ...string) Option {
	return func(t *Tracer) {
		pf := t.filter()
		for _, p := range paths {
			pf.paths[p] = true
		}
	}
}

// WithExcludePrefixes excludes paths with the given prefixes from tracing.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(t *Tracer) {
		pf := t.filter()
		pf.prefixes = append(pf.prefixes, prefixes...)
	}
}

// WithExcludePatterns excludes paths matching the regex patterns.
// Invalid patterns make New return an error.
func WithExcludePatterns(patterns ...string) Option {
	return func(t *Tracer) {
		pf := t.filter()
		for _, pattern := range patterns {
			compiled, err := regexp.Compile(pattern)
			if err != nil {
				t.validationErrors = append(t.validationErrors,
					fmt.Errorf("invalid regex pattern for path exclusion %q: %w", pattern, err))
				continue
			}
			pf.patterns = append(pf.patterns, compiled)
		}
	}
}

// OTLPOption configures OTLP provider behavior.
type OTLPOption func(*otlpConfig)

type otlpConfig struct {
	insecure bool
}

// OTLPInsecure enables insecure gRPC for OTLP.
// Default is false (uses TLS). Set to true for local development.
func OTLPInsecure() OTLPOption {
	return func(c *otlpConfig) {
		c.insecure = true
	}
}

func (t *Tracer) setProvider(p Provider) bool {
	if t.providerSet {
		t.validationErrors = append(t.validationErrors,
			fmt.Errorf("provider: multiple providers configured (already have %q, cannot add %q); only one provider allowed", t.provider, p))
		return false
	}
	t.provider = p
	t.providerSet = true
	return true
}

// WithOTLP configures the OTLP gRPC provider with a "host:port" endpoint.
//
// Example:
//
//	tracer := tracing.MustNew(tracing.WithOTLP("localhost:4317", tracing.OTLPInsecure()))
func WithOTLP(endpoint string, opts ...OTLPOption) Option {
	return func(t *Tracer) {
		if !t.setProvider(OTLPProvider) {
			return
		}
		t.otlpEndpoint = endpoint
		cfg := &otlpConfig{}
		for _, opt := range opts {
			opt(cfg)
		}
		t.otlpInsecure = cfg.insecure
	}
}

// WithOTLPHTTP configures the OTLP HTTP provider. An http:// endpoint
// disables TLS.
//
// Example:
//
//	tracer := tracing.MustNew(tracing.WithOTLPHTTP("http://localhost:4318"))
func WithOTLPHTTP(endpoint string) Option {
	return func(t *Tracer) {
		if t.setProvider(OTLPHTTPProvider) {
			t.otlpEndpoint = endpoint
		}
	}
}

// WithStdout configures the stdout provider for development.
func WithStdout() Option {
	return func(t *Tracer) {
		t.setProvider(StdoutProvider)
	}
}

// WithNoop configures the noop provider (default, no traces exported).
func WithNoop() Option {
	return func(t *Tracer) {
		t.setProvider(NoopProvider)
	}
}
