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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// EventType represents the severity of an internal operational event.
type EventType int

const (
	EventError EventType = iota
	EventWarning
	EventInfo
	EventDebug
)

// Event represents an internal operational event from the tracing package.
type Event struct {
	Type    EventType
	Message string
	Args    []any // slog-style key-value pairs
}

// EventHandler processes internal operational events from the tracing package.
type EventHandler func(Event)

// DefaultEventHandler returns an EventHandler that logs events to logger.
// If logger is nil, events are discarded.
func DefaultEventHandler(logger *slog.Logger) EventHandler {
	if logger == nil {
		return func(Event) {}
	}
	return func(e Event) {
		switch e.Type {
		case EventError:
			logger.Error(e.Message, e.Args...)
		case EventWarning:
			logger.Warn(e.Message, e.Args...)
		case EventInfo:
			logger.Info(e.Message, e.Args...)
		case EventDebug:
			logger.Debug(e.Message, e.Args...)
		}
	}
}

const (
	// DefaultServiceName is the default service name used for tracing when none is provided.
	DefaultServiceName = "scoped"

	// DefaultServiceVersion is the default service version when none is provided.
	DefaultServiceVersion = "1.0.0"

	// DefaultSampleRate is the default sampling rate (100% of requests).
	DefaultSampleRate = 1.0
)

// Provider represents the available tracing providers.
type Provider string

const (
	// NoopProvider records spans without exporting them (default).
	NoopProvider Provider = "noop"
	// StdoutProvider prints spans to stdout.
	StdoutProvider Provider = "stdout"
	// OTLPProvider exports spans over OTLP gRPC.
	OTLPProvider Provider = "otlp"
	// OTLPHTTPProvider exports spans over OTLP HTTP.
	OTLPHTTPProvider Provider = "otlp-http"
)

// SpanStartHook is called after a request span has been started.
type SpanStartHook func(ctx context.Context, span trace.Span, req *http.Request)

// SpanFinishHook is called before a request span ends, with the final
// response status.
type SpanFinishHook func(span trace.Span, statusCode int)

// Tracer creates a server span for every request served by a router
// application. It implements router.ObservabilityRecorder.
//
// By default, this package does NOT set the global OpenTelemetry tracer
// provider. Use WithGlobalTracerProvider() for global registration.
type Tracer struct {
	tracer         trace.Tracer
	tracerProvider trace.TracerProvider
	sdkProvider    *sdktrace.TracerProvider // set when the provider is owned by the Tracer
	propagator     propagation.TextMapPropagator
	eventHandler   EventHandler

	serviceName    string
	serviceVersion string
	provider       Provider
	providerSet    bool
	otlpEndpoint   string
	otlpInsecure   bool
	sampleRate     float64

	pathFilter       *pathFilter
	recordHeaders    []string
	spanStartHook    SpanStartHook
	spanFinishHook   SpanFinishHook
	validationErrors []error

	customTracerProvider bool
	registerGlobal       bool
	started              bool

	shutdownOnce sync.Once
	shutdownErr  error
}

// ErrNotStarted is returned by methods that need a provider initialized
// by [Tracer.Start].
var ErrNotStarted = errors.New("tracer not started")

// New creates a Tracer. Local providers (noop, stdout, custom) are ready
// immediately; OTLP providers are connected by [Tracer.Start].
func New(opts ...Option) (*Tracer, error) {
	t := &Tracer{
		serviceName:    DefaultServiceName,
		serviceVersion: DefaultServiceVersion,
		provider:       NoopProvider,
		sampleRate:     DefaultSampleRate,
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	switch t.provider {
	case OTLPProvider, OTLPHTTPProvider:
		if t.customTracerProvider {
			return t, t.useCustomProvider()
		}
		return t, nil
	default:
		if err := t.initializeProvider(); err != nil {
			return nil, err
		}
		t.started = true
		return t, nil
	}
}

// MustNew creates a Tracer or panics on error.
func MustNew(opts ...Option) *Tracer {
	t, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("tracing initialization failed: %v", err))
	}
	return t
}

func (t *Tracer) validate() error {
	if len(t.validationErrors) > 0 {
		return errors.Join(t.validationErrors...)
	}
	if t.serviceName == "" {
		return errors.New("service name cannot be empty")
	}
	if t.serviceVersion == "" {
		return errors.New("service version cannot be empty")
	}
	if t.sampleRate < 0 || t.sampleRate > 1 {
		return fmt.Errorf("sample rate must be between 0.0 and 1.0, got %v", t.sampleRate)
	}
	return nil
}

// Start connects OTLP exporters. It is a no-op for other providers and
// for tracers already started.
func (t *Tracer) Start(ctx context.Context) error {
	if t.started {
		return nil
	}
	if err := t.initializeProviderWithContext(ctx); err != nil {
		return err
	}
	t.started = true
	return nil
}

// Shutdown flushes and stops a tracer provider owned by the Tracer.
// It is safe to call more than once.
func (t *Tracer) Shutdown(ctx context.Context) error {
	t.shutdownOnce.Do(func() {
		if t.sdkProvider == nil {
			return
		}
		if err := t.sdkProvider.Shutdown(ctx); err != nil {
			t.emitError("Error shutting down tracer provider", "error", err)
			t.shutdownErr = fmt.Errorf("tracer provider shutdown: %w", err)
		}
	})
	return t.shutdownErr
}

// TracerProvider returns the provider spans are created with.
func (t *Tracer) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// ExtractTraceContext extracts propagated trace context from headers.
func (t *Tracer) ExtractTraceContext(ctx context.Context, headers http.Header) context.Context {
	return t.propagator.Extract(ctx, propagation.HeaderCarrier(headers))
}

// InjectTraceContext injects the trace context of ctx into headers, for
// outgoing requests.
func (t *Tracer) InjectTraceContext(ctx context.Context, headers http.Header) {
	t.propagator.Inject(ctx, propagation.HeaderCarrier(headers))
}

func (t *Tracer) emit(typ EventType, msg string, args ...any) {
	if t.eventHandler != nil {
		t.eventHandler(Event{Type: typ, Message: msg, Args: args})
	}
}

func (t *Tracer) emitError(msg string, args ...any) { t.emit(EventError, msg, args...) }
func (t *Tracer) emitInfo(msg string, args ...any)  { t.emit(EventInfo, msg, args...) }
func (t *Tracer) emitDebug(msg string, args ...any) { t.emit(EventDebug, msg, args...) }
