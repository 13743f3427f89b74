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
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const tracerName = "rivaas.dev/scoped/tracing"

// initializeProvider initializes providers that need no network connection.
func (t *Tracer) initializeProvider() error {
	if t.customTracerProvider {
		return t.useCustomProvider()
	}

	switch t.provider {
	case NoopProvider:
		t.install(sdktrace.NewTracerProvider(t.providerOptions()...))
		return nil
	case StdoutProvider:
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		t.install(sdktrace.NewTracerProvider(append(t.providerOptions(), sdktrace.WithBatcher(exporter))...))
		t.emitInfo("Tracing initialized", "provider", "stdout", "service", t.serviceName)
		return nil
	default:
		return fmt.Errorf("unsupported tracing provider: %s", t.provider)
	}
}

// initializeProviderWithContext initializes OTLP providers. The context is
// used for connection establishment.
func (t *Tracer) initializeProviderWithContext(ctx context.Context) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch t.provider {
	case OTLPProvider:
		var opts []otlptracegrpc.Option
		if t.otlpEndpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(t.otlpEndpoint))
		}
		if t.otlpInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	case OTLPHTTPProvider:
		var opts []otlptracehttp.Option
		if t.otlpEndpoint != "" {
			endpoint, insecure := splitEndpoint(t.otlpEndpoint)
			opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
			if insecure {
				opts = append(opts, otlptracehttp.WithInsecure())
			}
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
	default:
		return fmt.Errorf("provider %s does not require context initialization", t.provider)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s exporter: %w", t.provider, err)
	}

	t.install(sdktrace.NewTracerProvider(append(t.providerOptions(), sdktrace.WithBatcher(exporter))...))
	t.emitInfo("Tracing initialized", "provider", string(t.provider), "endpoint", t.otlpEndpoint, "service", t.serviceName)
	return nil
}

// splitEndpoint turns a URL-style endpoint into host:port and reports
// whether it asked for plain HTTP.
func splitEndpoint(endpoint string) (string, bool) {
	insecure := false
	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		endpoint, insecure = rest, true
	} else {
		endpoint = strings.TrimPrefix(endpoint, "https://")
	}
	if idx := strings.IndexByte(endpoint, '/'); idx != -1 {
		endpoint = endpoint[:idx]
	}
	return endpoint, insecure
}

func (t *Tracer) providerOptions() []sdktrace.TracerProviderOption {
	return []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", t.serviceName),
			attribute.String("service.version", t.serviceVersion),
		)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(t.sampleRate))),
	}
}

// install adopts tp as the Tracer's own provider.
func (t *Tracer) install(tp *sdktrace.TracerProvider) {
	t.sdkProvider = tp
	t.tracerProvider = tp
	t.tracer = tp.Tracer(tracerName)
	if t.registerGlobal {
		t.emitDebug("Setting global OpenTelemetry tracer provider", "provider", string(t.provider))
		otel.SetTracerProvider(tp)
	}
}

func (t *Tracer) useCustomProvider() error {
	if t.tracerProvider == nil {
		return fmt.Errorf("custom tracer provider is nil")
	}
	t.emitDebug("Using custom user-provided tracer provider")
	t.tracer = t.tracerProvider.Tracer(tracerName)
	t.started = true
	if t.registerGlobal {
		otel.SetTracerProvider(t.tracerProvider)
	}
	return nil
}
