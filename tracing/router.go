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
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/scoped/router"
)

const attrPrefixHeader = "http.request.header."

var _ router.ObservabilityRecorder = (*Tracer)(nil)

// OnRequestStart continues a propagated trace, or starts a new one, with a
// server span for req. The span is renamed after its route once the
// request has been resolved.
func (t *Tracer) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	if t.tracer == nil || t.pathFilter.shouldExclude(req.URL.Path) {
		return ctx, nil
	}

	ctx = t.ExtractTraceContext(ctx, req.Header)

	attrs := make([]attribute.KeyValue, 0, 6+len(t.recordHeaders))
	attrs = append(attrs,
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.URL.Path),
		attribute.String("server.address", req.Host),
		attribute.String("user_agent.original", req.UserAgent()),
		attribute.String("service.name", t.serviceName),
		attribute.String("service.version", t.serviceVersion),
	)
	for _, h := range t.recordHeaders {
		if v := req.Header.Get(h); v != "" {
			attrs = append(attrs, attribute.String(attrPrefixHeader+strings.ToLower(h), v))
		}
	}

	ctx, span := t.tracer.Start(ctx, req.Method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
	if t.spanStartHook != nil {
		t.spanStartHook(ctx, span, req)
	}
	return ctx, span
}

// OnRequestEnd records the routing outcome and response status on the
// request span and ends it.
func (t *Tracer) OnRequestEnd(_ context.Context, state any, info router.RequestInfo) {
	span, ok := state.(trace.Span)
	if !ok {
		return
	}

	span.SetName(info.Method + " " + info.Route)
	span.SetAttributes(
		attribute.String("http.route", info.Route),
		attribute.Int("http.response.status_code", info.Status),
		attribute.Int64("http.response.body.size", info.Size),
		attribute.String("router.verdict", info.Verdict.String()),
		attribute.Int("router.scope", int(info.Scope)),
	)

	switch {
	case info.Abandoned:
		span.SetAttributes(attribute.Bool("router.abandoned", true))
		span.SetStatus(codes.Error, "request abandoned")
	case info.Status >= http.StatusInternalServerError:
		span.SetStatus(codes.Error, http.StatusText(info.Status))
	}
	if info.Err != nil {
		span.RecordError(info.Err)
	}

	if t.spanFinishHook != nil {
		t.spanFinishHook(span, info.Status)
	}
	span.End()
}
