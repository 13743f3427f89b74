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
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"rivaas.dev/scoped/router"
)

// Attribute keys recorded with HTTP metrics. Route is the matched URI
// pattern, never the raw path, so cardinality stays bounded.
const (
	attrMethod  = "http.request.method"
	attrRoute   = "http.route"
	attrStatus  = "http.response.status_code"
	attrVerdict = "router.verdict"
	attrScope   = "router.scope"
)

var _ router.ObservabilityRecorder = (*Recorder)(nil)

// requestState marks a request included in the metrics.
type requestState struct {
	method string
}

// OnRequestStart counts the request as in flight unless its path is excluded.
func (r *Recorder) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	if r.pathFilter.shouldExclude(req.URL.Path) {
		return ctx, nil
	}
	method := normalizeMethod(req.Method)
	r.activeRequests.Add(ctx, 1, metric.WithAttributes(
		append(r.serviceAttrs, attribute.String(attrMethod, method))...,
	))
	return ctx, &requestState{method: method}
}

// OnRequestEnd records duration, count and size of the finished request.
func (r *Recorder) OnRequestEnd(ctx context.Context, state any, info router.RequestInfo) {
	st, ok := state.(*requestState)
	if !ok {
		return
	}

	r.activeRequests.Add(ctx, -1, metric.WithAttributes(
		append(r.serviceAttrs, attribute.String(attrMethod, st.method))...,
	))

	attrs := make([]attribute.KeyValue, 0, len(r.serviceAttrs)+5)
	attrs = append(attrs, r.serviceAttrs...)
	attrs = append(attrs,
		attribute.String(attrMethod, st.method),
		attribute.String(attrRoute, info.Route),
		attribute.String(attrStatus, strconv.Itoa(info.Status)),
		attribute.String(attrVerdict, info.Verdict.String()),
		attribute.Int(attrScope, int(info.Scope)),
	)
	set := metric.WithAttributes(attrs...)

	r.requestCount.Add(ctx, 1, set)
	r.requestDuration.Record(ctx, info.Duration.Seconds(), set)
	if info.Abandoned {
		r.abandonedCount.Add(ctx, 1, set)
		return
	}
	r.responseSize.Record(ctx, info.Size, set)
}

// normalizeMethod maps unknown methods to "_OTHER" to bound cardinality.
func normalizeMethod(m string) string {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodConnect,
		http.MethodOptions, http.MethodTrace:
		return m
	default:
		return "_OTHER"
	}
}
