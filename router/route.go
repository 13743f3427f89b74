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
	"net/http"
	"strings"

	"rivaas.dev/scoped/router/compiler"
	"rivaas.dev/scoped/router/recognizer"
)

// Verdict is the outcome of resolving a request.
type Verdict uint8

const (
	// NotFound means no resource matches the path.
	NotFound Verdict = iota
	// FoundEndpoint means a resource matches and has an endpoint for the method.
	FoundEndpoint
	// FoundResource means a resource matches but has no endpoint for the method.
	FoundResource
)

// String returns the verdict name used in logs and metrics.
func (v Verdict) String() string {
	switch v {
	case FoundEndpoint:
		return "found_endpoint"
	case FoundResource:
		return "found_resource"
	default:
		return "not_found"
	}
}

// RouteResult is the resolution verdict for one (path, method) pair.
type RouteResult struct {
	Verdict Verdict

	// Endpoint is set for FoundEndpoint.
	Endpoint *Endpoint
	// Resource is set for FoundEndpoint and FoundResource.
	Resource *Resource
	// Candidates lists the partially matching resources for NotFound.
	Candidates []*Resource
	// Captures are byte ranges into the path, set when Resource is set.
	Captures []recognizer.Capture
	// Scope is the resource's scope, or the inferred scope for NotFound.
	Scope ScopeID
	// FallbackHead reports a HEAD request answered by the GET endpoint.
	FallbackHead bool
}

// Pattern returns the matched URI pattern, or a sentinel for unmatched
// requests. It is safe to use as a low-cardinality metric label.
func (r RouteResult) Pattern() string {
	if r.Resource != nil {
		return r.Resource.uri.String()
	}
	return "_not_found"
}

// Route resolves path and method against the frozen application.
// It never blocks and is safe for concurrent use.
//
// Resolution never fails: unmatched requests are reported as verdicts and
// answered by fallbacks.
func (a *App) Route(path, method string) RouteResult {
	res := a.recognizer.Recognize(path)

	switch res.Kind {
	case recognizer.Matched:
		resource := a.resources[res.ID]
		out := RouteResult{
			Resource: resource,
			Captures: res.Captures,
			Scope:    resource.scope,
		}
		if ep, ok := resource.Endpoint(method); ok {
			out.Verdict = FoundEndpoint
			out.Endpoint = ep
			return out
		}
		if method == http.MethodHead && a.fallbackHead {
			if ep, ok := resource.Endpoint(http.MethodGet); ok {
				out.Verdict = FoundEndpoint
				out.Endpoint = ep
				out.FallbackHead = true
				return out
			}
		}
		out.Verdict = FoundResource
		return out

	case recognizer.PartiallyMatched:
		candidates := make([]*Resource, len(res.Candidates))
		for i, id := range res.Candidates {
			candidates[i] = a.resources[id]
		}
		return RouteResult{
			Verdict:    NotFound,
			Candidates: candidates,
			Scope:      a.inferScope(path, candidates),
		}

	default:
		return RouteResult{Verdict: NotFound, Scope: RootScope}
	}
}

// inferScope picks the scope an unmatched path was most plausibly aimed at.
//
// It intersects the ancestor chains of all candidates and returns the
// deepest shared ancestor whose prefix covers the path, falling back to the
// shallowest shared ancestor, and to the root without candidates.
func (a *App) inferScope(path string, candidates []*Resource) ScopeID {
	if len(candidates) == 0 {
		return RootScope
	}

	common := a.scopes[candidates[0].scope].ancestors
	for _, c := range candidates[1:] {
		anc := a.scopes[c.scope].ancestors
		n := 0
		for n < len(common) && n < len(anc) && common[n] == anc[n] {
			n++
		}
		common = common[:n]
	}
	if len(common) == 0 {
		return RootScope
	}

	for i := len(common) - 1; i >= 0; i-- {
		if prefixCovers(a.scopes[common[i]].prefix, path) {
			return common[i]
		}
	}
	return common[0]
}

// prefixCovers reports whether prefix matches the leading segments of path.
// Literal segments match whole path segments, so "/c" covers "/c" and
// "/c/d" but not "/cd".
func prefixCovers(prefix *compiler.Pattern, path string) bool {
	rest := path
	for _, seg := range prefix.Segments() {
		if seg.Kind == compiler.CatchAll {
			return true
		}
		if !strings.HasPrefix(rest, "/") {
			return false
		}
		rest = rest[1:]
		end := strings.IndexByte(rest, '/')
		if end < 0 {
			end = len(rest)
		}
		part := rest[:end]
		switch seg.Kind {
		case compiler.Literal:
			if part != seg.Value {
				return false
			}
		case compiler.Param:
			if part == "" {
				return false
			}
		}
		rest = rest[end:]
	}
	return true
}

// findFallback returns the fallback of the innermost scope, starting at
// id, that has one; nil when no scope up to the root has a fallback.
func (a *App) findFallback(id ScopeID) Fallback {
	anc := a.scopes[id].ancestors
	for i := len(anc) - 1; i >= 0; i-- {
		if f := a.scopes[anc[i]].fallback; f != nil {
			return f
		}
	}
	return nil
}
