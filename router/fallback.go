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

	riverrors "rivaas.dev/scoped/errors"
)

// FallbackContext describes a request no endpoint could answer.
type FallbackContext struct {
	// Verdict is FoundResource (wrong method) or NotFound.
	Verdict Verdict
	// Resource is the matched resource for FoundResource.
	Resource *Resource
	// Candidates are the partially matching resources for NotFound.
	Candidates []*Resource
	// Scope is the scope the request was resolved to.
	Scope ScopeID
	// Method is the request method.
	Method string
}

// Fallback answers requests that match a scope but no endpoint.
// The returned continuation is driven exactly like a handler's.
type Fallback interface {
	Fallback(cx *FallbackContext) Handle
}

// FallbackFunc is a synchronous fallback.
//
// Example:
//
//	s.Fallback(router.FallbackFunc(func(in *router.Input, cx *router.FallbackContext) (*router.Output, error) {
//	    if cx.Verdict == router.NotFound {
//	        return router.Text(http.StatusNotFound, "no such page"), nil
//	    }
//	    return router.DefaultFallback(in, cx)
//	}))
type FallbackFunc func(in *Input, cx *FallbackContext) (*Output, error)

// Fallback returns a continuation that completes on its first poll.
func (f FallbackFunc) Fallback(cx *FallbackContext) Handle {
	return HandleFunc(func(in *Input) Poll {
		return Complete(f(in, cx))
	})
}

// DefaultFallback is used when no scope up to the root has a fallback.
//
// A matched resource answers OPTIONS with 204 and the Allow header, and any
// other method with 405 and the Allow header. Unmatched requests get 404.
func DefaultFallback(_ *Input, cx *FallbackContext) (*Output, error) {
	if cx.Verdict == FoundResource && cx.Resource != nil {
		if cx.Method == http.MethodOptions {
			out := Empty(http.StatusNoContent)
			out.Header.Set("Allow", cx.Resource.AllowHeader())
			return out, nil
		}
		return nil, riverrors.WithHeader(
			riverrors.WithStatus(nil, http.StatusMethodNotAllowed),
			"Allow", cx.Resource.AllowHeader(),
		)
	}
	return nil, riverrors.WithStatus(nil, http.StatusNotFound)
}

var defaultFallback Fallback = FallbackFunc(DefaultFallback)
