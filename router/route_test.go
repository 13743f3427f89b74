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

//go:build !integration

package router

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoute_Scenario(t *testing.T) {
	t.Parallel()

	app := newScenarioApp(t)

	tests := []struct {
		name        string
		path        string
		method      string
		wantVerdict Verdict
		wantURI     string
		wantScope   ScopeID
		wantCands   int
	}{
		{name: "scoped endpoint", path: "/c/d", method: http.MethodGet, wantVerdict: FoundEndpoint, wantURI: "/c/d", wantScope: 2},
		{name: "sibling scope endpoint", path: "/a", method: http.MethodGet, wantVerdict: FoundEndpoint, wantURI: "/a", wantScope: 1},
		{name: "root endpoint", path: "/foo", method: http.MethodGet, wantVerdict: FoundEndpoint, wantURI: "/foo", wantScope: RootScope},
		{name: "scope prefix only", path: "/c", method: http.MethodGet, wantVerdict: NotFound, wantScope: 2, wantCands: 2},
		{name: "scope prefix with slash", path: "/c/", method: http.MethodGet, wantVerdict: NotFound, wantScope: 2, wantCands: 2},
		{name: "below scope", path: "/c/x", method: http.MethodGet, wantVerdict: NotFound, wantScope: 2, wantCands: 2},
		{name: "partial literal at root", path: "/fo", method: http.MethodGet, wantVerdict: NotFound, wantScope: RootScope, wantCands: 1},
		{name: "unknown", path: "/zzz", method: http.MethodGet, wantVerdict: NotFound, wantScope: RootScope},
		{name: "wrong method", path: "/a", method: http.MethodPost, wantVerdict: FoundResource, wantURI: "/a", wantScope: 1},
		{name: "wrong method in scope", path: "/c/e", method: http.MethodDelete, wantVerdict: FoundResource, wantURI: "/c/e", wantScope: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := app.Route(tt.path, tt.method)
			assert.Equal(t, tt.wantVerdict, res.Verdict)
			assert.Equal(t, tt.wantScope, res.Scope)
			assert.Len(t, res.Candidates, tt.wantCands)

			switch tt.wantVerdict {
			case FoundEndpoint:
				require.NotNil(t, res.Endpoint)
				assert.Equal(t, tt.wantURI, res.Resource.URI().String())
				assert.Equal(t, tt.wantURI, res.Pattern())
			case FoundResource:
				require.NotNil(t, res.Resource)
				assert.Nil(t, res.Endpoint)
				assert.Equal(t, "GET, OPTIONS", res.Resource.AllowHeader())
			case NotFound:
				assert.Nil(t, res.Resource)
				assert.Equal(t, "_not_found", res.Pattern())
			}
		})
	}
}

func TestRoute_EmptyApp(t *testing.T) {
	t.Parallel()

	app := MustNew(nil)

	for _, path := range []string{"/", "/anything", "*", ""} {
		res := app.Route(path, http.MethodGet)
		assert.Equal(t, NotFound, res.Verdict, path)
		assert.Equal(t, RootScope, res.Scope, path)
		assert.Empty(t, res.Candidates, path)
	}
}

func TestRoute_Captures(t *testing.T) {
	t.Parallel()

	app := MustNew(func(s *Scope) {
		s.GET("/:id/:name/*path", text("x"))
	})

	const path = "/42/alice/docs/readme.md"
	res := app.Route(path, http.MethodGet)
	require.Equal(t, FoundEndpoint, res.Verdict)
	require.Len(t, res.Captures, 3)

	params := newParams(path, res.Resource.URI(), res.Captures)
	assert.Equal(t, map[string]string{
		"id":   "42",
		"name": "alice",
		"path": "docs/readme.md",
	}, params.Map())

	rendered, err := res.Resource.URI().Render(params.Map())
	require.NoError(t, err)
	assert.Equal(t, path, rendered)
}

func TestRoute_Priority(t *testing.T) {
	t.Parallel()

	app := MustNew(func(s *Scope) {
		s.GET("/users/new", text("literal"))
		s.GET("/users/:id", text("param"))
		s.GET("/users/*rest", text("catch-all"))
	})

	tests := []struct {
		path    string
		wantURI string
	}{
		{path: "/users/new", wantURI: "/users/new"},
		{path: "/users/7", wantURI: "/users/:id"},
		{path: "/users/7/posts", wantURI: "/users/*rest"},
		{path: "/users/", wantURI: "/users/*rest"},
	}

	for _, tt := range tests {
		res := app.Route(tt.path, http.MethodGet)
		require.Equal(t, FoundEndpoint, res.Verdict, tt.path)
		assert.Equal(t, tt.wantURI, res.Resource.URI().String(), tt.path)
	}
}

func TestRoute_SameResourceDifferentMethods(t *testing.T) {
	t.Parallel()

	app := MustNew(func(s *Scope) {
		s.GET("/path", text("get"))
		s.POST("/path", text("post"))
	})

	get := app.Route("/path", http.MethodGet)
	post := app.Route("/path", http.MethodPost)
	require.Equal(t, FoundEndpoint, get.Verdict)
	require.Equal(t, FoundEndpoint, post.Verdict)
	assert.Same(t, get.Resource, post.Resource)
	assert.NotSame(t, get.Endpoint, post.Endpoint)
	assert.Equal(t, Methods{http.MethodPost}, post.Endpoint.Methods())
}

func TestRoute_AnyMethod(t *testing.T) {
	t.Parallel()

	app := MustNew(func(s *Scope) {
		s.Route("/hook", text("any"))
		s.DELETE("/hook", text("delete"))
	})

	del := app.Route("/hook", http.MethodDelete)
	require.Equal(t, FoundEndpoint, del.Verdict)
	assert.Equal(t, Methods{http.MethodDelete}, del.Endpoint.Methods())

	patch := app.Route("/hook", "PATCH")
	require.Equal(t, FoundEndpoint, patch.Verdict)
	assert.Nil(t, patch.Endpoint.Methods())
}

func TestRoute_FallbackHead(t *testing.T) {
	t.Parallel()

	configure := func(s *Scope) {
		s.GET("/implicit", text("get"))
		s.GET("/explicit", text("get"))
		s.HEAD("/explicit", text("head"))
		s.POST("/post-only", text("post"))
	}

	t.Run("enabled", func(t *testing.T) {
		t.Parallel()

		app := MustNew(configure)

		res := app.Route("/implicit", http.MethodHead)
		assert.Equal(t, FoundEndpoint, res.Verdict)
		assert.True(t, res.FallbackHead)
		assert.Equal(t, Methods{http.MethodGet}, res.Endpoint.Methods())

		res = app.Route("/explicit", http.MethodHead)
		assert.Equal(t, FoundEndpoint, res.Verdict)
		assert.False(t, res.FallbackHead, "explicit HEAD wins")
		assert.Equal(t, Methods{http.MethodHead}, res.Endpoint.Methods())

		res = app.Route("/post-only", http.MethodHead)
		assert.Equal(t, FoundResource, res.Verdict)
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		app := MustNew(configure, WithFallbackHead(false))

		res := app.Route("/implicit", http.MethodHead)
		assert.Equal(t, FoundResource, res.Verdict)
		assert.False(t, res.FallbackHead)
	})
}

func TestRoute_Asterisk(t *testing.T) {
	t.Parallel()

	app := MustNew(func(s *Scope) {
		s.OPTIONS("*", text("server options"))
		s.GET("/", text("index"))
	})

	res := app.Route("*", http.MethodOptions)
	require.Equal(t, FoundEndpoint, res.Verdict)
	assert.True(t, res.Resource.URI().IsAsterisk())

	res = app.Route("*", http.MethodGet)
	assert.Equal(t, FoundResource, res.Verdict)
	assert.Equal(t, "OPTIONS", res.Resource.AllowHeader())
}

func TestRoute_InferScope(t *testing.T) {
	t.Parallel()

	app := MustNew(func(s *Scope) {
		s.Mount("/api", func(api *Scope) { // 1
			api.Mount("/v1", func(v1 *Scope) { // 2
				v1.GET("/users", text("users"))
				v1.GET("/items", text("items"))
			})
			api.Mount("/v2", func(v2 *Scope) { // 3
				v2.GET("/users", text("users"))
			})
		})
	})

	tests := []struct {
		name      string
		path      string
		wantScope ScopeID
	}{
		{name: "inside the deepest scope", path: "/api/v1/u", wantScope: 2},
		{name: "exact deepest prefix", path: "/api/v1", wantScope: 2},
		{name: "candidates from two scopes", path: "/api/v", wantScope: 1},
		{name: "segment aligned prefix", path: "/api/v1x", wantScope: 1},
		{name: "shared ancestor only", path: "/ap", wantScope: RootScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := app.Route(tt.path, http.MethodGet)
			assert.Equal(t, NotFound, res.Verdict)
			assert.NotEmpty(t, res.Candidates)
			assert.Equal(t, tt.wantScope, res.Scope)
		})
	}
}

func TestRoute_InferScopeUncovered(t *testing.T) {
	t.Parallel()

	app := MustNew(func(s *Scope) {
		s.GET("/x", text("x"))
	}, WithPrefix("/app"))

	res := app.Route("/ap", http.MethodGet)
	require.Equal(t, NotFound, res.Verdict)
	assert.Len(t, res.Candidates, 1)
	assert.Equal(t, RootScope, res.Scope)
}

func TestPrefixCovers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix string
		path   string
		want   bool
	}{
		{prefix: "/", path: "/anything", want: true},
		{prefix: "/c", path: "/c", want: true},
		{prefix: "/c", path: "/c/d", want: true},
		{prefix: "/c", path: "/cd", want: false},
		{prefix: "/c/d", path: "/c", want: false},
		{prefix: "/t/:tenant", path: "/t/acme/x", want: true},
		{prefix: "/t/:tenant", path: "/t//x", want: false},
		{prefix: "/files/*rest", path: "/files", want: true},
	}

	for _, tt := range tests {
		got := prefixCovers(compilePattern(t, tt.prefix), tt.path)
		assert.Equal(t, tt.want, got, "%s covers %s", tt.prefix, tt.path)
	}
}

func TestVerdict_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "found_endpoint", FoundEndpoint.String())
	assert.Equal(t, "found_resource", FoundResource.String())
}
