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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/scoped/app"
	"rivaas.dev/scoped/config"
	"rivaas.dev/scoped/logging"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()

	settings, err := config.LoadSettings(context.Background())
	require.NoError(t, err)
	settings.Server.CookieHashKey = "0123456789abcdef0123456789abcdef"

	a, err := newNotesApp(settings, newStore(),
		app.WithoutBanner(),
		app.WithLogger(logging.MustNew(logging.WithJSONHandler(), logging.WithOutput(io.Discard))),
	)
	require.NoError(t, err)
	return a
}

func do(a *app.App, method, target, contentType, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNotes_CRUD(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)

	rec := do(a, http.MethodPost, "/api/notes", "application/json", `{"folder":"work","title":"Plan","body":"ship it","tags":["q3"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[Note](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "/api/notes/"+created.ID, rec.Header().Get("Location"))
	assert.Equal(t, "1", rec.Header().Get("X-API-Version"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(a, http.MethodGet, "/api/notes/"+created.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Plan", decode[Note](t, rec).Title)

	rec = do(a, http.MethodHead, "/api/notes/"+created.ID, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(a, http.MethodPut, "/api/notes/"+created.ID, "application/yaml", "folder: work\ntitle: Plan v2\ntags: [q3, q4]\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Plan v2", decode[Note](t, rec).Title)

	rec = do(a, http.MethodGet, "/api/notes/"+created.ID+"/export", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "# Plan v2")
	assert.Contains(t, rec.Body.String(), "Tags: q3, q4")

	rec = do(a, http.MethodDelete, "/api/notes/"+created.ID, "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(a, http.MethodGet, "/api/notes/"+created.ID, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")

	rec = do(a, http.MethodDelete, "/api/notes/"+created.ID, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotes_List(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	for _, body := range []string{
		`{"folder":"work","title":"a","tags":["x"]}`,
		`{"folder":"work","title":"b"}`,
		`{"folder":"home","title":"c","tags":["x"]}`,
	} {
		require.Equal(t, http.StatusCreated, do(a, http.MethodPost, "/api/notes", "application/json", body).Code)
	}

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{name: "all", target: "/api/notes", want: []string{"a", "b", "c"}},
		{name: "by tag", target: "/api/notes?tag=x", want: []string{"a", "c"}},
		{name: "limit", target: "/api/notes?limit=1", want: []string{"a"}},
		{name: "folder", target: "/api/folders/work/notes", want: []string{"a", "b"}},
		{name: "folder and tag", target: "/api/folders/home/notes?tag=x", want: []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(a, http.MethodGet, tt.target, "", "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var titles []string
			for _, n := range decode[[]Note](t, rec) {
				titles = append(titles, n.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestNotes_Errors(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)

	tests := []struct {
		name        string
		method      string
		target      string
		contentType string
		body        string
		wantStatus  int
		wantAllow   string
	}{
		{name: "missing title", method: http.MethodPost, target: "/api/notes", contentType: "application/json", body: `{"folder":"work"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "bad folder slug", method: http.MethodPost, target: "/api/notes", contentType: "application/json", body: `{"folder":"Work Stuff","title":"x"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "unsupported media type", method: http.MethodPost, target: "/api/notes", contentType: "text/plain", body: "hi", wantStatus: http.StatusUnsupportedMediaType},
		{name: "bad limit", method: http.MethodGet, target: "/api/notes?limit=lots", wantStatus: http.StatusBadRequest},
		{name: "limit out of range", method: http.MethodGet, target: "/api/notes?limit=1000", wantStatus: http.StatusUnprocessableEntity},
		{name: "unknown api path", method: http.MethodGet, target: "/api/nope", wantStatus: http.StatusNotFound},
		{name: "method not allowed", method: http.MethodPatch, target: "/api/notes", wantStatus: http.StatusMethodNotAllowed, wantAllow: "POST"},
		{name: "unknown root path", method: http.MethodGet, target: "/elsewhere", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(a, tt.method, tt.target, tt.contentType, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantAllow != "" {
				assert.Contains(t, rec.Header().Get("Allow"), tt.wantAllow)
			}
		})
	}
}

func TestNotes_Session(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)

	rec := do(a, http.MethodGet, "/api/session", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(a, http.MethodPost, "/api/session", "application/json", `{"user":"ada_l"}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	rec = do(a, http.MethodGet, "/api/session", "", "", cookies[0])
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada_l", decode[session](t, rec).User)

	forged := &http.Cookie{Name: sessionCookie, Value: "forged"}
	assert.Equal(t, http.StatusUnauthorized, do(a, http.MethodGet, "/api/session", "", "", forged).Code)
}

func TestNotes_SessionWithoutKeys(t *testing.T) {
	t.Parallel()

	settings, err := config.LoadSettings(context.Background())
	require.NoError(t, err)
	a, err := newNotesApp(settings, newStore(),
		app.WithoutBanner(),
		app.WithLogger(logging.MustNew(logging.WithOutput(io.Discard))),
	)
	require.NoError(t, err)

	rec := do(a, http.MethodPost, "/api/session", "application/json", `{"user":"ada_l"}`)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestNotes_RootRoutes(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)

	rec := do(a, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/api/notes", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodOptions, "*", nil)
	out := httptest.NewRecorder()
	a.Router().ServeHTTP(out, req)
	assert.Equal(t, http.StatusNoContent, out.Code)
	assert.Contains(t, out.Header().Get("Allow"), "OPTIONS")

	assert.Equal(t, http.StatusOK, do(a, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusNoContent, do(a, http.MethodGet, "/readyz", "", "").Code)
}

func TestCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "short version", args: []string{"version", "--short"}, want: []string{"dev"}},
		{name: "version", args: []string{"version"}, want: []string{"Version:", "Go version:"}},
		{name: "routes", args: []string{"routes", "--env-prefix", "SCOPED_TEST_UNSET_", "--config", "does-not-exist.yaml"}, want: []string{"/api/notes/:id", "/api/folders/:folder/notes", "Fallback"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			cmd := rootCmd()
			cmd.SetOut(&out)
			cmd.SetArgs(tt.args)
			require.NoError(t, cmd.Execute())
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}

func TestCommands_BadConfig(t *testing.T) {
	t.Parallel()

	cmd := rootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"routes", "--config", config.TestFile(t, "bad.yaml", []byte("server:\n  unknown: 1\n")), "--env-prefix", "SCOPED_TEST_UNSET_"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load settings")
}

func TestConfigCommand(t *testing.T) {
	t.Parallel()

	in := config.TestFile(t, "scoped.yaml", []byte("server:\n  addr: \":9090\"\nlogging:\n  level: debug\n"))
	out := filepath.Join(t.TempDir(), "effective.json")

	var stdout bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"config", "--config", in, "--env-prefix", "SCOPED_TEST_UNSET_", "--out", out})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "wrote "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var dumped map[string]any
	require.NoError(t, json.Unmarshal(data, &dumped))
	assert.Equal(t, ":9090", dumped["server"].(map[string]any)["addr"])
	assert.Equal(t, "debug", dumped["logging"].(map[string]any)["level"])
}
