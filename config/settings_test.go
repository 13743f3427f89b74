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

package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/scoped/config/codec"
	"rivaas.dev/scoped/router"
)

func TestLoadSettings_Defaults(t *testing.T) {
	t.Parallel()

	s, err := LoadSettings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "scoped", s.Service.Name)
	assert.Equal(t, ":8080", s.Server.Addr)
	assert.Equal(t, "/", s.Server.Prefix)
	assert.Equal(t, 30*time.Second, s.Server.RequestTimeout)
	assert.False(t, s.Server.Compression)
	assert.Equal(t, 1024, s.Server.CompressionMinSize)
	assert.Equal(t, 10*time.Second, s.Server.ShutdownTimeout)
	assert.Equal(t, "info", s.Logging.Level)
	assert.Equal(t, "console", s.Logging.Format)
	assert.False(t, s.Metrics.Enabled)
	assert.Equal(t, "prometheus", s.Metrics.Provider)
	assert.Equal(t, "noop", s.Tracing.Provider)
	assert.InDelta(t, 1.0, s.Tracing.SampleRate, 1e-9)
}

func TestLoadSettings_Document(t *testing.T) {
	t.Parallel()

	doc := []byte(`
service:
  name: api
server:
  addr: ":9000"
  prefix: /api
  h2c: true
  request_timeout: 2s
  compression: true
  compression_min_size: 256
logging:
  level: debug
  format: json
  access_log: true
metrics:
  enabled: true
tracing:
  provider: otlp
  endpoint: localhost:4317
  sample_rate: 0.25
  exclude_paths: [/healthz]
`)
	s, err := LoadSettings(context.Background(), WithContent(doc, codec.TypeYAML))
	require.NoError(t, err)

	assert.Equal(t, "api", s.Service.Name)
	assert.Equal(t, ":9000", s.Server.Addr)
	assert.True(t, s.Server.H2C)
	assert.Equal(t, 2*time.Second, s.Server.RequestTimeout)
	assert.True(t, s.Server.Compression)
	assert.Equal(t, 256, s.Server.CompressionMinSize)
	assert.True(t, s.Logging.AccessLog)
	assert.True(t, s.Metrics.Enabled)
	assert.Equal(t, "otlp", s.Tracing.Provider)
	assert.InDelta(t, 0.25, s.Tracing.SampleRate, 1e-9)
	assert.Equal(t, []string{"/healthz"}, s.Tracing.ExcludePaths)
}

func TestLoadSettings_Rejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{name: "unknown key", doc: "server:\n  adr: \":80\"\n", wantErr: "json-schema"},
		{name: "unknown format", doc: "logging:\n  format: xml\n", wantErr: "json-schema"},
		{name: "bad duration", doc: "server:\n  request_timeout: soon\n", wantErr: "json-schema"},
		{name: "bad level", doc: "logging:\n  level: loud\n", wantErr: "logging.level"},
		{name: "bad prefix", doc: "server:\n  prefix: api\n", wantErr: "server.prefix"},
		{name: "sample rate", doc: "tracing:\n  sample_rate: 2\n", wantErr: "tracing.sample_rate"},
		{name: "negative compression size", doc: "server:\n  compression_min_size: -1\n", wantErr: "compression_min_size"},
		{name: "block key without hash key", doc: "server:\n  cookie_block_key: 0123456789abcdef\n", wantErr: "cookie_hash_key"},
		{name: "block key length", doc: "server:\n  cookie_hash_key: secret\n  cookie_block_key: short\n", wantErr: "cookie_block_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadSettings(context.Background(), WithContent([]byte(tt.doc), codec.TypeYAML))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadSettings_Env(t *testing.T) {
	t.Setenv("SCOPEDTEST_SERVER__ADDR", ":7777")
	t.Setenv("SCOPEDTEST_SERVER__DISABLE_FALLBACK_HEAD", "true")
	t.Setenv("SCOPEDTEST_LOGGING__EXCLUDE_PATHS", "/healthz,/metrics")

	s, err := LoadSettings(context.Background(),
		WithContent([]byte("server:\n  addr: \":8080\"\n"), codec.TypeYAML),
		WithEnv("SCOPEDTEST_"),
	)
	require.NoError(t, err)
	assert.Equal(t, ":7777", s.Server.Addr)
	assert.True(t, s.Server.DisableFallbackHead)
	assert.Equal(t, []string{"/healthz", "/metrics"}, s.Logging.ExcludePaths)
}

func TestSettings_RouterOptions(t *testing.T) {
	t.Parallel()

	s, err := LoadSettings(context.Background(), WithContent([]byte(`{"server": {"prefix": "/api", "disable_fallback_head": true}}`), codec.TypeJSON))
	require.NoError(t, err)

	app, err := router.New(func(r *router.Scope) {
		r.GET("/ping", router.HandlerFunc(func(*router.Input) (*router.Output, error) {
			return router.Text(200, "pong"), nil
		}))
	}, s.RouterOptions()...)
	require.NoError(t, err)

	assert.Equal(t, router.FoundEndpoint, app.Route("/api/ping", "GET").Verdict)
	assert.Equal(t, router.NotFound, app.Route("/ping", "GET").Verdict)
	assert.Equal(t, router.FoundResource, app.Route("/api/ping", "HEAD").Verdict)
}
