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

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"rivaas.dev/scoped/router"
)

// SettingsSchema is the JSON Schema of the settings document. It rejects
// unknown keys so typos fail loudly instead of being ignored.
//
//go:embed settings.schema.json
var SettingsSchema []byte

// Settings is the configuration of a scoped server.
//
// A YAML document looks like:
//
//	service:
//	  name: api
//	server:
//	  addr: ":8080"
//	  prefix: /api
//	  request_timeout: 10s
//	logging:
//	  level: debug
//	  format: json
//	metrics:
//	  enabled: true
//	tracing:
//	  provider: otlp
//	  endpoint: localhost:4317
type Settings struct {
	Service ServiceSettings `config:"service"`
	Server  ServerSettings  `config:"server"`
	Logging LoggingSettings `config:"logging"`
	Metrics MetricsSettings `config:"metrics"`
	Tracing TracingSettings `config:"tracing"`
}

// ServiceSettings identify the service in logs, metrics and traces.
type ServiceSettings struct {
	Name        string `config:"name" default:"scoped"`
	Version     string `config:"version" default:"dev"`
	Environment string `config:"environment" default:"development"`
}

// ServerSettings configure the HTTP server and the application build.
type ServerSettings struct {
	Addr                string        `config:"addr" default:":8080"`
	Prefix              string        `config:"prefix" default:"/"`
	H2C                 bool          `config:"h2c"`
	DisableFallbackHead bool          `config:"disable_fallback_head"`
	ReadHeaderTimeout   time.Duration `config:"read_header_timeout" default:"5s"`
	ReadTimeout         time.Duration `config:"read_timeout" default:"15s"`
	WriteTimeout        time.Duration `config:"write_timeout" default:"30s"`
	IdleTimeout         time.Duration `config:"idle_timeout" default:"60s"`
	ShutdownTimeout     time.Duration `config:"shutdown_timeout" default:"10s"`
	// RequestTimeout bounds how long an endpoint may stay pending.
	RequestTimeout time.Duration `config:"request_timeout" default:"30s"`
	CookieHashKey  string        `config:"cookie_hash_key"`
	CookieBlockKey string        `config:"cookie_block_key"`
	// Compression enables gzip and Brotli response compression for bodies
	// of at least CompressionMinSize bytes.
	Compression        bool `config:"compression"`
	CompressionMinSize int  `config:"compression_min_size" default:"1024"`
}

// LoggingSettings configure structured logging and the access log.
type LoggingSettings struct {
	Level         string        `config:"level" default:"info"`
	Format        string        `config:"format" default:"console"`
	AccessLog     bool          `config:"access_log"`
	SlowThreshold time.Duration `config:"slow_threshold" default:"1s"`
	ExcludePaths  []string      `config:"exclude_paths"`
}

// MetricsSettings configure request metrics.
type MetricsSettings struct {
	Enabled  bool   `config:"enabled"`
	Provider string `config:"provider" default:"prometheus"`
	// Addr is the listen address of the Prometheus scrape endpoint.
	Addr     string `config:"addr" default:":9090"`
	Path     string `config:"path" default:"/metrics"`
	Endpoint string `config:"endpoint"`
}

// TracingSettings configure request tracing.
type TracingSettings struct {
	Provider string `config:"provider" default:"noop"`
	Endpoint string `config:"endpoint"`
	Insecure bool   `config:"insecure"`
	// SampleRate of 0 means the default of 1.0.
	SampleRate   float64  `config:"sample_rate" default:"1"`
	ExcludePaths []string `config:"exclude_paths"`
}

var (
	logFormats       = []string{"json", "text", "console"}
	metricsProviders = []string{"prometheus", "otlp", "stdout"}
	tracingProviders = []string{"noop", "stdout", "otlp", "otlp-http"}
)

// Validate implements [Validator].
func (s *Settings) Validate() error {
	var errs []error
	check := func(field string, err error) {
		if err != nil {
			errs = append(errs, NewFieldError("settings", field, "validate", err))
		}
	}

	if s.Server.Addr == "" {
		check("server.addr", errors.New("must not be empty"))
	}
	if !strings.HasPrefix(s.Server.Prefix, "/") {
		check("server.prefix", fmt.Errorf("must start with '/', got %q", s.Server.Prefix))
	}
	for name, d := range map[string]time.Duration{
		"server.read_header_timeout": s.Server.ReadHeaderTimeout,
		"server.read_timeout":        s.Server.ReadTimeout,
		"server.write_timeout":       s.Server.WriteTimeout,
		"server.idle_timeout":        s.Server.IdleTimeout,
		"server.shutdown_timeout":    s.Server.ShutdownTimeout,
		"server.request_timeout":     s.Server.RequestTimeout,
	} {
		if d < 0 {
			check(name, fmt.Errorf("must not be negative, got %s", d))
		}
	}
	if s.Server.CompressionMinSize < 0 {
		check("server.compression_min_size", fmt.Errorf("must not be negative, got %d", s.Server.CompressionMinSize))
	}
	if s.Server.CookieBlockKey != "" && s.Server.CookieHashKey == "" {
		check("server.cookie_hash_key", errors.New("required when cookie_block_key is set"))
	}
	switch len(s.Server.CookieBlockKey) {
	case 0, 16, 24, 32:
	default:
		check("server.cookie_block_key", fmt.Errorf("must be 16, 24 or 32 bytes, got %d", len(s.Server.CookieBlockKey)))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s.Logging.Level)); err != nil {
		check("logging.level", err)
	}
	if !slices.Contains(logFormats, s.Logging.Format) {
		check("logging.format", fmt.Errorf("must be one of %v, got %q", logFormats, s.Logging.Format))
	}
	if !slices.Contains(metricsProviders, s.Metrics.Provider) {
		check("metrics.provider", fmt.Errorf("must be one of %v, got %q", metricsProviders, s.Metrics.Provider))
	}
	if !slices.Contains(tracingProviders, s.Tracing.Provider) {
		check("tracing.provider", fmt.Errorf("must be one of %v, got %q", tracingProviders, s.Tracing.Provider))
	}
	if s.Tracing.SampleRate < 0 || s.Tracing.SampleRate > 1 {
		check("tracing.sample_rate", fmt.Errorf("must be between 0 and 1, got %v", s.Tracing.SampleRate))
	}

	return errors.Join(errs...)
}

// RouterOptions translates the server settings into application options.
func (s *Settings) RouterOptions() []router.Option {
	opts := []router.Option{
		router.WithPrefix(s.Server.Prefix),
		router.WithFallbackHead(!s.Server.DisableFallbackHead),
		router.WithH2C(s.Server.H2C),
		router.WithServerTimeouts(
			s.Server.ReadHeaderTimeout,
			s.Server.ReadTimeout,
			s.Server.WriteTimeout,
			s.Server.IdleTimeout,
		),
	}
	if s.Server.CookieHashKey != "" {
		var block []byte
		if s.Server.CookieBlockKey != "" {
			block = []byte(s.Server.CookieBlockKey)
		}
		opts = append(opts, router.WithCookieKeys([]byte(s.Server.CookieHashKey), block))
	}
	return opts
}

// LoadSettings loads [Settings] from the given sources, validating the
// document against [SettingsSchema] first.
//
// Example:
//
//	settings, err := config.LoadSettings(ctx,
//	    config.WithOptionalFile("scoped.yaml"),
//	    config.WithEnv("SCOPED_"),
//	)
func LoadSettings(ctx context.Context, opts ...Option) (*Settings, error) {
	var s Settings
	all := append([]Option{WithJSONSchema(SettingsSchema)}, opts...)
	all = append(all, WithBinding(&s))

	cfg, err := New(all...)
	if err != nil {
		return nil, err
	}
	if err = cfg.Load(ctx); err != nil {
		return nil, err
	}
	return &s, nil
}
