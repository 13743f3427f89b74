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

package app

import (
	"io"

	"rivaas.dev/scoped/logging"
	"rivaas.dev/scoped/metrics"
	"rivaas.dev/scoped/router"
	"rivaas.dev/scoped/tracing"
)

// Option configures an App.
type Option func(*options)

type options struct {
	logger      *logging.Logger
	out         io.Writer
	banner      bool
	health      *healthConfig
	modifiers   []router.Modifier
	routerOpts  []router.Option
	metricsOpts []metrics.Option
	tracingOpts []tracing.Option
}

func defaultOptions() *options {
	return &options{banner: true}
}

// WithLogger uses logger instead of building one from the logging settings.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithOutput sets where the startup banner and route table are printed.
//
// Default: os.Stdout
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithoutBanner disables the startup banner.
func WithoutBanner() Option {
	return func(o *options) {
		o.banner = false
	}
}

// WithModifiers adds modifiers to the root scope after the built-in
// recovery, request ID and timeout modifiers.
//
// Example:
//
//	a := app.MustNew(settings, routes, app.WithModifiers(auth.New()))
func WithModifiers(mods ...router.Modifier) Option {
	return func(o *options) {
		o.modifiers = append(o.modifiers, mods...)
	}
}

// WithRouterOptions appends router options after the ones derived from
// the settings, so they take precedence.
func WithRouterOptions(opts ...router.Option) Option {
	return func(o *options) {
		o.routerOpts = append(o.routerOpts, opts...)
	}
}

// WithMetricsOptions appends options to the metrics recorder. They only
// apply when metrics are enabled in the settings.
func WithMetricsOptions(opts ...metrics.Option) Option {
	return func(o *options) {
		o.metricsOpts = append(o.metricsOpts, opts...)
	}
}

// WithTracingOptions appends options to the tracer.
func WithTracingOptions(opts ...tracing.Option) Option {
	return func(o *options) {
		o.tracingOpts = append(o.tracingOpts, opts...)
	}
}

// WithHealthEndpoints registers liveness and readiness endpoints.
//
// Example:
//
//	a := app.MustNew(settings, routes, app.WithHealthEndpoints(
//	    app.WithReadinessCheck("db", func(ctx context.Context) error {
//	        return db.PingContext(ctx)
//	    }),
//	))
func WithHealthEndpoints(opts ...HealthOption) Option {
	return func(o *options) {
		cfg := defaultHealthConfig()
		for _, opt := range opts {
			opt(cfg)
		}
		o.health = cfg
	}
}
