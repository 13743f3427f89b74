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

package timeout

import (
	"log/slog"
	"time"

	"rivaas.dev/scoped/router"
)

// WithDuration sets the timeout duration.
// Default: 30 seconds
//
// Example:
//
//	timeout.New(timeout.WithDuration(5 * time.Second))
func WithDuration(d time.Duration) Option {
	return func(cfg *config) {
		cfg.duration = d
	}
}

// WithoutLogging disables timeout logging.
func WithoutLogging() Option {
	return func(cfg *config) {
		cfg.logging = false
	}
}

// WithLogger sets a custom slog.Logger for timeout logging.
// By default, timeouts are logged with the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithHandler sets the function producing the result for timed out
// requests. It receives the configured timeout duration.
//
// Example:
//
//	timeout.New(
//	    timeout.WithHandler(func(in *router.Input, timeout time.Duration) (*router.Output, error) {
//	        return router.JSON(http.StatusServiceUnavailable, map[string]any{
//	            "error":   "Request took too long",
//	            "timeout": timeout.String(),
//	        })
//	    }),
//	)
func WithHandler(handler func(in *router.Input, timeout time.Duration) (*router.Output, error)) Option {
	return func(cfg *config) {
		cfg.handler = handler
	}
}

// WithSkipPaths sets exact paths that should not have timeout applied.
// Useful for long-running endpoints like streaming or webhooks.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, path := range paths {
			cfg.skipPaths[path] = true
		}
	}
}

// WithSkipPrefix skips paths that start with any of the given prefixes.
func WithSkipPrefix(prefixes ...string) Option {
	return func(cfg *config) {
		cfg.skipPrefixes = append(cfg.skipPrefixes, prefixes...)
	}
}

// WithSkipSuffix skips paths that end with any of the given suffixes.
func WithSkipSuffix(suffixes ...string) Option {
	return func(cfg *config) {
		cfg.skipSuffixes = append(cfg.skipSuffixes, suffixes...)
	}
}

// WithSkip sets a custom function to determine if timeout should be skipped.
// Return true to skip timeout for the request.
//
// Example:
//
//	timeout.New(
//	    timeout.WithSkip(func(in *router.Input) bool {
//	        return in.Request().Header.Get("X-No-Timeout") != ""
//	    }),
//	)
func WithSkip(fn func(in *router.Input) bool) Option {
	return func(cfg *config) {
		cfg.skip = fn
	}
}
