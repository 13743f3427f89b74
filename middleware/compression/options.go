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

package compression

import (
	"compress/gzip"
	"log/slog"

	"github.com/andybalholm/brotli"
)

// Option configures the compression modifier.
type Option func(*config)

// WithGzipLevel sets the gzip compression level.
// Levels outside gzip.HuffmanOnly..gzip.BestCompression are ignored.
// Default: gzip.DefaultCompression
func WithGzipLevel(level int) Option {
	return func(cfg *config) {
		if level >= gzip.HuffmanOnly && level <= gzip.BestCompression {
			cfg.gzipLevel = level
		}
	}
}

// WithBrotliLevel sets the Brotli quality.
// Levels outside brotli.BestSpeed..brotli.BestCompression are ignored.
// Default: 4
func WithBrotliLevel(level int) Option {
	return func(cfg *config) {
		if level >= brotli.BestSpeed && level <= brotli.BestCompression {
			cfg.brotliLevel = level
		}
	}
}

// WithBrotliDisabled restricts negotiation to gzip.
func WithBrotliDisabled() Option {
	return func(cfg *config) {
		cfg.brotli = false
	}
}

// WithGzipDisabled restricts negotiation to Brotli.
func WithGzipDisabled() Option {
	return func(cfg *config) {
		cfg.gzip = false
	}
}

// WithMinSize sets the smallest known body length that is compressed.
// Streamed bodies have no known length and are always compressed.
// Default: 0
func WithMinSize(n int) Option {
	return func(cfg *config) {
		cfg.minSize = n
	}
}

// WithExcludePaths skips requests whose path matches one of paths exactly.
//
// Example:
//
//	compression.New(compression.WithExcludePaths("/healthz", "/readyz"))
func WithExcludePaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.excludePaths[p] = true
		}
	}
}

// WithExcludeExtensions skips requests whose path ends with one of exts,
// given with their leading dot.
func WithExcludeExtensions(exts ...string) Option {
	return func(cfg *config) {
		for _, e := range exts {
			cfg.excludeExtensions[e] = true
		}
	}
}

// WithExcludeContentTypes adds media types whose responses are never
// compressed. Parameters such as charset are ignored when matching.
func WithExcludeContentTypes(types ...string) Option {
	return func(cfg *config) {
		for _, ct := range types {
			cfg.excludeContentTypes[ct] = true
		}
	}
}

// WithLogger sets the logger for compression failures.
// By default, the request logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}
