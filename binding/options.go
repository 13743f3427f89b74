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

package binding

import "rivaas.dev/scoped/validation"

// DefaultMaxBytes bounds request bodies unless WithMaxBytes says otherwise.
const DefaultMaxBytes = 1 << 20

// Option configures a single bind call.
type Option func(*config)

type config struct {
	maxBytes        int64
	disallowUnknown bool
	validate        bool
	validator       *validation.Validator
	defaultMedia    string
}

func newConfig(opts []Option) *config {
	cfg := &config{
		maxBytes:     DefaultMaxBytes,
		validate:     true,
		defaultMedia: MediaJSON,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithMaxBytes limits the body size. Larger bodies fail with 413.
func WithMaxBytes(n int64) Option {
	return func(c *config) {
		c.maxBytes = n
	}
}

// WithDisallowUnknownFields rejects payload keys without a matching field.
func WithDisallowUnknownFields() Option {
	return func(c *config) {
		c.disallowUnknown = true
	}
}

// WithoutValidation skips validation after decoding.
func WithoutValidation() Option {
	return func(c *config) {
		c.validate = false
	}
}

// WithValidator validates with v instead of the default validator.
func WithValidator(v *validation.Validator) Option {
	return func(c *config) {
		c.validator = v
	}
}

// WithDefaultMediaType sets the media type assumed for requests without a
// Content-Type. Default is application/json.
func WithDefaultMediaType(media string) Option {
	return func(c *config) {
		c.defaultMedia = media
	}
}
