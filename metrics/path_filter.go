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

package metrics

import (
	"fmt"
	"regexp"
	"strings"
)

// pathFilter handles path exclusion logic for metrics.
// It supports exact paths, prefixes, and regex patterns.
type pathFilter struct {
	paths    map[string]bool
	prefixes []string
	patterns []*regexp.Regexp
}

func (r *Recorder) filter() *pathFilter {
	if r.pathFilter == nil {
		r.pathFilter = &pathFilter{paths: make(map[string]bool)}
	}
	return r.pathFilter
}

// shouldExclude returns true if the path should be excluded from metrics.
func (pf *pathFilter) shouldExclude(path string) bool {
	if pf == nil {
		return false
	}
	if pf.paths[path] {
		return true
	}
	for _, prefix := range pf.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, pattern := range pf.patterns {
		if pattern.MatchString(path) {
			return true
		}
	}
	return false
}

// WithExcludePaths excludes exact request paths from HTTP metrics.
//
// Example:
//
//	metrics.MustNew(metrics.WithExcludePaths("/healthz", "/readyz"))
func WithExcludePaths(paths ...string) Option {
	return func(r *Recorder) {
		pf := r.filter()
		for _, p := range paths {
			pf.paths[p] = true
		}
	}
}

// WithExcludePrefixes excludes paths with the given prefixes from HTTP metrics.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(r *Recorder) {
		pf := r.filter()
		pf.prefixes = append(pf.prefixes, prefixes...)
	}
}

// WithExcludePatterns excludes paths matching the given regex patterns.
// Invalid patterns make New return an error.
//
// Example:
//
//	metrics.MustNew(metrics.WithExcludePatterns(`^/v[0-9]+/internal/.*`))
func WithExcludePatterns(patterns ...string) Option {
	return func(r *Recorder) {
		pf := r.filter()
		for _, pattern := range patterns {
			compiled, err := regexp.Compile(pattern)
			if err != nil {
				r.validationErrors = append(r.validationErrors,
					fmt.Errorf("invalid regex pattern for path exclusion %q: %w", pattern, err))
				continue
			}
			pf.patterns = append(pf.patterns, compiled)
		}
	}
}

// ShouldExcludePath reports whether path is excluded from HTTP metrics.
func (r *Recorder) ShouldExcludePath(path string) bool {
	return r.pathFilter.shouldExclude(path)
}
