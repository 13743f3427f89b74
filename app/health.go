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
	"context"
	"fmt"
	"net/http"
	"time"

	"rivaas.dev/scoped/router"
)

// HealthOption configures the health endpoints.
type HealthOption func(*healthConfig)

// CheckFunc performs one health or readiness check. It returns nil when the
// check passes. ctx ends when the check's timeout expires.
type CheckFunc func(ctx context.Context) error

type healthConfig struct {
	prefix      string
	healthzPath string
	readyzPath  string

	liveness  map[string]CheckFunc
	readiness map[string]CheckFunc
	timeout   time.Duration
}

func defaultHealthConfig() *healthConfig {
	return &healthConfig{
		healthzPath: "/healthz",
		readyzPath:  "/readyz",
		timeout:     time.Second,
		liveness:    make(map[string]CheckFunc),
		readiness:   make(map[string]CheckFunc),
	}
}

// WithHealthPrefix mounts the health endpoints under prefix, for example
// "/_system" for /_system/healthz and /_system/readyz.
func WithHealthPrefix(prefix string) HealthOption {
	return func(c *healthConfig) {
		c.prefix = prefix
	}
}

// WithHealthzPath sets the liveness path. Default is "/healthz".
func WithHealthzPath(path string) HealthOption {
	return func(c *healthConfig) {
		c.healthzPath = path
	}
}

// WithReadyzPath sets the readiness path. Default is "/readyz".
func WithReadyzPath(path string) HealthOption {
	return func(c *healthConfig) {
		c.readyzPath = path
	}
}

// WithHealthTimeout bounds each check. Default is 1 second.
func WithHealthTimeout(d time.Duration) HealthOption {
	return func(c *healthConfig) {
		c.timeout = d
	}
}

// WithLivenessCheck adds a liveness check. Liveness checks should not
// depend on external systems. Without any, the liveness endpoint always
// answers 200.
func WithLivenessCheck(name string, check CheckFunc) HealthOption {
	return func(c *healthConfig) {
		c.liveness[name] = check
	}
}

// WithReadinessCheck adds a readiness check, typically a ping of a
// database or upstream. Without any, the readiness endpoint always
// answers 204.
func WithReadinessCheck(name string, check CheckFunc) HealthOption {
	return func(c *healthConfig) {
		c.readiness[name] = check
	}
}

func (c *healthConfig) healthz() string { return c.prefix + c.healthzPath }
func (c *healthConfig) readyz() string  { return c.prefix + c.readyzPath }

// register declares the health endpoints on s. Checks run on their own
// goroutine so a slow dependency never blocks the serving loop.
func (c *healthConfig) register(s *router.Scope) {
	timeout := c.timeout
	if timeout <= 0 {
		timeout = time.Second
	}

	s.GET(c.healthz(), router.AsyncFunc(func(ctx context.Context, _ *router.Input) (*router.Output, error) {
		if failures := runChecks(ctx, c.liveness, timeout); len(failures) > 0 {
			return nil, &checkError{probe: "liveness", failures: failures}
		}
		return noStore(router.Text(http.StatusOK, "ok")), nil
	}))

	s.GET(c.readyz(), router.AsyncFunc(func(ctx context.Context, _ *router.Input) (*router.Output, error) {
		if failures := runChecks(ctx, c.readiness, timeout); len(failures) > 0 {
			return nil, &checkError{probe: "readiness", failures: failures}
		}
		return noStore(router.Empty(http.StatusNoContent)), nil
	}))
}

func noStore(out *router.Output) *router.Output {
	out.Header.Set("Cache-Control", "no-store")
	return out
}

// runChecks runs every check concurrently, each under its own timeout, and
// returns the error message of each failed check by name.
func runChecks(ctx context.Context, checks map[string]CheckFunc, timeout time.Duration) map[string]string {
	type result struct {
		name string
		err  error
	}

	results := make(chan result, len(checks))
	for name, fn := range checks {
		go func() {
			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			results <- result{name, fn(checkCtx)}
		}()
	}

	failures := make(map[string]string)
	for range len(checks) {
		r := <-results
		if r.err != nil {
			failures[r.name] = r.err.Error()
		}
	}
	return failures
}

// checkError reports failed checks as a 503 problem document with the
// failures as its "errors" extension.
type checkError struct {
	probe    string
	failures map[string]string
}

func (e *checkError) Error() string {
	return fmt.Sprintf("%s: %d check(s) failed", e.probe, len(e.failures))
}

func (e *checkError) HTTPStatus() int { return http.StatusServiceUnavailable }

func (e *checkError) Code() string { return "health_check_failed" }

func (e *checkError) Details() any { return e.failures }
