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
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	riverrors "rivaas.dev/scoped/errors"
	"rivaas.dev/scoped/router"
)

// ErrTimeout is the error reported for requests that exceed the deadline.
var ErrTimeout = errors.New("request timeout")

// Option defines functional options for timeout configuration.
type Option func(*config)

type config struct {
	duration     time.Duration
	logger       *slog.Logger
	logging      bool
	handler      func(in *router.Input, timeout time.Duration) (*router.Output, error)
	skipPaths    map[string]bool
	skipPrefixes []string
	skipSuffixes []string
	skip         func(in *router.Input) bool
}

func defaultConfig() *config {
	return &config{
		duration:  30 * time.Second,
		logging:   true,
		handler:   defaultHandler,
		skipPaths: make(map[string]bool),
	}
}

func defaultHandler(_ *router.Input, _ time.Duration) (*router.Output, error) {
	return nil, riverrors.WithStatus(ErrTimeout, http.StatusRequestTimeout)
}

// shouldSkip reports whether the request is excluded from the timeout.
func (cfg *config) shouldSkip(in *router.Input) bool {
	path := in.Request().URL.Path
	if cfg.skipPaths[path] {
		return true
	}
	for _, prefix := range cfg.skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, suffix := range cfg.skipSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return cfg.skip != nil && cfg.skip(in)
}

// New returns a modifier that fails requests running longer than the
// configured duration.
//
// Example:
//
//	s.Use(timeout.New(
//	    timeout.WithDuration(5*time.Second),
//	    timeout.WithSkipPaths("/events"),
//	))
func New(opts ...Option) router.Modifier {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return router.ModifierFunc(func(h router.Handler) router.Handler {
		return &handler{inner: h, cfg: cfg}
	})
}

type handler struct {
	inner router.Handler
	cfg   *config
}

func (h *handler) AllowedMethods() router.Methods {
	return h.inner.AllowedMethods()
}

func (h *handler) Handle() router.Handle {
	return &handle{inner: h.inner.Handle(), cfg: h.cfg}
}

type handle struct {
	inner    router.Handle
	cfg      *config
	started  bool
	skipped  bool
	deadline time.Time
	timer    *time.Timer
}

func (h *handle) Poll(in *router.Input) router.Poll {
	if !h.started {
		h.started = true
		h.skipped = h.cfg.shouldSkip(in)
		if !h.skipped {
			h.deadline = time.Now().Add(h.cfg.duration)
			h.timer = time.AfterFunc(h.cfg.duration, in.Waker().Wake)
		}
	}

	if !h.skipped && !time.Now().Before(h.deadline) {
		h.log(in)
		return router.Complete(h.cfg.handler(in, h.cfg.duration))
	}

	p := h.inner.Poll(in)
	if p.IsReady() && h.timer != nil {
		h.timer.Stop()
	}
	return p
}

func (h *handle) log(in *router.Input) {
	if !h.cfg.logging {
		return
	}
	logger := h.cfg.logger
	if logger == nil {
		logger = in.Logger()
	}
	logger.Warn("request timeout",
		slog.String("method", in.Method()),
		slog.String("path", in.Request().URL.Path),
		slog.Duration("timeout", h.cfg.duration),
	)
}
