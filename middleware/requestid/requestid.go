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

package requestid

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	riverrors "rivaas.dev/scoped/errors"
	"rivaas.dev/scoped/router"
)

// key holds the request id of the current request.
var key = router.NewLocalKey[string]("request_id")

// Option defines functional options for requestid configuration.
type Option func(*config)

// config holds the configuration for the requestid modifier.
type config struct {
	// headerName is the name of the header to use for the request ID
	headerName string

	// generator is the function used to generate new request IDs
	generator func() string

	// allowClientID allows using request IDs provided by clients
	allowClientID bool
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     generateUUIDv7,
		allowClientID: true,
	}
}

// generateUUIDv7 generates a UUID v7 string for request IDs.
func generateUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ulidEntropy provides monotonic ordering within the same millisecond.
var (
	ulidEntropy     = ulid.Monotonic(rand.Reader, 0)
	ulidEntropyLock sync.Mutex
)

// generateULID generates a ULID string for request IDs.
func generateULID() string {
	ulidEntropyLock.Lock()
	defer ulidEntropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// New returns a modifier that assigns a request id to every wrapped
// endpoint. An id already assigned by an outer requestid modifier is kept.
//
// Example:
//
//	s.Use(requestid.New(
//	    requestid.WithHeader("X-Correlation-ID"),
//	    requestid.WithAllowClientID(false),
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
	inner := h.inner.Handle()
	var id string

	return router.HandleFunc(func(in *router.Input) router.Poll {
		if id == "" {
			id = h.assign(in)
		}

		p := inner.Poll(in)
		if !p.IsReady() {
			return p
		}
		if _, err := p.Result(); err != nil {
			return router.Fail(riverrors.WithHeader(err, h.cfg.headerName, id))
		}
		return p
	})
}

// assign picks the id for the request and records it.
func (h *handler) assign(in *router.Input) string {
	if existing, ok := key.Get(in); ok {
		return existing
	}

	var id string
	if h.cfg.allowClientID {
		id = in.Request().Header.Get(h.cfg.headerName)
	}
	if id == "" {
		id = h.cfg.generator()
	}

	_ = key.Insert(in, id)
	in.ResponseHeaders().Set(h.cfg.headerName, id)
	return id
}

// Get returns the request id, or "" when no requestid modifier wraps the
// endpoint.
func Get(in *router.Input) string {
	id, _ := key.Get(in)
	return id
}
