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

package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	riverrors "rivaas.dev/scoped/errors"
	"rivaas.dev/scoped/router"
)

// ErrPanic is the error reported for a recovered panic. The panic value
// itself is only logged.
var ErrPanic = errors.New("internal server error")

// Option defines functional options for recovery configuration.
type Option func(*config)

// config holds the configuration for the recovery modifier.
type config struct {
	// stackTrace enables/disables capturing stack traces on panic
	stackTrace bool

	// stackSize sets the maximum size of the stack trace in bytes
	stackSize int

	// logger is the logger function for panic messages
	logger func(in *router.Input, err any, stack []byte)

	// handler produces the result that replaces the panic
	handler func(in *router.Input, err any) (*router.Output, error)
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		stackTrace: true,
		stackSize:  4 << 10, // 4KB
		logger:     defaultLogger,
		handler:    defaultHandler,
	}
}

// defaultLogger logs the panic with the request logger.
func defaultLogger(in *router.Input, err any, stack []byte) {
	in.Logger().Error("panic recovered",
		slog.Any("panic", err),
		slog.String("stack", string(stack)),
	)
}

// defaultHandler answers with a 500 error.
func defaultHandler(_ *router.Input, _ any) (*router.Output, error) {
	return nil, riverrors.Internal(ErrPanic)
}

// New returns a modifier that recovers from panics in wrapped endpoints.
//
// Example:
//
//	s.Use(recovery.New(
//	    recovery.WithStackSize(8 << 10),
//	    recovery.WithLogger(func(in *router.Input, err any, stack []byte) {
//	        myLogger.Error("panic recovered", "error", err, "stack", string(stack))
//	    }),
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

	return router.HandleFunc(func(in *router.Input) (p router.Poll) {
		defer func() {
			if err := recover(); err != nil {
				p = h.recovered(in, err)
			}
		}()
		return inner.Poll(in)
	})
}

// recovered reports the panic and builds the replacement result.
func (h *handler) recovered(in *router.Input, err any) router.Poll {
	if span := trace.SpanFromContext(in.Context()); span.SpanContext().IsValid() {
		span.SetStatus(codes.Error, "panic recovered")
		span.SetAttributes(
			attribute.Bool("exception.escaped", true),
			attribute.String("exception.type", fmt.Sprintf("%T", err)),
			attribute.String("exception.message", fmt.Sprintf("%v", err)),
		)
		if actualErr, ok := err.(error); ok {
			span.RecordError(actualErr)
		}
	}

	var stack []byte
	if h.cfg.stackTrace {
		stack = debug.Stack()
		if len(stack) > h.cfg.stackSize {
			stack = stack[:h.cfg.stackSize]
		}
	}

	if h.cfg.logger != nil {
		h.cfg.logger(in, err, stack)
	}

	return router.Complete(h.cfg.handler(in, err))
}
