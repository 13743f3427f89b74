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

package router

// DiagnosticEvent represents a router diagnostic or anomaly.
// These are informational events that may indicate configuration issues
// or requests that ended abnormally.
//
// Diagnostic events are optional - the router functions correctly whether
// they are collected or not.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any // Structured context
}

// DiagnosticKind categorizes diagnostic events.
type DiagnosticKind string

const (
	// Build diagnostics
	DiagRouteRegistered DiagnosticKind = "route_registered"
	DiagScopeMounted    DiagnosticKind = "scope_mounted"

	// Request diagnostics
	DiagRequestAbandoned DiagnosticKind = "request_abandoned"
	DiagUpgradeFailed    DiagnosticKind = "upgrade_failed"
	DiagWriteFailed      DiagnosticKind = "response_write_failed"

	// Server diagnostics
	DiagH2CEnabled DiagnosticKind = "h2c_enabled"
)

// DiagnosticHandler receives diagnostic events from the router.
// Implementations may log, emit metrics, trace events, or ignore them.
//
// Build diagnostics are delivered synchronously from New. Request
// diagnostics are delivered from the serving goroutine, so implementations
// must be safe for concurrent use.
//
// Example with logging:
//
//	handler := router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
//	    slog.Debug(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	app := router.MustNew(configure, router.WithDiagnostics(handler))
//
// The logging package provides a ready-made handler.
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc is a function adapter for DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) {
	f(e)
}

func (a *App) diagnose(kind DiagnosticKind, msg string, fields map[string]any) {
	if a.diagnostics != nil {
		a.diagnostics.OnDiagnostic(DiagnosticEvent{Kind: kind, Message: msg, Fields: fields})
	}
}
