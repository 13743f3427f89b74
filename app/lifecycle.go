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
	"log/slog"
	"sync"
)

// Hooks holds the lifecycle callbacks of an App.
type Hooks struct {
	onStart    []func(context.Context) error // sequential, first error aborts
	onReady    []func()                      // async
	onShutdown []func(context.Context)       // LIFO
	onStop     []func()                      // best effort
	mu         sync.Mutex
}

// OnStart registers a hook that runs before the server starts listening.
// Hooks run in order; the first error aborts Run.
//
// Example:
//
//	a.OnStart(func(ctx context.Context) error {
//	    return db.PingContext(ctx)
//	})
func (a *App) OnStart(fn func(context.Context) error) {
	a.hooks.mu.Lock()
	defer a.hooks.mu.Unlock()
	a.hooks.onStart = append(a.hooks.onStart, fn)
}

// OnReady registers a hook that runs on its own goroutine once the server
// is listening. Panics are logged.
func (a *App) OnReady(fn func()) {
	a.hooks.mu.Lock()
	defer a.hooks.mu.Unlock()
	a.hooks.onReady = append(a.hooks.onReady, fn)
}

// OnShutdown registers a hook that runs during graceful shutdown, before
// the server stops accepting requests. Hooks run in reverse registration
// order and receive a context bounded by the shutdown timeout.
func (a *App) OnShutdown(fn func(context.Context)) {
	a.hooks.mu.Lock()
	defer a.hooks.mu.Unlock()
	a.hooks.onShutdown = append(a.hooks.onShutdown, fn)
}

// OnStop registers a hook that runs after the server has stopped.
// Panics are logged.
func (a *App) OnStop(fn func()) {
	a.hooks.mu.Lock()
	defer a.hooks.mu.Unlock()
	a.hooks.onStop = append(a.hooks.onStop, fn)
}

func (a *App) executeStartHooks(ctx context.Context) error {
	a.hooks.mu.Lock()
	hooks := append([]func(context.Context) error(nil), a.hooks.onStart...)
	a.hooks.mu.Unlock()

	for i, hook := range hooks {
		if err := hook(ctx); err != nil {
			return fmt.Errorf("OnStart hook %d failed: %w", i, err)
		}
	}
	return nil
}

func (a *App) executeReadyHooks() {
	a.hooks.mu.Lock()
	hooks := append(([]func())(nil), a.hooks.onReady...)
	a.hooks.mu.Unlock()

	for _, hook := range hooks {
		go func() {
			defer a.recoverHook("OnReady")
			hook()
		}()
	}
}

func (a *App) executeShutdownHooks(ctx context.Context) {
	a.hooks.mu.Lock()
	hooks := append(([]func(context.Context))(nil), a.hooks.onShutdown...)
	a.hooks.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i](ctx)
	}
}

func (a *App) executeStopHooks() {
	a.hooks.mu.Lock()
	hooks := append(([]func())(nil), a.hooks.onStop...)
	a.hooks.mu.Unlock()

	for _, hook := range hooks {
		func() {
			defer a.recoverHook("OnStop")
			hook()
		}()
	}
}

func (a *App) recoverHook(kind string) {
	if r := recover(); r != nil {
		a.logger.Logger().Error(kind+" hook panic", slog.Any("panic", r))
	}
}
