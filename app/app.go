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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"rivaas.dev/scoped/config"
	"rivaas.dev/scoped/logging"
	"rivaas.dev/scoped/metrics"
	"rivaas.dev/scoped/middleware/compression"
	"rivaas.dev/scoped/middleware/recovery"
	"rivaas.dev/scoped/middleware/requestid"
	"rivaas.dev/scoped/middleware/timeout"
	"rivaas.dev/scoped/router"
	"rivaas.dev/scoped/tracing"
)

const defaultShutdownTimeout = 10 * time.Second

// ErrAlreadyRunning is returned by Run when the App is already serving.
var ErrAlreadyRunning = errors.New("app: already running")

// App assembles a routing application with its logger, metrics, tracing
// and lifecycle from [config.Settings].
//
// Every request passes through panic recovery, request ID assignment and
// the request timeout before reaching user modifiers and endpoints.
type App struct {
	settings *config.Settings
	logger   *logging.Logger
	metrics  *metrics.Recorder
	tracer   *tracing.Tracer
	router   *router.App
	health   *healthConfig
	hooks    Hooks

	out    io.Writer
	banner bool

	running atomic.Bool
	addrMu  sync.RWMutex
	addr    string
}

// New builds an App. A nil settings uses the defaults.
//
// configure declares the application's routes on the root scope, exactly
// as with [router.New]. Building is all-or-nothing.
//
// Example:
//
//	settings, err := config.LoadSettings(ctx, config.WithOptionalFile("scoped.yaml"), config.WithEnv("SCOPED_"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a, err := app.New(settings, func(s *router.Scope) {
//	    s.GET("/users/:id", getUser)
//	}, app.WithHealthEndpoints())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := a.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
func New(settings *config.Settings, configure func(*router.Scope), opts ...Option) (*App, error) {
	if settings == nil {
		var err error
		if settings, err = config.LoadSettings(context.Background()); err != nil {
			return nil, fmt.Errorf("default settings: %w", err)
		}
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	a := &App{
		settings: settings,
		health:   o.health,
		out:      o.out,
		banner:   o.banner,
	}
	if a.out == nil {
		a.out = os.Stdout
	}

	var err error
	if a.logger = o.logger; a.logger == nil {
		if a.logger, err = newLogger(settings); err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
	}
	log := a.logger.Logger()

	if settings.Metrics.Enabled {
		if a.metrics, err = metrics.New(a.metricsOptions(o.metricsOpts)...); err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
	}
	if a.tracer, err = tracing.New(a.tracingOptions(o.tracingOpts)...); err != nil {
		a.discardTelemetry()
		return nil, fmt.Errorf("tracing: %w", err)
	}

	recorders := []router.ObservabilityRecorder{a.tracer}
	if a.metrics != nil {
		recorders = append(recorders, a.metrics)
	}
	if settings.Logging.AccessLog {
		recorders = append(recorders, logging.AccessLog(log,
			logging.WithExcludePaths(append(a.healthPaths(), settings.Logging.ExcludePaths...)...),
			logging.WithSlowThreshold(settings.Logging.SlowThreshold),
		))
	}

	routerOpts := append(settings.RouterOptions(),
		router.WithLogger(log),
		router.WithDiagnostics(logging.DiagnosticHandler(log)),
		router.WithObservability(recorders...),
	)
	routerOpts = append(routerOpts, o.routerOpts...)

	a.router, err = router.New(func(s *router.Scope) {
		s.Use(a.builtinModifiers(log)...)
		s.Use(o.modifiers...)
		if a.health != nil {
			a.health.register(s)
		}
		if configure != nil {
			configure(s)
		}
	}, routerOpts...)
	if err != nil {
		a.discardTelemetry()
		return nil, err
	}

	return a, nil
}

// MustNew is like New but panics on error.
func MustNew(settings *config.Settings, configure func(*router.Scope), opts ...Option) *App {
	a, err := New(settings, configure, opts...)
	if err != nil {
		panic(fmt.Sprintf("app.MustNew: %v", err))
	}
	return a
}

func newLogger(s *config.Settings) (*logging.Logger, error) {
	level, err := logging.ParseLevel(s.Logging.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(
		logging.WithHandlerType(logging.HandlerType(s.Logging.Format)),
		logging.WithLevel(level),
		logging.WithServiceName(s.Service.Name),
		logging.WithServiceVersion(s.Service.Version),
		logging.WithEnvironment(s.Service.Environment),
	)
}

func (a *App) metricsOptions(extra []metrics.Option) []metrics.Option {
	s := a.settings
	opts := []metrics.Option{
		metrics.WithServiceName(s.Service.Name),
		metrics.WithServiceVersion(s.Service.Version),
		metrics.WithLogger(a.logger.Logger()),
	}
	switch metrics.Provider(s.Metrics.Provider) {
	case metrics.OTLPProvider:
		opts = append(opts, metrics.WithOTLP(s.Metrics.Endpoint))
	case metrics.StdoutProvider:
		opts = append(opts, metrics.WithStdout())
	default:
		opts = append(opts, metrics.WithPrometheus())
	}
	if paths := a.healthPaths(); len(paths) > 0 {
		opts = append(opts, metrics.WithExcludePaths(paths...))
	}
	return append(opts, extra...)
}

func (a *App) tracingOptions(extra []tracing.Option) []tracing.Option {
	s := a.settings
	opts := []tracing.Option{
		tracing.WithServiceName(s.Service.Name),
		tracing.WithServiceVersion(s.Service.Version),
		tracing.WithLogger(a.logger.Logger()),
		tracing.WithExcludePaths(append(a.healthPaths(), s.Tracing.ExcludePaths...)...),
	}
	if s.Tracing.SampleRate > 0 {
		opts = append(opts, tracing.WithSampleRate(s.Tracing.SampleRate))
	}
	switch s.Tracing.Provider {
	case "stdout":
		opts = append(opts, tracing.WithStdout())
	case "otlp":
		var otlp []tracing.OTLPOption
		if s.Tracing.Insecure {
			otlp = append(otlp, tracing.OTLPInsecure())
		}
		opts = append(opts, tracing.WithOTLP(s.Tracing.Endpoint, otlp...))
	case "otlp-http":
		opts = append(opts, tracing.WithOTLPHTTP(s.Tracing.Endpoint))
	default:
		opts = append(opts, tracing.WithNoop())
	}
	return append(opts, extra...)
}

// builtinModifiers returns the modifiers every endpoint is wrapped in,
// outermost first.
func (a *App) builtinModifiers(log *slog.Logger) []router.Modifier {
	mods := []router.Modifier{
		recovery.New(recovery.WithLogger(func(in *router.Input, err any, stack []byte) {
			in.Logger().Error("panic recovered",
				slog.Any("panic", err),
				slog.String("request_id", requestid.Get(in)),
				slog.String("stack", string(stack)),
			)
		})),
		requestid.New(requestid.WithULID()),
	}
	if a.settings.Server.Compression {
		mods = append(mods, compression.New(
			compression.WithMinSize(a.settings.Server.CompressionMinSize),
			compression.WithExcludePaths(a.healthPaths()...),
			compression.WithLogger(log),
		))
	}
	if d := a.settings.Server.RequestTimeout; d > 0 {
		mods = append(mods, timeout.New(
			timeout.WithDuration(d),
			timeout.WithLogger(log),
			timeout.WithSkipPaths(a.healthPaths()...),
		))
	}
	return mods
}

func (a *App) healthPaths() []string {
	if a.health == nil {
		return nil
	}
	return []string{a.health.healthz(), a.health.readyz()}
}

// Router returns the frozen routing application. It serves HTTP directly,
// which is convenient in tests.
func (a *App) Router() *router.App { return a.router }

// Logger returns the application logger.
func (a *App) Logger() *logging.Logger { return a.logger }

// Metrics returns the metrics recorder, or nil when metrics are disabled.
func (a *App) Metrics() *metrics.Recorder { return a.metrics }

// Tracer returns the tracer.
func (a *App) Tracer() *tracing.Tracer { return a.tracer }

// Settings returns the settings the App was built from.
func (a *App) Settings() *config.Settings { return a.settings }

// Addr returns the address the server listens on, or "" before Run has
// started listening.
func (a *App) Addr() string {
	a.addrMu.RLock()
	defer a.addrMu.RUnlock()
	return a.addr
}

func (a *App) setAddr(addr string) {
	a.addrMu.Lock()
	a.addr = addr
	a.addrMu.Unlock()
}

// Run serves until ctx ends or the server fails, then shuts down
// gracefully within the configured shutdown timeout.
//
// Order: OnStart hooks, tracing start, listeners, banner, OnReady hooks;
// on the way down OnShutdown hooks, server shutdown, telemetry flush and
// OnStop hooks.
func (a *App) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	log := a.logger.Logger()

	if err := a.executeStartHooks(ctx); err != nil {
		return err
	}
	if err := a.tracer.Start(ctx); err != nil {
		return fmt.Errorf("start tracing: %w", err)
	}

	var lc net.ListenConfig
	srv := a.router.NewServer(a.settings.Server.Addr)
	ln, err := lc.Listen(ctx, "tcp", srv.Addr)
	if err != nil {
		return errors.Join(fmt.Errorf("listen on %s: %w", srv.Addr, err), a.shutdownTelemetry(context.WithoutCancel(ctx)))
	}
	a.setAddr(ln.Addr().String())
	defer a.setAddr("")

	metricsSrv, err := a.startMetricsServer(ctx)
	if err != nil {
		_ = ln.Close()
		return errors.Join(err, a.shutdownTelemetry(context.WithoutCancel(ctx)))
	}

	if a.banner {
		a.printStartupBanner(a.Addr())
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Serve(ln)
	}()
	log.Info("server started", slog.String("addr", a.Addr()))
	a.executeReadyHooks()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down", slog.Any("cause", context.Cause(ctx)))
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server error: %w", err)
		}
	}

	timeout := a.settings.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	a.executeShutdownHooks(shutdownCtx)

	errs := []error{runErr}
	if err := a.router.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown server: %w", err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
		}
	}
	errs = append(errs, a.shutdownTelemetry(shutdownCtx))

	a.executeStopHooks()
	log.Info("server stopped")

	return errors.Join(errs...)
}

// startMetricsServer serves the Prometheus scrape endpoint on its own
// listener. It returns nil when there is nothing to scrape.
func (a *App) startMetricsServer(ctx context.Context) (*http.Server, error) {
	if a.metrics == nil || a.metrics.Provider() != metrics.PrometheusProvider {
		return nil, nil
	}
	h, err := a.metrics.Handler()
	if err != nil {
		return nil, fmt.Errorf("metrics handler: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(a.settings.Metrics.Path, h)
	srv := &http.Server{
		Addr:              a.settings.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(a.logger.Logger().Handler(), slog.LevelWarn),
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s for metrics: %w", srv.Addr, err)
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Logger().Error("metrics server failed", slog.Any("error", err))
		}
	}()
	a.logger.Logger().Info("metrics server started",
		slog.String("addr", ln.Addr().String()),
		slog.String("path", a.settings.Metrics.Path),
	)
	return srv, nil
}

func (a *App) shutdownTelemetry(ctx context.Context) error {
	var errs []error
	if a.metrics != nil {
		if err := a.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown metrics: %w", err))
		}
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}
	return errors.Join(errs...)
}

// discardTelemetry stops the exporters of a build that failed halfway.
func (a *App) discardTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdownTelemetry(ctx); err != nil {
		a.logger.Logger().Warn("discarding telemetry of failed build", slog.Any("error", err))
	}
}
