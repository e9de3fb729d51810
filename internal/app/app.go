// Package app wires configuration, logging, the simulation and the HTTP
// surface into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"voxelfront/server/internal/config"
	"voxelfront/server/internal/items"
	servernet "voxelfront/server/internal/net"
	"voxelfront/server/internal/net/ws"
	"voxelfront/server/internal/notify"
	"voxelfront/server/internal/observability"
	"voxelfront/server/internal/sim"
	"voxelfront/server/internal/telemetry"
	"voxelfront/server/internal/world"
	"voxelfront/server/logging"
	loggingSinks "voxelfront/server/logging/sinks"
)

type Config struct {
	Settings config.Config
	Logger   telemetry.Logger
	// Stdout receives console and stdout-bound json log sinks.
	Stdout io.Writer
}

// Server owns every long-lived component of a running instance.
type Server struct {
	settings config.Config
	logger   telemetry.Logger
	router   *logging.Router
	hub      *notify.Hub
	loop     *sim.Loop
	handler  http.Handler
}

// New builds a server without starting any network or simulation work
// beyond the logging router.
func New(cfg Config) (*Server, error) {
	settings := cfg.Settings
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	logConfig := settings.LoggingConfig()
	logConfig.Fields = map[string]any{"seed": settings.World.Seed}
	sinks, err := loggingSinks.Build(logConfig, stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to build log sinks: %w", err)
	}
	router, err := logging.NewRouter(logging.SystemClock(), logConfig, sinks)
	if err != nil {
		return nil, fmt.Errorf("failed to construct logging router: %w", err)
	}

	server, err := build(settings, logger, router)
	if err != nil {
		if cerr := router.Close(context.Background()); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
		return nil, err
	}
	return server, nil
}

func build(settings config.Config, logger telemetry.Logger, router *logging.Router) (*Server, error) {
	catalog, err := items.LoadCatalog(settings.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load item catalog: %w", err)
	}
	factory, err := items.NewFactory(catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to build item factory: %w", err)
	}

	hubCfg := settings.HubConfig()
	hubCfg.Logger = logger
	hub := notify.NewHub(hubCfg)

	arena, err := world.New(settings.WorldConfig(), world.Deps{
		Items:     factory,
		Publisher: router,
		Notifier:  hub,
		Logger:    logger,
	})
	if err != nil {
		hub.Close()
		return nil, fmt.Errorf("failed to build world: %w", err)
	}

	loop := sim.NewLoop(arena, settings.LoopConfig(), sim.Deps{
		Logger:  logger,
		Metrics: telemetry.PrometheusMetrics(),
		Clock:   logging.SystemClock(),
	}, sim.TelemetryHooks(router, logger))

	sessions := ws.NewHandler(ws.HandlerConfig{
		Hub:             hub,
		Commands:        loop,
		Tick:            loop.Tick,
		Publisher:       router,
		Logger:          logger,
		MaxMessageBytes: settings.Net.MaxMessageBytes,
	})

	var gatherer prometheus.Gatherer
	if settings.Metrics {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		telemetry.RegisterMetrics(registry)
		gatherer = registry
	}

	handler := servernet.NewHTTPHandler(servernet.HTTPHandlerConfig{
		Logger:        logger,
		WebSocket:     sessions.Handle,
		Status:        loop,
		Sessions:      hub,
		TickRate:      settings.Sim.TickRate,
		Catalog:       catalog,
		Gatherer:      gatherer,
		Observability: observability.Config{EnablePprof: settings.Pprof},
	})

	return &Server{
		settings: settings,
		logger:   logger,
		router:   router,
		hub:      hub,
		loop:     loop,
		handler:  handler,
	}, nil
}

// Handler exposes the HTTP surface, mainly for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is cancelled or the listener fails, then shuts
// everything down. ready, when set, receives the bound address.
func (s *Server) Run(ctx context.Context, ready func(addr string)) error {
	defer s.closeRouter()

	listener, err := net.Listen("tcp", s.settings.Listen)
	if err != nil {
		s.hub.Close()
		return fmt.Errorf("failed to listen on %s: %w", s.settings.Listen, err)
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.loop.Run(loopCtx)
	}()

	srv := &http.Server{Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(listener)
	}()
	s.logger.Printf("server listening on %s", listener.Addr())
	if ready != nil {
		ready(listener.Addr().String())
	}

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.settings.Net.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("server shutdown: %w", err)
	}
	// Websocket connections are hijacked, so Shutdown does not wait for
	// them; closing the hub ends their read loops.
	s.hub.Close()
	stopLoop()
	wg.Wait()
	s.logger.Printf("server stopped after tick %d", s.loop.Tick())
	return runErr
}

func (s *Server) closeRouter() {
	ctx, cancel := context.WithTimeout(context.Background(), s.settings.Net.ShutdownTimeout)
	defer cancel()
	if err := s.router.Close(ctx); err != nil {
		s.logger.Printf("failed to close logging router: %v", err)
	}
}

// Run builds a server from cfg and serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.Run(ctx, nil)
}
