package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/algo-trader/internal/blotter"
	"github.com/rickgao/algo-trader/internal/book"
	"github.com/rickgao/algo-trader/internal/config"
	"github.com/rickgao/algo-trader/internal/database"
	"github.com/rickgao/algo-trader/internal/eventlog"
	"github.com/rickgao/algo-trader/internal/marketdata"
	"github.com/rickgao/algo-trader/internal/orderroute"
	"github.com/rickgao/algo-trader/internal/session"
	"github.com/rickgao/algo-trader/internal/version"
	"github.com/rickgao/algo-trader/internal/writer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file (empty: defaults and environment)")
	flag.Parse()

	// Set up structured logging; the level is set once config is loaded
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting trader",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	lvl, _ := config.ParseLevel(cfg.Log.Level)
	level.Set(lvl)

	logger.Info("configuration loaded",
		"marketdata", fmt.Sprintf("%s:%d", cfg.MarketData.Host, cfg.MarketData.Port),
		"orderroute", fmt.Sprintf("%s:%d", cfg.OrderRoute.Host, cfg.OrderRoute.Port),
		"keepalive", cfg.Session.Keepalive,
		"log_file", cfg.Log.File,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional recorder
	var pool *pgxpool.Pool
	var snapshots *writer.SnapshotWriter
	var eventRows *writer.EventWriter
	if cfg.Database.Enabled() {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pool, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := database.EnsureSchema(ctx, pool); err != nil {
			logger.Error("failed to prepare schema", "error", err)
			os.Exit(1)
		}

		wcfg := writer.FromConfig(cfg.Recorder)
		snapshots = writer.NewSnapshotWriter(wcfg, pool, logger)
		eventRows = writer.NewEventWriter(wcfg, pool, logger)
		snapshots.Start(ctx)
		eventRows.Start(ctx)
		logger.Info("recorder started")
	}

	// Event log
	var logOpts []eventlog.Option
	if eventRows != nil {
		logOpts = append(logOpts, eventlog.WithSink(eventRows))
	}
	events, err := eventlog.Open(cfg.Log.File, logOpts...)
	if err != nil {
		logger.Error("failed to open event log", "path", cfg.Log.File, "error", err)
		os.Exit(1)
	}
	defer events.Close()

	// Sessions
	mdDialer, err := session.NewDialer(dialConfig(cfg.MarketData, cfg.Session))
	if err != nil {
		logger.Error("invalid market data endpoint", "error", err)
		os.Exit(1)
	}
	orDialer, err := session.NewDialer(dialConfig(cfg.OrderRoute, cfg.Session))
	if err != nil {
		logger.Error("invalid order route endpoint", "error", err)
		os.Exit(1)
	}

	orderBook := book.New()

	var mdOpts []marketdata.Option
	if snapshots != nil {
		mdOpts = append(mdOpts, marketdata.WithRecorder(snapshots))
	}
	md := marketdata.New(engineConfig("marketdata", cfg.Session), mdDialer, orderBook, events, logger, mdOpts...)
	orders := blotter.New(md, logger)
	venue := orderroute.New(engineConfig("orderroute", cfg.Session), orDialer, orders, events, logger)

	for _, name := range cfg.Strategies {
		events.Write("Strategy configured: " + name)
		logger.Info("strategy configured", "name", name)
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		events.Write("Received termination signal.")
		cancel()
	}()

	// Health server
	var db pinger
	if pool != nil {
		db = pool
	}
	healthServer := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: createHealthHandler(healthDeps{
			db:         db,
			book:       orderBook,
			blotter:    orders,
			marketData: md,
			orderRoute: venue,
		}, cfg.Metrics.Path),
	}

	go func() {
		logger.Info("starting health server", "port", cfg.Metrics.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	// Run both sessions
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return md.Run(gctx) })
	g.Go(func() error { return venue.Run(gctx) })

	events.Write("AlgoTrader is up.")
	logger.Info("trader running",
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Metrics.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("session error", "error", err)
		}
	case <-shutdownCtx.Done():
		logger.Warn("sessions did not stop in time, later event log and recorder writes are dropped")
	}

	healthServer.Shutdown(shutdownCtx)

	events.Write("AlgoTrader shutdown complete.")

	if snapshots != nil {
		snapshots.Stop(shutdownCtx)
	}
	if eventRows != nil {
		eventRows.Stop(shutdownCtx)
	}

	logger.Info("trader stopped")
}

// dialConfig builds the transport settings for one endpoint.
func dialConfig(ep config.EndpointConfig, s config.SessionConfig) session.DialConfig {
	return session.DialConfig{
		Transport:    ep.Transport,
		Host:         ep.Host,
		Port:         ep.Port,
		Path:         ep.Path,
		DialTimeout:  s.DialTimeout,
		WriteTimeout: s.WriteTimeout,
	}
}

// engineConfig builds the session engine settings shared by both sessions.
func engineConfig(name string, s config.SessionConfig) session.Config {
	return session.Config{
		Name:       name,
		Keepalive:  s.Keepalive,
		MaxUnknown: s.MaxUnknownCommands,
		OutboxSize: s.OutboxSize,
		Backoff: session.Backoff{
			Base: s.ReconnectBaseDelay,
			Max:  s.ReconnectMaxDelay,
		},
	}
}
