// Command feedsim is a local market-data source for running the trader
// without a venue. It accepts SUB / UNSUB, answers END with BYE, sends PING
// when idle and publishes a random-walk SNAPSHOT for every subscribed symbol.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/algo-trader/internal/session"
)

func main() {
	addr := flag.String("addr", ":3501", "listen address")
	transport := flag.String("transport", session.TransportTCP, "tcp or ws")
	interval := flag.Duration("interval", time.Second, "snapshot interval")
	keepalive := flag.Duration("keepalive", 5*time.Second, "idle time before PING")
	depth := flag.Int("depth", 5, "levels per side")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sim := &simulator{
		interval:  *interval,
		keepalive: *keepalive,
		depth:     *depth,
		logger:    logger,
	}

	var err error
	switch *transport {
	case session.TransportTCP:
		err = serveTCP(ctx, *addr, sim)
	case session.TransportWebSocket:
		err = serveWS(ctx, *addr, sim)
	default:
		logger.Error("unknown transport", "transport", *transport)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("feed simulator stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("feed simulator stopped")
}

func serveTCP(ctx context.Context, addr string, sim *simulator) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	sim.logger.Info("listening", "addr", ln.Addr().String(), "transport", session.TransportTCP)
	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go sim.serve(ctx, session.NewTCPConn(c, 5*time.Second))
	}
}

func serveWS(ctx context.Context, addr string, sim *simulator) error {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	srv := &http.Server{
		Addr: addr,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				sim.logger.Warn("upgrade failed", "error", err)
				return
			}
			sim.serve(ctx, session.NewWebSocketConn(c, 5*time.Second))
		}),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	sim.logger.Info("listening", "addr", addr, "transport", session.TransportWebSocket)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
