package main

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/algo-trader/internal/session"
)

type simulator struct {
	interval  time.Duration
	keepalive time.Duration
	depth     int
	logger    *slog.Logger
}

// client is one connected trader.
type client struct {
	conn   session.Conn
	logger *slog.Logger

	writeMu sync.Mutex

	mu   sync.Mutex
	subs map[string]float64 // symbol -> mid price

	lastIn time.Time
}

func (s *simulator) serve(ctx context.Context, conn session.Conn) {
	c := &client{
		conn:   conn,
		logger: s.logger.With("client_id", uuid.NewString(), "remote", conn.RemoteAddr()),
		subs:   make(map[string]float64),
		lastIn: time.Now(),
	}
	defer conn.Close()

	c.logger.Info("client connected")
	if err := c.write(session.CmdConnected); err != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.publish(ctx, c)

	for {
		line, err := conn.ReadLine()
		if err != nil {
			c.logger.Info("client disconnected", "error", err)
			return
		}
		c.mu.Lock()
		c.lastIn = time.Now()
		c.mu.Unlock()

		if done := c.handle(line); done {
			return
		}
	}
}

// handle processes one inbound line and reports whether the connection is over.
func (c *client) handle(line string) bool {
	cmd, arg, _ := strings.Cut(line, ",")

	switch cmd {
	case "SUB":
		c.mu.Lock()
		if _, ok := c.subs[arg]; !ok {
			c.subs[arg] = 50 + rand.Float64()*100
		}
		c.mu.Unlock()
		c.logger.Info("subscribed", "symbol", arg)
	case "UNSUB":
		c.mu.Lock()
		delete(c.subs, arg)
		c.mu.Unlock()
		c.logger.Info("unsubscribed", "symbol", arg)
	case session.CmdEnd:
		c.write(session.CmdBye)
		return true
	case session.CmdBye:
		return true
	case session.CmdPing, session.ReplyUnknown:
	default:
		c.logger.Debug("ignoring line", "line", line)
	}
	return false
}

// publish sends snapshots every interval and PING after keepalive of silence.
// A failed write closes the connection, which ends serve.
func (s *simulator) publish(ctx context.Context, c *client) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for _, line := range c.snapshots(s.depth) {
			if err := c.write(line); err != nil {
				c.conn.Close()
				return
			}
		}

		c.mu.Lock()
		idle := time.Since(c.lastIn)
		c.mu.Unlock()
		if idle >= s.keepalive {
			if err := c.write(session.CmdPing); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}

// snapshots advances every subscribed mid price and renders its SNAPSHOT line.
func (c *client) snapshots(depth int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	symbols := make([]string, 0, len(c.subs))
	for sym := range c.subs {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	lines := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		mid := math.Max(1, c.subs[sym]+rand.NormFloat64()*0.25)
		c.subs[sym] = mid
		lines = append(lines, snapshotLine(sym, mid, depth))
	}
	return lines
}

func snapshotLine(symbol string, mid float64, depth int) string {
	const tick = 0.05

	fields := []string{"SNAPSHOT", symbol, "BID"}
	for i := 0; i < depth; i++ {
		fields = append(fields, price(mid-tick*float64(i+1)), qty())
	}
	fields = append(fields, "OFFER")
	for i := 0; i < depth; i++ {
		fields = append(fields, price(mid+tick*float64(i+1)), qty())
	}
	return strings.Join(fields, ",")
}

func price(p float64) string {
	return strconv.FormatFloat(math.Round(p*100)/100, 'f', 2, 64)
}

func qty() string {
	return strconv.Itoa(1 + rand.Intn(20))
}

func (c *client) write(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteLine(line)
}
