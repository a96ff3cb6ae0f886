package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *TraderConfig) Validate() error {
	if err := c.MarketData.validate("marketdata"); err != nil {
		return err
	}
	if err := c.OrderRoute.validate("orderroute"); err != nil {
		return err
	}

	if c.Session.Keepalive <= 0 {
		return fmt.Errorf("session.keepalive must be > 0, got %v", c.Session.Keepalive)
	}
	if c.Session.ReconnectBaseDelay < 0 {
		return errors.New("session.reconnect_base_delay must be >= 0")
	}
	if c.Session.ReconnectMaxDelay < c.Session.ReconnectBaseDelay {
		return fmt.Errorf("session.reconnect_max_delay (%v) cannot be less than reconnect_base_delay (%v)",
			c.Session.ReconnectMaxDelay, c.Session.ReconnectBaseDelay)
	}
	if c.Session.MaxUnknownCommands < 1 {
		return errors.New("session.max_unknown_commands must be >= 1")
	}

	if c.Log.File == "" {
		return errors.New("log.file is required")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	if c.Database.Enabled() {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
		if c.Recorder.BatchSize < 1 {
			return errors.New("recorder.batch_size must be >= 1")
		}
		if c.Recorder.BufferSize < 1 {
			return errors.New("recorder.buffer_size must be >= 1")
		}
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}

func (ep *EndpointConfig) validate(prefix string) error {
	if ep.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if ep.Port < 1 || ep.Port > 65535 {
		return fmt.Errorf("%s.port must be between 1 and 65535, got %d", prefix, ep.Port)
	}
	switch ep.Transport {
	case "tcp", "ws":
	default:
		return fmt.Errorf("%s.transport must be tcp or ws, got %q", prefix, ep.Transport)
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

// ParseLevel maps a LOGLEVEL value to a slog level. STANDARD is the
// historical name for info; DEBUG and VERBOSE both mean debug.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "STANDARD", "INFO":
		return slog.LevelInfo, nil
	case "DEBUG", "VERBOSE":
		return slog.LevelDebug, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level %q is not one of STANDARD, DEBUG, VERBOSE, INFO, WARN, ERROR", level)
}
