package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultMarketDataHost     = "192.168.0.1"
	DefaultMarketDataPort     = 3501
	DefaultOrderRouteHost     = "192.168.0.1"
	DefaultOrderRoutePort     = 3500
	DefaultTransport          = "tcp"
	DefaultWSPath             = "/"
	DefaultKeepalive          = 5000 * time.Millisecond
	DefaultDialTimeout        = 10 * time.Second
	DefaultWriteTimeout       = 5 * time.Second
	DefaultReconnectBaseDelay = 250 * time.Millisecond
	DefaultReconnectMaxDelay  = 5 * time.Second
	DefaultMaxUnknownCommands = 3
	DefaultOutboxSize         = 64
	DefaultLogFile            = "AlgoTrader.log"
	DefaultLogLevel           = "STANDARD"
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 4
	DefaultMinConns           = 1
	DefaultBatchSize          = 500
	DefaultFlushInterval      = 1 * time.Second
	DefaultBufferSize         = 10000
	DefaultMetricsPort        = 9090
	DefaultMetricsPath        = "/metrics"
)

func (c *TraderConfig) applyDefaults() {
	applyEndpointDefaults(&c.MarketData, DefaultMarketDataHost, DefaultMarketDataPort)
	applyEndpointDefaults(&c.OrderRoute, DefaultOrderRouteHost, DefaultOrderRoutePort)

	// Session defaults. ReconnectBaseDelay is left alone when set to zero explicitly
	// through the file; only a negative value is replaced.
	if c.Session.Keepalive == 0 {
		c.Session.Keepalive = DefaultKeepalive
	}
	if c.Session.DialTimeout == 0 {
		c.Session.DialTimeout = DefaultDialTimeout
	}
	if c.Session.WriteTimeout == 0 {
		c.Session.WriteTimeout = DefaultWriteTimeout
	}
	if c.Session.ReconnectBaseDelay < 0 {
		c.Session.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Session.ReconnectMaxDelay == 0 {
		c.Session.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Session.MaxUnknownCommands == 0 {
		c.Session.MaxUnknownCommands = DefaultMaxUnknownCommands
	}
	if c.Session.OutboxSize == 0 {
		c.Session.OutboxSize = DefaultOutboxSize
	}

	// Log defaults
	if c.Log.File == "" {
		c.Log.File = DefaultLogFile
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}

	if c.Strategies == nil {
		c.Strategies = []string{}
	}

	// Database defaults only matter when recording is enabled.
	if c.Database.Enabled() {
		applyDBDefaults(&c.Database)
	}

	// Recorder defaults
	if c.Recorder.BatchSize == 0 {
		c.Recorder.BatchSize = DefaultBatchSize
	}
	if c.Recorder.FlushInterval == 0 {
		c.Recorder.FlushInterval = DefaultFlushInterval
	}
	if c.Recorder.BufferSize == 0 {
		c.Recorder.BufferSize = DefaultBufferSize
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func applyEndpointDefaults(ep *EndpointConfig, host string, port int) {
	if ep.Host == "" {
		ep.Host = host
	}
	if ep.Port == 0 {
		ep.Port = port
	}
	if ep.Transport == "" {
		ep.Transport = DefaultTransport
	}
	if ep.Path == "" {
		ep.Path = DefaultWSPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
