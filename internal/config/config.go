package config

import "time"

// TraderConfig is the root configuration for a trader process.
type TraderConfig struct {
	MarketData EndpointConfig `yaml:"marketdata"`
	OrderRoute EndpointConfig `yaml:"orderroute"`
	Session    SessionConfig  `yaml:"session"`
	Log        LogConfig      `yaml:"log"`
	Strategies []string       `yaml:"strategies"`
	Database   DBConfig       `yaml:"database"`
	Recorder   RecorderConfig `yaml:"recorder"`
	Metrics    MetricsConfig  `yaml:"metrics"`
}

// EndpointConfig locates one peer.
type EndpointConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Transport string `yaml:"transport"` // "tcp" or "ws"
	Path      string `yaml:"path"`      // WebSocket path, ws only
}

// SessionConfig holds settings shared by both wire sessions.
type SessionConfig struct {
	Keepalive          time.Duration `yaml:"keepalive"`
	DialTimeout        time.Duration `yaml:"dial_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"` // 0 = retry immediately
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	MaxUnknownCommands int           `yaml:"max_unknown_commands"`
	OutboxSize         int           `yaml:"outbox_size"`
}

// LogConfig holds the event log and process log settings.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"` // STANDARD, DEBUG, VERBOSE, INFO, WARN, ERROR
}

// DBConfig holds the optional recorder database. Recording is disabled when Host is empty.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether a recorder database is configured.
func (db DBConfig) Enabled() bool {
	return db.Host != ""
}

// RecorderConfig holds batch writer settings.
type RecorderConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// MetricsConfig holds the health and Prometheus endpoint settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
