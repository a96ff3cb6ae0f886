package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment keys that override the file.
const (
	EnvMarketDataHost = "MARKETDATA_HOST"
	EnvMarketDataPort = "MARKETDATA_PORT"
	EnvOrderRouteHost = "ORDERROUTE_HOST"
	EnvOrderRoutePort = "ORDERROUTE_PORT"
	EnvKeepaliveMS    = "KEEPALIVE_MS"
	EnvLogFile        = "LOGFILE"
	EnvLogLevel       = "LOGLEVEL"
	EnvStrategies     = "STRATEGIES"
)

// ConfigError reports an environment override that could not be parsed.
type ConfigError struct {
	Key   string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// GetEnv returns the environment value for key parsed as T, or defaultValue
// when the key is unset.
func GetEnv[T string | int](key string, defaultValue T) (T, error) {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}

	var parsed any
	switch any(defaultValue).(type) {
	case string:
		parsed = v
	case int:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return defaultValue, &ConfigError{Key: key, Value: v, Err: err}
		}
		parsed = n
	}
	return parsed.(T), nil
}

// applyEnv overlays the flat environment keys on top of the file values.
func (c *TraderConfig) applyEnv() error {
	var err error

	if c.MarketData.Host, err = GetEnv(EnvMarketDataHost, c.MarketData.Host); err != nil {
		return err
	}
	if c.MarketData.Port, err = GetEnv(EnvMarketDataPort, c.MarketData.Port); err != nil {
		return err
	}
	if c.OrderRoute.Host, err = GetEnv(EnvOrderRouteHost, c.OrderRoute.Host); err != nil {
		return err
	}
	if c.OrderRoute.Port, err = GetEnv(EnvOrderRoutePort, c.OrderRoute.Port); err != nil {
		return err
	}

	if _, ok := os.LookupEnv(EnvKeepaliveMS); ok {
		ms, err := GetEnv(EnvKeepaliveMS, 0)
		if err != nil {
			return err
		}
		c.Session.Keepalive = time.Duration(ms) * time.Millisecond
	}

	if c.Log.File, err = GetEnv(EnvLogFile, c.Log.File); err != nil {
		return err
	}
	if c.Log.Level, err = GetEnv(EnvLogLevel, c.Log.Level); err != nil {
		return err
	}

	if v, ok := os.LookupEnv(EnvStrategies); ok {
		c.Strategies = splitList(v)
	}

	return nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(v string) []string {
	out := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
