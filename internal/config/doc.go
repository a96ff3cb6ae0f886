// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// The flat keys MARKETDATA_HOST, MARKETDATA_PORT, ORDERROUTE_HOST, ORDERROUTE_PORT,
// KEEPALIVE_MS, LOGFILE, LOGLEVEL and STRATEGIES override the file when set in the
// environment. Every setting has a default, so an empty path is a valid configuration.
package config
