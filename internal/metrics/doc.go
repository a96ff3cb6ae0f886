// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Session state, connection attempts and wire line rates per session
//   - Unknown-command escalations and snapshot parse failures
//   - Active market-data subscriptions and working orders
//   - Recorder batch inserts and errors
//
// Collectors are registered with the default registry at init; Handler serves them.
package metrics
