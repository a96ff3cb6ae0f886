package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SessionState is the current state of each session, see session.State.
	SessionState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trader_session_state",
		Help: "current session state (0 disconnected, 1 connecting, 2 active, 3 idle, 4 closing)",
	}, []string{"session"})

	// SessionConnects counts connection attempts by result ("ok" or "error").
	SessionConnects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trader_session_connects_total",
		Help: "connection attempts per session",
	}, []string{"session", "result"})

	// SessionLines counts wire lines by direction ("in" or "out") and command.
	SessionLines = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trader_session_lines_total",
		Help: "protocol lines read and written",
	}, []string{"session", "direction", "command"})

	// SessionFaults counts sessions aborted by an I/O fault.
	SessionFaults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trader_session_faults_total",
		Help: "sessions aborted by a connection error",
	}, []string{"session", "op"})

	// UnknownCommands counts unrecognized inbound commands.
	UnknownCommands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trader_unknown_commands_total",
		Help: "unrecognized inbound commands",
	}, []string{"session"})

	// SnapshotUpdates counts applied market-data snapshots by result ("ok" or "parse_error").
	SnapshotUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trader_snapshot_updates_total",
		Help: "market-data snapshots received",
	}, []string{"result"})

	// ActiveSubscriptions is the number of symbols with a positive refcount.
	ActiveSubscriptions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trader_active_subscriptions",
		Help: "symbols currently subscribed for market data",
	})

	// WorkingOrders is the number of orders in the blotter.
	WorkingOrders = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trader_working_orders",
		Help: "orders currently in the blotter",
	})

	// RecorderRows counts recorder rows by table and result ("ok", "conflict", "error").
	RecorderRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trader_recorder_rows_total",
		Help: "rows written by the recorder",
	}, []string{"table", "result"})
)

func init() {
	prometheus.MustRegister(
		SessionState,
		SessionConnects,
		SessionLines,
		SessionFaults,
		UnknownCommands,
		SnapshotUpdates,
		ActiveSubscriptions,
		WorkingOrders,
		RecorderRows,
	)
}

// Handler returns the HTTP handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
