package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Commands shared by every peer.
const (
	CmdEnd       = "END"
	CmdBye       = "BYE"
	CmdPing      = "PING"
	CmdConnected = "CONNECTED"

	ReplyUnknown = "UNKNOWN COMMAND"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultKeepalive  = 5 * time.Second
	DefaultMaxUnknown = 3
	DefaultOutboxSize = 64
)

// Errors
var (
	ErrTooManyUnknown   = errors.New("too many consecutive unknown commands")
	ErrUnknownTransport = errors.New("unknown transport")
)

// State is the lifecycle state of an Engine.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateActive
	StateIdle
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateActive:
		return "ACTIVE"
	case StateIdle:
		return "IDLE_WAIT"
	case StateClosing:
		return "CLOSING"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ConnectionError is a dial, read or write failure. It aborts the current
// connection; the engine reconnects.
type ConnectionError struct {
	Op   string // "dial", "read" or "write"
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Handler receives inbound commands the engine does not handle itself.
// args holds the comma-separated fields after the command. HandleLine reports
// whether the command was recognized; unrecognized commands count towards the
// unknown-command limit. It is called from the engine goroutine.
type Handler interface {
	HandleLine(cmd string, args []string) bool
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(cmd string, args []string) bool

func (f HandlerFunc) HandleLine(cmd string, args []string) bool {
	return f(cmd, args)
}

// Config holds engine settings.
type Config struct {
	Name       string // Identifies the session in logs and metrics
	Keepalive  time.Duration
	MaxUnknown int
	OutboxSize int
	Backoff    Backoff
}

// Format joins a command and its arguments into one wire line.
func Format(cmd string, args ...string) string {
	if len(args) == 0 {
		return cmd
	}
	return cmd + "," + strings.Join(args, ",")
}
