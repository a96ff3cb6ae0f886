package eventlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TimeFormat is the timestamp prefix layout.
const TimeFormat = "2006/01/02 15:04:05.000"

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("event log closed")

// Sink receives a copy of every line written to the log.
type Sink interface {
	RecordEvent(at time.Time, msg string)
}

// syncer is implemented by *os.File.
type syncer interface {
	Sync() error
}

// Log is a timestamped append-only line logger. It is safe for concurrent use.
type Log struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	sink   Sink
	now    func() time.Time
	closed bool
}

// Option configures a Log.
type Option func(*Log)

// WithSink mirrors every line to s.
func WithSink(s Sink) Option {
	return func(l *Log) { l.sink = s }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// Open opens (creating if needed) the log file at path in append mode.
func Open(path string, opts ...Option) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	l := New(f, opts...)
	l.closer = f
	return l, nil
}

// New creates a Log over w. If w has a Sync method it is called after every line.
func New(w io.Writer, opts ...Option) *Log {
	l := &Log{
		w:   w,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Write appends msg with a timestamp prefix and flushes before returning.
// After Close the line is dropped and ErrClosed returned.
func (l *Log) Write(msg string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	at := l.now()
	line := at.Format(TimeFormat) + ": " + msg + "\n"

	if _, err := io.WriteString(l.w, line); err != nil {
		return fmt.Errorf("write event log: %w", err)
	}
	if s, ok := l.w.(syncer); ok {
		if err := s.Sync(); err != nil {
			return fmt.Errorf("sync event log: %w", err)
		}
	}

	if l.sink != nil {
		l.sink.RecordEvent(at, msg)
	}
	return nil
}

// Writef formats according to a format specifier and writes the result.
func (l *Log) Writef(format string, args ...any) error {
	return l.Write(fmt.Sprintf(format, args...))
}

// Close closes the underlying file, if the Log owns one. Later writes are dropped.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true

	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}
