package eventlog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu    sync.Mutex
	lines []string
	at    []time.Time
}

func (s *recordingSink) RecordEvent(at time.Time, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, msg)
	s.at = append(s.at, at)
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 9, 14, 5, 7, 123_000_000, time.Local)
}

func TestLog_WriteFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WithClock(fixedClock))

	if err := l.Write("AlgoTrader is up."); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := "2024/03/09 14:05:07.123: AlgoTrader is up.\n"
	if buf.String() != want {
		t.Errorf("log = %q, want %q", buf.String(), want)
	}
}

func TestLog_Writef(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WithClock(fixedClock))

	l.Writef("Connecting to price subscriptions on %s:%d", "10.0.0.1", 3501)

	if !strings.HasSuffix(buf.String(), ": Connecting to price subscriptions on 10.0.0.1:3501\n") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestLog_Sink(t *testing.T) {
	var buf bytes.Buffer
	sink := &recordingSink{}
	l := New(&buf, WithClock(fixedClock), WithSink(sink))

	l.Write("one")
	l.Write("two")

	if len(sink.lines) != 2 || sink.lines[0] != "one" || sink.lines[1] != "two" {
		t.Errorf("sink lines = %v, want [one two]", sink.lines)
	}
	if !sink.at[0].Equal(fixedClock()) {
		t.Errorf("sink time = %v, want %v", sink.at[0], fixedClock())
	}
}

func TestOpen_AppendsAndCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "trader.log")

	l, err := Open(path, WithClock(fixedClock))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	l.Write("first")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	l, err = Open(path, WithClock(fixedClock))
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	l.Write("second")
	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("log has %d lines, want 2: %q", len(lines), data)
	}
	if !strings.HasSuffix(lines[0], ": first") || !strings.HasSuffix(lines[1], ": second") {
		t.Errorf("lines = %q", lines)
	}
}

func TestLog_DoubleClose(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "trader.log"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestLog_WriteAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trader.log")
	sink := &recordingSink{}
	l, err := Open(path, WithSink(sink), WithClock(fixedClock))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := l.Write("before"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := l.Write("after"); !errors.Is(err, ErrClosed) {
		t.Errorf("Write() after Close error = %v, want ErrClosed", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "after") {
		t.Errorf("log file = %q, want no line written after Close", data)
	}
	if len(sink.lines) != 1 {
		t.Errorf("sink lines = %v, want only the line before Close", sink.lines)
	}
}

func TestLog_CloseWithoutFile(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WithClock(fixedClock))
	l.Close()
	if err := l.Write("late"); !errors.Is(err, ErrClosed) {
		t.Errorf("Write() error = %v, want ErrClosed", err)
	}
	if buf.Len() != 0 {
		t.Errorf("buffer = %q, want empty", buf.String())
	}
}

func TestLog_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Write("line")
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 500 {
		t.Errorf("got %d lines, want 500", len(lines))
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, ": line") {
			t.Fatalf("interleaved line %q", line)
		}
	}
}
