package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// Transport names accepted by NewDialer.
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "ws"
)

// Conn is one established line connection. ReadLine and WriteLine may be
// called from different goroutines, but each only from one at a time.
type Conn interface {
	// ReadLine blocks for the next inbound line, without its terminator.
	ReadLine() (string, error)

	// WriteLine sends a single line.
	WriteLine(line string) error

	Close() error
	RemoteAddr() string
}

// Dialer opens connections to one peer.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
	Addr() string
}

// DialConfig locates a peer and bounds connection I/O.
type DialConfig struct {
	Transport    string // "tcp" (default) or "ws"
	Host         string
	Port         int
	Path         string // WebSocket request path
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewDialer creates a dialer for cfg.Transport.
func NewDialer(cfg DialConfig) (Dialer, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	switch cfg.Transport {
	case "", TransportTCP:
		return &tcpDialer{cfg: cfg, addr: addr}, nil
	case TransportWebSocket:
		path := cfg.Path
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return &wsDialer{cfg: cfg, url: "ws://" + addr + path}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.Transport)
	}
}

type tcpDialer struct {
	cfg  DialConfig
	addr string
}

func (d *tcpDialer) Addr() string {
	return d.addr
}

func (d *tcpDialer) Dial(ctx context.Context) (Conn, error) {
	nd := net.Dialer{Timeout: d.cfg.DialTimeout}
	c, err := nd.DialContext(ctx, "tcp", d.addr)
	if err != nil {
		return nil, err
	}
	return NewTCPConn(c, d.cfg.WriteTimeout), nil
}

// NewTCPConn wraps an established stream, dialed or accepted.
func NewTCPConn(c net.Conn, writeTimeout time.Duration) Conn {
	return &tcpConn{
		conn:         c,
		reader:       bufio.NewReader(c),
		writeTimeout: writeTimeout,
	}
}

// tcpConn carries newline-delimited lines over a raw TCP stream.
type tcpConn struct {
	conn         net.Conn
	reader       *bufio.Reader
	writeTimeout time.Duration
}

// ReadLine returns the next line. A final line the peer did not terminate
// before closing is still returned; io.EOF follows on the next call.
func (c *tcpConn) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *tcpConn) WriteLine(line string) error {
	if c.writeTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}

func (c *tcpConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
