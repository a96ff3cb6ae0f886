package session

import (
	"context"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type wsDialer struct {
	cfg DialConfig
	url string
}

func (d *wsDialer) Addr() string {
	return d.url
}

func (d *wsDialer) Dial(ctx context.Context) (Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.cfg.DialTimeout,
	}

	c, _, err := dialer.DialContext(ctx, d.url, nil)
	if err != nil {
		return nil, err
	}
	return NewWebSocketConn(c, d.cfg.WriteTimeout), nil
}

// NewWebSocketConn wraps an established WebSocket, dialed or upgraded.
func NewWebSocketConn(c *websocket.Conn, writeTimeout time.Duration) Conn {
	return &wsConn{conn: c, writeTimeout: writeTimeout}
}

// wsConn carries lines in WebSocket text frames. An inbound frame may hold
// several newline-separated lines; each outbound line is sent as its own frame.
type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	pending      []string
}

func (c *wsConn) ReadLine() (string, error) {
	for len(c.pending) == 0 {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimRight(line, "\r")
			if line != "" {
				c.pending = append(c.pending, line)
			}
		}
	}

	line := c.pending[0]
	c.pending = c.pending[1:]
	return line, nil
}

func (c *wsConn) WriteLine(line string) error {
	if c.writeTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (c *wsConn) Close() error {
	c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return c.conn.Close()
}

func (c *wsConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
