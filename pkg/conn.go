package pkg

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

const sendBufferSize = 256

// wsConn wraps a websocket connection with a buffered outbound channel drained
// by a single write pump, so delivery to one connection preserves sender order
// and a stalled peer never blocks the caller.
type wsConn struct {
	conn   *websocket.Conn
	lock   sync.Mutex
	closed bool
	send   chan []byte
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// Send makes a single non-blocking delivery attempt. A closed connection or a
// full buffer reports ErrConnectionClosed; the message is dropped either way.
func (c *wsConn) Send(data []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return fmt.Errorf("send buffer full: %w", ErrConnectionClosed)
	}
}

func (c *wsConn) open() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return !c.closed
}

// close marks the connection closed and releases the write pump. Idempotent.
func (c *wsConn) close() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.send)
}

func (c *wsConn) write() {
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.conn.Close()
			return
		}
	}
}
