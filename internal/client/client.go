// Package client implements the interactive terminal client for the
// chat server.
package client

import (
	"fmt"
	"net"
	"time"
)

const (
	dialTimeout     = 5 * time.Second
	maxRetryBackoff = 8 * time.Second
	readChunkSize   = 4096
)

// Dial connects to the chat server, retrying with exponential backoff
// (1s, 2s, 4s between attempts) before giving up.
func Dial(addr string) (net.Conn, error) {
	var lastErr error
	for backoff := time.Second; backoff <= maxRetryBackoff; backoff <<= 1 {
		conn, err := net.DialTimeout("tcp", addr, dialTimeout)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if backoff <= maxRetryBackoff/2 {
			time.Sleep(backoff)
		}
	}
	return nil, fmt.Errorf("client: cannot connect to %s: %w", addr, lastErr)
}

// Event is one chunk of server output, or the read error that ended the
// connection.
type Event struct {
	Text string
	Err  error
}

// Connection wraps the server connection with a reader goroutine feeding
// an event channel, so a Bubble Tea model can select on server output.
type Connection struct {
	conn net.Conn
	recv chan Event
}

// NewConnection starts reading from conn.
func NewConnection(conn net.Conn) *Connection {
	c := &Connection{
		conn: conn,
		recv: make(chan Event, 16),
	}
	go c.readLoop()
	return c
}

func (c *Connection) readLoop() {
	chunk := make([]byte, readChunkSize)
	for {
		n, err := c.conn.Read(chunk)
		if n > 0 {
			c.recv <- Event{Text: string(chunk[:n])}
		}
		if err != nil {
			c.recv <- Event{Err: err}
			close(c.recv)
			return
		}
	}
}

// Recv returns the channel of server output events. The channel is closed
// after the terminal error event.
func (c *Connection) Recv() <-chan Event {
	return c.recv
}

// SendLine writes one newline-terminated line to the server.
func (c *Connection) SendLine(line string) error {
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

// Close closes the underlying connection.
func (c *Connection) Close() error {
	return c.conn.Close()
}
