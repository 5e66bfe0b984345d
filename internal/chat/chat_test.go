package chat

import (
	"bytes"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

const testTimeout = 2 * time.Second

// testClient is the far end of an in-memory connection. It drains
// everything the server writes so pipe writes never block.
type testClient struct {
	conn net.Conn

	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *testClient) drain() {
	chunk := make([]byte, 512)
	for {
		n, err := c.conn.Read(chunk)
		if n > 0 {
			c.mu.Lock()
			c.buf.Write(chunk[:n])
			c.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (c *testClient) text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// waitFor blocks until the server has sent text containing substr.
func (c *testClient) waitFor(t *testing.T, substr string) {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for time.Now().Before(deadline) {
		if strings.Contains(c.text(), substr) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q, received %q", substr, c.text())
}

func (c *testClient) send(t *testing.T, text string) {
	t.Helper()
	if _, err := c.conn.Write([]byte(text)); err != nil {
		t.Fatalf("client write failed: %v", err)
	}
}

// newChatSession creates a session with a running reader plus its
// draining client end.
func newChatSession(t *testing.T, nickname string) (*Session, *testClient) {
	t.Helper()
	server, clientConn := net.Pipe()
	sess := NewSession(server)
	sess.SetNickname(nickname)
	sess.Start()
	client := &testClient{conn: clientConn}
	go client.drain()
	t.Cleanup(func() {
		server.Close()
		clientConn.Close()
	})
	return sess, client
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func waitForLen(t *testing.T, wl *Waitlist, want int) {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for time.Now().Before(deadline) {
		if wl.Len() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("waitlist length = %d, expected %d", wl.Len(), want)
}

func waitForActive(t *testing.T, stats *Stats, want int) {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for time.Now().Before(deadline) {
		if stats.ActiveConversations() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("active conversations = %d, expected %d", stats.ActiveConversations(), want)
}
