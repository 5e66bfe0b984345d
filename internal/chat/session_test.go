package chat

import (
	"net"
	"strings"
	"testing"
	"time"
)

func recvEvent(t *testing.T, s *Session) ReadEvent {
	t.Helper()
	select {
	case ev := <-s.Recv():
		return ev
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for a read event")
		return ReadEvent{}
	}
}

func TestSessionReaderAccumulatesUntilNewline(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	sess := NewSession(server)
	sess.Start()
	defer sess.Close()

	go func() {
		client.Write([]byte("hel"))
		client.Write([]byte("lo\n"))
	}()

	ev := recvEvent(t, sess)
	if ev.Err != nil {
		t.Fatalf("unexpected read error: %v", ev.Err)
	}
	if ev.Line != "hello\n" {
		t.Errorf("Line = %q, expected %q", ev.Line, "hello\n")
	}
}

func TestSessionReaderTruncatesFullBuffer(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	sess := NewSession(server)
	sess.Start()
	defer sess.Close()

	long := strings.Repeat("a", lineBufferSize+10)
	go client.Write([]byte(long))

	ev := recvEvent(t, sess)
	if ev.Err != nil {
		t.Fatalf("unexpected read error: %v", ev.Err)
	}
	if len(ev.Line) != lineBufferSize {
		t.Errorf("truncated line length = %d, expected %d", len(ev.Line), lineBufferSize)
	}
	if strings.ContainsRune(ev.Line, '\n') {
		t.Error("a truncated line must not contain a terminator")
	}
}

func TestSessionReaderReportsDisconnect(t *testing.T) {
	server, client := net.Pipe()
	sess := NewSession(server)
	sess.Start()
	defer sess.Close()

	client.Close()

	ev := recvEvent(t, sess)
	if ev.Err == nil {
		t.Fatal("expected a read error after the peer closed")
	}
}

func TestSessionCloseReleasesAbandonedReader(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	sess := NewSession(server)
	sess.Start()

	// Two lines: the first sits undelivered in the channel, the second
	// leaves the reader blocked handing it off with no receiver left.
	go func() {
		client.Write([]byte("first\n"))
		client.Write([]byte("second\n"))
	}()

	sess.Close()

	// The reader must drain out, observe the closed connection and shut
	// the channel instead of blocking forever on its final delivery.
	deadline := time.After(testTimeout)
	for {
		select {
		case _, ok := <-sess.Recv():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("reader did not exit after Close with an undelivered line")
		}
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	a, _ := newIdleSession(t)
	b, _ := newIdleSession(t)
	if a.ID() == b.ID() {
		t.Errorf("two sessions share identity %d", a.ID())
	}
	if a.ID() == 0 || b.ID() == 0 {
		t.Error("the zero identity must never be assigned")
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	sess, _ := newIdleSession(t)
	sess.Close()
	sess.Close() // must not panic
}
