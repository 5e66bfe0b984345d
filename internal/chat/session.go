// Package chat implements the matching and relay engine: sessions,
// per-room waitlists, the matchmakers pairing waiting sessions and the
// two-party conversation relay.
//
// A session is owned by exactly one of a session handler, a waitlist entry
// or a conversation at any instant; ownership moves by explicit hand-off.
// The owner is the sole receiver on the session's line channel.
package chat

import (
	"net"
	"sync"
	"sync/atomic"
)

// SessionID uniquely identifies a connected participant for the lifetime
// of the process. The zero value never identifies a session.
type SessionID uint64

var nextSessionID atomic.Uint64

// lineBufferSize bounds one accumulated request line. A full buffer is
// delivered as a complete, truncated line.
const lineBufferSize = 1024

// ReadEvent is one delivery from a session's reader: either a complete
// line (with its terminator, when one was seen) or a read failure.
// The reader closes the channel after delivering an event with a
// non-nil Err.
type ReadEvent struct {
	Line string
	Err  error
}

// Session is the server-side state for one connected participant.
type Session struct {
	id         SessionID
	remoteAddr string
	conn       net.Conn

	// nickname and lastPartner are only touched by the session's current
	// owner (the matchmaker, for lastPartner), never concurrently.
	nickname    string
	lastPartner SessionID

	lines     chan ReadEvent
	started   bool
	closeOnce sync.Once
}

// NewSession wraps an accepted connection. Call Start to begin reading.
func NewSession(conn net.Conn) *Session {
	return &Session{
		id:         SessionID(nextSessionID.Add(1)),
		remoteAddr: conn.RemoteAddr().String(),
		conn:       conn,
		lines:      make(chan ReadEvent, 1),
	}
}

// Start launches the session's reader goroutine. The reader accumulates
// bytes into a bounded line buffer and delivers complete lines on Recv;
// it closes the channel and exits after delivering the first read error.
func (s *Session) Start() {
	s.started = true
	go s.readLoop()
}

func (s *Session) readLoop() {
	buf := make([]byte, lineBufferSize)
	filled := 0
	for {
		n, err := s.conn.Read(buf[filled:])
		if n > 0 {
			filled += n
			// Flush on a line terminator or a full buffer; a full
			// buffer yields a truncated but complete line.
			if buf[filled-1] == '\n' || filled == lineBufferSize {
				s.lines <- ReadEvent{Line: string(buf[:filled])}
				filled = 0
			}
		}
		if err != nil {
			s.lines <- ReadEvent{Err: err}
			close(s.lines)
			return
		}
	}
}

// Recv returns the channel the session's owner receives lines on.
func (s *Session) Recv() <-chan ReadEvent {
	return s.lines
}

// Send writes text to the participant.
func (s *Session) Send(text string) error {
	_, err := s.conn.Write([]byte(text))
	return err
}

// Close tears the connection down. Safe to call more than once; the
// session must not be re-queued afterwards. A reader blocked on an
// undelivered line is drained so it can observe the closed connection
// and exit.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.conn.Close()
		if s.started {
			go func() {
				for range s.lines {
				}
			}()
		}
	})
}

// ID returns the session's identity.
func (s *Session) ID() SessionID {
	return s.id
}

// RemoteAddr returns the client's remote address.
func (s *Session) RemoteAddr() string {
	return s.remoteAddr
}

// Nickname returns the display name chosen by the participant, or the
// empty string when none was set.
func (s *Session) Nickname() string {
	return s.nickname
}

// SetNickname stores the participant's display name, overwriting any
// previous choice.
func (s *Session) SetNickname(name string) {
	s.nickname = name
}

// LastPartner returns the identity of the most recent partner, or zero.
// This is a one-step memory: it is overwritten at every pairing.
func (s *Session) LastPartner() SessionID {
	return s.lastPartner
}
