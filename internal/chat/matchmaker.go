package chat

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/randomchat/internal/protocol"
)

// pairRetryDelay spaces out rescans after an attempt was abandoned while
// the pool still holds two or more sessions (an ineligible or stale
// pair), so a lone recently-matched couple does not spin the loop.
const pairRetryDelay = 250 * time.Millisecond

// Matchmaker continuously pairs eligible sessions within one room's
// waitlist. It is the only task that removes entries from that waitlist.
type Matchmaker struct {
	room   *Room
	parser *protocol.Parser
	stats  *Stats
	idle   IdleFunc
	saver  ConversationSaver
	logger *log.Logger
	rng    *rand.Rand

	done chan struct{}
}

// NewMatchmaker creates the matchmaker for one room. saver may be nil.
func NewMatchmaker(room *Room, parser *protocol.Parser, stats *Stats, idle IdleFunc, saver ConversationSaver, logger *log.Logger) *Matchmaker {
	return &Matchmaker{
		room:   room,
		parser: parser,
		stats:  stats,
		idle:   idle,
		saver:  saver,
		logger: logger.With("room", room.Name),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		done:   make(chan struct{}),
	}
}

// Run blocks pairing sessions until Stop is called. The loop sleeps on
// the waitlist's insert signal while fewer than two sessions wait.
func (m *Matchmaker) Run() {
	wl := m.room.waitlist
	for {
		if wl.Len() < 2 {
			select {
			case <-wl.Signal():
			case <-m.done:
				return
			}
			continue
		}

		if !m.pairOnce() {
			// Ineligible or stale attempt; wait for fresh arrivals
			// or retry after a beat.
			select {
			case <-wl.Signal():
			case <-time.After(pairRetryDelay):
			case <-m.done:
				return
			}
		}
	}
}

// Stop terminates the matchmaking loop. Running conversations are not
// affected.
func (m *Matchmaker) Stop() {
	close(m.done)
}

// pairOnce makes a single pairing attempt and reports whether a
// conversation was started. Len, At and Remove are separate locked calls;
// anything observed between them may already be stale, so each step
// re-validates and a failed claim abandons the attempt.
func (m *Matchmaker) pairOnce() bool {
	wl := m.room.waitlist

	size := wl.Len()
	if size < 2 {
		return false
	}

	first := m.rng.Intn(size)
	second := m.rng.Intn(size)
	if first == second {
		second = (second + 1) % size
	}

	a := wl.At(first)
	b := wl.At(second)
	if a == nil || b == nil || a.id == b.id {
		return false
	}

	if !eligible(a, b) {
		return false
	}

	if !claim(wl, a, b) {
		return false
	}

	m.stats.ConversationStarted()
	m.logger.Info("matched",
		"first", a.RemoteAddr(),
		"second", b.RemoteAddr(),
		"waiting", wl.Len(),
	)

	conv := NewConversation(a, b, m.room, m.parser, m.stats, m.idle, m.saver, m.logger)
	go conv.Run()
	return true
}

// claim records the pairing on both sessions and takes them off the
// waitlist. Both sessions are still waitlist-owned here; the matchmaker is
// the single writer of lastPartner, performed before either session is
// exposed to the conversation. A failed removal means someone else claimed
// the session, so the partner memories are restored to their prior values
// and the attempt is abandoned.
func claim(wl *Waitlist, a, b *Session) bool {
	prevA, prevB := a.lastPartner, b.lastPartner
	a.lastPartner = b.id
	b.lastPartner = a.id

	if !wl.Remove(a.id) {
		a.lastPartner = prevA
		b.lastPartner = prevB
		return false
	}
	if !wl.Remove(b.id) {
		a.lastPartner = prevA
		b.lastPartner = prevB
		wl.Insert(a)
		return false
	}
	return true
}

// eligible enforces the anti-immediate-repeat invariant: two sessions are
// not re-paired when their most recent partner was each other. This is a
// one-step memory, not a history.
func eligible(a, b *Session) bool {
	if a.lastPartner == 0 || b.lastPartner == 0 {
		return true
	}
	return a.lastPartner != b.id && b.lastPartner != a.id
}
