package chat

import (
	"slices"
	"sync"
)

// Waitlist is the ordered pool of sessions awaiting a match within one
// room. Every operation is one short critical section under the same
// mutex; the matchmaker's Len/At/Remove calls are individually atomic,
// not transactional, so callers must re-validate between them.
type Waitlist struct {
	mu       sync.Mutex
	sessions []*Session

	// signal is pulsed on Insert so the matchmaker can block instead of
	// polling an empty pool. Capacity one: signals coalesce and the
	// receiver re-checks Len after every wake.
	signal chan struct{}
}

// NewWaitlist creates an empty waitlist.
func NewWaitlist() *Waitlist {
	return &Waitlist{signal: make(chan struct{}, 1)}
}

// Insert prepends a session and wakes the matchmaker.
func (w *Waitlist) Insert(s *Session) {
	w.mu.Lock()
	w.sessions = slices.Insert(w.sessions, 0, s)
	w.mu.Unlock()

	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// Remove unlinks the session with the given identity. It reports false
// when the session is not present (already claimed by someone else).
func (w *Waitlist) Remove(id SessionID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, s := range w.sessions {
		if s.id == id {
			w.sessions = slices.Delete(w.sessions, i, i+1)
			return true
		}
	}
	return false
}

// At returns the i-th waiting session in insertion order, or nil when i
// fell outside [0, Len) by the time the lock was taken.
func (w *Waitlist) At(i int) *Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.sessions) {
		return nil
	}
	return w.sessions[i]
}

// Len returns the current number of waiting sessions.
func (w *Waitlist) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.sessions)
}

// Signal returns the channel pulsed on every Insert.
func (w *Waitlist) Signal() <-chan struct{} {
	return w.signal
}
