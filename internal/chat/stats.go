package chat

import "sync"

// Stats holds the process-wide counters reported by the USERS command.
// Each counter sits behind its own lock; there is no combined snapshot,
// so a USERS reply may reflect a state that never existed simultaneously.
type Stats struct {
	chatsMu     sync.Mutex
	activeChats int

	usersMu        sync.Mutex
	connectedUsers int
}

// NewStats creates zeroed counters.
func NewStats() *Stats {
	return &Stats{}
}

// UserConnected records a newly accepted connection.
func (s *Stats) UserConnected() {
	s.usersMu.Lock()
	s.connectedUsers++
	s.usersMu.Unlock()
}

// UserDisconnected records a torn-down connection.
func (s *Stats) UserDisconnected() {
	s.usersMu.Lock()
	s.connectedUsers--
	s.usersMu.Unlock()
}

// ConversationStarted records a new active conversation.
func (s *Stats) ConversationStarted() {
	s.chatsMu.Lock()
	s.activeChats++
	s.chatsMu.Unlock()
}

// ConversationEnded records a terminated conversation.
func (s *Stats) ConversationEnded() {
	s.chatsMu.Lock()
	s.activeChats--
	s.chatsMu.Unlock()
}

// ActiveConversations returns the number of conversations in flight.
func (s *Stats) ActiveConversations() int {
	s.chatsMu.Lock()
	defer s.chatsMu.Unlock()
	return s.activeChats
}

// ConnectedUsers returns the number of connected participants.
func (s *Stats) ConnectedUsers() int {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	return s.connectedUsers
}
