package chat

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/randomchat/internal/protocol"
)

// Client-visible conversation notices.
const (
	matchFoundFormat = "\nA NEW MATCH HAS BEEN FOUND !\n\n" +
		"Send //command:<STOP> or //command:<REROLL> or Ctrl+C to exit\n\n" +
		"SAY HI TO : %s\n\n"
	relayFormat          = "\n-- <%s> --\n%s"
	partnerClosedFormat  = "\n%s has closed the conversation\nLooking for someone else ...\nCtrl+C to exit ...\n"
	conversationStopped  = "\nYou have closed the conversation and stopped rolling ...\n\n***** WELCOME BACK TO RANDOMCHAT ! *****\n\n--- Send //command:<HELP> to list the available commands ---\n\n"
	conversationRerolled = "\nConversation is ended ... Looking for someone else ...\nCtrl+C to exit ...\n"
)

// IdleFunc returns a session to the idle command loop after its owner is
// done with it (a stop outcome). The session stays connected.
type IdleFunc func(*Session)

// ConversationRecord is the operational summary of one finished
// conversation. Message bodies are never recorded.
type ConversationRecord struct {
	Room      string
	NicknameA string
	NicknameB string
	EndReason string
	StartedAt time.Time
	Duration  time.Duration
}

// ConversationSaver persists conversation records. Saves are best effort;
// the relay never blocks on persistence.
type ConversationSaver interface {
	SaveConversation(rec ConversationRecord) error
}

// endReason tags why the relay left its active state.
type endReason int

const (
	endStop endReason = iota
	endDisconnect
	endReroll
)

func (r endReason) String() string {
	switch r {
	case endStop:
		return "stopped"
	case endDisconnect:
		return "disconnected"
	case endReroll:
		return "rerolled"
	default:
		return "unknown"
	}
}

// result is the tagged outcome of the active relay loop: which reason,
// and which side triggered it (nil for a reroll, which both sides share).
type result struct {
	reason endReason
	by     *Session
}

// Conversation is the relay task for one matched pair. It owns both
// sessions and a reference to the waitlist they came from, so survivors
// can be returned to the correct room.
type Conversation struct {
	a, b     *Session
	waitlist *Waitlist
	room     string

	parser *protocol.Parser
	stats  *Stats
	idle   IdleFunc
	saver  ConversationSaver
	logger *log.Logger
}

// NewConversation pairs two sessions taken from the given room waitlist.
// saver may be nil.
func NewConversation(a, b *Session, room *Room, parser *protocol.Parser, stats *Stats, idle IdleFunc, saver ConversationSaver, logger *log.Logger) *Conversation {
	return &Conversation{
		a:        a,
		b:        b,
		waitlist: room.waitlist,
		room:     room.Name,
		parser:   parser,
		stats:    stats,
		idle:     idle,
		saver:    saver,
		logger:   logger,
	}
}

// Run drives the conversation from the match notice to one of its
// terminal outcomes, then routes both participants to their next state.
// It blocks until the conversation is over.
func (c *Conversation) Run() {
	startedAt := time.Now()

	c.a.Send(fmt.Sprintf(matchFoundFormat, c.b.Nickname()))
	c.b.Send(fmt.Sprintf(matchFoundFormat, c.a.Nickname()))

	res := c.relay()
	c.finish(res)

	c.logger.Info("conversation ended",
		"room", c.room,
		"reason", res.reason.String(),
		"duration", time.Since(startedAt).Round(time.Second),
	)

	if c.saver != nil {
		rec := ConversationRecord{
			Room:      c.room,
			NicknameA: c.a.Nickname(),
			NicknameB: c.b.Nickname(),
			EndReason: res.reason.String(),
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
		}
		go func() {
			if err := c.saver.SaveConversation(rec); err != nil {
				c.logger.Warn("could not save conversation record", "error", err)
			}
		}()
	}
}

// relay multiplexes both sessions' line channels until a terminal
// outcome is reached.
func (c *Conversation) relay() result {
	for {
		select {
		case ev := <-c.a.Recv():
			if res, over := c.step(c.a, c.b, ev); over {
				return res
			}
		case ev := <-c.b.Recv():
			if res, over := c.step(c.b, c.a, ev); over {
				return res
			}
		}
	}
}

// step processes one delivery from one side. Commands other than STOP and
// REROLL are not executed in conversation mode; they are relayed verbatim
// like any other text.
func (c *Conversation) step(from, to *Session, ev ReadEvent) (result, bool) {
	if ev.Err != nil {
		return result{reason: endDisconnect, by: from}, true
	}
	switch c.parser.Parse(ev.Line).Kind {
	case protocol.KindReroll:
		return result{reason: endReroll}, true
	case protocol.KindStop:
		return result{reason: endStop, by: from}, true
	default:
		// Relay errors are left to the reader: a failing peer will
		// surface as a disconnect on its own channel.
		to.Send(fmt.Sprintf(relayFormat, from.Nickname(), ev.Line))
		return result{}, false
	}
}

// finish performs the per-outcome side effects: peer notification first,
// then the counter updates, then the hand-offs. Exactly one
// active-conversations decrement happens per conversation.
func (c *Conversation) finish(res result) {
	switch res.reason {
	case endStop:
		initiator, peer := res.by, c.other(res.by)
		peer.Send(fmt.Sprintf(partnerClosedFormat, initiator.Nickname()))
		initiator.Send(conversationStopped)
		c.stats.ConversationEnded()
		c.waitlist.Insert(peer)
		c.idle(initiator)

	case endDisconnect:
		gone, peer := res.by, c.other(res.by)
		// Best effort: the notice outruns the teardown.
		peer.Send(fmt.Sprintf(partnerClosedFormat, gone.Nickname()))
		gone.Close()
		c.stats.ConversationEnded()
		c.stats.UserDisconnected()
		c.waitlist.Insert(peer)

	case endReroll:
		c.a.Send(conversationRerolled)
		c.b.Send(conversationRerolled)
		c.stats.ConversationEnded()
		c.waitlist.Insert(c.a)
		c.waitlist.Insert(c.b)
	}
}

func (c *Conversation) other(s *Session) *Session {
	if s == c.a {
		return c.b
	}
	return c.a
}
