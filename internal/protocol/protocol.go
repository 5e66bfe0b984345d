// Package protocol implements the text command protocol spoken between
// clients and the server. Requests are single newline-terminated lines of
// the form //command:<TAG>, //command:START<room name> or
// //command:NICKNAME<name>; anything else is relayed as plain chat text
// during a conversation and rejected outside of one.
package protocol

import "strings"

// Kind classifies a parsed request line.
type Kind int

const (
	// KindInvalidSyntax covers lines that do not match the
	// //command:...<...> shape at all.
	KindInvalidSyntax Kind = iota

	// KindUnknownRoom is a syntactically valid START with an
	// unrecognized room name.
	KindUnknownRoom

	// KindUnrecognized is a syntactically valid command with an
	// unknown tag.
	KindUnrecognized

	KindUsers
	KindReroll
	KindStop
	KindRooms
	KindHelp
	KindStartRoom
	KindNickname
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidSyntax:
		return "invalid syntax"
	case KindUnknownRoom:
		return "unknown room"
	case KindUnrecognized:
		return "unrecognized command"
	case KindUsers:
		return "USERS"
	case KindReroll:
		return "REROLL"
	case KindStop:
		return "STOP"
	case KindRooms:
		return "ROOMS"
	case KindHelp:
		return "HELP"
	case KindStartRoom:
		return "START"
	case KindNickname:
		return "NICKNAME"
	default:
		return "unknown"
	}
}

// Request is the result of classifying one line.
// Arg carries the room name for KindStartRoom and the chosen name for
// KindNickname; it is empty for every other kind.
type Request struct {
	Kind Kind
	Arg  string
}

const (
	prefixCommand  = "//command:"
	prefixStart    = "//command:START"
	prefixNickname = "//command:NICKNAME"
)

// Parser classifies request lines against a fixed set of room names.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	rooms []string
}

// NewParser creates a parser that accepts the given room names in
// START commands. Matching is case-sensitive and exact.
func NewParser(rooms []string) *Parser {
	return &Parser{rooms: rooms}
}

// Parse classifies a single request line. The line may carry a trailing
// newline; every input falls into exactly one Kind.
func (p *Parser) Parse(line string) Request {
	lt := strings.IndexByte(line, '<')
	gt := strings.IndexByte(line, '>')
	if lt < 0 || gt < 0 || gt < lt {
		return Request{Kind: KindInvalidSyntax}
	}

	// Only the line terminator may follow the closing bracket.
	if rest := line[gt+1:]; rest != "" && rest != "\n" {
		return Request{Kind: KindInvalidSyntax}
	}

	arg := line[lt+1 : gt]

	switch line[:lt] {
	case prefixCommand:
		switch arg {
		case "USERS":
			return Request{Kind: KindUsers}
		case "REROLL":
			return Request{Kind: KindReroll}
		case "STOP":
			return Request{Kind: KindStop}
		case "ROOMS":
			return Request{Kind: KindRooms}
		case "HELP":
			return Request{Kind: KindHelp}
		default:
			return Request{Kind: KindUnrecognized}
		}
	case prefixStart:
		for _, room := range p.rooms {
			if arg == room {
				return Request{Kind: KindStartRoom, Arg: arg}
			}
		}
		return Request{Kind: KindUnknownRoom}
	case prefixNickname:
		return Request{Kind: KindNickname, Arg: arg}
	default:
		return Request{Kind: KindInvalidSyntax}
	}
}

// Rooms returns the room names this parser accepts, in declaration order.
func (p *Parser) Rooms() []string {
	return p.rooms
}
