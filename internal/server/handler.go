package server

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/randomchat/internal/chat"
	"github.com/vovakirdan/randomchat/internal/protocol"
)

// Client-visible lobby replies.
const (
	invalidSyntaxReply = "\nThe request can't be executed by the server because of the wrong syntax !\nExpected : //command:<...> OR //command:START<room name>\n"
	unknownRoomReply   = "\nThe request can't be executed by the server because there's no room with such name\n"
	noCommandReply     = "\nThe request can't be executed by the server ! No command found !\n"
	searchingFormat    = "\nLooking for someone to chat with in the \"%s\" room ...\nCtrl+C to exit ...\n"
	nicknameSetFormat  = "Nickname correctly set as : <%s>\n"

	helpReply = "--- AVAILABLE COMMANDS ---\n" +
		"* Show the number of users waiting in each topic room     : //command:<USERS> \n" +
		"* Show which topic rooms are available                    : //command:<ROOMS> \n" +
		"* Set the nickname shown to matched partners              : //command:NICKNAME<name> \n" +
		"* Start a random chat with another user inside <room>     : //command:START<room name> \n" +
		"* Quit the program immediately                            : Ctrl+D or Ctrl+C \n\n"
)

// handleSession is the command loop for a connected-but-unpaired client.
// It returns either when the client goes away or when ownership of the
// session moves to a room waitlist.
func (s *Server) handleSession(sess *chat.Session) {
	logger := s.logger.With("session", sess.ID(), "remote", sess.RemoteAddr())

	for {
		ev := <-sess.Recv()
		if ev.Err != nil {
			s.teardown(sess, logger)
			return
		}

		req := s.parser.Parse(ev.Line)
		logger.Debug("request", "kind", req.Kind.String(), "nickname", sess.Nickname())

		var err error
		switch req.Kind {
		case protocol.KindUsers:
			err = sess.Send(s.usersReport())
		case protocol.KindRooms:
			err = sess.Send(s.roomsReport())
		case protocol.KindHelp:
			err = sess.Send(helpReply)
		case protocol.KindNickname:
			sess.SetNickname(req.Arg)
			err = sess.Send(fmt.Sprintf(nicknameSetFormat, req.Arg))
		case protocol.KindStartRoom:
			room, ok := s.rooms.Get(req.Arg)
			if !ok {
				err = sess.Send(unknownRoomReply)
				break
			}
			if err = sess.Send(fmt.Sprintf(searchingFormat, room.Name)); err != nil {
				break
			}
			logger.Info("joined waitlist", "room", room.Name, "nickname", sess.Nickname())
			room.Waitlist().Insert(sess)
			return // ownership passed to the room's matchmaker
		case protocol.KindUnknownRoom:
			err = sess.Send(unknownRoomReply)
		case protocol.KindInvalidSyntax:
			err = sess.Send(invalidSyntaxReply)
		default:
			// Unrecognized, and REROLL/STOP outside a conversation.
			err = sess.Send(noCommandReply)
		}

		if err != nil {
			s.teardown(sess, logger)
			return
		}
	}
}

// teardown destroys a session that left the lobby without being paired.
func (s *Server) teardown(sess *chat.Session, logger *log.Logger) {
	sess.Close()
	s.stats.UserDisconnected()
	logger.Info("client disconnected", "nickname", sess.Nickname())
}

// usersReport renders per-room waiting counts and the global counters.
// Each counter is read under its own lock; the report is not a snapshot.
func (s *Server) usersReport() string {
	var b strings.Builder
	b.WriteString("\n*** NUMBER OF USERS ***\n")
	for _, room := range s.rooms.All() {
		fmt.Fprintf(&b, "- Waiting in the %q room : %d \n", room.Name, room.Waitlist().Len())
	}
	fmt.Fprintf(&b, "*** TOTAL NUMBER OF ACTIVE CHATS BETWEEN USERS : %d ***\n", s.stats.ActiveConversations())
	fmt.Fprintf(&b, "*** TOTAL NUMBER OF USERS CONNECTED : %d ***\n", s.stats.ConnectedUsers())
	return b.String()
}

// roomsReport renders the room catalogue with per-room taglines.
func (s *Server) roomsReport() string {
	var b strings.Builder
	b.WriteString("\n*** AVAILABLE ROOMS ***\n")
	for _, room := range s.rooms.All() {
		fmt.Fprintf(&b, "-%q room : %s \n", room.Name, room.Description)
	}
	b.WriteString("\n")
	return b.String()
}
