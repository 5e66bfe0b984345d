package chat

// RoomInfo describes one topic room.
type RoomInfo struct {
	Name        string
	Description string
}

// Room is a named topic with its own waitlist. One matchmaker runs per
// room for the lifetime of the process.
type Room struct {
	Name        string
	Description string

	waitlist *Waitlist
}

// Waitlist returns the room's waiting pool.
func (r *Room) Waitlist() *Waitlist {
	return r.waitlist
}

// RoomSet is the fixed, enumerated set of rooms, created once at startup.
type RoomSet struct {
	rooms  []*Room
	byName map[string]*Room
}

// NewRoomSet builds the room set in declaration order.
func NewRoomSet(infos []RoomInfo) *RoomSet {
	set := &RoomSet{byName: make(map[string]*Room, len(infos))}
	for _, info := range infos {
		room := &Room{
			Name:        info.Name,
			Description: info.Description,
			waitlist:    NewWaitlist(),
		}
		set.rooms = append(set.rooms, room)
		set.byName[room.Name] = room
	}
	return set
}

// All returns the rooms in declaration order.
func (s *RoomSet) All() []*Room {
	return s.rooms
}

// Get looks a room up by its exact name.
func (s *RoomSet) Get(name string) (*Room, bool) {
	room, ok := s.byName[name]
	return room, ok
}

// Names returns the room names in declaration order, for the parser.
func (s *RoomSet) Names() []string {
	names := make([]string, 0, len(s.rooms))
	for _, room := range s.rooms {
		names = append(names, room.Name)
	}
	return names
}
