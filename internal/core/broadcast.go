package core

import "github.com/rs/zerolog"

// Broadcaster fans events out to the members of a room.
type Broadcaster struct {
	rooms    *Directory
	registry *Registry
	log      *zerolog.Logger
}

// NewBroadcaster builds a broadcaster over the given directory and registry.
func NewBroadcaster(rooms *Directory, registry *Registry, logger *zerolog.Logger) *Broadcaster {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Broadcaster{rooms: rooms, registry: registry, log: logger}
}

// BroadcastToRoom sends payload under name to every live member of room and
// returns how many members accepted it. Members that are gone or whose queue
// is full are skipped.
func (b *Broadcaster) BroadcastToRoom(room, name string, payload any) int {
	return b.deliver(room, b.rooms.MembersOf(room), &Event{Name: name, Room: room, Payload: payload})
}

// deliver sends ev to an already snapshotted member list.
func (b *Broadcaster) deliver(room string, members []Member, ev *Event) int {
	delivered := 0
	for _, m := range members {
		client, ok := b.registry.Lookup(m.ID)
		if !ok {
			continue
		}
		if !client.deliver(ev) {
			b.log.Debug().Str("room", room).Str("conn_id", string(m.ID)).Str("event", ev.Name).Msg("dropped event for slow or closed connection")
			continue
		}
		delivered++
	}
	return delivered
}
