package core

// Member is a connection together with the display name it announced when joining.
type Member struct {
	ID       ConnectionID
	Username string
}

// Room keeps its members in join order.
type Room struct {
	Name    string
	members []Member
	index   map[ConnectionID]int
}

// NewRoom constructs a room with no members.
func NewRoom(name string) *Room {
	return &Room{
		Name:  name,
		index: make(map[ConnectionID]int),
	}
}

// AddMember inserts m. A connection already present keeps its slot and takes the new username.
// Returns true if the member was newly added.
func (r *Room) AddMember(m Member) bool {
	if i, exists := r.index[m.ID]; exists {
		r.members[i].Username = m.Username
		return false
	}
	r.index[m.ID] = len(r.members)
	r.members = append(r.members, m)
	return true
}

// RemoveMember deletes the connection from the room. Returns true if removed.
func (r *Room) RemoveMember(id ConnectionID) bool {
	i, exists := r.index[id]
	if !exists {
		return false
	}
	r.members = append(r.members[:i], r.members[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.members); j++ {
		r.index[r.members[j].ID] = j
	}
	return true
}

// Snapshot returns a copy of the member list safe to use after the caller releases its lock.
func (r *Room) Snapshot() []Member {
	out := make([]Member, len(r.members))
	copy(out, r.members)
	return out
}

// Len returns the number of members.
func (r *Room) Len() int {
	return len(r.members)
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.members) == 0
}
