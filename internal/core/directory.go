package core

import (
	"sort"
	"sync"
)

// RoomUpdate is the resulting member list of a room after a membership change.
type RoomUpdate struct {
	Room    string
	Members []Member
}

// RoomSummary describes a room for diagnostics.
type RoomSummary struct {
	Name    string
	Members int
}

// Directory maps room names to their current members.
// All access goes through a single lock; returned slices are snapshots.
type Directory struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	joined map[ConnectionID]map[string]struct{}
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		rooms:  make(map[string]*Room),
		joined: make(map[ConnectionID]map[string]struct{}),
	}
}

// Join adds m to room, creating the room on first use, and returns the room's member list.
func (d *Directory) Join(room string, m Member) []Member {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.rooms[room]
	if !ok {
		r = NewRoom(room)
		d.rooms[room] = r
	}
	r.AddMember(m)

	set, ok := d.joined[m.ID]
	if !ok {
		set = make(map[string]struct{})
		d.joined[m.ID] = set
	}
	set[room] = struct{}{}

	return r.Snapshot()
}

// LeaveAll removes id from every room it belongs to. Rooms left empty are kept.
// Updates are ordered by room name.
func (d *Directory) LeaveAll(id ConnectionID) []RoomUpdate {
	d.mu.Lock()
	defer d.mu.Unlock()

	set, ok := d.joined[id]
	if !ok {
		return nil
	}
	delete(d.joined, id)

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	updates := make([]RoomUpdate, 0, len(names))
	for _, name := range names {
		r, ok := d.rooms[name]
		if !ok || !r.RemoveMember(id) {
			continue
		}
		updates = append(updates, RoomUpdate{Room: name, Members: r.Snapshot()})
	}
	return updates
}

// MembersOf returns a snapshot of room's members. Unknown rooms yield an empty list.
func (d *Directory) MembersOf(room string) []Member {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[room]
	if !ok {
		return []Member{}
	}
	return r.Snapshot()
}

// Rooms lists every room ever joined, including empty ones, sorted by name.
func (d *Directory) Rooms() []RoomSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]RoomSummary, 0, len(d.rooms))
	for name, r := range d.rooms {
		out = append(out, RoomSummary{Name: name, Members: r.Len()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
