package core

import "testing"

func TestBroadcastToEmptyRoomIsNoop(t *testing.T) {
	b := NewBroadcaster(NewDirectory(), NewRegistry(1), nil)

	if n := b.BroadcastToRoom("nobody-here", EventReceiveMessage, []byte(`{}`)); n != 0 {
		t.Fatalf("expected no deliveries, got %d", n)
	}
}

func TestBroadcastSkipsMissingAndFullConnections(t *testing.T) {
	rooms := NewDirectory()
	registry := NewRegistry(1)
	b := NewBroadcaster(rooms, registry, nil)

	alive := registry.Register("alice")
	full := registry.Register("bob")
	gone := registry.Register("carol")

	for _, c := range []*Client{alive, full, gone} {
		rooms.Join("r1", Member{ID: c.ID, Username: c.Name})
	}
	// Fill bob's single-slot queue and drop carol without cleaning up the room.
	full.Events <- &Event{Name: "filler"}
	registry.Remove(gone.ID)

	if n := b.BroadcastToRoom("r1", EventReceiveMessage, []byte(`{"text":"hi"}`)); n != 1 {
		t.Fatalf("expected exactly one delivery, got %d", n)
	}

	ev := <-alive.Events
	if ev.Name != EventReceiveMessage || ev.Room != "r1" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}
