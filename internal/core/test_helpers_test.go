package core

import (
	"context"
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, name string) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Name == name {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event %q not received", name)
	return nil
}

// mustRoster waits for an update_user_list for room whose member count is want.
func mustRoster(t *testing.T, ch <-chan *Event, room string, want int) []Member {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ev := mustEvent(t, ch, EventUpdateUserList)
		members, ok := ev.Payload.([]Member)
		if !ok {
			t.Fatalf("unexpected roster payload type %T", ev.Payload)
		}
		if ev.Room == room && len(members) == want {
			return members
		}
	}
	t.Fatalf("expected roster of %d for room %q not received", want, room)
	return nil
}

func startHub(t *testing.T, observer RosterObserver) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(0, observer, nil)
	go hub.Run(ctx)
	return hub
}

func dispatch(t *testing.T, hub *Hub, client *Client, cmd *Command) {
	t.Helper()

	if err := hub.Dispatch(context.Background(), client.ID, cmd); err != nil {
		t.Fatalf("dispatch %s: %v", cmd.Event, err)
	}
}

func hasMember(members []Member, id ConnectionID) bool {
	for _, m := range members {
		if m.ID == id {
			return true
		}
	}
	return false
}
