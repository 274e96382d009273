package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

const commandQueueSize = 256

// RosterObserver is told about every room roster change after it has been broadcast.
// Implementations must not block.
type RosterObserver interface {
	RosterChanged(room string, members []Member)
}

type handlerFunc func(client *Client, cmd *Command)

type envelope struct {
	id  ConnectionID
	cmd *Command
}

// Hub is the session gateway. A single goroutine (Run) applies every command in
// arrival order, so each roster broadcast reflects the mutation that caused it and
// roster updates for a room are never delivered out of order.
type Hub struct {
	registry    *Registry
	rooms       *Directory
	broadcaster *Broadcaster
	observer    RosterObserver
	handlers    map[string]handlerFunc
	commands    chan envelope
	done        chan struct{}
	log         *zerolog.Logger

	// stopMu orders enqueues against shutdown: once stopped is set nothing new
	// lands in commands, so the final drain in Run sees every queued disconnect.
	stopMu  sync.RWMutex
	stopped bool
}

// NewHub creates a hub. eventBuffer sizes each connection's outbound queue; observer may be nil.
func NewHub(eventBuffer int, observer RosterObserver, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	registry := NewRegistry(eventBuffer)
	rooms := NewDirectory()

	h := &Hub{
		registry:    registry,
		rooms:       rooms,
		broadcaster: NewBroadcaster(rooms, registry, logger),
		observer:    observer,
		commands:    make(chan envelope, commandQueueSize),
		done:        make(chan struct{}),
		log:         logger,
	}
	h.handlers = map[string]handlerFunc{
		CommandJoinRoom:    h.handleJoinRoom,
		CommandSendMessage: h.handleSendMessage,
	}
	return h
}

// Run processes commands until ctx is cancelled. Disconnects still queued at
// that point are applied before Run returns; other commands are discarded.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case env := <-h.commands:
			h.dispatch(env)
		case <-ctx.Done():
			h.shutdown()
			return
		}
	}
}

func (h *Hub) shutdown() {
	// Wakes senders blocked on a full queue before taking the write lock.
	close(h.done)

	h.stopMu.Lock()
	h.stopped = true
	h.stopMu.Unlock()

	for {
		select {
		case env := <-h.commands:
			if env.cmd != nil && env.cmd.Event == CommandDisconnect {
				h.handleDisconnect(env.id)
			}
		default:
			return
		}
	}
}

// enqueue hands env to Run. It reports false when the hub has stopped and env was not queued.
func (h *Hub) enqueue(ctx context.Context, env envelope) (bool, error) {
	h.stopMu.RLock()
	defer h.stopMu.RUnlock()

	if h.stopped {
		return false, nil
	}
	select {
	case <-h.done:
		return false, nil
	default:
	}

	select {
	case h.commands <- env:
		return true, nil
	case <-h.done:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Connect registers a new connection. name is the authenticated identity, possibly empty.
func (h *Hub) Connect(name string) *Client {
	client := h.registry.Register(name)
	h.log.Info().Str("conn_id", string(client.ID)).Str("user", name).Msg("user connected")
	return client
}

// Dispatch queues cmd on behalf of connection id.
func (h *Hub) Dispatch(ctx context.Context, id ConnectionID, cmd *Command) error {
	if _, ok := h.registry.Lookup(id); !ok {
		return ErrUnknownConnection
	}
	queued, err := h.enqueue(ctx, envelope{id: id, cmd: cmd})
	if err != nil {
		return err
	}
	if !queued {
		return ErrHubStopped
	}
	return nil
}

// Disconnect tears down connection id and notifies every room it had joined.
// Safe to call more than once; only the first call has an effect.
func (h *Hub) Disconnect(id ConnectionID) {
	env := envelope{id: id, cmd: &Command{Event: CommandDisconnect}}
	if queued, _ := h.enqueue(context.Background(), env); !queued {
		// Nobody else is applying commands any more.
		h.handleDisconnect(id)
	}
}

// MembersOf returns a snapshot of room's members.
func (h *Hub) MembersOf(room string) []Member {
	return h.rooms.MembersOf(room)
}

// Rooms lists known rooms with their member counts.
func (h *Hub) Rooms() []RoomSummary {
	return h.rooms.Rooms()
}

// Connections reports the number of live connections.
func (h *Hub) Connections() int {
	return h.registry.Len()
}

func (h *Hub) dispatch(env envelope) {
	if env.cmd == nil {
		return
	}
	if env.cmd.Event == CommandDisconnect {
		h.handleDisconnect(env.id)
		return
	}

	client, ok := h.registry.Lookup(env.id)
	if !ok {
		h.log.Debug().Str("conn_id", string(env.id)).Str("event", env.cmd.Event).Msg("command from closed connection ignored")
		return
	}

	handler, ok := h.handlers[env.cmd.Event]
	if !ok {
		h.sendError(client, coreError(ErrCodeUnknownEvent, "unknown event "+env.cmd.Event))
		return
	}
	handler(client, env.cmd)
}

func (h *Hub) handleJoinRoom(client *Client, cmd *Command) {
	if cmd.Room == "" {
		h.sendError(client, coreError(ErrCodeBadRequest, "room is required"))
		return
	}
	username := cmd.Username
	if username == "" {
		username = client.Name
	}
	if username == "" {
		h.sendError(client, coreError(ErrCodeBadRequest, "username is required"))
		return
	}

	members := h.rooms.Join(cmd.Room, Member{ID: client.ID, Username: username})
	h.log.Info().Str("conn_id", string(client.ID)).Str("username", username).Str("room", cmd.Room).Msg("user joined room")

	h.publishRoster(cmd.Room, members)
}

// handleSendMessage relays the payload as is. Senders need not be members of the room.
func (h *Hub) handleSendMessage(client *Client, cmd *Command) {
	if cmd.Room == "" {
		h.sendError(client, coreError(ErrCodeBadRequest, "room is required"))
		return
	}
	n := h.broadcaster.BroadcastToRoom(cmd.Room, EventReceiveMessage, cmd.Payload)
	h.log.Debug().Str("conn_id", string(client.ID)).Str("room", cmd.Room).Int("recipients", n).Msg("message relayed")
}

func (h *Hub) handleDisconnect(id ConnectionID) {
	if _, ok := h.registry.Lookup(id); !ok {
		return
	}

	updates := h.rooms.LeaveAll(id)
	if !h.registry.Remove(id) {
		return
	}

	for _, u := range updates {
		h.publishRoster(u.Room, u.Members)
	}
	h.log.Info().Str("conn_id", string(id)).Int("rooms", len(updates)).Msg("user disconnected")
}

func (h *Hub) publishRoster(room string, members []Member) {
	h.broadcaster.deliver(room, members, &Event{Name: EventUpdateUserList, Room: room, Payload: members})
	if h.observer != nil {
		h.observer.RosterChanged(room, members)
	}
}

func (h *Hub) sendError(client *Client, err *CoreError) {
	if !client.deliver(&Event{Name: EventError, Payload: err}) {
		h.log.Debug().Str("conn_id", string(client.ID)).Str("code", err.Code).Msg("dropped error event")
	}
}
