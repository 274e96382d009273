package core

import "encoding/json"

// Inbound event names understood by the hub.
const (
	// CommandJoinRoom adds the connection to a room.
	CommandJoinRoom = "join_room"
	// CommandSendMessage relays a message to a room.
	CommandSendMessage = "send_message"
	// CommandDisconnect tears down the connection. It is issued by the transport, never by clients.
	CommandDisconnect = "disconnect"
)

// Command represents an event raised on behalf of a connection.
type Command struct {
	Event    string
	Room     string
	Username string
	// Payload is the raw message body for CommandSendMessage.
	Payload json.RawMessage
}
