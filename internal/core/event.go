package core

// Outbound event names.
const (
	// EventUpdateUserList carries a room's member list after it changed.
	EventUpdateUserList = "update_user_list"
	// EventReceiveMessage carries a message payload exactly as it was sent.
	EventReceiveMessage = "receive_message"
	// EventError reports a protocol error to a single connection.
	EventError = "error"
)

// Event is sent to clients to describe what happened in the system.
//
// Payload depends on Name: []Member for EventUpdateUserList,
// json.RawMessage for EventReceiveMessage and *CoreError for EventError.
type Event struct {
	Name    string
	Room    string
	Payload any
}
