package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinRoom    = "join_room"
	InboundTypeSendMessage = "send_message"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventUpdateUserList = "update_user_list"
	EventReceiveMessage = "receive_message"
)

// JoinRoomData requests to join a specific room under a display name.
type JoinRoomData struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// SendMessageData is the only part of a message the server reads.
// Every other field is relayed untouched.
type SendMessageData struct {
	Room string `json:"room"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Member is one entry of an update_user_list payload.
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
