package core

import "errors"

// Error codes for protocol errors reported to a single connection.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnknownEvent = "unknown_event"
)

var (
	// ErrHubStopped is returned when a command is submitted after the hub stopped running.
	ErrHubStopped = errors.New("hub stopped")
	// ErrUnknownConnection is returned for commands from a connection that is not registered.
	ErrUnknownConnection = errors.New("unknown connection")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
