package core

import "sync"

// ConnectionID identifies one live transport-level link for the lifetime of the process.
type ConnectionID string

// Client is a live connection as seen by the core layer.
// Name is the authenticated identity behind the connection, if any.
type Client struct {
	ID     ConnectionID
	Name   string
	Events chan *Event

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a client with an outbound queue of the given size.
func NewClient(id ConnectionID, name string, buffer int) *Client {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	return &Client{
		ID:     id,
		Name:   name,
		Events: make(chan *Event, buffer),
		done:   make(chan struct{}),
	}
}

// Done is closed once the client has been removed from the registry.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// deliver queues an event without blocking. Returns false if the client is gone or its queue is full.
func (c *Client) deliver(ev *Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}
