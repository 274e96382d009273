package core

import (
	"sync"

	"github.com/google/uuid"
)

const defaultEventBuffer = 64

// Registry is the authoritative record of live connections.
type Registry struct {
	mu      sync.RWMutex
	clients map[ConnectionID]*Client
	buffer  int
}

// NewRegistry creates an empty registry. buffer sizes each client's outbound queue.
func NewRegistry(buffer int) *Registry {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	return &Registry{
		clients: make(map[ConnectionID]*Client),
		buffer:  buffer,
	}
}

// Register records a new connection under a fresh identifier.
func (r *Registry) Register(name string) *Client {
	c := NewClient(ConnectionID(uuid.NewString()), name, r.buffer)

	r.mu.Lock()
	r.clients[c.ID] = c
	r.mu.Unlock()

	return c
}

// Remove forgets a connection. Only the first call for an id returns true.
func (r *Registry) Remove(id ConnectionID) bool {
	r.mu.Lock()
	c, ok := r.clients[id]
	if ok {
		delete(r.clients, id)
	}
	r.mu.Unlock()

	if ok {
		c.close()
	}
	return ok
}

// Lookup returns the live client for id.
func (r *Registry) Lookup(id ConnectionID) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	return c, ok
}

// Len reports the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
