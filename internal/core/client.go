package core

import (
	"sync"

	"github.com/google/uuid"
)

// Client is one authenticated connection as seen by the core layer.
// Two connections from the same user are two distinct clients.
type Client struct {
	// ConnID identifies this particular connection handle, not the user.
	ConnID   string
	Identity Identity

	Commands chan *Command
	Events   chan *Event

	// rooms this connection has joined, owned by the hub goroutine.
	rooms map[string]struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a client with initialized channels and a fresh
// connection handle ID.
func NewClient(identity Identity) *Client {
	return &Client{
		ConnID:   uuid.NewString(),
		Identity: identity,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
		rooms:    make(map[string]struct{}),
		done:     make(chan struct{}),
	}
}

// Done is closed when the hub has unregistered the client.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// send delivers an event without blocking. Slow consumers miss events
// rather than stalling the hub.
func (c *Client) send(event *Event) {
	select {
	case c.Events <- event:
	default:
		// Drop if slow consumer.
	}
}
