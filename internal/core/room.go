package core

// Room groups connections subscribed to the same direct conversation.
type Room struct {
	Key     string
	clients map[*Client]struct{}
}

// NewRoom constructs a room with no subscribers.
func NewRoom(key string) *Room {
	return &Room{
		Key:     key,
		clients: make(map[*Client]struct{}),
	}
}

// AddClient subscribes a connection to the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// RemoveClient unsubscribes a connection from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Broadcast sends an event to every subscriber, including the sender.
func (r *Room) Broadcast(event *Event) {
	for client := range r.clients {
		client.send(event)
	}
}

// BroadcastExcept sends an event to every subscriber but one. Used for
// typing notifications, which the typist does not need echoed back.
func (r *Room) BroadcastExcept(event *Event, except *Client) {
	for client := range r.clients {
		if client == except {
			continue
		}
		client.send(event)
	}
}

// Empty returns true if no connections are subscribed.
func (r *Room) Empty() bool {
	return len(r.clients) == 0
}
