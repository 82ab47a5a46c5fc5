package core

import "time"

// Message is the domain model for a chat message.
// Content is opaque to the relay; the server never inspects it.
type Message struct {
	ID             int64
	RoomKey        string
	SenderID       int64
	SenderUsername string
	Content        string
	CreatedAt      time.Time
}
