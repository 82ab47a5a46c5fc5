package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventUsersOnline is a full refresh of the online set, sent to every
	// registered connection whenever presence changes.
	EventUsersOnline EventKind = iota
	// EventHistory delivers a room's accumulated messages to a joining
	// connection only.
	EventHistory
	// EventMessage notifies room subscribers about a new chat message.
	EventMessage
	// EventTyping notifies room subscribers that a user started typing.
	EventTyping
	// EventStopTyping notifies room subscribers that a user stopped typing.
	EventStopTyping
	// EventError notifies a client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	User     Identity   // for typing events
	Users    []Identity // for EventUsersOnline
	Message  Message
	Messages []Message // for EventHistory
	Error    *CoreError
}
