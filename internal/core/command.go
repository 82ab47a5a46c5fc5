package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom subscribes the connection to a room and requests history.
	CommandJoinRoom CommandKind = iota
	// CommandSendMessage delivers a chat message to room subscribers.
	CommandSendMessage
	// CommandTypingStart signals the user began typing in a room.
	CommandTypingStart
	// CommandTypingStop signals the user stopped typing in a room.
	CommandTypingStop
)

// Command represents an action requested by a client.
type Command struct {
	Kind    CommandKind
	Room    string
	Content string
}
