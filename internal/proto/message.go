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
	InboundTypeTypingStart = "typing_start"
	InboundTypeTypingStop  = "typing_stop"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventUsersOnline    = "users_online"
	EventMessageHistory = "message_history"
	EventReceiveMessage = "receive_message"
	EventUserTyping     = "user_typing"
	EventUserStopTyping = "user_stop_typing"
)

// JoinRoomData requests subscription to a room.
type JoinRoomData struct {
	RoomID string `json:"room_id"`
}

// SendMessageData is a chat message from the client. Content is opaque to
// the server; a client that encrypts puts its ciphertext here.
type SendMessageData struct {
	RoomID  string `json:"room_id"`
	Content string `json:"content"`
}

// TypingData scopes a typing signal to a room.
type TypingData struct {
	RoomID string `json:"room_id"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// UserData describes an online user.
type UserData struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// MessageData describes a delivered chat message.
// Timestamp is RFC 3339 in UTC.
type MessageData struct {
	ID             int64  `json:"id"`
	RoomID         string `json:"room_id"`
	SenderID       int64  `json:"sender_id"`
	SenderUsername string `json:"sender_username"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`
}

// HistoryData delivers a room's backlog to a joining connection.
type HistoryData struct {
	RoomID   string        `json:"room_id"`
	Messages []MessageData `json:"messages"`
}

// UserTypingData notifies that a user started typing in a room.
type UserTypingData struct {
	RoomID   string `json:"room_id"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// UserStopTypingData notifies that a user stopped typing in a room.
type UserStopTypingData struct {
	RoomID string `json:"room_id"`
	UserID int64  `json:"user_id"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
