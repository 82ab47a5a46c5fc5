package core

import "fmt"

// Identity is the verified account behind a connection.
// It is produced once at connection-authentication time and never changes
// for the life of the connection.
type Identity struct {
	UserID   int64
	Username string
	Email    string
}

// DirectRoomKey returns the canonical room identifier for a direct
// conversation between two users. The pair is unordered:
// DirectRoomKey(a, b) == DirectRoomKey(b, a).
func DirectRoomKey(a, b int64) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("dm:%d:%d", a, b)
}
