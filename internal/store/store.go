package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Message represents a persisted chat message.
//
// RoomKey is the canonical direct-room identifier ("dm:<min>:<max>").
// Content is opaque to the server; clients may put ciphertext in it.
type Message struct {
	ID             int64
	RoomKey        string
	SenderID       int64
	SenderUsername string
	Content        string
	CreatedAt      time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage appends a message to its room's history and assigns msg.ID.
	// IDs are monotonically increasing across the store.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListMessages returns the full history of a room in insertion order.
	// Returns an empty slice for a room that was never written to.
	ListMessages(ctx context.Context, roomKey string) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
