// Package memory provides an in-memory store.Store.
//
// It mirrors the ephemeral persistence the service originally ran on and is
// handy for tests; nothing survives a restart.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/avkor/securechat-server/internal/store"
)

// MemoryStore implements store.Store with mutex-guarded maps.
type MemoryStore struct {
	mu sync.RWMutex

	users      map[int64]*store.User
	nextUserID int64

	history   map[string][]*store.Message
	nextMsgID int64
}

// New creates an empty in-memory store.
func New() *MemoryStore {
	return &MemoryStore{
		users:   make(map[int64]*store.User),
		history: make(map[string][]*store.Message),
	}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// CreateUser creates a new user with hashed password.
func (s *MemoryStore) CreateUser(ctx context.Context, username, email, passwordHash string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextUserID++
	user := &store.User{
		ID:           s.nextUserID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	s.users[user.ID] = user

	clone := *user
	return &clone, nil
}

// GetUserByID retrieves a user by ID.
func (s *MemoryStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

// GetUserByUsername retrieves a user by username.
func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	return s.findUser(func(u *store.User) bool {
		return u.Username == username
	})
}

// GetUserByEmail retrieves a user by email.
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	return s.findUser(func(u *store.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}

func (s *MemoryStore) findUser(match func(*store.User) bool) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

// SaveMessage appends a message to its room's history and assigns msg.ID.
func (s *MemoryStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMsgID++
	msg.ID = s.nextMsgID

	clone := *msg
	s.history[msg.RoomKey] = append(s.history[msg.RoomKey], &clone)
	return nil
}

// ListMessages returns the full history of a room in insertion order.
func (s *MemoryStore) ListMessages(ctx context.Context, roomKey string) ([]*store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.history[roomKey]
	messages := make([]*store.Message, 0, len(stored))
	for _, msg := range stored {
		clone := *msg
		messages = append(messages, &clone)
	}
	return messages, nil
}
