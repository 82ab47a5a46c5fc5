package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avkor/securechat-server/internal/store"
)

func TestUserLookup(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	byEmail, err := s.GetUserByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("unexpected user: %+v", byEmail)
	}

	if _, err := s.GetUserByUsername(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMessageHistoryOrderAndIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()

	const room = "dm:1:2"
	for _, text := range []string{"a", "b", "c"} {
		msg := &store.Message{RoomKey: room, SenderID: 1, SenderUsername: "alice", Content: text, CreatedAt: time.Now()}
		if err := s.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("save message: %v", err)
		}
	}

	history, err := s.ListMessages(ctx, room)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(history) != 3 || history[0].Content != "a" || history[2].Content != "c" {
		t.Fatalf("unexpected history: %+v", history)
	}

	// Mutating the returned slice must not corrupt the stored history.
	history[0].Content = "tampered"
	again, _ := s.ListMessages(ctx, room)
	if again[0].Content != "a" {
		t.Fatal("stored history was mutated through a returned message")
	}

	empty, err := s.ListMessages(ctx, "dm:9:10")
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty history, got %d", len(empty))
	}
}
