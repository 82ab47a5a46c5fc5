package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/avkor/securechat-server/internal/store"
)

// Hub is the relay engine. A single Run goroutine owns every mutation of
// presence, room subscriptions, and typing state, so history order and
// broadcast order never diverge for a given room.
type Hub struct {
	messages store.MessageStore
	log      *zerolog.Logger

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand

	presence *Presence
	// clients holds every registered connection handle, including ones
	// whose presence entry was superseded by a reconnect.
	clients map[*Client]struct{}
	rooms   map[string]*Room
	// typing maps room key -> user IDs currently typing there.
	typing map[string]map[int64]Identity

	stopped chan struct{}
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

// NewHub creates a hub backed by the given message store.
// A nil store disables history (joins deliver an empty history); a nil
// logger disables logging. Both are convenient in tests.
func NewHub(messages store.MessageStore, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		messages:   messages,
		log:        logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand, 64),
		presence:   NewPresence(),
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]*Room),
		typing:     make(map[string]map[int64]Identity),
		stopped:    make(chan struct{}),
	}
}

// Presence exposes the registry for snapshot reads (HTTP online list).
func (h *Hub) Presence() *Presence {
	return h.presence
}

// Run processes registrations and commands until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.handleRegister(c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case cc := <-h.commands:
			h.handleCommand(ctx, cc.client, cc.cmd)
		}
	}
}

// RegisterClient admits an authenticated connection into the relay.
// It returns once presence is updated and the online refresh is queued,
// then starts pumping the client's commands into the hub.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.stopped:
		return
	}

	go func() {
		for {
			select {
			case <-c.done:
				return
			case <-h.stopped:
				return
			case cmd := <-c.Commands:
				select {
				case h.commands <- clientCommand{client: c, cmd: cmd}:
				case <-c.done:
					return
				case <-h.stopped:
					return
				}
			}
		}
	}()
}

// UnregisterClient removes a connection from presence and every room it
// joined. Safe to call more than once for the same client.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
		c.close()
	}
}

func (h *Hub) handleRegister(c *Client) {
	h.clients[c] = struct{}{}
	h.presence.Register(c)
	h.log.Info().
		Str("conn_id", c.ConnID).
		Int64("user_id", c.Identity.UserID).
		Str("username", c.Identity.Username).
		Msg("client connected")
	h.broadcastOnline()
}

func (h *Hub) handleUnregister(c *Client) {
	if _, ok := h.clients[c]; !ok {
		// Already unregistered; disconnects may fire twice.
		return
	}
	delete(h.clients, c)

	for key := range c.rooms {
		if room, ok := h.rooms[key]; ok {
			room.RemoveClient(c)
		}
		// A connection that vanishes mid-typing would leave peers stuck
		// on "is typing" forever; clear it for them.
		h.clearTyping(c, key)
	}

	removed := h.presence.Unregister(c)
	c.close()

	h.log.Info().
		Str("conn_id", c.ConnID).
		Int64("user_id", c.Identity.UserID).
		Str("username", c.Identity.Username).
		Bool("presence_removed", removed).
		Msg("client disconnected")

	if removed {
		h.broadcastOnline()
	}
}

func (h *Hub) handleCommand(ctx context.Context, c *Client, cmd *Command) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	switch cmd.Kind {
	case CommandJoinRoom:
		h.handleJoin(ctx, c, cmd.Room)
	case CommandSendMessage:
		h.handleSend(ctx, c, cmd.Room, cmd.Content)
	case CommandTypingStart:
		h.handleTyping(c, cmd.Room, true)
	case CommandTypingStop:
		h.handleTyping(c, cmd.Room, false)
	}
}

func (h *Hub) ensureRoom(key string) *Room {
	room, ok := h.rooms[key]
	if !ok {
		room = NewRoom(key)
		h.rooms[key] = room
	}
	return room
}

// handleJoin subscribes the connection and hands it the room's full history.
// Joining is idempotent; a repeat join re-delivers history, and joining a
// second room does not leave the first.
func (h *Hub) handleJoin(ctx context.Context, c *Client, key string) {
	room := h.ensureRoom(key)
	room.AddClient(c)
	c.rooms[key] = struct{}{}

	history, err := h.loadHistory(ctx, key)
	if err != nil {
		h.log.Error().Err(err).Str("room", key).Msg("load history")
		c.send(&Event{
			Kind:  EventError,
			Room:  key,
			Error: coreError(ErrCodeInternal, "failed to load history"),
		})
		return
	}

	// Point-to-point: only the joining connection gets the backlog.
	c.send(&Event{Kind: EventHistory, Room: key, Messages: history})
}

// handleSend persists the message, then fans it out to every subscriber in
// append order, sender included. There is deliberately no check that the
// sender joined the room or is one of the two users named by the room key;
// see DESIGN.md for why this permissive boundary is kept.
func (h *Hub) handleSend(ctx context.Context, c *Client, key, content string) {
	room := h.ensureRoom(key)

	msg := Message{
		RoomKey:        key,
		SenderID:       c.Identity.UserID,
		SenderUsername: c.Identity.Username,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}

	if h.messages != nil {
		stored := &store.Message{
			RoomKey:        msg.RoomKey,
			SenderID:       msg.SenderID,
			SenderUsername: msg.SenderUsername,
			Content:        msg.Content,
			CreatedAt:      msg.CreatedAt,
		}
		if err := h.messages.SaveMessage(ctx, stored); err != nil {
			h.log.Error().Err(err).Str("room", key).Msg("save message")
			c.send(&Event{
				Kind:  EventError,
				Room:  key,
				Error: coreError(ErrCodeInternal, "failed to save message"),
			})
			return
		}
		msg.ID = stored.ID
	}

	room.Broadcast(&Event{Kind: EventMessage, Room: key, Message: msg})
}

func (h *Hub) handleTyping(c *Client, key string, start bool) {
	room := h.ensureRoom(key)

	if start {
		if h.typing[key] == nil {
			h.typing[key] = make(map[int64]Identity)
		}
		h.typing[key][c.Identity.UserID] = c.Identity
		room.BroadcastExcept(&Event{Kind: EventTyping, Room: key, User: c.Identity}, c)
		return
	}

	if users, ok := h.typing[key]; ok {
		delete(users, c.Identity.UserID)
	}
	room.BroadcastExcept(&Event{Kind: EventStopTyping, Room: key, User: c.Identity}, c)
}

// clearTyping emits a stop-typing event on behalf of a disconnecting client.
func (h *Hub) clearTyping(c *Client, key string) {
	users, ok := h.typing[key]
	if !ok {
		return
	}
	if _, typing := users[c.Identity.UserID]; !typing {
		return
	}
	delete(users, c.Identity.UserID)

	if room, ok := h.rooms[key]; ok {
		room.BroadcastExcept(&Event{Kind: EventStopTyping, Room: key, User: c.Identity}, c)
	}
}

func (h *Hub) loadHistory(ctx context.Context, key string) ([]Message, error) {
	if h.messages == nil {
		return []Message{}, nil
	}

	stored, err := h.messages.ListMessages(ctx, key)
	if err != nil {
		return nil, err
	}

	history := make([]Message, 0, len(stored))
	for _, m := range stored {
		history = append(history, Message{
			ID:             m.ID,
			RoomKey:        m.RoomKey,
			SenderID:       m.SenderID,
			SenderUsername: m.SenderUsername,
			Content:        m.Content,
			CreatedAt:      m.CreatedAt,
		})
	}
	return history, nil
}

// broadcastOnline sends the full online set to every registered connection.
// Full refresh, not a diff: receivers replace their view wholesale.
func (h *Hub) broadcastOnline() {
	users := h.presence.Online(0)
	event := &Event{Kind: EventUsersOnline, Users: users}
	for c := range h.clients {
		c.send(event)
	}
}
