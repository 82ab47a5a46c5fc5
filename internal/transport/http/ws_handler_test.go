package http

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/avkor/securechat-server/internal/core"
	"github.com/avkor/securechat-server/internal/proto"
)

func wsURL(httpURL, token string) string {
	return strings.Replace(httpURL, "http", "ws", 1) + "/ws?token=" + token
}

func dialWS(t *testing.T, ctx context.Context, httpURL, token string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, wsURL(httpURL, token), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func sendInbound(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", msgType, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: payload}); err != nil {
		t.Fatalf("send %s: %v", msgType, err)
	}
}

// waitEvent reads outbound frames until one carries the named event,
// returning its data payload. Other events along the way are dropped.
func waitEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()

	for {
		var outbound struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("read waiting for %s: %v", event, err)
		}
		if outbound.Type == proto.OutboundTypeError {
			t.Fatalf("unexpected error while waiting for %s: %+v", event, outbound.Error)
		}
		if outbound.Event == event {
			return outbound.Data
		}
	}
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, _, err := websocket.Dial(ctx, wsURL(ts.URL, "not-a-token"), nil); err == nil {
		t.Fatal("expected dial with invalid token to fail")
	}
	if _, _, err := websocket.Dial(ctx, strings.Replace(ts.URL, "http", "ws", 1)+"/ws", nil); err == nil {
		t.Fatal("expected dial without token to fail")
	}
}

func TestWebSocketPresenceRefresh(t *testing.T) {
	ts := startTestServer(t)

	alice := registerUser(t, ts, "alice", "alice@example.com")
	bob := registerUser(t, ts, "bob", "bob@example.com")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts.URL, alice.Token)

	var users []proto.UserData
	if err := json.Unmarshal(waitEvent(t, ctx, connA, proto.EventUsersOnline), &users); err != nil {
		t.Fatalf("unmarshal users_online: %v", err)
	}
	if len(users) != 1 || users[0].Username != "alice" {
		t.Fatalf("expected [alice] online, got %+v", users)
	}

	dialWS(t, ctx, ts.URL, bob.Token)

	// Alice gets a full refresh once bob connects.
	for {
		if err := json.Unmarshal(waitEvent(t, ctx, connA, proto.EventUsersOnline), &users); err != nil {
			t.Fatalf("unmarshal users_online: %v", err)
		}
		if len(users) == 2 {
			break
		}
	}
}

func TestWebSocketDirectMessageFlow(t *testing.T) {
	ts := startTestServer(t)

	alice := registerUser(t, ts, "alice", "alice@example.com")
	bob := registerUser(t, ts, "bob", "bob@example.com")
	room := core.DirectRoomKey(alice.User.ID, bob.User.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts.URL, alice.Token)
	connB := dialWS(t, ctx, ts.URL, bob.Token)

	sendInbound(t, ctx, connA, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: room})
	var history proto.HistoryData
	if err := json.Unmarshal(waitEvent(t, ctx, connA, proto.EventMessageHistory), &history); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if history.RoomID != room || len(history.Messages) != 0 {
		t.Fatalf("expected empty history, got %+v", history)
	}

	sendInbound(t, ctx, connB, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: room})
	waitEvent(t, ctx, connB, proto.EventMessageHistory)

	sendInbound(t, ctx, connA, proto.InboundTypeSendMessage, proto.SendMessageData{RoomID: room, Content: "hello"})

	// Both sides receive the broadcast, sender included.
	for _, conn := range []*websocket.Conn{connA, connB} {
		var msg proto.MessageData
		if err := json.Unmarshal(waitEvent(t, ctx, conn, proto.EventReceiveMessage), &msg); err != nil {
			t.Fatalf("unmarshal receive_message: %v", err)
		}
		if msg.SenderID != alice.User.ID || msg.Content != "hello" || msg.RoomID != room {
			t.Fatalf("unexpected message: %+v", msg)
		}
		if msg.Timestamp == "" {
			t.Fatal("expected RFC3339 timestamp")
		}
	}

	// A later join sees the message in history.
	connA2 := dialWS(t, ctx, ts.URL, alice.Token)
	sendInbound(t, ctx, connA2, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: room})
	if err := json.Unmarshal(waitEvent(t, ctx, connA2, proto.EventMessageHistory), &history); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(history.Messages) != 1 || history.Messages[0].Content != "hello" {
		t.Fatalf("expected one message in history, got %+v", history.Messages)
	}
}

func TestWebSocketTypingIndicators(t *testing.T) {
	ts := startTestServer(t)

	alice := registerUser(t, ts, "alice", "alice@example.com")
	bob := registerUser(t, ts, "bob", "bob@example.com")
	room := core.DirectRoomKey(alice.User.ID, bob.User.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts.URL, alice.Token)
	connB := dialWS(t, ctx, ts.URL, bob.Token)

	sendInbound(t, ctx, connA, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: room})
	waitEvent(t, ctx, connA, proto.EventMessageHistory)
	sendInbound(t, ctx, connB, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: room})
	waitEvent(t, ctx, connB, proto.EventMessageHistory)

	sendInbound(t, ctx, connA, proto.InboundTypeTypingStart, proto.TypingData{RoomID: room})

	var typing proto.UserTypingData
	if err := json.Unmarshal(waitEvent(t, ctx, connB, proto.EventUserTyping), &typing); err != nil {
		t.Fatalf("unmarshal user_typing: %v", err)
	}
	if typing.UserID != alice.User.ID || typing.Username != "alice" {
		t.Fatalf("unexpected typing event: %+v", typing)
	}

	// Alice disconnecting mid-typing clears the indicator for bob.
	_ = connA.Close(websocket.StatusNormalClosure, "gone")

	var stop proto.UserStopTypingData
	if err := json.Unmarshal(waitEvent(t, ctx, connB, proto.EventUserStopTyping), &stop); err != nil {
		t.Fatalf("unmarshal user_stop_typing: %v", err)
	}
	if stop.UserID != alice.User.ID {
		t.Fatalf("unexpected stop-typing event: %+v", stop)
	}
}

func TestWebSocketRejectsMalformedCommand(t *testing.T) {
	ts := startTestServer(t)

	alice := registerUser(t, ts, "alice", "alice@example.com")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts.URL, alice.Token)
	sendInbound(t, ctx, conn, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: ""})

	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("read outbound: %v", err)
		}
		if outbound.Type == proto.OutboundTypeError {
			if outbound.Error == nil || outbound.Error.Code != core.ErrCodeBadRequest {
				t.Fatalf("expected bad_request error, got %+v", outbound.Error)
			}
			return
		}
	}
}
