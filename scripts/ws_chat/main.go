// Interactive smoke client: logs in over HTTP, connects to the relay with
// the issued token, joins the direct room with a peer, and bridges stdin to
// send_message events. Typing signals are emitted around each sent line so
// the other side's typing indicator can be watched end to end.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/avkor/securechat-server/internal/core"
	"github.com/avkor/securechat-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

func login(server, email, password string) (*loginResponse, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	resp, err := http.Post(server+"/api/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed: status %d", resp.StatusCode)
	}

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	return &out, nil
}

func run() error {
	server := flag.String("server", "http://localhost:8080", "server base URL")
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "account password")
	peer := flag.Int64("peer", 0, "user ID of the peer to chat with")
	flag.Parse()

	if *email == "" || *password == "" || *peer == 0 {
		return errors.New("-email, -password and -peer are required")
	}

	auth, err := login(*server, *email, *password)
	if err != nil {
		return err
	}

	room := core.DirectRoomKey(auth.User.ID, *peer)

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	wsURL := "ws" + (*server)[len("http"):] + "/ws?token=" + auth.Token
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(msgType string, data any) {
		payload, err := json.Marshal(data)
		if err != nil {
			log.Printf("marshal %s: %v", msgType, err)
			return
		}
		if writeErr := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: payload}); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	send(proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: room})

	fmt.Printf("Connected as %s (user %d), room %s\n", auth.User.Username, auth.User.ID, room)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		text := scanner.Text()
		if text == "" {
			continue
		}

		send(proto.InboundTypeTypingStart, proto.TypingData{RoomID: room})
		send(proto.InboundTypeSendMessage, proto.SendMessageData{RoomID: room, Content: text})
		send(proto.InboundTypeTypingStop, proto.TypingData{RoomID: room})
	}

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if outbound.Type == proto.OutboundTypeError {
			if outbound.Error != nil {
				log.Printf("server error: %s (%s)", outbound.Error.Msg, outbound.Error.Code)
			}
			continue
		}

		raw, err := json.Marshal(outbound.Data)
		if err != nil {
			log.Printf("marshal outbound data: %v", err)
			continue
		}

		switch outbound.Event {
		case proto.EventReceiveMessage:
			var evt proto.MessageData
			if err := json.Unmarshal(raw, &evt); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			fmt.Printf("[%s] %s: %s\n", evt.Timestamp, evt.SenderUsername, evt.Content)
		case proto.EventMessageHistory:
			var evt proto.HistoryData
			if err := json.Unmarshal(raw, &evt); err != nil {
				log.Printf("unmarshal history: %v", err)
				continue
			}
			fmt.Printf("--- %d message(s) of history ---\n", len(evt.Messages))
			for _, msg := range evt.Messages {
				fmt.Printf("[%s] %s: %s\n", msg.Timestamp, msg.SenderUsername, msg.Content)
			}
		case proto.EventUsersOnline:
			var users []proto.UserData
			if err := json.Unmarshal(raw, &users); err != nil {
				log.Printf("unmarshal users_online: %v", err)
				continue
			}
			fmt.Printf("online now: %d user(s)\n", len(users))
		case proto.EventUserTyping:
			var evt proto.UserTypingData
			if err := json.Unmarshal(raw, &evt); err != nil {
				continue
			}
			fmt.Printf("%s is typing...\n", evt.Username)
		case proto.EventUserStopTyping:
			// Quiet; the indicator going away is not worth a line.
		}
	}
}
