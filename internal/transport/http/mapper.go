package http

import (
	"encoding/json"
	"time"

	"github.com/avkor/securechat-server/internal/core"
	"github.com/avkor/securechat-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room_id is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandJoinRoom,
			Room: join.RoomID,
		}, nil, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room_id is required"}, nil
		}
		return &core.Command{
			Kind:    core.CommandSendMessage,
			Room:    msg.RoomID,
			Content: msg.Content,
		}, nil, nil
	case proto.InboundTypeTypingStart, proto.InboundTypeTypingStop:
		var typing proto.TypingData
		if err := json.Unmarshal(inbound.Data, &typing); err != nil {
			return nil, nil, err
		}
		if typing.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room_id is required"}, nil
		}
		kind := core.CommandTypingStart
		if inbound.Type == proto.InboundTypeTypingStop {
			kind = core.CommandTypingStop
		}
		return &core.Command{
			Kind: kind,
			Room: typing.RoomID,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func messageData(msg core.Message) proto.MessageData {
	return proto.MessageData{
		ID:             msg.ID,
		RoomID:         msg.RoomKey,
		SenderID:       msg.SenderID,
		SenderUsername: msg.SenderUsername,
		Content:        msg.Content,
		Timestamp:      msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func userData(identity core.Identity) proto.UserData {
	return proto.UserData{
		ID:       identity.UserID,
		Username: identity.Username,
		Email:    identity.Email,
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventUsersOnline:
		users := make([]proto.UserData, 0, len(event.Users))
		for _, u := range event.Users {
			users = append(users, userData(u))
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUsersOnline,
			Data:  users,
		}
	case core.EventHistory:
		messages := make([]proto.MessageData, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, messageData(msg))
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessageHistory,
			Data: proto.HistoryData{
				RoomID:   event.Room,
				Messages: messages,
			},
		}
	case core.EventMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceiveMessage,
			Data:  messageData(event.Message),
		}
	case core.EventTyping:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUserTyping,
			Data: proto.UserTypingData{
				RoomID:   event.Room,
				UserID:   event.User.UserID,
				Username: event.User.Username,
			},
		}
	case core.EventStopTyping:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUserStopTyping,
			Data: proto.UserStopTypingData{
				RoomID: event.Room,
				UserID: event.User.UserID,
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
