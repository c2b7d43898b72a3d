package http

import (
	"encoding/json"

	"github.com/dmarkhas/roomcast/internal/core"
	"github.com/dmarkhas/roomcast/internal/proto"
	"github.com/dmarkhas/roomcast/internal/store"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeNewUser:
		return &core.Command{Kind: core.CommandAnnounce}, nil, nil
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind:         core.CommandJoinRoom,
			Room:         join.Room,
			PreviousRoom: join.PreviousRoom,
		}, nil, nil
	case proto.InboundTypeMessageRoom:
		var msg proto.MessageRoomData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandSendMessage,
			Room: msg.Room,
			Message: store.Message{
				// ID is assigned by the store on append.
				Content: msg.Content,
				From:    msg.Sender,
				To:      msg.Room,
				Time:    msg.Time,
				Date:    msg.Date,
			},
		}, nil, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoster:
		users := make([]proto.UserInfo, 0, len(event.Users))
		for _, u := range event.Users {
			users = append(users, proto.UserInfo{
				ID:           u.ID,
				Name:         u.Name,
				Status:       string(u.Status),
				UnreadCounts: u.UnreadCounts,
			})
		}
		return proto.Outbound{Type: proto.OutboundTypeNewUser, Data: users}
	case core.EventRoomHistory:
		groups := make([]proto.DateGroupInfo, 0, len(event.Groups))
		for _, g := range event.Groups {
			messages := make([]proto.MessageInfo, 0, len(g.Messages))
			for _, m := range g.Messages {
				messages = append(messages, proto.MessageInfo{
					ID:      m.ID,
					Content: m.Content,
					From:    m.From,
					To:      m.To,
					Time:    m.Time,
					Date:    m.Date,
				})
			}
			groups = append(groups, proto.DateGroupInfo{Date: g.Date, Messages: messages})
		}
		return proto.Outbound{
			Type: proto.OutboundTypeRoomMessages,
			Data: proto.RoomMessagesData{Room: event.Room, Groups: groups},
		}
	case core.EventNotification:
		return proto.Outbound{
			Type: proto.OutboundTypeNotifications,
			Data: proto.NotificationData{Room: event.Room},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: core.ErrCodeInternal, Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: core.ErrCodeInternal, Msg: "unmapped event"}}
	}
}
