package http

import (
	"bytes"
	"encoding/json"

	"github.com/vovakirdan/roomchat/internal/core"
	"github.com/vovakirdan/roomchat/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "invalid join_room payload"}
		}
		if join.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}
		}
		return &core.Command{
			Event:    core.CommandJoinRoom,
			Room:     join.Room,
			Username: join.Username,
		}, nil
	case proto.InboundTypeSendMessage:
		data := bytes.TrimSpace(inbound.Data)
		var msg proto.SendMessageData
		if len(data) == 0 || data[0] != '{' || json.Unmarshal(data, &msg) != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "send_message payload must be an object"}
		}
		if msg.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}
		}
		return &core.Command{
			Event:   core.CommandSendMessage,
			Room:    msg.Room,
			Payload: json.RawMessage(data),
		}, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeUnknownEvent, Msg: "unknown message type"}
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Name {
	case core.EventUpdateUserList:
		members, _ := event.Payload.([]core.Member)
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUpdateUserList,
			Data:  membersToProto(members),
		}
	case core.EventReceiveMessage:
		payload, _ := event.Payload.(json.RawMessage)
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceiveMessage,
			Data:  payload,
		}
	case core.EventError:
		coreErr, ok := event.Payload.(*core.CoreError)
		if !ok || coreErr == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: coreErr.Code, Msg: coreErr.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent, Event: event.Name}
	}
}

// membersToProto always returns a non-nil slice so empty rosters encode as [].
func membersToProto(members []core.Member) []proto.Member {
	out := make([]proto.Member, 0, len(members))
	for _, m := range members {
		out = append(out, proto.Member{ID: string(m.ID), Username: m.Username})
	}
	return out
}
