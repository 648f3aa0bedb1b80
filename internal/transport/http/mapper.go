package http

import (
	"encoding/json"

	"github.com/kjarir/echosphere/internal/core"
	"github.com/kjarir/echosphere/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind:      core.CommandJoinRoom,
			Room:      join.Room,
			AsSpeaker: join.AsSpeaker,
		}, nil, nil
	case proto.InboundTypeLeave, proto.InboundTypeMute, proto.InboundTypeRaiseHand, proto.InboundTypeLowerHand, proto.InboundTypeSnapshot:
		var room proto.RoomData
		if err := json.Unmarshal(inbound.Data, &room); err != nil {
			return nil, nil, err
		}
		if room.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		kind := map[string]core.CommandKind{
			proto.InboundTypeLeave:     core.CommandLeaveRoom,
			proto.InboundTypeMute:      core.CommandToggleMute,
			proto.InboundTypeRaiseHand: core.CommandRaiseHand,
			proto.InboundTypeLowerHand: core.CommandLowerHand,
			proto.InboundTypeSnapshot:  core.CommandSnapshot,
		}[inbound.Type]
		return &core.Command{Kind: kind, Room: room.Room}, nil, nil
	case proto.InboundTypeMsg:
		var msg proto.MsgData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandPostMessage,
			Room: msg.Room,
			Text: msg.Text,
		}, nil, nil
	case proto.InboundTypeReact:
		var react proto.ReactData
		if err := json.Unmarshal(inbound.Data, &react); err != nil {
			return nil, nil, err
		}
		if react.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		if react.Emoji == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "emoji is required"}, nil
		}
		return &core.Command{
			Kind:  core.CommandReact,
			Room:  react.Room,
			Emoji: react.Emoji,
		}, nil, nil
	case proto.InboundTypePromote, proto.InboundTypeDemote:
		var target proto.TargetData
		if err := json.Unmarshal(inbound.Data, &target); err != nil {
			return nil, nil, err
		}
		if target.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		if target.Target == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "target is required"}, nil
		}
		kind := core.CommandPromote
		if inbound.Type == proto.InboundTypeDemote {
			kind = core.CommandDemote
		}
		return &core.Command{Kind: kind, Room: target.Room, TargetID: target.Target}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func participantView(p *core.Participant) proto.ParticipantView {
	return proto.ParticipantView{
		ID:         p.ID,
		Name:       p.Name,
		AvatarURL:  p.AvatarURL,
		Role:       string(p.Role),
		Muted:      p.Muted,
		HandRaised: p.HandRaised,
		JoinedAt:   p.JoinedAt.Unix(),
	}
}

func messageView(m *core.ChatMessage) proto.EventMessage {
	return proto.EventMessage{
		ID:   m.ID,
		Room: m.Room,
		User: m.AuthorID,
		Name: m.AuthorName,
		Text: m.Text,
		TS:   m.CreatedAt.Unix(),
	}
}

func snapshotView(snap *core.Snapshot) proto.EventSnapshot {
	participants := make([]proto.ParticipantView, 0, len(snap.Participants))
	for i := range snap.Participants {
		participants = append(participants, participantView(&snap.Participants[i]))
	}
	messages := make([]proto.EventMessage, 0, len(snap.Messages))
	for i := range snap.Messages {
		messages = append(messages, messageView(&snap.Messages[i]))
	}
	return proto.EventSnapshot{
		Room:           snap.Room.ID,
		Title:          snap.Room.Title,
		Topic:          snap.Room.Topic,
		Description:    snap.Room.Description,
		Host:           snap.Room.HostID,
		Participants:   participants,
		Messages:       messages,
		Reactions:      snap.Reactions,
		ActiveSpeakers: snap.ActiveSpeakers,
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventSnapshot:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "snapshot",
			Data:  snapshotView(event.Snapshot),
		}
	case core.EventRoomMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "message",
			Data:  messageView(event.Message),
		}
	case core.EventParticipantJoined:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "participant_joined",
			Data:  proto.EventParticipant{Room: event.Room, Participant: participantView(event.Participant)},
		}
	case core.EventParticipantLeft:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "participant_left",
			Data:  proto.EventParticipant{Room: event.Room, Participant: participantView(event.Participant)},
		}
	case core.EventRoleChanged:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "role_changed",
			Data:  proto.EventParticipant{Room: event.Room, Participant: participantView(event.Participant)},
		}
	case core.EventMuteChanged:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "mute_changed",
			Data:  proto.EventParticipant{Room: event.Room, Participant: participantView(event.Participant)},
		}
	case core.EventActiveSpeakers:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "active_speakers",
			Data:  proto.EventActiveSpeakers{Room: event.Room, Active: event.ActiveSpeakers},
		}
	case core.EventHandRaised:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "hand_raised",
			Data:  proto.EventParticipant{Room: event.Room, Participant: participantView(event.Participant)},
		}
	case core.EventReaction:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "reaction",
			Data:  proto.EventReaction{Room: event.Room, Emoji: event.Emoji, Count: event.Count},
		}
	case core.EventSessionClosed:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "session_closed",
			Data:  proto.EventSessionClosed{Room: event.Room},
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
