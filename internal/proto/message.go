package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeHello     = "hello"
	InboundTypeJoin      = "join"
	InboundTypeLeave     = "leave"
	InboundTypeMsg       = "msg"
	InboundTypeReact     = "react"
	InboundTypePromote   = "promote"
	InboundTypeDemote    = "demote"
	InboundTypeMute      = "mute"
	InboundTypeRaiseHand = "raise_hand"
	InboundTypeLowerHand = "lower_hand"
	InboundTypeSnapshot  = "snapshot"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// HelloData is sent by the client to introduce itself.
type HelloData struct {
	User     string `json:"user"`
	Name     string `json:"name,omitempty"`
	Protocol int    `json:"protocol,omitempty"`
}

// JoinData requests to join a specific room.
type JoinData struct {
	Room      string `json:"room"`
	AsSpeaker bool   `json:"as_speaker,omitempty"`
}

// RoomData addresses a room without further arguments.
type RoomData struct {
	Room string `json:"room"`
}

// MsgData is a chat message from the client.
type MsgData struct {
	Room string `json:"room"`
	Text string `json:"text"`
}

// ReactData increments a reaction counter.
type ReactData struct {
	Room  string `json:"room"`
	Emoji string `json:"emoji"`
}

// TargetData addresses another participant, for promote/demote.
type TargetData struct {
	Room   string `json:"room"`
	Target string `json:"target"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// ParticipantView is a participant as exposed on the wire.
type ParticipantView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	Role       string `json:"role"`
	Muted      bool   `json:"muted"`
	HandRaised bool   `json:"hand_raised,omitempty"`
	JoinedAt   int64  `json:"joined_at"`
}

// EventMessage carries one chat message.
type EventMessage struct {
	ID   string `json:"id"`
	Room string `json:"room"`
	User string `json:"user"`
	Name string `json:"name"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

// EventParticipant announces joins, leaves, role and mute changes.
type EventParticipant struct {
	Room        string          `json:"room"`
	Participant ParticipantView `json:"participant"`
}

// EventActiveSpeakers replaces the active speaker set.
type EventActiveSpeakers struct {
	Room   string   `json:"room"`
	Active []string `json:"active"`
}

// EventReaction announces a reaction counter increment.
type EventReaction struct {
	Room  string `json:"room"`
	Emoji string `json:"emoji"`
	Count int64  `json:"count"`
}

// EventSnapshot is a full point-in-time room view.
type EventSnapshot struct {
	Room           string            `json:"room"`
	Title          string            `json:"title"`
	Topic          string            `json:"topic"`
	Description    string            `json:"description,omitempty"`
	Host           string            `json:"host"`
	Participants   []ParticipantView `json:"participants"`
	Messages       []EventMessage    `json:"messages"`
	Reactions      map[string]int64  `json:"reactions"`
	ActiveSpeakers []string          `json:"active_speakers"`
}

// EventSessionClosed announces that the room session ended.
type EventSessionClosed struct {
	Room string `json:"room"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
