package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventSnapshot delivers a point-in-time session view to one client.
	EventSnapshot EventKind = iota
	// EventRoomMessage notifies clients about a chat message in a room.
	EventRoomMessage
	// EventParticipantJoined notifies clients about a new participant.
	EventParticipantJoined
	// EventParticipantLeft notifies clients about a departed participant.
	EventParticipantLeft
	// EventRoleChanged notifies clients that a participant was promoted or
	// demoted.
	EventRoleChanged
	// EventMuteChanged notifies clients that a participant toggled mute.
	EventMuteChanged
	// EventActiveSpeakers replaces the set of currently active speakers.
	EventActiveSpeakers
	// EventHandRaised notifies the host that a participant raised a hand.
	// Delivery is deferred, simulating asynchronous host attention.
	EventHandRaised
	// EventReaction notifies clients about a reaction increment.
	EventReaction
	// EventSessionClosed notifies clients that the session has ended.
	EventSessionClosed
	// EventError notifies the issuing client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in a session.
type Event struct {
	Kind           EventKind
	Room           string
	Participant    *Participant // copy; joined/left/role/mute/hand events
	Message        *ChatMessage
	Snapshot       *Snapshot
	ActiveSpeakers []string
	Emoji          string
	Count          int64
	Error          *CoreError
}
