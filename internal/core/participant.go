package core

import "time"

// Role classifies a participant's privileges within a room session.
type Role string

const (
	RoleHost     Role = "host"
	RoleSpeaker  Role = "speaker"
	RoleListener Role = "listener"
)

// SpeakerClass reports whether the role is permitted to transmit audio.
// The host is speaker-class for audio purposes but keeps a distinct role
// for permission checks.
func (r Role) SpeakerClass() bool {
	return r == RoleHost || r == RoleSpeaker
}

// Participant is one member of a room session.
type Participant struct {
	ID         string
	Name       string
	AvatarURL  string
	Role       Role
	Muted      bool
	HandRaised bool
	JoinedAt   time.Time
}
