package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom enters the client's participant into a room session.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom removes the client's participant from a session.
	CommandLeaveRoom
	// CommandPostMessage appends a chat message to the room log.
	CommandPostMessage
	// CommandReact increments a reaction counter.
	CommandReact
	// CommandPromote makes a listener a speaker. Host only.
	CommandPromote
	// CommandDemote makes a speaker a listener. Host only.
	CommandDemote
	// CommandToggleMute flips the actor's own mute flag.
	CommandToggleMute
	// CommandRaiseHand raises the actor's hand; the host is notified later.
	CommandRaiseHand
	// CommandLowerHand lowers the actor's hand and cancels the notification.
	CommandLowerHand
	// CommandSnapshot requests a point-in-time view of the session.
	CommandSnapshot
)

// Command represents an action requested against one room session.
type Command struct {
	Kind      CommandKind
	Room      string
	TargetID  string // promote/demote target
	Text      string // chat message body
	Emoji     string // reaction key
	AsSpeaker bool   // join role request
}
