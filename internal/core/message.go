package core

import "time"

// ChatMessage is the domain model for a room chat message. The author name
// is denormalized at send time so the log stays readable after the author
// leaves. Messages are immutable once created.
type ChatMessage struct {
	ID         string
	Room       string
	AuthorID   string
	AuthorName string
	Text       string
	CreatedAt  time.Time
}
