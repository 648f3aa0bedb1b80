package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Room is a catalog entry describing a live or upcoming room.
type Room struct {
	ID          string
	Title       string
	Topic       string
	Description string
	HostID      string
	Capacity    int // 0 = unlimited
	IsPrivate   bool
	IsLive      bool
	ScheduledAt *time.Time
	CreatedAt   time.Time
}

// SeedParticipant pre-populates a room session at open time.
type SeedParticipant struct {
	RoomID   string
	UserID   string
	Role     string // host, speaker or listener
	Muted    bool
	JoinedAt time.Time
}

// Profile is display metadata for a user identity.
type Profile struct {
	ID          string
	DisplayName string
	AvatarURL   string
	Bio         string
	CreatedAt   time.Time
}

// CatalogStore handles room catalog persistence.
type CatalogStore interface {
	// CreateRoom inserts a catalog entry.
	CreateRoom(ctx context.Context, room *Room) error

	// GetRoom retrieves a catalog entry by id.
	GetRoom(ctx context.Context, id string) (*Room, error)

	// ListLiveRooms lists rooms currently marked live, newest first.
	ListLiveRooms(ctx context.Context) ([]*Room, error)

	// ListUpcomingRooms lists scheduled rooms ordered by start time.
	ListUpcomingRooms(ctx context.Context) ([]*Room, error)

	// ListSeedParticipants lists the pre-populated members of a room.
	ListSeedParticipants(ctx context.Context, roomID string) ([]*SeedParticipant, error)

	// AddSeedParticipant attaches a pre-populated member to a room.
	AddSeedParticipant(ctx context.Context, p *SeedParticipant) error
}

// ProfileStore handles identity display metadata.
type ProfileStore interface {
	// GetProfile retrieves a profile by id.
	GetProfile(ctx context.Context, id string) (*Profile, error)

	// UpsertProfile inserts or updates a profile.
	UpsertProfile(ctx context.Context, p *Profile) error
}

// Store aggregates all storage interfaces.
type Store interface {
	CatalogStore
	ProfileStore

	// Close closes the underlying database connection.
	Close() error
}
