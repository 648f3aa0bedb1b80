package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kjarir/echosphere/internal/core"
	"github.com/kjarir/echosphere/internal/store"
)

// Validation errors for room creation.
var (
	ErrTitleRequired = errors.New("room title is required")
	ErrTopicRequired = errors.New("room topic is required")
	ErrHostRequired  = errors.New("room host is required")
)

// Service is the room catalog collaborator: it describes which rooms exist
// and supplies their pre-populated participant lists when a session opens.
type Service struct {
	store store.Store
	log   *zerolog.Logger
}

// NewService creates a catalog service backed by the given store.
func NewService(st store.Store, logger *zerolog.Logger) *Service {
	return &Service{store: st, log: logger}
}

// CreateRoomParams carries the fields of a new catalog entry.
type CreateRoomParams struct {
	Title       string
	Topic       string
	Description string
	HostID      string
	Capacity    int
	IsPrivate   bool
	ScheduledAt *time.Time
}

// CreateRoom validates and inserts a catalog entry. Rooms without a
// schedule go live immediately.
func (s *Service) CreateRoom(ctx context.Context, params CreateRoomParams) (*store.Room, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(params.Topic) == "" {
		return nil, ErrTopicRequired
	}
	if strings.TrimSpace(params.HostID) == "" {
		return nil, ErrHostRequired
	}

	room := &store.Room{
		ID:          "room-" + uuid.NewString(),
		Title:       strings.TrimSpace(params.Title),
		Topic:       strings.TrimSpace(params.Topic),
		Description: strings.TrimSpace(params.Description),
		HostID:      params.HostID,
		Capacity:    params.Capacity,
		IsPrivate:   params.IsPrivate,
		IsLive:      params.ScheduledAt == nil,
		ScheduledAt: params.ScheduledAt,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	if err := s.store.AddSeedParticipant(ctx, &store.SeedParticipant{
		RoomID:   room.ID,
		UserID:   room.HostID,
		Role:     string(core.RoleHost),
		JoinedAt: room.CreatedAt,
	}); err != nil {
		return nil, err
	}

	s.log.Info().Str("room", room.ID).Str("title", room.Title).Msg("room created")
	return room, nil
}

// ListLive returns rooms that are live right now.
func (s *Service) ListLive(ctx context.Context) ([]*store.Room, error) {
	return s.store.ListLiveRooms(ctx)
}

// ListUpcoming returns scheduled rooms ordered by start time.
func (s *Service) ListUpcoming(ctx context.Context) ([]*store.Room, error) {
	return s.store.ListUpcomingRooms(ctx)
}

// LookupRoom implements core.Catalog: it resolves the room description and
// the participants a session starts with. Seed display metadata comes from
// the profile store.
func (s *Service) LookupRoom(ctx context.Context, roomID string) (*core.RoomInfo, []*core.Participant, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: room %s", core.ErrNotFound, roomID)
		}
		return nil, nil, err
	}

	seeds, err := s.store.ListSeedParticipants(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}

	participants := make([]*core.Participant, 0, len(seeds))
	for _, seed := range seeds {
		p := &core.Participant{
			ID:       seed.UserID,
			Name:     seed.UserID,
			Role:     parseRole(seed.Role),
			Muted:    seed.Muted,
			JoinedAt: seed.JoinedAt,
		}
		if profile, err := s.store.GetProfile(ctx, seed.UserID); err == nil {
			p.Name = profile.DisplayName
			p.AvatarURL = profile.AvatarURL
		}
		// Listeners never transmit.
		if !p.Role.SpeakerClass() {
			p.Muted = true
		}
		participants = append(participants, p)
	}

	info := &core.RoomInfo{
		ID:          room.ID,
		Title:       room.Title,
		Topic:       room.Topic,
		Description: room.Description,
		HostID:      room.HostID,
		Capacity:    room.Capacity,
	}
	return info, participants, nil
}

func parseRole(role string) core.Role {
	switch core.Role(role) {
	case core.RoleHost:
		return core.RoleHost
	case core.RoleSpeaker:
		return core.RoleSpeaker
	default:
		return core.RoleListener
	}
}
