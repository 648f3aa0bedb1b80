package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/kjarir/echosphere/internal/core"
	"github.com/kjarir/echosphere/internal/store"
)

// EnsureSeedData populates an empty catalog with a starter set of rooms,
// profiles, and room members so a fresh install has something to show.
func (s *Service) EnsureSeedData(ctx context.Context) error {
	live, err := s.store.ListLiveRooms(ctx)
	if err != nil {
		return fmt.Errorf("check existing rooms: %w", err)
	}
	upcoming, err := s.store.ListUpcomingRooms(ctx)
	if err != nil {
		return fmt.Errorf("check existing rooms: %w", err)
	}
	if len(live)+len(upcoming) > 0 {
		return nil
	}

	now := time.Now()

	profiles := []*store.Profile{
		{ID: "user-1", DisplayName: "Alex Johnson", Bio: "AI researcher and eternal optimist."},
		{ID: "user-2", DisplayName: "Maria Garcia", Bio: "Meditation teacher."},
		{ID: "user-3", DisplayName: "Sam Taylor", Bio: "Indie musician."},
		{ID: "user-4", DisplayName: "Jamie Smith", Bio: "Reads a book a week."},
		{ID: "user-6", DisplayName: "Olivia Chen", Bio: "Policy wonk."},
		{ID: "user-7", DisplayName: "Michael Brown"},
		{ID: "user-8", DisplayName: "Emma Davis", Bio: "ML research."},
		{ID: "user-9", DisplayName: "John Doe"},
		{ID: "user-10", DisplayName: "Jane Doe"},
	}
	for _, p := range profiles {
		if err := s.store.UpsertProfile(ctx, p); err != nil {
			return fmt.Errorf("seed profile %s: %w", p.ID, err)
		}
	}

	rooms := []*store.Room{
		{
			ID:          "room-1",
			Title:       "Tech Talk: Future of AI",
			Topic:       "Technology",
			Description: "Join us to discuss the latest advancements in AI technology and what the future holds.",
			HostID:      "user-1",
			IsLive:      true,
		},
		{
			ID:     "room-2",
			Title:  "Morning Meditation & Mindfulness",
			Topic:  "Wellness",
			HostID: "user-2",
			IsLive: true,
		},
		{
			ID:     "room-3",
			Title:  "Indie Music Showcase",
			Topic:  "Music",
			HostID: "user-3",
			IsLive: true,
		},
		{
			ID:          "room-4",
			Title:       "Book Club: 'The Midnight Library'",
			Topic:       "Books & Literature",
			HostID:      "user-4",
			ScheduledAt: timePtr(now.Add(24 * time.Hour)),
		},
		{
			ID:          "room-5",
			Title:       "Startup Founders Networking",
			Topic:       "Business",
			HostID:      "user-8",
			ScheduledAt: timePtr(now.Add(72 * time.Hour)),
		},
	}
	for _, r := range rooms {
		r.IsLive = r.ScheduledAt == nil
		if err := s.store.CreateRoom(ctx, r); err != nil {
			return fmt.Errorf("seed room %s: %w", r.ID, err)
		}
		if err := s.store.AddSeedParticipant(ctx, &store.SeedParticipant{
			RoomID:   r.ID,
			UserID:   r.HostID,
			Role:     string(core.RoleHost),
			JoinedAt: now.Add(-time.Hour),
		}); err != nil {
			return fmt.Errorf("seed host for %s: %w", r.ID, err)
		}
	}

	// Flesh out the flagship room with speakers and listeners.
	members := []*store.SeedParticipant{
		{RoomID: "room-1", UserID: "user-2", Role: string(core.RoleSpeaker), JoinedAt: now.Add(-40 * time.Minute)},
		{RoomID: "room-1", UserID: "user-3", Role: string(core.RoleSpeaker), Muted: true, JoinedAt: now.Add(-30 * time.Minute)},
		{RoomID: "room-1", UserID: "user-4", Role: string(core.RoleSpeaker), JoinedAt: now.Add(-15 * time.Minute)},
		{RoomID: "room-1", UserID: "user-6", Role: string(core.RoleListener), JoinedAt: now.Add(-5 * time.Minute)},
		{RoomID: "room-1", UserID: "user-7", Role: string(core.RoleListener), JoinedAt: now.Add(-200 * time.Second)},
		{RoomID: "room-1", UserID: "user-8", Role: string(core.RoleListener), JoinedAt: now.Add(-100 * time.Second)},
		{RoomID: "room-1", UserID: "user-9", Role: string(core.RoleListener), JoinedAt: now.Add(-30 * time.Second)},
		{RoomID: "room-1", UserID: "user-10", Role: string(core.RoleListener), JoinedAt: now.Add(-10 * time.Second)},
	}
	for _, m := range members {
		if err := s.store.AddSeedParticipant(ctx, m); err != nil {
			return fmt.Errorf("seed member %s of %s: %w", m.UserID, m.RoomID, err)
		}
	}

	s.log.Info().Int("rooms", len(rooms)).Int("profiles", len(profiles)).Msg("seeded starter catalog")
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
