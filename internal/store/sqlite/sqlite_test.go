package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kjarir/echosphere/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRoomRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	scheduled := time.Date(2026, 9, 15, 18, 0, 0, 0, time.UTC)
	room := &store.Room{
		ID:          "room-x",
		Title:       "Deep Work",
		Topic:       "Productivity",
		Description: "Quiet focus sprints",
		HostID:      "user-1",
		Capacity:    50,
		ScheduledAt: &scheduled,
	}
	if err := s.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	got, err := s.GetRoom(ctx, "room-x")
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if got.Title != room.Title || got.Topic != room.Topic || got.HostID != room.HostID {
		t.Errorf("room mismatch: got %+v", got)
	}
	if got.Capacity != 50 {
		t.Errorf("expected capacity 50, got %d", got.Capacity)
	}
	if got.ScheduledAt == nil || !got.ScheduledAt.Equal(scheduled) {
		t.Errorf("expected scheduled_at %v, got %v", scheduled, got.ScheduledAt)
	}
}

func TestGetRoomNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRoom(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestListLiveAndUpcomingRooms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	soon := time.Now().Add(2 * time.Hour)
	later := time.Now().Add(48 * time.Hour)
	rooms := []*store.Room{
		{ID: "live-1", Title: "Live One", Topic: "a", HostID: "h", IsLive: true},
		{ID: "live-2", Title: "Live Two", Topic: "b", HostID: "h", IsLive: true},
		{ID: "sched-later", Title: "Later", Topic: "c", HostID: "h", ScheduledAt: &later},
		{ID: "sched-soon", Title: "Soon", Topic: "d", HostID: "h", ScheduledAt: &soon},
	}
	for _, r := range rooms {
		if err := s.CreateRoom(ctx, r); err != nil {
			t.Fatalf("CreateRoom %s failed: %v", r.ID, err)
		}
	}

	live, err := s.ListLiveRooms(ctx)
	if err != nil {
		t.Fatalf("ListLiveRooms failed: %v", err)
	}
	if len(live) != 2 {
		t.Fatalf("expected 2 live rooms, got %d", len(live))
	}
	for _, r := range live {
		if !r.IsLive {
			t.Errorf("room %s listed live but is not", r.ID)
		}
	}

	upcoming, err := s.ListUpcomingRooms(ctx)
	if err != nil {
		t.Fatalf("ListUpcomingRooms failed: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("expected 2 upcoming rooms, got %d", len(upcoming))
	}
	if upcoming[0].ID != "sched-soon" || upcoming[1].ID != "sched-later" {
		t.Errorf("expected soonest first, got %s then %s", upcoming[0].ID, upcoming[1].ID)
	}
}

func TestSeedParticipants(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateRoom(ctx, &store.Room{ID: "room-x", Title: "T", Topic: "t", HostID: "user-1", IsLive: true}); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	seeds := []*store.SeedParticipant{
		{RoomID: "room-x", UserID: "user-2", Role: "speaker", JoinedAt: base.Add(time.Minute)},
		{RoomID: "room-x", UserID: "user-1", Role: "host", JoinedAt: base},
		{RoomID: "room-x", UserID: "user-3", Role: "listener", Muted: true, JoinedAt: base.Add(2 * time.Minute)},
	}
	for _, p := range seeds {
		if err := s.AddSeedParticipant(ctx, p); err != nil {
			t.Fatalf("AddSeedParticipant %s failed: %v", p.UserID, err)
		}
	}

	got, err := s.ListSeedParticipants(ctx, "room-x")
	if err != nil {
		t.Fatalf("ListSeedParticipants failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 seed participants, got %d", len(got))
	}
	// Ordered by join time.
	want := []string{"user-1", "user-2", "user-3"}
	for i, id := range want {
		if got[i].UserID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, got[i].UserID)
		}
	}
	if got[2].Role != "listener" || !got[2].Muted {
		t.Errorf("expected muted listener, got %+v", got[2])
	}
}

func TestProfileUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetProfile(ctx, "user-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}

	p := &store.Profile{ID: "user-1", DisplayName: "Alex Johnson", AvatarURL: "https://example.com/a.png"}
	if err := s.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}

	got, err := s.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if got.DisplayName != "Alex Johnson" {
		t.Errorf("expected display name preserved, got %q", got.DisplayName)
	}

	// Second upsert updates in place.
	p.DisplayName = "Alexandra Johnson"
	p.Bio = "Host of Tech Talk"
	if err := s.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("second UpsertProfile failed: %v", err)
	}
	got, err = s.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetProfile after update failed: %v", err)
	}
	if got.DisplayName != "Alexandra Johnson" || got.Bio != "Host of Tech Talk" {
		t.Errorf("expected updated profile, got %+v", got)
	}
}
