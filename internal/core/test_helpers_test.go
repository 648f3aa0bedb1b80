package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// stubCatalog serves a fixed set of rooms for hub tests.
type stubCatalog struct {
	rooms map[string]RoomInfo
	seeds map[string][]*Participant
}

func (c *stubCatalog) LookupRoom(_ context.Context, roomID string) (*RoomInfo, []*Participant, error) {
	info, ok := c.rooms[roomID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	seeds := make([]*Participant, 0, len(c.seeds[roomID]))
	for _, p := range c.seeds[roomID] {
		cp := *p
		seeds = append(seeds, &cp)
	}
	return &info, seeds, nil
}

// fixedDetector always reports the same active set.
type fixedDetector struct {
	active []string
}

func (d *fixedDetector) Detect(eligible []string) []string {
	if len(eligible) == 0 {
		return nil
	}
	return append([]string(nil), d.active...)
}

// oneRoomCatalog builds a catalog with a single room hosted by host-1.
func oneRoomCatalog(roomID string, capacity int, extraSeeds ...*Participant) *stubCatalog {
	seeds := []*Participant{{
		ID:       "host-1",
		Name:     "Hosting Harriet",
		Role:     RoleHost,
		JoinedAt: time.Now().Add(-time.Hour),
	}}
	seeds = append(seeds, extraSeeds...)
	return &stubCatalog{
		rooms: map[string]RoomInfo{roomID: {
			ID:       roomID,
			Title:    "Test Room",
			Topic:    "Testing",
			HostID:   "host-1",
			Capacity: capacity,
		}},
		seeds: map[string][]*Participant{roomID: seeds},
	}
}

func newTestHub(t *testing.T, cat Catalog, detector ActivityDetector, cfg SessionConfig) *Hub {
	t.Helper()

	if cfg.PresenceInterval == 0 {
		// Keep the presence ticker quiet unless a test opts in.
		cfg.PresenceInterval = time.Hour
	}
	hub := NewHub(cat, detector, cfg, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

// joinRoom registers a client and joins it to the room, consuming the
// snapshot event that confirms the join.
func joinRoom(t *testing.T, hub *Hub, userID, name, room string, asSpeaker bool) *Client {
	t.Helper()

	c := NewClient("conn-"+userID, userID, name)
	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandJoinRoom, Room: room, AsSpeaker: asSpeaker}
	mustEvent(t, c.Events, EventSnapshot)
	return c
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// noEvent asserts that no event of the given kind arrives within d.
func noEvent(t *testing.T, ch <-chan *Event, kind EventKind, d time.Duration) {
	t.Helper()

	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v: %+v", kind, ev)
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// snapshotOf asks the session for a current view through the client.
func snapshotOf(t *testing.T, c *Client, room string) *Snapshot {
	t.Helper()

	c.Commands <- &Command{Kind: CommandSnapshot, Room: room}
	ev := mustEvent(t, c.Events, EventSnapshot)
	return ev.Snapshot
}
