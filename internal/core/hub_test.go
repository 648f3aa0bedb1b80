package core

import (
	"context"
	"fmt"
	"runtime"
	"testing"
	"time"
)

func TestJoinDeliversSnapshotWithOneHost(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	listener := joinRoom(t, hub, "user-1", "Liam", "room-a", false)
	snap := snapshotOf(t, listener, "room-a")

	hosts := 0
	var joined *Participant
	for i := range snap.Participants {
		p := snap.Participants[i]
		if p.Role == RoleHost {
			hosts++
		}
		if p.ID == "user-1" {
			joined = &p
		}
	}
	if hosts != 1 {
		t.Fatalf("expected exactly one host, got %d", hosts)
	}
	if joined == nil {
		t.Fatal("joiner missing from snapshot")
	}
	if joined.Role != RoleListener || !joined.Muted {
		t.Fatalf("expected muted listener, got role=%s muted=%v", joined.Role, joined.Muted)
	}
}

func TestJoinAsSpeakerStartsUnmuted(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	speaker := joinRoom(t, hub, "user-1", "Sana", "room-a", true)
	snap := snapshotOf(t, speaker, "room-a")

	for _, p := range snap.Participants {
		if p.ID != "user-1" {
			continue
		}
		if p.Role != RoleSpeaker || p.Muted {
			t.Fatalf("expected unmuted speaker, got role=%s muted=%v", p.Role, p.Muted)
		}
		return
	}
	t.Fatal("joiner missing from snapshot")
}

func TestJoinTwiceIsDuplicateParticipant(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	joinRoom(t, hub, "user-1", "Liam", "room-a", false)

	second := NewClient("conn-user-1-b", "user-1", "Liam")
	hub.RegisterClient(second)
	second.Commands <- &Command{Kind: CommandJoinRoom, Room: "room-a"}

	ev := mustEvent(t, second.Events, EventError)
	if ev.Error.Code != ErrCodeDuplicateParticipant {
		t.Fatalf("expected %s, got %s", ErrCodeDuplicateParticipant, ev.Error.Code)
	}
}

func TestHostConnectionClaimsSeededParticipant(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	host := joinRoom(t, hub, "host-1", "Hosting Harriet", "room-a", false)
	snap := snapshotOf(t, host, "room-a")

	seen := 0
	for _, p := range snap.Participants {
		if p.ID == "host-1" {
			seen++
			if p.Role != RoleHost {
				t.Fatalf("expected host role preserved, got %s", p.Role)
			}
		}
	}
	if seen != 1 {
		t.Fatalf("expected host to appear once, got %d", seen)
	}
}

func TestJoinRejectedAtCapacity(t *testing.T) {
	// Seeded host counts toward the two-seat capacity.
	hub := newTestHub(t, oneRoomCatalog("room-a", 2), &fixedDetector{}, SessionConfig{})

	joinRoom(t, hub, "user-1", "Liam", "room-a", false)

	late := NewClient("conn-user-2", "user-2", "Nora")
	hub.RegisterClient(late)
	late.Commands <- &Command{Kind: CommandJoinRoom, Room: "room-a"}

	ev := mustEvent(t, late.Events, EventError)
	if ev.Error.Code != ErrCodeRoomFull {
		t.Fatalf("expected %s, got %s", ErrCodeRoomFull, ev.Error.Code)
	}
}

func TestUnknownRoomIsNotFound(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	c := NewClient("conn-user-1", "user-1", "Liam")
	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandJoinRoom, Room: "no-such-room"}

	ev := mustEvent(t, c.Events, EventError)
	if ev.Error.Code != ErrCodeNotFound {
		t.Fatalf("expected %s, got %s", ErrCodeNotFound, ev.Error.Code)
	}
}

func TestPostMessageAppendsAndBroadcasts(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	author := joinRoom(t, hub, "user-1", "Liam", "room-a", false)
	other := joinRoom(t, hub, "user-2", "Nora", "room-a", false)

	author.Commands <- &Command{Kind: CommandPostMessage, Room: "room-a", Text: "  hello room  "}

	ev := mustEvent(t, other.Events, EventRoomMessage)
	if ev.Message.Text != "hello room" {
		t.Fatalf("expected trimmed text, got %q", ev.Message.Text)
	}
	if ev.Message.AuthorID != "user-1" || ev.Message.AuthorName != "Liam" {
		t.Fatalf("unexpected author: %s/%s", ev.Message.AuthorID, ev.Message.AuthorName)
	}
	if ev.Message.ID == "" {
		t.Fatal("expected a generated message id")
	}

	snap := snapshotOf(t, author, "room-a")
	if len(snap.Messages) != 1 {
		t.Fatalf("expected exactly one message in snapshot, got %d", len(snap.Messages))
	}
}

func TestPostBlankMessageRejected(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	author := joinRoom(t, hub, "user-1", "Liam", "room-a", false)
	author.Commands <- &Command{Kind: CommandPostMessage, Room: "room-a", Text: "   \n\t "}

	ev := mustEvent(t, author.Events, EventError)
	if ev.Error.Code != ErrCodeEmptyMessage {
		t.Fatalf("expected %s, got %s", ErrCodeEmptyMessage, ev.Error.Code)
	}

	snap := snapshotOf(t, author, "room-a")
	if len(snap.Messages) != 0 {
		t.Fatalf("expected no messages after rejection, got %d", len(snap.Messages))
	}
}

func TestReactionCountersIncrement(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	c := joinRoom(t, hub, "user-1", "Liam", "room-a", false)

	c.Commands <- &Command{Kind: CommandReact, Room: "room-a", Emoji: "🔥"}
	ev := mustEvent(t, c.Events, EventReaction)
	if ev.Emoji != "🔥" || ev.Count != 1 {
		t.Fatalf("expected 🔥=1, got %s=%d", ev.Emoji, ev.Count)
	}

	c.Commands <- &Command{Kind: CommandReact, Room: "room-a", Emoji: "🔥"}
	ev = mustEvent(t, c.Events, EventReaction)
	if ev.Count != 2 {
		t.Fatalf("expected 🔥=2, got %d", ev.Count)
	}

	// A never-seen key starts its own counter.
	c.Commands <- &Command{Kind: CommandReact, Room: "room-a", Emoji: "🎉"}
	ev = mustEvent(t, c.Events, EventReaction)
	if ev.Emoji != "🎉" || ev.Count != 1 {
		t.Fatalf("expected 🎉=1, got %s=%d", ev.Emoji, ev.Count)
	}

	snap := snapshotOf(t, c, "room-a")
	if snap.Reactions["🔥"] != 2 || snap.Reactions["🎉"] != 1 {
		t.Fatalf("unexpected counters: %v", snap.Reactions)
	}
}

func TestHostPromotesListener(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	host := joinRoom(t, hub, "host-1", "Hosting Harriet", "room-a", false)
	joinRoom(t, hub, "user-1", "Liam", "room-a", false)

	host.Commands <- &Command{Kind: CommandPromote, Room: "room-a", TargetID: "user-1"}
	ev := mustEvent(t, host.Events, EventRoleChanged)
	if ev.Participant.ID != "user-1" || ev.Participant.Role != RoleSpeaker {
		t.Fatalf("expected user-1 promoted to speaker, got %s/%s", ev.Participant.ID, ev.Participant.Role)
	}
	if ev.Participant.Muted {
		t.Fatal("promotion should unmute the new speaker")
	}
}

func TestPromoteByNonHostForbidden(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	speaker := joinRoom(t, hub, "user-1", "Liam", "room-a", true)
	joinRoom(t, hub, "user-2", "Nora", "room-a", false)

	speaker.Commands <- &Command{Kind: CommandPromote, Room: "room-a", TargetID: "user-2"}
	ev := mustEvent(t, speaker.Events, EventError)
	if ev.Error.Code != ErrCodeForbidden {
		t.Fatalf("expected %s, got %s", ErrCodeForbidden, ev.Error.Code)
	}

	snap := snapshotOf(t, speaker, "room-a")
	for _, p := range snap.Participants {
		if p.ID == "user-2" && p.Role != RoleListener {
			t.Fatalf("failed promotion must not change state, got role %s", p.Role)
		}
	}
}

func TestPromoteSpeakerInvalidTransition(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	host := joinRoom(t, hub, "host-1", "Hosting Harriet", "room-a", false)
	joinRoom(t, hub, "user-1", "Liam", "room-a", true)

	host.Commands <- &Command{Kind: CommandPromote, Room: "room-a", TargetID: "user-1"}
	ev := mustEvent(t, host.Events, EventError)
	if ev.Error.Code != ErrCodeInvalidTransition {
		t.Fatalf("expected %s, got %s", ErrCodeInvalidTransition, ev.Error.Code)
	}
}

func TestHostDemotesSpeaker(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	host := joinRoom(t, hub, "host-1", "Hosting Harriet", "room-a", false)
	joinRoom(t, hub, "user-1", "Liam", "room-a", true)

	host.Commands <- &Command{Kind: CommandDemote, Room: "room-a", TargetID: "user-1"}
	ev := mustEvent(t, host.Events, EventRoleChanged)
	if ev.Participant.Role != RoleListener || !ev.Participant.Muted {
		t.Fatalf("expected muted listener after demotion, got role=%s muted=%v", ev.Participant.Role, ev.Participant.Muted)
	}
}

func TestDemoteHostInvalidTransition(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	host := joinRoom(t, hub, "host-1", "Hosting Harriet", "room-a", false)

	host.Commands <- &Command{Kind: CommandDemote, Room: "room-a", TargetID: "host-1"}
	ev := mustEvent(t, host.Events, EventError)
	if ev.Error.Code != ErrCodeInvalidTransition {
		t.Fatalf("expected %s, got %s", ErrCodeInvalidTransition, ev.Error.Code)
	}

	snap := snapshotOf(t, host, "room-a")
	for _, p := range snap.Participants {
		if p.ID == "host-1" && p.Role != RoleHost {
			t.Fatalf("host role must be immutable, got %s", p.Role)
		}
	}
}

func TestDemoteListenerInvalidTransition(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	host := joinRoom(t, hub, "host-1", "Hosting Harriet", "room-a", false)
	joinRoom(t, hub, "user-1", "Liam", "room-a", false)

	host.Commands <- &Command{Kind: CommandDemote, Room: "room-a", TargetID: "user-1"}
	ev := mustEvent(t, host.Events, EventError)
	if ev.Error.Code != ErrCodeInvalidTransition {
		t.Fatalf("expected %s, got %s", ErrCodeInvalidTransition, ev.Error.Code)
	}
}

func TestDoublePromotionSerialized(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	host := joinRoom(t, hub, "host-1", "Hosting Harriet", "room-a", false)
	joinRoom(t, hub, "user-1", "Liam", "room-a", false)

	// Both commands target the same listener; the session actor applies them
	// in arrival order, so exactly one succeeds.
	host.Commands <- &Command{Kind: CommandPromote, Room: "room-a", TargetID: "user-1"}
	host.Commands <- &Command{Kind: CommandPromote, Room: "room-a", TargetID: "user-1"}

	mustEvent(t, host.Events, EventRoleChanged)
	ev := mustEvent(t, host.Events, EventError)
	if ev.Error.Code != ErrCodeInvalidTransition {
		t.Fatalf("expected %s, got %s", ErrCodeInvalidTransition, ev.Error.Code)
	}
}

func TestToggleOwnMute(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	speaker := joinRoom(t, hub, "user-1", "Liam", "room-a", true)

	speaker.Commands <- &Command{Kind: CommandToggleMute, Room: "room-a"}
	ev := mustEvent(t, speaker.Events, EventMuteChanged)
	if !ev.Participant.Muted {
		t.Fatal("expected first toggle to mute")
	}

	speaker.Commands <- &Command{Kind: CommandToggleMute, Room: "room-a"}
	ev = mustEvent(t, speaker.Events, EventMuteChanged)
	if ev.Participant.Muted {
		t.Fatal("expected second toggle to unmute")
	}
}

func TestToggleOtherMuteForbidden(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	speaker := joinRoom(t, hub, "user-1", "Liam", "room-a", true)
	joinRoom(t, hub, "user-2", "Nora", "room-a", true)

	speaker.Commands <- &Command{Kind: CommandToggleMute, Room: "room-a", TargetID: "user-2"}
	ev := mustEvent(t, speaker.Events, EventError)
	if ev.Error.Code != ErrCodeForbidden {
		t.Fatalf("expected %s, got %s", ErrCodeForbidden, ev.Error.Code)
	}
}

func TestHostLeaveClosesSession(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	host := joinRoom(t, hub, "host-1", "Hosting Harriet", "room-a", false)
	listener := joinRoom(t, hub, "user-1", "Liam", "room-a", false)

	host.Commands <- &Command{Kind: CommandLeaveRoom, Room: "room-a"}

	mustEvent(t, listener.Events, EventSessionClosed)
}

func TestLeaverObservesNothingAfterLeave(t *testing.T) {
	cat := oneRoomCatalog("room-a", 0)
	hub := newTestHub(t, cat, &fixedDetector{active: []string{"host-1"}}, SessionConfig{
		PresenceInterval: 20 * time.Millisecond,
	})

	stayer := joinRoom(t, hub, "user-1", "Liam", "room-a", true)
	leaver := joinRoom(t, hub, "user-2", "Nora", "room-a", false)

	// Presence updates flow while attached.
	mustEvent(t, leaver.Events, EventActiveSpeakers)

	leaver.Commands <- &Command{Kind: CommandLeaveRoom, Room: "room-a"}
	mustEvent(t, stayer.Events, EventParticipantLeft)

	// Drain anything that raced the leave, then require silence.
	for {
		select {
		case <-leaver.Events:
			continue
		default:
		}
		break
	}
	noEvent(t, leaver.Events, EventActiveSpeakers, 100*time.Millisecond)
}

func TestActiveSpeakersConstrainedToEligible(t *testing.T) {
	cat := oneRoomCatalog("room-a", 0)
	// The detector claims a listener and an unknown id are speaking; the
	// session must filter both out.
	hub := newTestHub(t, cat, &fixedDetector{active: []string{"host-1", "user-2", "ghost"}}, SessionConfig{
		PresenceInterval: 20 * time.Millisecond,
	})

	c := joinRoom(t, hub, "user-1", "Liam", "room-a", true)
	joinRoom(t, hub, "user-2", "Nora", "room-a", false)

	ev := mustEvent(t, c.Events, EventActiveSpeakers)
	for _, id := range ev.ActiveSpeakers {
		if id != "host-1" {
			t.Fatalf("non-eligible id %q reported active", id)
		}
	}
}

func TestHandRaiseNotifiesHostAfterDelay(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{
		HandNotifyDelay: 30 * time.Millisecond,
	})

	host := joinRoom(t, hub, "host-1", "Hosting Harriet", "room-a", false)
	listener := joinRoom(t, hub, "user-1", "Liam", "room-a", false)

	listener.Commands <- &Command{Kind: CommandRaiseHand, Room: "room-a"}

	ev := mustEvent(t, host.Events, EventHandRaised)
	if ev.Participant.ID != "user-1" || !ev.Participant.HandRaised {
		t.Fatalf("expected raised hand from user-1, got %+v", ev.Participant)
	}
}

func TestLowerHandCancelsNotification(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{
		HandNotifyDelay: 60 * time.Millisecond,
	})

	host := joinRoom(t, hub, "host-1", "Hosting Harriet", "room-a", false)
	listener := joinRoom(t, hub, "user-1", "Liam", "room-a", false)

	listener.Commands <- &Command{Kind: CommandRaiseHand, Room: "room-a"}
	listener.Commands <- &Command{Kind: CommandLowerHand, Room: "room-a"}

	noEvent(t, host.Events, EventHandRaised, 150*time.Millisecond)
}

func TestSnapshotFallsBackToCatalog(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	snap, err := hub.Snapshot(context.Background(), "room-a")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if snap.Room.ID != "room-a" || snap.Room.Title != "Test Room" {
		t.Fatalf("unexpected room info: %+v", snap.Room)
	}
	if len(snap.Participants) != 1 || snap.Participants[0].ID != "host-1" {
		t.Fatalf("expected only the seeded host, got %+v", snap.Participants)
	}
	if len(snap.Messages) != 0 {
		t.Fatalf("expected no messages in catalog view, got %d", len(snap.Messages))
	}
}

func TestSnapshotOfLiveSession(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	author := joinRoom(t, hub, "user-1", "Liam", "room-a", false)
	author.Commands <- &Command{Kind: CommandPostMessage, Room: "room-a", Text: "live view"}
	mustEvent(t, author.Events, EventRoomMessage)

	snap, err := hub.Snapshot(context.Background(), "room-a")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(snap.Messages) != 1 || snap.Messages[0].Text != "live view" {
		t.Fatalf("expected the posted message in the live view, got %+v", snap.Messages)
	}
}

func TestSnapshotUnknownRoomIsNotFound(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	if _, err := hub.Snapshot(context.Background(), "no-such-room"); err == nil {
		t.Fatal("expected an error for an unknown room")
	}
}

func TestUnregisterReleasesForwarders(t *testing.T) {
	hub := newTestHub(t, oneRoomCatalog("room-a", 0), &fixedDetector{}, SessionConfig{})

	before := runtime.NumGoroutine()

	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("churn-%d", i)
		c := NewClient("conn-"+id, id, id)
		hub.RegisterClient(c)
		c.Commands <- &Command{Kind: CommandJoinRoom, Room: "room-a"}
		mustEvent(t, c.Events, EventSnapshot)
		hub.UnregisterClient(c)
	}

	// Forwarder goroutines must wind down once their clients unregister.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= before+3 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("goroutines did not settle after churn: %d before, %d after", before, runtime.NumGoroutine())
}

func TestCloseReapsWithBusyChannel(t *testing.T) {
	reap := make(chan string, 1)
	reap <- "other-room" // channel already occupied when the session closes

	info := RoomInfo{ID: "room-a", Title: "Test Room", Topic: "Testing", HostID: "host-1"}
	seeds := []*Participant{{ID: "host-1", Name: "Hosting Harriet", Role: RoleHost, JoinedAt: time.Now().Add(-time.Hour)}}
	s := newSession(info, seeds, &fixedDetector{}, SessionConfig{PresenceInterval: time.Hour}, reap, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.run(ctx)

	host := NewClient("conn-host-1", "host-1", "Hosting Harriet")
	s.inbox <- envelope{client: host, cmd: &Command{Kind: CommandJoinRoom, Room: "room-a"}}
	mustEvent(t, host.Events, EventSnapshot)
	s.inbox <- envelope{client: host, cmd: &Command{Kind: CommandLeaveRoom, Room: "room-a"}}

	if got := <-reap; got != "other-room" {
		t.Fatalf("expected the queued id first, got %s", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case got := <-reap:
			if got != "room-a" {
				t.Fatalf("expected room-a reaped, got %s", got)
			}
			return
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatal("closed session was never reaped")
}

func TestEveryRaisedHandReachesHost(t *testing.T) {
	info := RoomInfo{ID: "room-a", Title: "Test Room", Topic: "Testing", HostID: "host-1"}
	seeds := []*Participant{{ID: "host-1", Name: "Hosting Harriet", Role: RoleHost, JoinedAt: time.Now().Add(-time.Hour)}}
	s := newSession(info, seeds, &fixedDetector{}, SessionConfig{
		PresenceInterval: time.Hour,
		HandNotifyDelay:  10 * time.Millisecond,
	}, make(chan string, 8), testLogger())

	host := NewClient("conn-host-1", "host-1", "Hosting Harriet")
	s.handle(envelope{client: host, cmd: &Command{Kind: CommandJoinRoom, Room: "room-a"}})

	// More hands than the notification channel buffers.
	const raised = 12
	for i := 0; i < raised; i++ {
		id := fmt.Sprintf("user-%d", i)
		c := NewClient("conn-"+id, id, id)
		s.handle(envelope{client: c, cmd: &Command{Kind: CommandJoinRoom, Room: "room-a"}})
		s.handle(envelope{client: c, cmd: &Command{Kind: CommandRaiseHand, Room: "room-a"}})
	}

	// Let every timer fire before the actor starts draining.
	time.Sleep(100 * time.Millisecond)

	// Clear the join broadcasts so all notifications fit the event buffer.
	for {
		select {
		case <-host.Events:
			continue
		default:
		}
		break
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.run(ctx)

	seen := make(map[string]struct{})
	for i := 0; i < raised; i++ {
		ev := mustEvent(t, host.Events, EventHandRaised)
		seen[ev.Participant.ID] = struct{}{}
	}
	if len(seen) != raised {
		t.Fatalf("expected %d distinct hand notifications, got %d", raised, len(seen))
	}
}

func TestUnregisterLeavesEveryRoom(t *testing.T) {
	cat := &stubCatalog{
		rooms: map[string]RoomInfo{
			"room-a": {ID: "room-a", Title: "A", HostID: "host-1"},
			"room-b": {ID: "room-b", Title: "B", HostID: "host-2"},
		},
		seeds: map[string][]*Participant{
			"room-a": {{ID: "host-1", Name: "A Host", Role: RoleHost, JoinedAt: time.Now().Add(-time.Hour)}},
			"room-b": {{ID: "host-2", Name: "B Host", Role: RoleHost, JoinedAt: time.Now().Add(-time.Hour)}},
		},
	}
	hub := newTestHub(t, cat, &fixedDetector{}, SessionConfig{})

	watcherA := joinRoom(t, hub, "user-9", "Watcher", "room-a", false)
	c := NewClient("conn-user-1", "user-1", "Liam")
	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandJoinRoom, Room: "room-a"}
	mustEvent(t, c.Events, EventSnapshot)
	c.Commands <- &Command{Kind: CommandJoinRoom, Room: "room-b"}
	mustEvent(t, c.Events, EventSnapshot)

	hub.UnregisterClient(c)

	ev := mustEvent(t, watcherA.Events, EventParticipantLeft)
	if ev.Participant.ID != "user-1" {
		t.Fatalf("expected user-1 to leave room-a, got %s", ev.Participant.ID)
	}
}
