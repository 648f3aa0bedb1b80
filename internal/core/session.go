package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RoomInfo is the immutable description of a room session.
type RoomInfo struct {
	ID          string
	Title       string
	Topic       string
	Description string
	HostID      string
	Capacity    int // 0 = unlimited
}

// SessionConfig tunes the timing of session background work.
type SessionConfig struct {
	// PresenceInterval is the cadence of active-speaker recomputation.
	PresenceInterval time.Duration
	// HandNotifyDelay is how long after a raised hand the host is notified.
	HandNotifyDelay time.Duration
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.PresenceInterval <= 0 {
		c.PresenceInterval = 3 * time.Second
	}
	if c.HandNotifyDelay <= 0 {
		c.HandNotifyDelay = 2 * time.Second
	}
	return c
}

// Snapshot is a consistent point-in-time view of one session.
type Snapshot struct {
	Room           RoomInfo
	Participants   []Participant
	Messages       []ChatMessage
	Reactions      map[string]int64
	ActiveSpeakers []string
}

// envelope pairs a command with its issuer. reply, when set, receives the
// result event instead of the issuer's event channel.
type envelope struct {
	client *Client
	cmd    *Command
	reply  chan *Event
}

// session is the aggregate root for one live room. All state is owned by
// the run goroutine; the hub is the only writer to inbox.
type session struct {
	info      RoomInfo
	reg       *registry
	messages  []ChatMessage
	reactions map[string]int64
	active    []string

	clients map[*Client]struct{}
	byUser  map[string]*Client

	handTimers map[string]*time.Timer
	handFired  chan string

	inbox    chan envelope
	detector ActivityDetector
	cfg      SessionConfig
	log      *zerolog.Logger

	cancel context.CancelFunc
	reap   chan<- string
	closed bool

	// ctx is set once when run starts; quit closes with the session so
	// pending timer goroutines never block forever.
	ctx  context.Context
	quit chan struct{}
}

func newSession(info RoomInfo, seeds []*Participant, detector ActivityDetector, cfg SessionConfig, reap chan<- string, logger *zerolog.Logger) *session {
	s := &session{
		info:       info,
		reg:        newRegistry(),
		reactions:  make(map[string]int64),
		clients:    make(map[*Client]struct{}),
		byUser:     make(map[string]*Client),
		handTimers: make(map[string]*time.Timer),
		handFired:  make(chan string, 8),
		inbox:      make(chan envelope, 64),
		quit:       make(chan struct{}),
		detector:   detector,
		cfg:        cfg.withDefaults(),
		reap:       reap,
		log:        logger,
	}
	for _, p := range seeds {
		if err := s.reg.add(p); err != nil {
			logger.Warn().Err(err).Str("room", info.ID).Str("participant", p.ID).Msg("skipping duplicate seed participant")
		}
	}
	return s
}

// run processes commands and periodic presence recomputation until the hub
// cancels the session context. Commands arriving after close are answered
// with a session_closed error rather than dropped.
func (s *session) run(ctx context.Context) {
	s.ctx = ctx
	ticker := time.NewTicker(s.cfg.PresenceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return
		case env := <-s.inbox:
			s.handle(env)
		case <-ticker.C:
			s.recomputePresence()
		case userID := <-s.handFired:
			s.notifyHostOfHand(userID)
		}
	}
}

func (s *session) handle(env envelope) {
	if s.closed && env.cmd.Kind != CommandLeaveRoom {
		s.fail(env, fmt.Errorf("%w: room %s", ErrSessionClosed, s.info.ID))
		return
	}

	var err error
	switch env.cmd.Kind {
	case CommandJoinRoom:
		err = s.join(env.client, env.cmd.AsSpeaker)
	case CommandLeaveRoom:
		s.leave(env.client)
	case CommandPostMessage:
		err = s.postMessage(env.client, env.cmd.Text)
	case CommandReact:
		s.react(env.cmd.Emoji)
	case CommandPromote:
		err = s.promote(env.client, env.cmd.TargetID)
	case CommandDemote:
		err = s.demote(env.client, env.cmd.TargetID)
	case CommandToggleMute:
		err = s.toggleMute(env.client, env.cmd.TargetID)
	case CommandRaiseHand:
		err = s.raiseHand(env.client)
	case CommandLowerHand:
		err = s.lowerHand(env.client)
	case CommandSnapshot:
		snap := s.snapshot()
		s.deliver(env, &Event{Kind: EventSnapshot, Room: s.info.ID, Snapshot: snap})
		return
	default:
		err = fmt.Errorf("unknown command kind %d", env.cmd.Kind)
	}
	if err != nil {
		s.fail(env, err)
	}
}

// join adds the client's participant to the session. The host participant
// is seeded at session creation; the host connecting later attaches to that
// seed instead of being rejected as a duplicate.
func (s *session) join(c *Client, asSpeaker bool) error {
	if c == nil {
		return fmt.Errorf("%w: join requires a connected client", ErrNotFound)
	}

	if existing, err := s.reg.get(c.UserID); err == nil {
		if c.UserID != s.info.HostID || s.byUser[c.UserID] != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, c.UserID)
		}
		s.attach(c)
		c.send(&Event{Kind: EventSnapshot, Room: s.info.ID, Snapshot: s.snapshot()})
		s.broadcast(&Event{Kind: EventParticipantJoined, Room: s.info.ID, Participant: copyOf(existing)})
		return nil
	}

	if s.info.Capacity > 0 && s.reg.size() >= s.info.Capacity {
		return fmt.Errorf("%w: room %s at capacity %d", ErrRoomFull, s.info.ID, s.info.Capacity)
	}

	p := &Participant{
		ID:        c.UserID,
		Name:      c.Name,
		AvatarURL: c.AvatarURL,
		Role:      RoleListener,
		Muted:     true,
		JoinedAt:  time.Now(),
	}
	if asSpeaker {
		p.Role = RoleSpeaker
		p.Muted = false
	}
	if err := s.reg.add(p); err != nil {
		return err
	}

	s.attach(c)
	c.send(&Event{Kind: EventSnapshot, Room: s.info.ID, Snapshot: s.snapshot()})
	s.broadcast(&Event{Kind: EventParticipantJoined, Room: s.info.ID, Participant: copyOf(p)})
	return nil
}

// leave removes the client's participant. Idempotent: leaving twice or
// leaving a room never joined is a no-op. The departing client is detached
// before anything is broadcast, so it observes nothing after leave. A host
// departure closes the whole session; there is no host succession.
func (s *session) leave(c *Client) {
	if c == nil {
		return
	}

	s.detach(c)
	s.cancelHandTimer(c.UserID)

	wasHost := c.UserID == s.info.HostID
	if p, err := s.reg.get(c.UserID); err == nil {
		s.reg.remove(c.UserID)
		s.broadcast(&Event{Kind: EventParticipantLeft, Room: s.info.ID, Participant: copyOf(p)})
	}

	if wasHost {
		s.close()
		return
	}
	if len(s.clients) == 0 {
		s.close()
	}
}

func (s *session) postMessage(c *Client, text string) error {
	author, err := s.participantOf(c)
	if err != nil {
		return err
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return fmt.Errorf("%w: message text is blank", ErrEmptyMessage)
	}

	msg := ChatMessage{
		ID:         uuid.NewString(),
		Room:       s.info.ID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Text:       trimmed,
		CreatedAt:  time.Now(),
	}
	s.messages = append(s.messages, msg)
	s.broadcast(&Event{Kind: EventRoomMessage, Room: s.info.ID, Message: &msg})
	return nil
}

// react increments the named reaction counter. Keys are not validated
// against a fixed set; any emoji starts its own counter at 1.
func (s *session) react(emoji string) {
	s.reactions[emoji]++
	s.broadcast(&Event{
		Kind:  EventReaction,
		Room:  s.info.ID,
		Emoji: emoji,
		Count: s.reactions[emoji],
	})
}

func (s *session) promote(c *Client, targetID string) error {
	actor, err := s.participantOf(c)
	if err != nil {
		return err
	}
	if actor.Role != RoleHost {
		return fmt.Errorf("%w: only the host may promote", ErrForbidden)
	}
	target, err := s.reg.get(targetID)
	if err != nil {
		return err
	}
	if target.Role.SpeakerClass() {
		return fmt.Errorf("%w: %s is already speaker-class", ErrInvalidTransition, targetID)
	}

	target.Role = RoleSpeaker
	target.Muted = false
	s.broadcast(&Event{Kind: EventRoleChanged, Room: s.info.ID, Participant: copyOf(target)})
	return nil
}

func (s *session) demote(c *Client, targetID string) error {
	actor, err := s.participantOf(c)
	if err != nil {
		return err
	}
	if actor.Role != RoleHost {
		return fmt.Errorf("%w: only the host may demote", ErrForbidden)
	}
	target, err := s.reg.get(targetID)
	if err != nil {
		return err
	}
	// The host role is immutable for the session lifetime.
	if target.Role != RoleSpeaker {
		return fmt.Errorf("%w: %s is not a speaker", ErrInvalidTransition, targetID)
	}

	target.Role = RoleListener
	target.Muted = true
	s.broadcast(&Event{Kind: EventRoleChanged, Room: s.info.ID, Participant: copyOf(target)})
	return nil
}

// toggleMute flips the actor's own mute flag. Mute state is owned by the
// session, never shared across rooms or the process.
func (s *session) toggleMute(c *Client, targetID string) error {
	actor, err := s.participantOf(c)
	if err != nil {
		return err
	}
	if targetID != "" && targetID != actor.ID {
		return fmt.Errorf("%w: cannot toggle another participant's mute", ErrForbidden)
	}

	actor.Muted = !actor.Muted
	s.broadcast(&Event{Kind: EventMuteChanged, Room: s.info.ID, Participant: copyOf(actor)})
	return nil
}

func (s *session) raiseHand(c *Client) error {
	p, err := s.participantOf(c)
	if err != nil {
		return err
	}
	if p.HandRaised {
		return nil
	}
	p.HandRaised = true

	// The host learns about the hand a little later, standing in for a push
	// notification reaching an inattentive host. The timer goroutine waits
	// for the actor to drain the channel; quit unblocks it on close.
	userID := p.ID
	s.handTimers[userID] = time.AfterFunc(s.cfg.HandNotifyDelay, func() {
		select {
		case s.handFired <- userID:
		case <-s.quit:
		}
	})
	return nil
}

func (s *session) lowerHand(c *Client) error {
	p, err := s.participantOf(c)
	if err != nil {
		return err
	}
	p.HandRaised = false
	s.cancelHandTimer(p.ID)
	return nil
}

// notifyHostOfHand delivers the deferred raised-hand event to the host's
// connected client, if the hand is still up.
func (s *session) notifyHostOfHand(userID string) {
	delete(s.handTimers, userID)
	if s.closed {
		return
	}
	p, err := s.reg.get(userID)
	if err != nil || !p.HandRaised {
		return
	}
	host, ok := s.byUser[s.info.HostID]
	if !ok {
		return
	}
	host.send(&Event{Kind: EventHandRaised, Room: s.info.ID, Participant: copyOf(p)})
}

// recomputePresence replaces the active-speaker set atomically. It runs
// only while at least one client observes the session.
func (s *session) recomputePresence() {
	if s.closed || len(s.clients) == 0 {
		return
	}

	eligible := s.reg.eligibleSpeakerIDs()
	detected := s.detector.Detect(eligible)

	// Constrain the result to the eligible set.
	allowed := make(map[string]struct{}, len(eligible))
	for _, id := range eligible {
		allowed[id] = struct{}{}
	}
	active := make([]string, 0, len(detected))
	for _, id := range detected {
		if _, ok := allowed[id]; ok {
			active = append(active, id)
		}
	}

	s.active = active
	s.broadcast(&Event{
		Kind:           EventActiveSpeakers,
		Room:           s.info.ID,
		ActiveSpeakers: append([]string(nil), active...),
	})
}

func (s *session) snapshot() *Snapshot {
	listed := s.reg.list(FilterAll)
	participants := make([]Participant, 0, len(listed))
	for _, p := range listed {
		participants = append(participants, *p)
	}
	reactions := make(map[string]int64, len(s.reactions))
	for k, v := range s.reactions {
		reactions[k] = v
	}
	return &Snapshot{
		Room:           s.info,
		Participants:   participants,
		Messages:       append([]ChatMessage(nil), s.messages...),
		Reactions:      reactions,
		ActiveSpeakers: append([]string(nil), s.active...),
	}
}

// close marks the session finished, evicts remaining clients, and asks the
// hub to reap it. Pending timers are stopped so nothing fires after close.
func (s *session) close() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.quit)

	s.broadcast(&Event{Kind: EventSessionClosed, Room: s.info.ID})
	for c := range s.clients {
		s.detach(c)
	}
	s.stopHandTimers()

	// Reap delivery is guaranteed: a closed session left in the hub's
	// routing map would reject every future join of this room. The
	// fallback goroutine gives up only when the hub itself stops.
	select {
	case s.reap <- s.info.ID:
	default:
		ctx := s.ctx
		go func() {
			select {
			case s.reap <- s.info.ID:
			case <-ctx.Done():
			}
		}()
	}
}

// shutdown releases timer resources when the hub cancels the session.
func (s *session) shutdown() {
	if !s.closed {
		s.closed = true
		close(s.quit)
	}
	s.stopHandTimers()
}

func (s *session) stopHandTimers() {
	for id, t := range s.handTimers {
		t.Stop()
		delete(s.handTimers, id)
	}
}

func (s *session) cancelHandTimer(userID string) {
	if t, ok := s.handTimers[userID]; ok {
		t.Stop()
		delete(s.handTimers, userID)
	}
}

func (s *session) attach(c *Client) {
	s.clients[c] = struct{}{}
	s.byUser[c.UserID] = c
	c.trackJoin(s.info.ID)
}

func (s *session) detach(c *Client) {
	delete(s.clients, c)
	if s.byUser[c.UserID] == c {
		delete(s.byUser, c.UserID)
	}
	c.trackLeave(s.info.ID)
}

func (s *session) participantOf(c *Client) (*Participant, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: no client", ErrNotFound)
	}
	return s.reg.get(c.UserID)
}

func (s *session) broadcast(ev *Event) {
	for c := range s.clients {
		c.send(ev)
	}
}

// deliver routes a result event to the reply channel when present,
// otherwise to the issuing client.
func (s *session) deliver(env envelope, ev *Event) {
	if env.reply != nil {
		env.reply <- ev
		return
	}
	if env.client != nil {
		env.client.send(ev)
	}
}

// fail reports a domain error to the issuer only. The aggregate state is
// untouched: every mutation validates before writing.
func (s *session) fail(env envelope, err error) {
	s.log.Debug().Err(err).Str("room", s.info.ID).Msg("command rejected")
	s.deliver(env, &Event{
		Kind:  EventError,
		Room:  s.info.ID,
		Error: coreError(errorCode(err), err.Error()),
	})
}

func copyOf(p *Participant) *Participant {
	cp := *p
	return &cp
}
