package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Catalog supplies room descriptions and their seeded participants when a
// session is first opened.
type Catalog interface {
	LookupRoom(ctx context.Context, roomID string) (*RoomInfo, []*Participant, error)
}

// Hub routes client commands to per-room sessions. Each session is a single
// actor goroutine, so commands against one room apply in arrival order while
// different rooms proceed in parallel.
type Hub struct {
	catalog  Catalog
	detector ActivityDetector
	cfg      SessionConfig
	log      *zerolog.Logger

	register   chan *Client
	unregister chan *Client
	inbox      chan envelope
	reapCh     chan string

	sessions map[string]*session
	cancels  map[string]context.CancelFunc
}

// NewHub creates a hub. A nil detector falls back to the random sampler.
func NewHub(catalog Catalog, detector ActivityDetector, cfg SessionConfig, logger *zerolog.Logger) *Hub {
	if detector == nil {
		detector = NewRandomSampler(time.Now().UnixNano())
	}
	return &Hub{
		catalog:    catalog,
		detector:   detector,
		cfg:        cfg.withDefaults(),
		log:        logger,
		register:   make(chan *Client, 8),
		unregister: make(chan *Client, 8),
		inbox:      make(chan envelope, 64),
		reapCh:     make(chan string, 8),
		sessions:   make(map[string]*session),
		cancels:    make(map[string]context.CancelFunc),
	}
}

// RegisterClient makes the hub consume the client's command channel.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient detaches the client; the hub issues a leave for every
// room the client was in, which stops that client's periodic updates and
// pending notifications.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Run processes registrations, commands, and session reaping until the
// context is cancelled. Cancelling Run stops every session cleanly.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for id, cancel := range h.cancels {
				cancel()
				delete(h.cancels, id)
				delete(h.sessions, id)
			}
			return
		case c := <-h.register:
			go h.forward(ctx, c)
		case c := <-h.unregister:
			for _, roomID := range c.joinedRooms() {
				if s, ok := h.sessions[roomID]; ok {
					s.inbox <- envelope{client: c, cmd: &Command{Kind: CommandLeaveRoom, Room: roomID}}
				}
			}
			c.stop()
		case env := <-h.inbox:
			h.route(ctx, env)
		case roomID := <-h.reapCh:
			if cancel, ok := h.cancels[roomID]; ok {
				cancel()
				delete(h.cancels, roomID)
				delete(h.sessions, roomID)
				h.log.Info().Str("room", roomID).Msg("session closed")
			}
		}
	}
}

// forward pumps one client's commands into the hub inbox until the client
// unregisters or the hub stops.
func (h *Hub) forward(ctx context.Context, c *Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.inbox <- envelope{client: c, cmd: cmd}:
			case <-ctx.Done():
				return
			case <-c.done:
				return
			}
		}
	}
}

func (h *Hub) route(ctx context.Context, env envelope) {
	s, ok := h.sessions[env.cmd.Room]
	if !ok {
		if env.cmd.Kind != CommandJoinRoom {
			h.routeError(env, fmt.Errorf("%w: room %s has no open session", ErrNotFound, env.cmd.Room))
			return
		}
		opened, err := h.open(ctx, env.cmd.Room)
		if err != nil {
			h.routeError(env, err)
			return
		}
		s = opened
	}
	s.inbox <- env
}

// open creates a session from the catalog entry and starts its actor.
func (h *Hub) open(ctx context.Context, roomID string) (*session, error) {
	info, seeds, err := h.catalog.LookupRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	s := newSession(*info, seeds, h.detector, h.cfg, h.reapCh, h.log)
	sctx, cancel := context.WithCancel(ctx)
	h.sessions[roomID] = s
	h.cancels[roomID] = cancel
	go s.run(sctx)

	h.log.Info().Str("room", roomID).Str("title", info.Title).Msg("session opened")
	return s, nil
}

func (h *Hub) routeError(env envelope, err error) {
	ev := &Event{
		Kind:  EventError,
		Room:  env.cmd.Room,
		Error: coreError(errorCode(err), err.Error()),
	}
	if env.reply != nil {
		env.reply <- ev
		return
	}
	if env.client != nil {
		env.client.send(ev)
	}
}

// Snapshot returns a point-in-time view of a room. A live session answers
// from its own state; otherwise the view is synthesized from the catalog
// entry and its seeded participants.
func (h *Hub) Snapshot(ctx context.Context, roomID string) (*Snapshot, error) {
	reply := make(chan *Event, 1)
	select {
	case h.inbox <- envelope{cmd: &Command{Kind: CommandSnapshot, Room: roomID}, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case ev := <-reply:
		if ev.Error != nil {
			if ev.Error.Code == ErrCodeNotFound {
				return h.catalogSnapshot(ctx, roomID)
			}
			return nil, ev.Error
		}
		return ev.Snapshot, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) catalogSnapshot(ctx context.Context, roomID string) (*Snapshot, error) {
	info, seeds, err := h.catalog.LookupRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	reg := newRegistry()
	for _, p := range seeds {
		_ = reg.add(p)
	}
	listed := reg.list(FilterAll)
	participants := make([]Participant, 0, len(listed))
	for _, p := range listed {
		participants = append(participants, *p)
	}
	return &Snapshot{
		Room:         *info,
		Participants: participants,
		Reactions:    map[string]int64{},
	}, nil
}
