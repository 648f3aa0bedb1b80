package core

import "sync"

// Client is a connected participant view as seen by the core layer. The
// transport layer fills in identity fields before registering the client.
type Client struct {
	ID        string // connection id
	UserID    string // participant identity asserted by the transport
	Name      string
	AvatarURL string
	Commands  chan *Command
	Events    chan *Event

	// rooms is written by session actors and read by the hub, so it is
	// guarded rather than owned by a single goroutine.
	mu    sync.Mutex
	rooms map[string]struct{}

	// done stops the hub's forwarder when the client unregisters.
	done     chan struct{}
	stopOnce sync.Once
}

// NewClient constructs a client with initialized channels.
func NewClient(id, userID, name string) *Client {
	if name == "" {
		name = userID
	}
	return &Client{
		ID:       id,
		UserID:   userID,
		Name:     name,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 16),
		rooms:    make(map[string]struct{}),
		done:     make(chan struct{}),
	}
}

// stop releases the forwarder goroutine. Safe to call more than once.
func (c *Client) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// send delivers an event to the client, dropping it if the consumer is slow.
func (c *Client) send(ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}

func (c *Client) trackJoin(room string) {
	c.mu.Lock()
	c.rooms[room] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) trackLeave(room string) {
	c.mu.Lock()
	delete(c.rooms, room)
	c.mu.Unlock()
}

// joinedRooms returns the rooms the client is currently attached to.
func (c *Client) joinedRooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		out = append(out, room)
	}
	return out
}
