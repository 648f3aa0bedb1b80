package core

import (
	"fmt"
	"sort"
)

// RoleFilter selects which participants a listing returns.
type RoleFilter int

const (
	FilterAll RoleFilter = iota
	FilterHost
	FilterSpeakers
	FilterListeners
)

// registry tracks every participant of one session, keyed by id.
// It is owned by the session actor and never accessed concurrently.
type registry struct {
	participants map[string]*Participant
}

func newRegistry() *registry {
	return &registry{participants: make(map[string]*Participant)}
}

// add inserts a participant. Rejects an id that is already present.
func (g *registry) add(p *Participant) error {
	if _, exists := g.participants[p.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateParticipant, p.ID)
	}
	g.participants[p.ID] = p
	return nil
}

// remove deletes a participant. Returns true if removed, false if absent.
func (g *registry) remove(id string) bool {
	if _, exists := g.participants[id]; !exists {
		return false
	}
	delete(g.participants, id)
	return true
}

func (g *registry) get(id string) (*Participant, error) {
	p, ok := g.participants[id]
	if !ok {
		return nil, fmt.Errorf("%w: participant %s", ErrNotFound, id)
	}
	return p, nil
}

func (g *registry) size() int {
	return len(g.participants)
}

// host returns the session host, or nil if none is registered.
func (g *registry) host() *Participant {
	for _, p := range g.participants {
		if p.Role == RoleHost {
			return p
		}
	}
	return nil
}

// list returns participants matching the filter: host first, then speakers
// by join time ascending, then listeners by join time descending. Surfacing
// the newest listeners first is a deliberate product choice.
func (g *registry) list(filter RoleFilter) []*Participant {
	out := make([]*Participant, 0, len(g.participants))
	for _, p := range g.participants {
		switch filter {
		case FilterHost:
			if p.Role != RoleHost {
				continue
			}
		case FilterSpeakers:
			if p.Role != RoleSpeaker {
				continue
			}
		case FilterListeners:
			if p.Role != RoleListener {
				continue
			}
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Role == RoleHost) != (b.Role == RoleHost) {
			return a.Role == RoleHost
		}
		if a.Role.SpeakerClass() != b.Role.SpeakerClass() {
			return a.Role.SpeakerClass()
		}
		if a.Role == RoleListener {
			if !a.JoinedAt.Equal(b.JoinedAt) {
				return a.JoinedAt.After(b.JoinedAt)
			}
			return a.ID < b.ID
		}
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.ID < b.ID
	})
	return out
}

// eligibleSpeakerIDs returns ids of speaker-class, unmuted participants in
// stable order. This is the input contract of the activity detector.
func (g *registry) eligibleSpeakerIDs() []string {
	ids := make([]string, 0, len(g.participants))
	for _, p := range g.participants {
		if p.Role.SpeakerClass() && !p.Muted {
			ids = append(ids, p.ID)
		}
	}
	sort.Strings(ids)
	return ids
}
