package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kjarir/echosphere/internal/store"
)

// ErrUnknownIdentity is returned when a profile does not exist.
var ErrUnknownIdentity = errors.New("unknown identity")

// Provider resolves participant display metadata. There is no
// authentication: callers assert an identity id and the provider only
// supplies name and avatar for it.
type Provider struct {
	store store.ProfileStore
}

// NewProvider creates an identity provider backed by the profile store.
func NewProvider(st store.ProfileStore) *Provider {
	return &Provider{store: st}
}

// Resolve returns the profile for an identity id.
func (p *Provider) Resolve(ctx context.Context, id string) (*store.Profile, error) {
	profile, err := p.store.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownIdentity, id)
		}
		return nil, err
	}
	return profile, nil
}

// Ensure resolves a profile, creating a bare one for first-time visitors.
// The fallback display name is the id itself.
func (p *Provider) Ensure(ctx context.Context, id, displayName string) (*store.Profile, error) {
	profile, err := p.Resolve(ctx, id)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrUnknownIdentity) {
		return nil, err
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = id
	}
	created := &store.Profile{ID: id, DisplayName: name}
	if err := p.store.UpsertProfile(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}
