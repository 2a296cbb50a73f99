// Package identity resolves Slack users to their linked GitHub usernames
// and back.
//
// Ownership is recorded by GitHub username so it survives independent of
// the chat platform, while commands address users by Slack ID. The linker
// is the read-side bridge between the two.
package identity

import (
	"context"
	"errors"

	"github.com/fyrsmithlabs/ctrld/internal/registry"
)

// Linker resolves linked identities over registry lookups.
type Linker struct {
	reg *registry.Registry
}

// NewLinker creates a linker over the given registry.
func NewLinker(reg *registry.Registry) (*Linker, error) {
	if reg == nil {
		return nil, errors.New("registry is required")
	}
	return &Linker{reg: reg}, nil
}

// Resolve returns the GitHub username linked to a Slack user ID.
// Returns registry.ErrNotLinked when no profile exists.
func (l *Linker) Resolve(ctx context.Context, slackID string) (string, error) {
	p, err := l.reg.Profile(ctx, slackID)
	if err != nil {
		return "", err
	}
	return p.Username, nil
}

// ReverseLookup returns the Slack ID linked to a GitHub username.
// Usernames are not unique across profiles; the first match in sorted
// Slack-ID order wins.
func (l *Linker) ReverseLookup(ctx context.Context, username string) (string, error) {
	id, _, err := l.reg.ProfileByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	return id, nil
}
