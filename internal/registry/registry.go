package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctrld/internal/manifest"
	"github.com/fyrsmithlabs/ctrld/internal/store"
)

// Errors for registry operations.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectExists   = errors.New("project already exists")
	ErrNotLinked       = errors.New("user has no linked github account")
	ErrAlreadyOwner    = errors.New("user is already an owner of the project")
	ErrNotOwner        = errors.New("user is not an owner of the project")
)

// Registry owns all manifest mutations and lookups.
type Registry struct {
	mu     sync.RWMutex
	store  *store.Store
	logger *zap.Logger
}

// New creates a registry over the given store.
func New(st *store.Store, logger *zap.Logger) (*Registry, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{store: st, logger: logger}, nil
}

// Create inserts a new project bound to the given Slack channel, with no
// owners and no repository or tracker reference.
func (r *Registry) Create(ctx context.Context, name, channel string) (manifest.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.store.Load()
	if err != nil {
		return manifest.Project{}, err
	}

	if _, ok := m.ProjectByName(name); ok {
		return manifest.Project{}, fmt.Errorf("%q: %w", name, ErrProjectExists)
	}

	p := manifest.Project{
		Channel: channel,
		Owners:  []string{},
	}
	m.Projects[name] = p

	if err := r.store.Save(m); err != nil {
		return manifest.Project{}, err
	}

	r.logger.Info("created project",
		zap.String("project", name),
		zap.String("channel", channel),
	)
	return p, nil
}

// Delete removes a project unconditionally. Profiles are independent of
// projects, so there is no dependent cleanup.
func (r *Registry) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.store.Load()
	if err != nil {
		return err
	}

	if _, ok := m.ProjectByName(name); !ok {
		return fmt.Errorf("%q: %w", name, ErrProjectNotFound)
	}
	delete(m.Projects, name)

	if err := r.store.Save(m); err != nil {
		return err
	}

	r.logger.Info("deleted project", zap.String("project", name))
	return nil
}

// AddOwner appends the target user's linked GitHub username to the
// project's owner list. The target must have linked a profile first.
// Returns the username that was added.
func (r *Registry) AddOwner(ctx context.Context, name, actorID, targetID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.store.Load()
	if err != nil {
		return "", err
	}

	p, ok := m.ProjectByName(name)
	if !ok {
		return "", fmt.Errorf("%q: %w", name, ErrProjectNotFound)
	}
	profile, ok := m.ProfileByID(targetID)
	if !ok {
		return "", fmt.Errorf("%q: %w", targetID, ErrNotLinked)
	}
	if p.HasOwner(profile.Username) {
		return "", fmt.Errorf("%q: %w", profile.Username, ErrAlreadyOwner)
	}

	p.Owners = append(p.Owners, profile.Username)
	m.Projects[name] = p

	if err := r.store.Save(m); err != nil {
		return "", err
	}

	r.logger.Info("added project owner",
		zap.String("project", name),
		zap.String("owner", profile.Username),
		zap.String("target", targetID),
		zap.String("actor", actorID),
	)
	return profile.Username, nil
}

// RemoveOwner removes the target user's linked GitHub username from the
// project's owner list. Returns the username that was removed.
func (r *Registry) RemoveOwner(ctx context.Context, name, targetID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.store.Load()
	if err != nil {
		return "", err
	}

	p, ok := m.ProjectByName(name)
	if !ok {
		return "", fmt.Errorf("%q: %w", name, ErrProjectNotFound)
	}
	profile, ok := m.ProfileByID(targetID)
	if !ok {
		return "", fmt.Errorf("%q: %w", targetID, ErrNotLinked)
	}
	if !p.HasOwner(profile.Username) {
		return "", fmt.Errorf("%q: %w", profile.Username, ErrNotOwner)
	}

	owners := make([]string, 0, len(p.Owners)-1)
	for _, o := range p.Owners {
		if o != profile.Username {
			owners = append(owners, o)
		}
	}
	p.Owners = owners
	m.Projects[name] = p

	if err := r.store.Save(m); err != nil {
		return "", err
	}

	r.logger.Info("removed project owner",
		zap.String("project", name),
		zap.String("owner", profile.Username),
	)
	return profile.Username, nil
}

// SetRepository overwrites the project's GitHub repository reference. The
// reference is stored opaque; whoever consumes it validates it.
func (r *Registry) SetRepository(ctx context.Context, name, repo string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.store.Load()
	if err != nil {
		return err
	}

	p, ok := m.ProjectByName(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrProjectNotFound)
	}
	p.Repository = repo
	m.Projects[name] = p

	if err := r.store.Save(m); err != nil {
		return err
	}

	r.logger.Info("set project repository",
		zap.String("project", name),
		zap.String("repository", repo),
	)
	return nil
}

// LinkIdentity upserts the profile for a Slack user, overwriting any
// previous link. Idempotent; never fails on domain grounds.
func (r *Registry) LinkIdentity(ctx context.Context, slackID, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.store.Load()
	if err != nil {
		return err
	}

	m.Profiles[slackID] = manifest.Profile{Username: username}

	if err := r.store.Save(m); err != nil {
		return err
	}

	r.logger.Info("linked identity",
		zap.String("slack_id", slackID),
		zap.String("github_username", username),
	)
	return nil
}

// Project returns a project by name.
func (r *Registry) Project(ctx context.Context, name string) (manifest.Project, error) {
	m, err := r.snapshot()
	if err != nil {
		return manifest.Project{}, err
	}
	p, ok := m.ProjectByName(name)
	if !ok {
		return manifest.Project{}, fmt.Errorf("%q: %w", name, ErrProjectNotFound)
	}
	return p, nil
}

// ProjectByChannel returns the project bound to a Slack channel.
func (r *Registry) ProjectByChannel(ctx context.Context, channel string) (string, manifest.Project, error) {
	m, err := r.snapshot()
	if err != nil {
		return "", manifest.Project{}, err
	}
	name, p, ok := m.ProjectByChannel(channel)
	if !ok {
		return "", manifest.Project{}, fmt.Errorf("channel %q: %w", channel, ErrProjectNotFound)
	}
	return name, p, nil
}

// ProjectByRepository returns the project holding a repository reference.
func (r *Registry) ProjectByRepository(ctx context.Context, repo string) (string, manifest.Project, error) {
	m, err := r.snapshot()
	if err != nil {
		return "", manifest.Project{}, err
	}
	name, p, ok := m.ProjectByRepository(repo)
	if !ok {
		return "", manifest.Project{}, fmt.Errorf("repository %q: %w", repo, ErrProjectNotFound)
	}
	return name, p, nil
}

// ProjectByTracker returns the project holding a Jira project key.
func (r *Registry) ProjectByTracker(ctx context.Context, tracker string) (string, manifest.Project, error) {
	m, err := r.snapshot()
	if err != nil {
		return "", manifest.Project{}, err
	}
	name, p, ok := m.ProjectByTracker(tracker)
	if !ok {
		return "", manifest.Project{}, fmt.Errorf("tracker %q: %w", tracker, ErrProjectNotFound)
	}
	return name, p, nil
}

// Profile returns the profile linked to a Slack user ID.
func (r *Registry) Profile(ctx context.Context, slackID string) (manifest.Profile, error) {
	m, err := r.snapshot()
	if err != nil {
		return manifest.Profile{}, err
	}
	p, ok := m.ProfileByID(slackID)
	if !ok {
		return manifest.Profile{}, fmt.Errorf("%q: %w", slackID, ErrNotLinked)
	}
	return p, nil
}

// ProfileByUsername returns the Slack ID and profile linked to a GitHub
// username, first match in sorted Slack-ID order.
func (r *Registry) ProfileByUsername(ctx context.Context, username string) (string, manifest.Profile, error) {
	m, err := r.snapshot()
	if err != nil {
		return "", manifest.Profile{}, err
	}
	id, p, ok := m.ProfileByUsername(username)
	if !ok {
		return "", manifest.Profile{}, fmt.Errorf("%q: %w", username, ErrNotLinked)
	}
	return id, p, nil
}

// Snapshot returns the full current manifest.
func (r *Registry) Snapshot(ctx context.Context) (*manifest.Manifest, error) {
	return r.snapshot()
}

func (r *Registry) snapshot() (*manifest.Manifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.Load()
}
