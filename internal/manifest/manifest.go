package manifest

import "sort"

// DefaultConfiguredProject is the placeholder default project pointer
// written into a fresh manifest. It is persisted but not consulted by any
// registry operation.
const DefaultConfiguredProject = "fyrsmithlabs/ctrld"

// Project is a named unit of work bound to a Slack channel.
type Project struct {
	// Channel is the Slack channel the project was created in. Not unique
	// across projects.
	Channel string `toml:"slack_channel"`

	// Repository is an optional GitHub "owner/repo" reference. Stored
	// opaque; nothing here validates or resolves it.
	Repository string `toml:"github_repo,omitempty"`

	// Tracker is an optional Jira project key.
	Tracker string `toml:"jira_project,omitempty"`

	// Owners holds GitHub usernames with management rights, in the order
	// they were added. No duplicates.
	Owners []string `toml:"project_owners"`
}

// HasOwner reports whether username is in the project's owner list.
func (p Project) HasOwner(username string) bool {
	for _, o := range p.Owners {
		if o == username {
			return true
		}
	}
	return false
}

// Profile links a Slack user ID to a GitHub username.
type Profile struct {
	Username string `toml:"github_username"`
}

// Manifest is the aggregate root: all projects, all profiles, plus the
// global manager list. The full manifest round-trips through the store on
// every mutating command.
type Manifest struct {
	ConfiguredProject string             `toml:"configured_project"`
	Managers          []string           `toml:"managers"`
	Projects          map[string]Project `toml:"projects"`
	Profiles          map[string]Profile `toml:"profiles"`
}

// Default returns an empty manifest with initialized maps and the fixed
// default project pointer.
func Default() *Manifest {
	return &Manifest{
		ConfiguredProject: DefaultConfiguredProject,
		Managers:          []string{},
		Projects:          make(map[string]Project),
		Profiles:          make(map[string]Profile),
	}
}

// Normalize initializes nil maps, e.g. after decoding a manifest written by
// an older version or edited by hand.
func (m *Manifest) Normalize() {
	if m.Projects == nil {
		m.Projects = make(map[string]Project)
	}
	if m.Profiles == nil {
		m.Profiles = make(map[string]Profile)
	}
	if m.Managers == nil {
		m.Managers = []string{}
	}
}

// ProjectNames returns all project names in sorted order.
func (m *Manifest) ProjectNames() []string {
	names := make([]string, 0, len(m.Projects))
	for name := range m.Projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProjectByName returns the project with the given name.
func (m *Manifest) ProjectByName(name string) (Project, bool) {
	p, ok := m.Projects[name]
	return p, ok
}

// ProjectByChannel returns the first project (in sorted name order) bound
// to the given Slack channel.
func (m *Manifest) ProjectByChannel(channel string) (string, Project, bool) {
	return m.findProject(func(p Project) bool { return p.Channel == channel })
}

// ProjectByRepository returns the first project (in sorted name order)
// whose GitHub repository matches.
func (m *Manifest) ProjectByRepository(repo string) (string, Project, bool) {
	if repo == "" {
		return "", Project{}, false
	}
	return m.findProject(func(p Project) bool { return p.Repository == repo })
}

// ProjectByTracker returns the first project (in sorted name order) whose
// Jira project key matches.
func (m *Manifest) ProjectByTracker(tracker string) (string, Project, bool) {
	if tracker == "" {
		return "", Project{}, false
	}
	return m.findProject(func(p Project) bool { return p.Tracker == tracker })
}

func (m *Manifest) findProject(match func(Project) bool) (string, Project, bool) {
	for _, name := range m.ProjectNames() {
		if p := m.Projects[name]; match(p) {
			return name, p, true
		}
	}
	return "", Project{}, false
}

// ProfileByID returns the profile linked to the given Slack user ID.
func (m *Manifest) ProfileByID(slackID string) (Profile, bool) {
	p, ok := m.Profiles[slackID]
	return p, ok
}

// ProfileByUsername returns the Slack ID and profile for the first profile
// (in sorted Slack-ID order) linked to the given GitHub username.
// Usernames are not unique; see the package comment.
func (m *Manifest) ProfileByUsername(username string) (string, Profile, bool) {
	if username == "" {
		return "", Profile{}, false
	}
	ids := make([]string, 0, len(m.Profiles))
	for id := range m.Profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if p := m.Profiles[id]; p.Username == username {
			return id, p, true
		}
	}
	return "", Profile{}, false
}
