package manifest

import (
	"bytes"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	m := Default()

	assert.Equal(t, DefaultConfiguredProject, m.ConfiguredProject)
	assert.Empty(t, m.Projects)
	assert.Empty(t, m.Profiles)
	assert.Empty(t, m.Managers)
	assert.NotNil(t, m.Projects)
	assert.NotNil(t, m.Profiles)
}

func TestNormalize(t *testing.T) {
	var m Manifest
	m.Normalize()

	assert.NotNil(t, m.Projects)
	assert.NotNil(t, m.Profiles)
	assert.NotNil(t, m.Managers)
}

func TestProjectHasOwner(t *testing.T) {
	p := Project{Owners: []string{"alice", "bob"}}

	assert.True(t, p.HasOwner("alice"))
	assert.True(t, p.HasOwner("bob"))
	assert.False(t, p.HasOwner("carol"))
	assert.False(t, Project{}.HasOwner("alice"))
}

func TestProjectLookups(t *testing.T) {
	m := Default()
	m.Projects["widgets"] = Project{
		Channel:    "C01",
		Repository: "acme/widgets",
		Tracker:    "WID",
	}
	m.Projects["gadgets"] = Project{Channel: "C02"}

	t.Run("by name", func(t *testing.T) {
		p, ok := m.ProjectByName("widgets")
		require.True(t, ok)
		assert.Equal(t, "C01", p.Channel)

		_, ok = m.ProjectByName("missing")
		assert.False(t, ok)
	})

	t.Run("by channel", func(t *testing.T) {
		name, p, ok := m.ProjectByChannel("C02")
		require.True(t, ok)
		assert.Equal(t, "gadgets", name)
		assert.Equal(t, "C02", p.Channel)

		_, _, ok = m.ProjectByChannel("C99")
		assert.False(t, ok)
	})

	t.Run("by repository", func(t *testing.T) {
		name, _, ok := m.ProjectByRepository("acme/widgets")
		require.True(t, ok)
		assert.Equal(t, "widgets", name)

		// Empty repository never matches a project without one.
		_, _, ok = m.ProjectByRepository("")
		assert.False(t, ok)
	})

	t.Run("by tracker", func(t *testing.T) {
		name, _, ok := m.ProjectByTracker("WID")
		require.True(t, ok)
		assert.Equal(t, "widgets", name)

		_, _, ok = m.ProjectByTracker("")
		assert.False(t, ok)
	})
}

func TestProfileByUsernameFirstMatch(t *testing.T) {
	m := Default()
	m.Profiles["U2"] = Profile{Username: "alice"}
	m.Profiles["U1"] = Profile{Username: "alice"}
	m.Profiles["U3"] = Profile{Username: "bob"}

	// Duplicate usernames resolve to the sorted-first Slack ID.
	id, p, ok := m.ProfileByUsername("alice")
	require.True(t, ok)
	assert.Equal(t, "U1", id)
	assert.Equal(t, "alice", p.Username)

	_, _, ok = m.ProfileByUsername("carol")
	assert.False(t, ok)

	_, _, ok = m.ProfileByUsername("")
	assert.False(t, ok)
}

func TestTOMLRoundTrip(t *testing.T) {
	m := Default()
	m.Managers = []string{"octocat"}
	m.Projects["widgets"] = Project{
		Channel:    "C01",
		Repository: "acme/widgets",
		Tracker:    "WID",
		Owners:     []string{"alice", "bob"},
	}
	m.Projects["gadgets"] = Project{Channel: "C02", Owners: []string{}}
	m.Profiles["U1"] = Profile{Username: "alice"}

	var buf bytes.Buffer
	require.NoError(t, toml.NewEncoder(&buf).Encode(m))

	var got Manifest
	_, err := toml.Decode(buf.String(), &got)
	require.NoError(t, err)
	got.Normalize()

	assert.Equal(t, m.ConfiguredProject, got.ConfiguredProject)
	assert.Equal(t, m.Managers, got.Managers)
	assert.Equal(t, m.Projects["widgets"], got.Projects["widgets"])
	assert.Equal(t, m.Projects["gadgets"].Channel, got.Projects["gadgets"].Channel)
	assert.Equal(t, m.Profiles, got.Profiles)
}

func TestTOMLOmitsUnsetReferences(t *testing.T) {
	m := Default()
	m.Projects["bare"] = Project{Channel: "C01"}

	var buf bytes.Buffer
	require.NoError(t, toml.NewEncoder(&buf).Encode(m))

	assert.NotContains(t, buf.String(), "github_repo")
	assert.NotContains(t, buf.String(), "jira_project")
	assert.Contains(t, buf.String(), "slack_channel")
}
