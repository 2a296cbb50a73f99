package command

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctrld/internal/identity"
	"github.com/fyrsmithlabs/ctrld/internal/registry"
	"github.com/fyrsmithlabs/ctrld/internal/store"
)

func newTestRouter(t *testing.T) (*Router, *registry.Registry) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "manifest.toml"), zap.NewNop())
	require.NoError(t, err)
	reg, err := registry.New(st, zap.NewNop())
	require.NoError(t, err)
	linker, err := identity.NewLinker(reg)
	require.NoError(t, err)
	router, err := NewRouter(reg, linker, NewMetrics(prometheus.NewRegistry()), zap.NewNop())
	require.NoError(t, err)
	return router, reg
}

func dispatch(t *testing.T, r *Router, channel, user, text string) Outcome {
	t.Helper()
	return r.Dispatch(context.Background(), Invocation{
		ChannelID: channel,
		UserID:    user,
		Text:      text,
	})
}

func TestDispatchLifecycle(t *testing.T) {
	router, reg := newTestRouter(t)
	ctx := context.Background()

	out := dispatch(t, router, "C01", "U1", "create widgets")
	require.Equal(t, OutcomeCreated, out.Kind)
	assert.Equal(t, "widgets", out.Project)

	p, err := reg.Project(ctx, "widgets")
	require.NoError(t, err)
	assert.Equal(t, "C01", p.Channel)

	out = dispatch(t, router, "C01", "U1", "github widgets acme/widgets")
	require.Equal(t, OutcomeRepositorySet, out.Kind)
	assert.Equal(t, "acme/widgets", out.Repository)

	p, err = reg.Project(ctx, "widgets")
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets", p.Repository)

	out = dispatch(t, router, "C01", "U1", "delete widgets")
	require.Equal(t, OutcomeDeleted, out.Kind)

	_, err = reg.Project(ctx, "widgets")
	assert.ErrorIs(t, err, registry.ErrProjectNotFound)
}

func TestDispatchInvalid(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, text := range []string{"", "destroy widgets", "create", "add widgets nobody"} {
		out := dispatch(t, router, "C01", "U1", text)
		assert.Equal(t, OutcomeInvalid, out.Kind, "text %q", text)
	}
}

func TestDispatchHelp(t *testing.T) {
	router, _ := newTestRouter(t)

	out := dispatch(t, router, "C01", "U1", "help")
	assert.Equal(t, OutcomeHelp, out.Kind)
}

func TestDispatchOwnerFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	dispatch(t, router, "C01", "U1", "create widgets")

	t.Run("unlinked target", func(t *testing.T) {
		out := dispatch(t, router, "C01", "U1", "add widgets <@U2>")
		assert.Equal(t, OutcomeNotLinked, out.Kind)
	})

	dispatch(t, router, "D01", "U2", "me github alice")

	t.Run("add", func(t *testing.T) {
		out := dispatch(t, router, "C01", "U1", "add widgets <@U2>")
		require.Equal(t, OutcomeOwnerAdded, out.Kind)
		assert.Equal(t, "alice", out.Username)
		assert.Equal(t, "U2", out.Target)
	})

	t.Run("add again", func(t *testing.T) {
		out := dispatch(t, router, "C01", "U1", "add widgets <@U2>")
		assert.Equal(t, OutcomeAlreadyOwner, out.Kind)
	})

	t.Run("remove", func(t *testing.T) {
		out := dispatch(t, router, "C01", "U1", "remove widgets <@U2>")
		require.Equal(t, OutcomeOwnerRemoved, out.Kind)
		assert.Equal(t, "alice", out.Username)
	})

	t.Run("remove again", func(t *testing.T) {
		out := dispatch(t, router, "C01", "U1", "remove widgets <@U2>")
		assert.Equal(t, OutcomeNotOwner, out.Kind)
	})
}

func TestDispatchLinkOverwrite(t *testing.T) {
	router, reg := newTestRouter(t)
	ctx := context.Background()

	out := dispatch(t, router, "C01", "U1", "me github alice")
	require.Equal(t, OutcomeIdentityLinked, out.Kind)
	assert.Equal(t, "alice", out.Username)

	out = dispatch(t, router, "C01", "U1", "me github bob")
	require.Equal(t, OutcomeIdentityLinked, out.Kind)

	p, err := reg.Profile(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "bob", p.Username)
}

func TestDispatchNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	out := dispatch(t, router, "C01", "U1", "delete widgets")
	assert.Equal(t, OutcomeNotFound, out.Kind)

	out = dispatch(t, router, "C01", "U1", "github widgets acme/widgets")
	assert.Equal(t, OutcomeNotFound, out.Kind)

	out = dispatch(t, router, "C01", "U1", "project widgets")
	assert.Equal(t, OutcomeNotFound, out.Kind)
}

func TestDispatchAlreadyExists(t *testing.T) {
	router, _ := newTestRouter(t)

	dispatch(t, router, "C01", "U1", "create widgets")
	out := dispatch(t, router, "C02", "U1", "create widgets")
	assert.Equal(t, OutcomeAlreadyExists, out.Kind)
}

func TestDispatchListing(t *testing.T) {
	router, _ := newTestRouter(t)

	dispatch(t, router, "C01", "U1", "create widgets")
	dispatch(t, router, "C02", "U1", "create gadgets")
	dispatch(t, router, "C01", "U2", "me github alice")
	dispatch(t, router, "C01", "U1", "add widgets <@U2>")

	out := dispatch(t, router, "C01", "U1", "list")
	require.Equal(t, OutcomeListing, out.Kind)
	require.NotNil(t, out.Listing)
	require.Len(t, out.Listing.Projects, 2)

	// Sorted by name.
	assert.Equal(t, "gadgets", out.Listing.Projects[0].Name)
	assert.Equal(t, "widgets", out.Listing.Projects[1].Name)
	assert.Equal(t, []string{"alice"}, out.Listing.Projects[1].Owners)
}

func TestDispatchDetail(t *testing.T) {
	router, _ := newTestRouter(t)

	dispatch(t, router, "C01", "U1", "create widgets")
	dispatch(t, router, "C01", "U1", "github widgets acme/widgets")
	dispatch(t, router, "C01", "U2", "me github alice")
	dispatch(t, router, "C01", "U1", "add widgets <@U2>")

	t.Run("by name", func(t *testing.T) {
		out := dispatch(t, router, "C09", "U1", "project widgets")
		require.Equal(t, OutcomeDetail, out.Kind)
		require.NotNil(t, out.Detail)
		assert.Equal(t, "widgets", out.Detail.Name)
		assert.Equal(t, "acme/widgets", out.Detail.Repository)
		require.Len(t, out.Detail.Owners, 1)
		assert.Equal(t, "alice", out.Detail.Owners[0].Username)
		assert.Equal(t, "U2", out.Detail.Owners[0].SlackID)
	})

	t.Run("channel fallback", func(t *testing.T) {
		out := dispatch(t, router, "C01", "U1", "project")
		require.Equal(t, OutcomeDetail, out.Kind)
		assert.Equal(t, "widgets", out.Detail.Name)
	})

	t.Run("channel fallback without project", func(t *testing.T) {
		out := dispatch(t, router, "C99", "U1", "project")
		assert.Equal(t, OutcomeNotFound, out.Kind)
	})
}
