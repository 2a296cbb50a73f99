package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctrld/internal/identity"
	"github.com/fyrsmithlabs/ctrld/internal/registry"
)

// Invocation is one inbound command: the text plus the metadata the
// transport delivers with it.
type Invocation struct {
	ChannelID string
	UserID    string
	Text      string
}

// Router parses invocations and dispatches them to registry operations.
// It holds no state between invocations: one command in, one outcome out.
type Router struct {
	reg     *registry.Registry
	linker  *identity.Linker
	metrics *Metrics
	logger  *zap.Logger
}

// NewRouter creates a router. metrics may be nil.
func NewRouter(reg *registry.Registry, linker *identity.Linker, metrics *Metrics, logger *zap.Logger) (*Router, error) {
	if reg == nil {
		return nil, errors.New("registry is required")
	}
	if linker == nil {
		return nil, errors.New("linker is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{reg: reg, linker: linker, metrics: metrics, logger: logger}, nil
}

// Dispatch handles one invocation end to end. Domain failures come back as
// outcomes, never as panics or dropped commands.
func (r *Router) Dispatch(ctx context.Context, inv Invocation) Outcome {
	start := time.Now()
	log := r.logger.With(
		zap.String("invocation_id", uuid.New().String()),
		zap.String("channel", inv.ChannelID),
		zap.String("user", inv.UserID),
	)

	cmd, err := Parse(inv.Text)
	if err != nil {
		r.metrics.observe("unknown", OutcomeInvalid, time.Since(start))
		log.Debug("invalid command", zap.String("text", inv.Text))
		return Outcome{Kind: OutcomeInvalid}
	}

	// The acting identity is resolved up front; commands work without a
	// link, so a miss is only a log detail.
	if actor, err := r.linker.Resolve(ctx, inv.UserID); err == nil {
		log = log.With(zap.String("actor", actor))
	}

	out := r.dispatch(ctx, cmd, inv, log)

	r.metrics.observe(cmd.Verb(), out.Kind, time.Since(start))
	log.Info("command dispatched",
		zap.String("verb", cmd.Verb()),
		zap.String("outcome", string(out.Kind)),
		zap.Duration("duration", time.Since(start)),
	)
	return out
}

func (r *Router) dispatch(ctx context.Context, cmd Command, inv Invocation, log *zap.Logger) Outcome {
	switch c := cmd.(type) {
	case Help:
		return Outcome{Kind: OutcomeHelp}

	case List:
		return r.list(ctx, log)

	case Show:
		return r.show(ctx, c, inv, log)

	case Create:
		if _, err := r.reg.Create(ctx, c.Project, inv.ChannelID); err != nil {
			return r.failure(err, Outcome{Project: c.Project}, log)
		}
		return Outcome{Kind: OutcomeCreated, Project: c.Project}

	case Delete:
		if err := r.reg.Delete(ctx, c.Project); err != nil {
			return r.failure(err, Outcome{Project: c.Project}, log)
		}
		return Outcome{Kind: OutcomeDeleted, Project: c.Project}

	case AddOwner:
		username, err := r.reg.AddOwner(ctx, c.Project, inv.UserID, c.Target)
		if err != nil {
			return r.failure(err, Outcome{Project: c.Project, Target: c.Target}, log)
		}
		return Outcome{Kind: OutcomeOwnerAdded, Project: c.Project, Username: username, Target: c.Target}

	case RemoveOwner:
		username, err := r.reg.RemoveOwner(ctx, c.Project, c.Target)
		if err != nil {
			return r.failure(err, Outcome{Project: c.Project, Target: c.Target}, log)
		}
		return Outcome{Kind: OutcomeOwnerRemoved, Project: c.Project, Username: username, Target: c.Target}

	case SetRepository:
		if err := r.reg.SetRepository(ctx, c.Project, c.Repository); err != nil {
			return r.failure(err, Outcome{Project: c.Project}, log)
		}
		return Outcome{Kind: OutcomeRepositorySet, Project: c.Project, Repository: c.Repository}

	case LinkIdentity:
		if err := r.reg.LinkIdentity(ctx, inv.UserID, c.Username); err != nil {
			return r.failure(err, Outcome{Username: c.Username}, log)
		}
		return Outcome{Kind: OutcomeIdentityLinked, Username: c.Username}

	default:
		// Parse only emits the variants above.
		log.Error("unhandled command variant", zap.String("verb", cmd.Verb()))
		return Outcome{Kind: OutcomeInvalid}
	}
}

// list builds the full-listing outcome from one manifest snapshot.
func (r *Router) list(ctx context.Context, log *zap.Logger) Outcome {
	m, err := r.reg.Snapshot(ctx)
	if err != nil {
		return r.failure(err, Outcome{}, log)
	}

	listing := &Listing{Managers: m.Managers}
	for _, name := range m.ProjectNames() {
		p := m.Projects[name]
		listing.Projects = append(listing.Projects, ProjectSummary{
			Name:       name,
			Channel:    p.Channel,
			Repository: p.Repository,
			Owners:     p.Owners,
		})
	}
	return Outcome{Kind: OutcomeListing, Listing: listing}
}

// show builds a project detail outcome. With no explicit name the project
// bound to the invoking channel is shown. Owner mentions are resolved
// against the same snapshot the project came from.
func (r *Router) show(ctx context.Context, c Show, inv Invocation, log *zap.Logger) Outcome {
	m, err := r.reg.Snapshot(ctx)
	if err != nil {
		return r.failure(err, Outcome{Project: c.Project}, log)
	}

	name := c.Project
	if name == "" {
		var ok bool
		if name, _, ok = m.ProjectByChannel(inv.ChannelID); !ok {
			return Outcome{Kind: OutcomeNotFound}
		}
	}

	p, ok := m.ProjectByName(name)
	if !ok {
		return Outcome{Kind: OutcomeNotFound, Project: name}
	}

	detail := &ProjectDetail{
		Name:       name,
		Channel:    p.Channel,
		Repository: p.Repository,
		Tracker:    p.Tracker,
	}
	for _, owner := range p.Owners {
		ref := OwnerRef{Username: owner}
		if id, _, ok := m.ProfileByUsername(owner); ok {
			ref.SlackID = id
		}
		detail.Owners = append(detail.Owners, ref)
	}
	return Outcome{Kind: OutcomeDetail, Project: name, Detail: detail}
}

// failure maps a registry error onto the matching outcome kind. Anything
// that is not a domain error is a store failure: the mutation may not be
// durable and the rendered message must not claim success.
func (r *Router) failure(err error, out Outcome, log *zap.Logger) Outcome {
	switch {
	case errors.Is(err, registry.ErrProjectNotFound):
		out.Kind = OutcomeNotFound
	case errors.Is(err, registry.ErrProjectExists):
		out.Kind = OutcomeAlreadyExists
	case errors.Is(err, registry.ErrNotLinked):
		out.Kind = OutcomeNotLinked
	case errors.Is(err, registry.ErrAlreadyOwner):
		out.Kind = OutcomeAlreadyOwner
	case errors.Is(err, registry.ErrNotOwner):
		out.Kind = OutcomeNotOwner
	default:
		out.Kind = OutcomeStoreFailure
		log.Error("command failed at the store boundary", zap.Error(err))
	}
	return out
}
