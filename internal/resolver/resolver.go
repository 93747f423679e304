// Package resolver maps scraped champions to wrestler rows and keeps them on
// the promotion's roster.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/IshaanNene/HotTag/internal/types"
)

// Store is the part of the data store the resolver reads and writes.
type Store interface {
	WrestlerBySourceID(ctx context.Context, sourceID string) (*types.Wrestler, error)
	WrestlerByName(ctx context.Context, name string) (*types.Wrestler, error)
	CreateWrestler(ctx context.Context, w types.NewWrestler) (*types.Wrestler, error)
	SetWrestlerSourceID(ctx context.Context, wrestlerID, sourceID string) error
	RosterMembership(ctx context.Context, wrestlerID, promotionID string) (*types.RosterMembership, error)
	InsertRosterMembership(ctx context.Context, wrestlerID, promotionID string) (*types.RosterMembership, error)
	ActivateRosterMembership(ctx context.Context, membershipID string) error
}

// Match says how a champion was resolved.
type Match string

const (
	MatchSourceID Match = "source_id"
	MatchName     Match = "name"
	MatchCreated  Match = "created"
)

// RosterAction says what the roster step wrote.
type RosterAction string

const (
	RosterExisting    RosterAction = "existing"
	RosterInserted    RosterAction = "inserted"
	RosterReactivated RosterAction = "reactivated"
)

// Resolution is the outcome of resolving one champion.
type Resolution struct {
	Wrestler   types.Wrestler
	Match      Match
	Backfilled bool
	SlugRetry  bool
	Roster     RosterAction
}

// Resolver resolves scraped champions.
type Resolver struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// New creates a resolver over store.
func New(store Store, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger.With("component", "resolver"),
		now:    time.Now,
	}
}

// Resolve finds or creates the wrestler for champion and makes sure it is an
// active roster member of promotionID. Lookup order is cagematch id, then
// case-insensitive name, then creation.
func (r *Resolver) Resolve(ctx context.Context, promotionID string, champion types.ScrapedChampion) (*Resolution, error) {
	res, err := r.findOrCreate(ctx, champion)
	if err != nil {
		return nil, &types.ResolveError{Champion: champion.Name, Err: err}
	}

	action, err := r.ensureRoster(ctx, res.Wrestler.ID, promotionID)
	if err != nil {
		return nil, &types.ResolveError{Champion: champion.Name, Err: err}
	}
	res.Roster = action

	r.logger.Debug("champion resolved",
		"champion", champion.Name,
		"wrestler_id", res.Wrestler.ID,
		"match", res.Match,
		"roster", res.Roster,
	)
	return res, nil
}

func (r *Resolver) findOrCreate(ctx context.Context, champion types.ScrapedChampion) (*Resolution, error) {
	if champion.SourceID != "" {
		w, err := r.store.WrestlerBySourceID(ctx, champion.SourceID)
		switch {
		case err == nil:
			return &Resolution{Wrestler: *w, Match: MatchSourceID}, nil
		case !errors.Is(err, types.ErrNotFound):
			return nil, err
		}
	}

	w, err := r.store.WrestlerByName(ctx, champion.Name)
	switch {
	case err == nil:
		res := &Resolution{Wrestler: *w, Match: MatchName}
		if champion.SourceID != "" && !w.HasSourceID() {
			if err := r.store.SetWrestlerSourceID(ctx, w.ID, champion.SourceID); err != nil {
				return nil, err
			}
			id := champion.SourceID
			res.Wrestler.CagematchID = &id
			res.Backfilled = true
			r.logger.Info("backfilled cagematch id", "wrestler", w.Name, "cagematch_id", id)
		}
		return res, nil
	case !errors.Is(err, types.ErrNotFound):
		return nil, err
	}

	return r.create(ctx, champion)
}

func (r *Resolver) create(ctx context.Context, champion types.ScrapedChampion) (*Resolution, error) {
	nw := types.NewWrestler{
		Name:        champion.Name,
		Slug:        Slugify(champion.Name),
		CagematchID: types.StringPtr(champion.SourceID),
	}

	w, err := r.store.CreateWrestler(ctx, nw)
	retried := false
	if errors.Is(err, types.ErrUniqueViolation) {
		nw.Slug = nw.Slug + "-" + strconv.FormatInt(r.now().UnixMilli(), 10)
		retried = true
		w, err = r.store.CreateWrestler(ctx, nw)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Info("created wrestler", "name", w.Name, "slug", w.Slug)
	return &Resolution{Wrestler: *w, Match: MatchCreated, SlugRetry: retried}, nil
}

func (r *Resolver) ensureRoster(ctx context.Context, wrestlerID, promotionID string) (RosterAction, error) {
	m, err := r.store.RosterMembership(ctx, wrestlerID, promotionID)
	switch {
	case errors.Is(err, types.ErrNotFound):
		if _, err := r.store.InsertRosterMembership(ctx, wrestlerID, promotionID); err != nil {
			return "", err
		}
		return RosterInserted, nil
	case err != nil:
		return "", err
	case m.IsActive:
		return RosterExisting, nil
	}

	if err := r.store.ActivateRosterMembership(ctx, m.ID); err != nil {
		return "", err
	}
	return RosterReactivated, nil
}
