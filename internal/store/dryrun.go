package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/IshaanNene/HotTag/internal/types"
)

// DryRun forwards reads to the wrapped store and logs writes without sending
// them. Created rows get generated ids and are remembered, so later reads in
// the same run see them the way they would after a real write.
type DryRun struct {
	inner  Store
	logger *slog.Logger

	mu        sync.Mutex
	wrestlers []types.Wrestler
	seen      map[string]types.Wrestler
	roster    map[string]types.RosterMembership
	members   map[string]types.RosterMembership
}

// NewDryRun wraps inner.
func NewDryRun(inner Store, logger *slog.Logger) *DryRun {
	return &DryRun{
		inner:   inner,
		logger:  logger.With("component", "dry_run"),
		seen:    make(map[string]types.Wrestler),
		roster:  make(map[string]types.RosterMembership),
		members: make(map[string]types.RosterMembership),
	}
}

func rosterKey(wrestlerID, promotionID string) string {
	return wrestlerID + "/" + promotionID
}

func (d *DryRun) Name() string { return d.inner.Name() + "+dry-run" }

func (d *DryRun) Close() error { return d.inner.Close() }

func (d *DryRun) ListPromotionsWithSource(ctx context.Context) ([]types.Promotion, error) {
	return d.inner.ListPromotionsWithSource(ctx)
}

func (d *DryRun) PromotionBySlug(ctx context.Context, slug string) (*types.Promotion, error) {
	return d.inner.PromotionBySlug(ctx, slug)
}

func (d *DryRun) WrestlerBySourceID(ctx context.Context, sourceID string) (*types.Wrestler, error) {
	d.mu.Lock()
	for _, w := range d.wrestlers {
		if w.CagematchID != nil && *w.CagematchID == sourceID {
			d.mu.Unlock()
			return &w, nil
		}
	}
	d.mu.Unlock()

	return d.remember(d.inner.WrestlerBySourceID(ctx, sourceID))
}

func (d *DryRun) WrestlerByName(ctx context.Context, name string) (*types.Wrestler, error) {
	d.mu.Lock()
	for _, w := range d.wrestlers {
		if strings.EqualFold(w.Name, name) {
			d.mu.Unlock()
			return &w, nil
		}
	}
	d.mu.Unlock()

	return d.remember(d.inner.WrestlerByName(ctx, name))
}

// remember records a wrestler read from the inner store so a later backfill
// can be replayed on reads.
func (d *DryRun) remember(w *types.Wrestler, err error) (*types.Wrestler, error) {
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.seen[w.ID] = *w
	d.mu.Unlock()
	return w, nil
}

func (d *DryRun) RosterMembership(ctx context.Context, wrestlerID, promotionID string) (*types.RosterMembership, error) {
	d.mu.Lock()
	m, ok := d.roster[rosterKey(wrestlerID, promotionID)]
	d.mu.Unlock()
	if ok {
		return &m, nil
	}

	found, err := d.inner.RosterMembership(ctx, wrestlerID, promotionID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.members[found.ID] = *found
	d.mu.Unlock()
	return found, nil
}

func (d *DryRun) ChampionshipsByPromotion(ctx context.Context, promotionID string) ([]types.Championship, error) {
	return d.inner.ChampionshipsByPromotion(ctx, promotionID)
}

func (d *DryRun) CreateWrestler(_ context.Context, w types.NewWrestler) (*types.Wrestler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Slugs are unique among wrestlers written in this run.
	for _, existing := range d.wrestlers {
		if existing.Slug == w.Slug {
			return nil, &types.StoreError{
				Backend: "dry-run",
				Table:   "wrestlers",
				Op:      "insert",
				Code:    types.UniqueViolationCode,
				Err:     fmt.Errorf("slug %q already created in this run", w.Slug),
			}
		}
	}

	out := &types.Wrestler{
		ID:          uuid.NewString(),
		Name:        w.Name,
		Slug:        w.Slug,
		CagematchID: w.CagematchID,
	}
	d.wrestlers = append(d.wrestlers, *out)

	d.logger.Info("would create wrestler", "name", w.Name, "slug", w.Slug, "id", out.ID)
	return out, nil
}

func (d *DryRun) SetWrestlerSourceID(_ context.Context, wrestlerID, sourceID string) error {
	d.mu.Lock()
	if w, ok := d.seen[wrestlerID]; ok {
		id := sourceID
		w.CagematchID = &id
		d.wrestlers = append(d.wrestlers, w)
	}
	d.mu.Unlock()

	d.logger.Info("would set wrestler cagematch id", "wrestler_id", wrestlerID, "cagematch_id", sourceID)
	return nil
}

func (d *DryRun) InsertRosterMembership(_ context.Context, wrestlerID, promotionID string) (*types.RosterMembership, error) {
	out := &types.RosterMembership{
		ID:          uuid.NewString(),
		WrestlerID:  wrestlerID,
		PromotionID: promotionID,
		IsActive:    true,
	}
	d.mu.Lock()
	d.roster[rosterKey(wrestlerID, promotionID)] = *out
	d.mu.Unlock()

	d.logger.Info("would add roster membership", "wrestler_id", wrestlerID, "promotion_id", promotionID)
	return out, nil
}

func (d *DryRun) ActivateRosterMembership(_ context.Context, membershipID string) error {
	d.mu.Lock()
	if m, ok := d.members[membershipID]; ok {
		m.IsActive = true
		d.roster[rosterKey(m.WrestlerID, m.PromotionID)] = m
	}
	d.mu.Unlock()

	d.logger.Info("would reactivate roster membership", "id", membershipID)
	return nil
}

func (d *DryRun) InsertChampionship(_ context.Context, c types.NewChampionship) (*types.Championship, error) {
	out := &types.Championship{
		ID:                 uuid.NewString(),
		PromotionID:        c.PromotionID,
		Name:               c.Name,
		CurrentChampionID:  c.CurrentChampionID,
		CurrentChampion2ID: c.CurrentChampion2ID,
		WonDate:            c.WonDate,
		IsActive:           c.IsActive,
		SortOrder:          c.SortOrder,
	}
	d.logger.Info("would create championship", "name", c.Name, "sort_order", c.SortOrder)
	return out, nil
}

func (d *DryRun) UpdateChampionship(_ context.Context, championshipID string, h types.ChampionshipHolders) error {
	d.logger.Info("would update championship",
		"id", championshipID,
		"champion_1", deref(h.CurrentChampionID),
		"champion_2", deref(h.CurrentChampion2ID),
		"won_date", h.WonDate,
	)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
