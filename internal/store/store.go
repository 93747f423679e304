// Package store defines the data-store contract the importer reconciles
// against and selects a backend for it.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/HotTag/internal/config"
	"github.com/IshaanNene/HotTag/internal/store/postgres"
	"github.com/IshaanNene/HotTag/internal/store/postgrest"
	"github.com/IshaanNene/HotTag/internal/types"
)

// Store is the query surface over the promotions, wrestlers,
// wrestler_promotions and promotion_championships tables.
//
// Single-row lookups return an error wrapping types.ErrNotFound when no row
// matches. Inserts that hit a unique constraint return an error matching
// types.ErrUniqueViolation.
type Store interface {
	// ListPromotionsWithSource returns every promotion with a cagematch id.
	ListPromotionsWithSource(ctx context.Context) ([]types.Promotion, error)

	// PromotionBySlug returns the promotion with the given slug.
	PromotionBySlug(ctx context.Context, slug string) (*types.Promotion, error)

	// WrestlerBySourceID returns the wrestler with the given cagematch id.
	WrestlerBySourceID(ctx context.Context, sourceID string) (*types.Wrestler, error)

	// WrestlerByName returns a wrestler whose name equals name ignoring case.
	WrestlerByName(ctx context.Context, name string) (*types.Wrestler, error)

	// CreateWrestler inserts a wrestler and returns the stored row.
	CreateWrestler(ctx context.Context, w types.NewWrestler) (*types.Wrestler, error)

	// SetWrestlerSourceID sets a wrestler's cagematch id.
	SetWrestlerSourceID(ctx context.Context, wrestlerID, sourceID string) error

	// RosterMembership returns the (wrestler, promotion) membership row.
	RosterMembership(ctx context.Context, wrestlerID, promotionID string) (*types.RosterMembership, error)

	// InsertRosterMembership adds an active membership row.
	InsertRosterMembership(ctx context.Context, wrestlerID, promotionID string) (*types.RosterMembership, error)

	// ActivateRosterMembership marks a membership row active.
	ActivateRosterMembership(ctx context.Context, membershipID string) error

	// ChampionshipsByPromotion returns a promotion's championships.
	ChampionshipsByPromotion(ctx context.Context, promotionID string) ([]types.Championship, error)

	// InsertChampionship inserts a championship and returns the stored row.
	InsertChampionship(ctx context.Context, c types.NewChampionship) (*types.Championship, error)

	// UpdateChampionship rewrites a championship's holder columns.
	UpdateChampionship(ctx context.Context, championshipID string, h types.ChampionshipHolders) error

	// Close releases backend resources.
	Close() error

	// Name returns the backend identifier.
	Name() string
}

// Open connects to the backend named by cfg.Store.Driver. With cfg.DryRun set
// the backend is wrapped so that writes are logged instead of sent.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	var (
		s   Store
		err error
	)

	switch cfg.Store.Driver {
	case config.DriverPostgREST, "":
		s, err = postgrest.New(&cfg.Store, logger)
	case config.DriverPostgres:
		s, err = postgres.New(ctx, &cfg.Store, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.DryRun {
		s = NewDryRun(s, logger)
	}
	return s, nil
}
