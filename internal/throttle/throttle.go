// Package throttle holds the fixed pauses the importer takes between
// outbound calls to the source site and the data store.
package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/IshaanNene/HotTag/internal/config"
	"github.com/IshaanNene/HotTag/internal/types"
)

// Pacer paces the run. Each method blocks for its pause and returns an error
// wrapping types.ErrRunStopped if ctx ends first.
type Pacer interface {
	AfterChampion(ctx context.Context) error
	AfterChampionship(ctx context.Context) error
	BetweenPromotions(ctx context.Context) error
}

// Fixed pauses for constant durations.
type Fixed struct {
	champion     time.Duration
	championship time.Duration
	promotion    time.Duration
}

// New creates a Fixed pacer from the throttle config.
func New(cfg config.ThrottleConfig) *Fixed {
	return &Fixed{
		champion:     cfg.ChampionDelay,
		championship: cfg.ChampionshipDelay,
		promotion:    cfg.PromotionDelay,
	}
}

// NoDelay returns a pacer that never sleeps but still observes cancellation.
func NoDelay() *Fixed {
	return &Fixed{}
}

func (f *Fixed) AfterChampion(ctx context.Context) error {
	return pause(ctx, f.champion)
}

func (f *Fixed) AfterChampionship(ctx context.Context) error {
	return pause(ctx, f.championship)
}

func (f *Fixed) BetweenPromotions(ctx context.Context) error {
	return pause(ctx, f.promotion)
}

func pause(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrRunStopped, err)
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", types.ErrRunStopped, ctx.Err())
	}
}
