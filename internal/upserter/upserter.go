// Package upserter reconciles parsed championships against a promotion's
// stored championship rows.
package upserter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/IshaanNene/HotTag/internal/types"
)

// Store is the part of the data store the upserter writes to.
type Store interface {
	InsertChampionship(ctx context.Context, c types.NewChampionship) (*types.Championship, error)
	UpdateChampionship(ctx context.Context, championshipID string, h types.ChampionshipHolders) error
}

// Action is what happened to one championship.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
	ActionSkipped   Action = "skipped"
)

// Skip reasons.
const (
	ReasonVacant      = "vacant title with no existing record"
	ReasonWriteFailed = "write failed"
)

// Outcome is the tagged result of reconciling one championship.
type Outcome struct {
	Championship   string `json:"championship"`
	Action         Action `json:"action"`
	ChampionshipID string `json:"championship_id,omitempty"`
	Champions      int    `json:"champions"`
	Reason         string `json:"reason,omitempty"`
	Error          string `json:"error,omitempty"`
	Err            error  `json:"-"`
}

// Existing is a promotion's championship rows, matched by name ignoring case.
type Existing struct {
	rows []types.Championship
}

// NewExisting wraps the rows loaded for a promotion.
func NewExisting(rows []types.Championship) *Existing {
	return &Existing{rows: rows}
}

// Find returns the first row named name ignoring case.
func (e *Existing) Find(name string) *types.Championship {
	for i := range e.rows {
		if strings.EqualFold(e.rows[i].Name, name) {
			return &e.rows[i]
		}
	}
	return nil
}

// Len returns the number of known rows.
func (e *Existing) Len() int { return len(e.rows) }

// Upserter applies the update / insert / skip decision. One Upserter serves a
// whole run so that sort_order follows the run's created count.
type Upserter struct {
	store   Store
	logger  *slog.Logger
	created int
}

// New creates an upserter.
func New(store Store, logger *slog.Logger) *Upserter {
	return &Upserter{
		store:  store,
		logger: logger.With("component", "upserter"),
	}
}

// Created returns how many championships this upserter has inserted.
func (u *Upserter) Created() int { return u.created }

// Upsert reconciles rec for promotionID. championIDs are the resolved wrestler
// ids in page order; the first two fill the champion slots.
func (u *Upserter) Upsert(ctx context.Context, promotionID string, existing *Existing, rec types.ScrapedChampionship, championIDs []string) Outcome {
	holders := types.ChampionshipHolders{WonDate: rec.WonDate}
	if len(championIDs) > 0 {
		holders.CurrentChampionID = types.StringPtr(championIDs[0])
	}
	if len(championIDs) > 1 {
		holders.CurrentChampion2ID = types.StringPtr(championIDs[1])
	}

	out := Outcome{Championship: rec.Name, Champions: len(championIDs)}

	if match := existing.Find(rec.Name); match != nil {
		out.ChampionshipID = match.ID
		if match.Holders().Equal(holders) {
			out.Action = ActionUnchanged
			return out
		}

		if err := u.store.UpdateChampionship(ctx, match.ID, holders); err != nil {
			return u.failed(out, "update", err)
		}
		match.CurrentChampionID = holders.CurrentChampionID
		match.CurrentChampion2ID = holders.CurrentChampion2ID
		match.WonDate = holders.WonDate

		u.logger.Info("championship updated", "championship", rec.Name, "champions", len(championIDs))
		out.Action = ActionUpdated
		return out
	}

	if rec.IsVacant {
		u.logger.Info("vacant championship skipped", "championship", rec.Name)
		out.Action = ActionSkipped
		out.Reason = ReasonVacant
		return out
	}

	row, err := u.store.InsertChampionship(ctx, types.NewChampionship{
		PromotionID:        promotionID,
		Name:               rec.Name,
		CurrentChampionID:  holders.CurrentChampionID,
		CurrentChampion2ID: holders.CurrentChampion2ID,
		WonDate:            holders.WonDate,
		IsActive:           true,
		SortOrder:          u.created,
	})
	if err != nil {
		return u.failed(out, "insert", err)
	}
	u.created++
	existing.rows = append(existing.rows, *row)

	u.logger.Info("championship created", "championship", rec.Name, "champions", len(championIDs))
	out.ChampionshipID = row.ID
	out.Action = ActionCreated
	return out
}

func (u *Upserter) failed(out Outcome, op string, err error) Outcome {
	out.Action = ActionSkipped
	out.Reason = ReasonWriteFailed
	out.Err = &types.UpsertError{Championship: out.Championship, Op: op, Err: err}
	out.Error = out.Err.Error()
	u.logger.Error("championship write failed", "championship", out.Championship, "op", op, "error", err)
	return out
}
