package engine

import (
	"time"

	"github.com/IshaanNene/HotTag/internal/upserter"
)

// PromotionStatus is the tagged outcome of one promotion.
type PromotionStatus string

const (
	StatusOK          PromotionStatus = "ok"
	StatusNoTitles    PromotionStatus = "no_titles"
	StatusFetchFailed PromotionStatus = "fetch_failed"
	StatusDenied      PromotionStatus = "denied"
	StatusFailed      PromotionStatus = "failed"
	StatusStopped     PromotionStatus = "stopped"
)

// ChampionError records a champion dropped from a championship because it
// could not be resolved.
type ChampionError struct {
	Championship string `json:"championship"`
	Champion     string `json:"champion"`
	Error        string `json:"error"`
}

// PromotionResult is everything that happened to one promotion.
type PromotionResult struct {
	PromotionID    string             `json:"promotion_id"`
	Slug           string             `json:"slug"`
	Name           string             `json:"name"`
	SourceID       string             `json:"cagematch_id"`
	Status         PromotionStatus    `json:"status"`
	Error          string             `json:"error,omitempty"`
	Parsed         int                `json:"parsed"`
	Championships  []upserter.Outcome `json:"championships,omitempty"`
	ChampionErrors []ChampionError    `json:"champion_errors,omitempty"`
	Created        int                `json:"created"`
	Updated        int                `json:"updated"`
	Unchanged      int                `json:"unchanged"`
	Skipped        int                `json:"skipped"`
	Duration       time.Duration      `json:"duration_ns"`
}

func (r *PromotionResult) count(o upserter.Outcome) {
	r.Championships = append(r.Championships, o)
	switch o.Action {
	case upserter.ActionCreated:
		r.Created++
	case upserter.ActionUpdated:
		r.Updated++
	case upserter.ActionUnchanged:
		r.Unchanged++
	case upserter.ActionSkipped:
		r.Skipped++
	}
}

// Totals aggregates a run.
type Totals struct {
	Created            int `json:"created"`
	Updated            int `json:"updated"`
	Unchanged          int `json:"unchanged"`
	Skipped            int `json:"skipped"`
	Promotions         int `json:"promotions"`
	PromotionsOK       int `json:"promotions_ok"`
	PromotionsNoTitles int `json:"promotions_no_titles"`
	PromotionsFetchErr int `json:"promotions_fetch_failed"`
	PromotionsDenied   int `json:"promotions_denied"`
	PromotionsFailed   int `json:"promotions_failed"`
}

// Report is the result of one run.
type Report struct {
	RunID      string            `json:"run_id"`
	Mode       string            `json:"mode"`
	DryRun     bool              `json:"dry_run"`
	Parser     string            `json:"parser,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Stopped    bool              `json:"stopped"`
	Promotions []PromotionResult `json:"promotions"`
	Totals     Totals            `json:"totals"`
}

// Run modes.
const (
	ModeSingle = "single"
	ModeAll    = "all"
)

func (r *Report) add(res PromotionResult) {
	r.Promotions = append(r.Promotions, res)

	t := &r.Totals
	t.Promotions++
	t.Created += res.Created
	t.Updated += res.Updated
	t.Unchanged += res.Unchanged
	t.Skipped += res.Skipped

	switch res.Status {
	case StatusOK:
		t.PromotionsOK++
	case StatusNoTitles:
		t.PromotionsNoTitles++
	case StatusFetchFailed:
		t.PromotionsFetchErr++
	case StatusDenied:
		t.PromotionsDenied++
	case StatusFailed:
		t.PromotionsFailed++
	case StatusStopped:
		r.Stopped = true
	}
}
