// Package engine runs the championship import: for each promotion it fetches
// the title page, parses it, resolves champions and reconciles championships.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/IshaanNene/HotTag/internal/config"
	"github.com/IshaanNene/HotTag/internal/fetcher"
	"github.com/IshaanNene/HotTag/internal/observability"
	"github.com/IshaanNene/HotTag/internal/resolver"
	"github.com/IshaanNene/HotTag/internal/throttle"
	"github.com/IshaanNene/HotTag/internal/types"
	"github.com/IshaanNene/HotTag/internal/upserter"
)

// State represents the engine's current lifecycle state.
type State int32

const (
	StateIdle    State = 0
	StateRunning State = 1
	StateStopped State = 2
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stats tracks run counters. They are updated as the run progresses.
type Stats struct {
	Created           atomic.Int64
	Updated           atomic.Int64
	Unchanged         atomic.Int64
	Skipped           atomic.Int64
	PromotionsDone    atomic.Int64
	PromotionsFailed  atomic.Int64
	ChampionsResolved atomic.Int64
	ChampionsDropped  atomic.Int64
	StartTime         time.Time
}

// Snapshot returns a copy of stats safe for reading.
func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"created":            s.Created.Load(),
		"updated":            s.Updated.Load(),
		"unchanged":          s.Unchanged.Load(),
		"skipped":            s.Skipped.Load(),
		"promotions_done":    s.PromotionsDone.Load(),
		"promotions_failed":  s.PromotionsFailed.Load(),
		"champions_resolved": s.ChampionsResolved.Load(),
		"champions_dropped":  s.ChampionsDropped.Load(),
		"elapsed":            time.Since(s.StartTime).String(),
	}
}

// Fetcher retrieves a promotion's title page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*types.Page, error)
}

// Parser extracts championships from a title page.
type Parser interface {
	Parse(body []byte) ([]types.ScrapedChampionship, error)
	Strategy() string
}

// documentParser is implemented by parsers that can work on a page's
// already parsed DOM.
type documentParser interface {
	ParseDocument(doc *goquery.Document) []types.ScrapedChampionship
}

// Store is the data store surface the engine needs.
type Store interface {
	resolver.Store
	upserter.Store
	ListPromotionsWithSource(ctx context.Context) ([]types.Promotion, error)
	PromotionBySlug(ctx context.Context, slug string) (*types.Promotion, error)
	ChampionshipsByPromotion(ctx context.Context, promotionID string) ([]types.Championship, error)
}

// Engine is the import orchestrator. An Engine performs a single run.
type Engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    Store
	fetcher  Fetcher
	parser   Parser
	resolver *resolver.Resolver
	upserter *upserter.Upserter
	pacer    throttle.Pacer
	metrics  *observability.Metrics

	state atomic.Int32
	stats *Stats
}

// New creates an Engine over the given collaborators. It paces with
// cfg.Throttle unless SetPacer is called.
func New(cfg *config.Config, st Store, f Fetcher, p Parser, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		logger:   logger.With("component", "engine"),
		store:    st,
		fetcher:  f,
		parser:   p,
		resolver: resolver.New(st, logger),
		upserter: upserter.New(st, logger),
		pacer:    throttle.New(cfg.Throttle),
		metrics:  observability.NewMetrics(logger),
		stats:    &Stats{},
	}
}

// SetPacer replaces the pacer.
func (e *Engine) SetPacer(p throttle.Pacer) {
	e.pacer = p
}

// SetMetrics replaces the metrics sink.
func (e *Engine) SetMetrics(m *observability.Metrics) {
	e.metrics = m
}

// Stats returns the run statistics.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// GetState returns the current engine state.
func (e *Engine) GetState() State {
	return State(e.state.Load())
}

// RunPromotion imports a single promotion by slug. Errors are returned only
// for problems outside the per-promotion body: unknown slug, missing
// cagematch id, or a second run on the same engine.
func (e *Engine) RunPromotion(ctx context.Context, slug string) (*Report, error) {
	report, err := e.begin(ModeSingle)
	if err != nil {
		return nil, err
	}
	defer e.finish(report)

	p, err := e.store.PromotionBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("load promotion %q: %w", slug, err)
	}
	if p.SourceID() == "" {
		return nil, fmt.Errorf("promotion %q: %w", slug, types.ErrNoSourceID)
	}

	e.record(report, e.runPromotion(ctx, *p))
	return report, nil
}

// RunAll imports every promotion with a cagematch id, one at a time, pausing
// between promotions. Promotions on the deny list are reported as denied.
func (e *Engine) RunAll(ctx context.Context) (*Report, error) {
	report, err := e.begin(ModeAll)
	if err != nil {
		return nil, err
	}
	defer e.finish(report)

	promotions, err := e.store.ListPromotionsWithSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	e.logger.Info("promotions to import", "count", len(promotions))

	processed := 0
	for _, p := range promotions {
		if p.SourceID() == "" {
			e.logger.Warn("promotion has a blank cagematch id, skipping", "promotion", p.Slug)
			continue
		}
		if e.cfg.Source.IsDenied(p.Slug) {
			e.logger.Info("promotion denied", "promotion", p.Slug)
			res := newResult(p)
			res.Status = StatusDenied
			e.record(report, res)
			continue
		}

		if processed > 0 {
			if err := e.pacer.BetweenPromotions(ctx); err != nil {
				e.logger.Warn("run stopped", "remaining", len(promotions)-len(report.Promotions))
				report.Stopped = true
				break
			}
		}
		processed++

		res := e.runPromotion(ctx, p)
		e.record(report, res)
		if res.Status == StatusStopped {
			break
		}
	}

	return report, nil
}

func (e *Engine) begin(mode string) (*Report, error) {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil, fmt.Errorf("engine is in state %s, cannot start", State(e.state.Load()))
	}
	e.stats.StartTime = time.Now()
	e.logger.Info("run starting", "mode", mode, "parser", e.parser.Strategy(), "dry_run", e.cfg.DryRun)

	return &Report{
		RunID:     uuid.NewString(),
		Mode:      mode,
		DryRun:    e.cfg.DryRun,
		Parser:    e.parser.Strategy(),
		StartedAt: e.stats.StartTime.UTC(),
	}, nil
}

func (e *Engine) finish(report *Report) {
	report.FinishedAt = time.Now().UTC()
	e.state.Store(int32(StateStopped))
	e.logger.Info("run finished", "stats", e.stats.Snapshot())
}

func (e *Engine) record(report *Report, res PromotionResult) {
	report.add(res)
	e.stats.PromotionsDone.Add(1)
	if res.Status == StatusFailed {
		e.stats.PromotionsFailed.Add(1)
	}
	e.metrics.Promotions.WithLabelValues(string(res.Status)).Inc()
}

func newResult(p types.Promotion) PromotionResult {
	return PromotionResult{
		PromotionID: p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		SourceID:    p.SourceID(),
	}
}

// runPromotion never panics. A panic or unexpected error marks the
// promotion failed and counts one skip.
func (e *Engine) runPromotion(ctx context.Context, p types.Promotion) (res PromotionResult) {
	start := time.Now()
	res = newResult(p)
	logger := e.logger.With("promotion", p.Slug)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("promotion panicked", "panic", r)
			res.Status = StatusFailed
			res.Error = fmt.Sprintf("panic: %v", r)
			res.Skipped++
			e.stats.Skipped.Add(1)
		}
		res.Duration = time.Since(start)
	}()

	logger.Info("importing promotion", "name", p.Name, "cagematch_id", p.SourceID())

	err := e.importPromotion(ctx, p, &res, logger)
	switch {
	case err == nil:
	case errors.Is(err, types.ErrRunStopped):
		logger.Warn("promotion interrupted", "error", err)
		res.Status = StatusStopped
		res.Error = err.Error()
	default:
		logger.Error("promotion failed", "error", err)
		res.Status = StatusFailed
		res.Error = err.Error()
		res.Skipped++
		e.stats.Skipped.Add(1)
	}
	return res
}

func (e *Engine) importPromotion(ctx context.Context, p types.Promotion, res *PromotionResult, logger *slog.Logger) error {
	url := fetcher.TitlesURL(e.cfg.Source.BaseURL, p.SourceID())

	fetchStart := time.Now()
	page, err := e.fetcher.Fetch(ctx, url)
	e.metrics.ObserveFetch(time.Since(fetchStart), err)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", types.ErrRunStopped, ctx.Err())
		}
		logger.Warn("fetch failed", "url", url, "error", err)
		res.Status = StatusFetchFailed
		res.Error = err.Error()
		return nil
	}

	records, err := e.parse(page)
	if err != nil {
		return err
	}
	res.Parsed = len(records)
	if len(records) == 0 {
		logger.Info("no active titles found")
		res.Status = StatusNoTitles
		return nil
	}
	logger.Info("titles parsed", "count", len(records))

	rows, err := e.store.ChampionshipsByPromotion(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("load championships: %w", err)
	}
	existing := upserter.NewExisting(rows)
	logger.Debug("existing championships loaded", "count", existing.Len())

	for _, rec := range records {
		championIDs, err := e.resolveChampions(ctx, p.ID, rec, res, logger)
		if err != nil {
			return err
		}

		outcome := e.upserter.Upsert(ctx, p.ID, existing, rec, championIDs)
		res.count(outcome)
		e.countOutcome(outcome)
		logger.Info("championship reconciled",
			"championship", rec.Name,
			"action", outcome.Action,
			"champions", len(championIDs),
			"vacant", rec.IsVacant,
		)

		if err := e.pacer.AfterChampionship(ctx); err != nil {
			return err
		}
	}

	res.Status = StatusOK
	return nil
}

func (e *Engine) parse(page *types.Page) ([]types.ScrapedChampionship, error) {
	dp, ok := e.parser.(documentParser)
	if !ok {
		return e.parser.Parse(page.Body)
	}
	doc, err := page.Document()
	if err != nil {
		return nil, &types.ParseError{Strategy: e.parser.Strategy(), Err: err}
	}
	return dp.ParseDocument(doc), nil
}

// resolveChampions returns the wrestler ids for rec's champions in page
// order. Champions that fail to resolve are logged and left out.
func (e *Engine) resolveChampions(ctx context.Context, promotionID string, rec types.ScrapedChampionship, res *PromotionResult, logger *slog.Logger) ([]string, error) {
	var ids []string
	for _, champ := range rec.Champions {
		r, err := e.resolver.Resolve(ctx, promotionID, champ)
		if err != nil {
			logger.Warn("champion not resolved", "championship", rec.Name, "champion", champ.Name, "error", err)
			res.ChampionErrors = append(res.ChampionErrors, ChampionError{
				Championship: rec.Name,
				Champion:     champ.Name,
				Error:        err.Error(),
			})
			e.stats.ChampionsDropped.Add(1)
			e.metrics.ResolveErrors.Inc()
		} else {
			ids = append(ids, r.Wrestler.ID)
			e.stats.ChampionsResolved.Add(1)
			e.countResolution(r)
		}

		if err := e.pacer.AfterChampion(ctx); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (e *Engine) countOutcome(o upserter.Outcome) {
	e.metrics.Championships.WithLabelValues(string(o.Action)).Inc()
	switch o.Action {
	case upserter.ActionCreated:
		e.stats.Created.Add(1)
	case upserter.ActionUpdated:
		e.stats.Updated.Add(1)
	case upserter.ActionUnchanged:
		e.stats.Unchanged.Add(1)
	case upserter.ActionSkipped:
		e.stats.Skipped.Add(1)
	}
}

func (e *Engine) countResolution(r *resolver.Resolution) {
	if r.Match == resolver.MatchCreated {
		e.metrics.WrestlersCreated.Inc()
	}
	if r.Backfilled {
		e.metrics.Backfills.Inc()
	}
	if r.Roster != resolver.RosterExisting {
		e.metrics.RosterWrites.WithLabelValues(string(r.Roster)).Inc()
	}
}
