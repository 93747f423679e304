// Package postgrest talks to the hosted Supabase database through its
// PostgREST HTTP interface using the service-role key.
package postgrest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/IshaanNene/HotTag/internal/config"
	"github.com/IshaanNene/HotTag/internal/types"
)

const (
	tablePromotions    = "promotions"
	tableWrestlers     = "wrestlers"
	tableRoster        = "wrestler_promotions"
	tableChampionships = "promotion_championships"

	restPath = "/rest/v1"
)

// apiError is the error body PostgREST returns.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *apiError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Store is a PostgREST-backed store.
type Store struct {
	client *resty.Client
	logger *slog.Logger
}

// New creates a PostgREST store for cfg.URL authenticated with cfg.ServiceKey.
func New(cfg *config.StoreConfig, logger *slog.Logger) (*Store, error) {
	if cfg.URL == "" || cfg.ServiceKey == "" {
		return nil, &types.ConfigError{Key: "store.url", Err: errors.New("url and service_key are required")}
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")+restPath).
		SetHeader("apikey", cfg.ServiceKey).
		SetAuthToken(cfg.ServiceKey).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &Store{
		client: client,
		logger: logger.With("component", "postgrest_store"),
	}, nil
}

func (s *Store) Name() string { return config.DriverPostgREST }

func (s *Store) Close() error { return nil }

func (s *Store) ListPromotionsWithSource(ctx context.Context) ([]types.Promotion, error) {
	var out []types.Promotion
	err := s.get(ctx, tablePromotions, map[string]string{
		"select":       "id,name,slug,cagematch_id",
		"cagematch_id": "not.is.null",
		"order":        "name.asc",
	}, &out)
	return out, err
}

func (s *Store) PromotionBySlug(ctx context.Context, slug string) (*types.Promotion, error) {
	var out []types.Promotion
	if err := s.get(ctx, tablePromotions, map[string]string{
		"select": "id,name,slug,cagematch_id",
		"slug":   "eq." + slug,
		"limit":  "1",
	}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, notFound(tablePromotions)
	}
	return &out[0], nil
}

func (s *Store) WrestlerBySourceID(ctx context.Context, sourceID string) (*types.Wrestler, error) {
	var out []types.Wrestler
	if err := s.get(ctx, tableWrestlers, map[string]string{
		"select":       "id,name,slug,cagematch_id",
		"cagematch_id": "eq." + sourceID,
		"limit":        "1",
	}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, notFound(tableWrestlers)
	}
	return &out[0], nil
}

// WrestlerByName filters with ilike on the escaped name and then keeps only
// exact case-insensitive matches.
func (s *Store) WrestlerByName(ctx context.Context, name string) (*types.Wrestler, error) {
	var out []types.Wrestler
	if err := s.get(ctx, tableWrestlers, map[string]string{
		"select": "id,name,slug,cagematch_id",
		"name":   "ilike." + EscapeLike(name),
		"limit":  "10",
	}, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if strings.EqualFold(out[i].Name, name) {
			return &out[i], nil
		}
	}
	return nil, notFound(tableWrestlers)
}

func (s *Store) CreateWrestler(ctx context.Context, w types.NewWrestler) (*types.Wrestler, error) {
	var out []types.Wrestler
	if err := s.insert(ctx, tableWrestlers, w, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, emptyRepresentation(tableWrestlers)
	}
	return &out[0], nil
}

func (s *Store) SetWrestlerSourceID(ctx context.Context, wrestlerID, sourceID string) error {
	return s.update(ctx, tableWrestlers, wrestlerID, map[string]any{"cagematch_id": sourceID})
}

func (s *Store) RosterMembership(ctx context.Context, wrestlerID, promotionID string) (*types.RosterMembership, error) {
	var out []types.RosterMembership
	if err := s.get(ctx, tableRoster, map[string]string{
		"select":       "id,wrestler_id,promotion_id,is_active",
		"wrestler_id":  "eq." + wrestlerID,
		"promotion_id": "eq." + promotionID,
		"limit":        "1",
	}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, notFound(tableRoster)
	}
	return &out[0], nil
}

func (s *Store) InsertRosterMembership(ctx context.Context, wrestlerID, promotionID string) (*types.RosterMembership, error) {
	var out []types.RosterMembership
	body := map[string]any{
		"wrestler_id":  wrestlerID,
		"promotion_id": promotionID,
		"is_active":    true,
	}
	if err := s.insert(ctx, tableRoster, body, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, emptyRepresentation(tableRoster)
	}
	return &out[0], nil
}

func (s *Store) ActivateRosterMembership(ctx context.Context, membershipID string) error {
	return s.update(ctx, tableRoster, membershipID, map[string]any{"is_active": true})
}

func (s *Store) ChampionshipsByPromotion(ctx context.Context, promotionID string) ([]types.Championship, error) {
	var out []types.Championship
	err := s.get(ctx, tableChampionships, map[string]string{
		"select":       "id,promotion_id,name,current_champion_id,current_champion_2_id,won_date,is_active,sort_order",
		"promotion_id": "eq." + promotionID,
		"order":        "sort_order.asc",
	}, &out)
	return out, err
}

func (s *Store) InsertChampionship(ctx context.Context, c types.NewChampionship) (*types.Championship, error) {
	var out []types.Championship
	if err := s.insert(ctx, tableChampionships, c, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, emptyRepresentation(tableChampionships)
	}
	return &out[0], nil
}

func (s *Store) UpdateChampionship(ctx context.Context, championshipID string, h types.ChampionshipHolders) error {
	return s.update(ctx, tableChampionships, championshipID, h)
}

func (s *Store) get(ctx context.Context, table string, params map[string]string, result any) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		SetError(&apiError{}).
		Get("/" + table)
	return s.check(resp, err, table, "select")
}

func (s *Store) insert(ctx context.Context, table string, body, result any) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(body).
		SetResult(result).
		SetError(&apiError{}).
		Post("/" + table)
	return s.check(resp, err, table, "insert")
}

func (s *Store) update(ctx context.Context, table, id string, body any) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetQueryParam("id", "eq."+id).
		SetBody(body).
		SetError(&apiError{}).
		Patch("/" + table)
	return s.check(resp, err, table, "update")
}

func (s *Store) check(resp *resty.Response, err error, table, op string) error {
	if err != nil {
		return &types.StoreError{Backend: config.DriverPostgREST, Table: table, Op: op, Err: err}
	}

	s.logger.Debug("postgrest request",
		"method", resp.Request.Method,
		"table", table,
		"status", resp.StatusCode(),
		"duration", resp.Time(),
	)

	if !resp.IsError() {
		return nil
	}

	storeErr := &types.StoreError{Backend: config.DriverPostgREST, Table: table, Op: op}
	if apiErr, ok := resp.Error().(*apiError); ok && apiErr.Message != "" {
		storeErr.Code = apiErr.Code
		storeErr.Err = apiErr
	} else {
		storeErr.Err = fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), http.StatusText(resp.StatusCode()))
	}
	return storeErr
}

// EscapeLike escapes LIKE wildcards so that an ilike filter matches the
// value literally. PostgREST also treats * as a wildcard; it is replaced by
// the single-character wildcard and exact matching happens client side.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`, `*`, `_`)
	return r.Replace(s)
}

func notFound(table string) error {
	return &types.StoreError{Backend: config.DriverPostgREST, Table: table, Op: "select", Err: types.ErrNotFound}
}

func emptyRepresentation(table string) error {
	return &types.StoreError{
		Backend: config.DriverPostgREST,
		Table:   table,
		Op:      "insert",
		Err:     errors.New("insert returned no rows"),
	}
}
