// Package postgres connects straight to the Hot Tag Postgres database with
// pgx. Queries are built with go-sqlbuilder in the PostgreSQL flavor.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IshaanNene/HotTag/internal/config"
	"github.com/IshaanNene/HotTag/internal/types"
)

const (
	tablePromotions    = "promotions"
	tableWrestlers     = "wrestlers"
	tableRoster        = "wrestler_promotions"
	tableChampionships = "promotion_championships"
)

var (
	promotionCols    = []string{"id::text", "name", "slug", "cagematch_id"}
	wrestlerCols     = []string{"id::text", "name", "slug", "cagematch_id"}
	rosterCols       = []string{"id::text", "wrestler_id::text", "promotion_id::text", "is_active"}
	championshipCols = []string{
		"id::text", "promotion_id::text", "name", "current_champion_id::text",
		"current_champion_2_id::text", "won_date", "is_active", "sort_order",
	}
)

// Store is a pgx-backed store.
type Store struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	logger  *slog.Logger
}

// New opens a connection pool for cfg.DSN and verifies it with a ping.
func New(ctx context.Context, cfg *config.StoreConfig, logger *slog.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, &types.ConfigError{Key: "store.dsn", Err: err}
	}
	// Queries run one at a time.
	poolCfg.MaxConns = 2
	if cfg.Timeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.Timeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	return NewWithPool(pool, cfg.Timeout, logger), nil
}

// NewWithPool wraps an existing pool.
func NewWithPool(pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger) *Store {
	return &Store{
		pool:    pool,
		timeout: timeout,
		logger:  logger.With("component", "postgres_store"),
	}
}

func (s *Store) Name() string { return config.DriverPostgres }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) ListPromotionsWithSource(ctx context.Context) ([]types.Promotion, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(promotionCols...)
	sb.From(tablePromotions)
	sb.Where(sb.IsNotNull("cagematch_id"))
	sb.OrderBy("name").Asc()

	query, args := sb.Build()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap(tablePromotions, "select", err)
	}
	defer rows.Close()

	var out []types.Promotion
	for rows.Next() {
		var p types.Promotion
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.CagematchID); err != nil {
			return nil, wrap(tablePromotions, "select", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(tablePromotions, "select", err)
	}
	return out, nil
}

func (s *Store) PromotionBySlug(ctx context.Context, slug string) (*types.Promotion, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(promotionCols...)
	sb.From(tablePromotions)
	sb.Where(sb.Equal("slug", slug))
	sb.Limit(1)

	var p types.Promotion
	if err := s.queryRow(ctx, sb, tablePromotions, &p.ID, &p.Name, &p.Slug, &p.CagematchID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) WrestlerBySourceID(ctx context.Context, sourceID string) (*types.Wrestler, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(wrestlerCols...)
	sb.From(tableWrestlers)
	sb.Where(sb.Equal("cagematch_id", sourceID))
	sb.Limit(1)

	var w types.Wrestler
	if err := s.queryRow(ctx, sb, tableWrestlers, &w.ID, &w.Name, &w.Slug, &w.CagematchID); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) WrestlerByName(ctx context.Context, name string) (*types.Wrestler, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(wrestlerCols...)
	sb.From(tableWrestlers)
	sb.Where(sb.ILike("name", escapeLike(name)))
	sb.OrderBy("created_at").Asc()
	sb.Limit(1)

	var w types.Wrestler
	if err := s.queryRow(ctx, sb, tableWrestlers, &w.ID, &w.Name, &w.Slug, &w.CagematchID); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) CreateWrestler(ctx context.Context, nw types.NewWrestler) (*types.Wrestler, error) {
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(tableWrestlers)
	ib.Cols("name", "slug", "cagematch_id")
	ib.Values(nw.Name, nw.Slug, nw.CagematchID)

	var w types.Wrestler
	if err := s.insertReturning(ctx, ib, tableWrestlers, wrestlerCols, &w.ID, &w.Name, &w.Slug, &w.CagematchID); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) SetWrestlerSourceID(ctx context.Context, wrestlerID, sourceID string) error {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(tableWrestlers)
	ub.Set(ub.Assign("cagematch_id", sourceID))
	ub.Where(ub.Equal("id", wrestlerID))
	return s.exec(ctx, ub, tableWrestlers)
}

func (s *Store) RosterMembership(ctx context.Context, wrestlerID, promotionID string) (*types.RosterMembership, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(rosterCols...)
	sb.From(tableRoster)
	sb.Where(
		sb.Equal("wrestler_id", wrestlerID),
		sb.Equal("promotion_id", promotionID),
	)
	sb.Limit(1)

	var m types.RosterMembership
	if err := s.queryRow(ctx, sb, tableRoster, &m.ID, &m.WrestlerID, &m.PromotionID, &m.IsActive); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) InsertRosterMembership(ctx context.Context, wrestlerID, promotionID string) (*types.RosterMembership, error) {
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(tableRoster)
	ib.Cols("wrestler_id", "promotion_id", "is_active")
	ib.Values(wrestlerID, promotionID, true)

	var m types.RosterMembership
	if err := s.insertReturning(ctx, ib, tableRoster, rosterCols, &m.ID, &m.WrestlerID, &m.PromotionID, &m.IsActive); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) ActivateRosterMembership(ctx context.Context, membershipID string) error {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(tableRoster)
	ub.Set(ub.Assign("is_active", true))
	ub.Where(ub.Equal("id", membershipID))
	return s.exec(ctx, ub, tableRoster)
}

func (s *Store) ChampionshipsByPromotion(ctx context.Context, promotionID string) ([]types.Championship, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(championshipCols...)
	sb.From(tableChampionships)
	sb.Where(sb.Equal("promotion_id", promotionID))
	sb.OrderBy("sort_order").Asc()

	query, args := sb.Build()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap(tableChampionships, "select", err)
	}
	defer rows.Close()

	var out []types.Championship
	for rows.Next() {
		var (
			c  types.Championship
			wd pgtype.Date
		)
		if err := rows.Scan(&c.ID, &c.PromotionID, &c.Name, &c.CurrentChampionID,
			&c.CurrentChampion2ID, &wd, &c.IsActive, &c.SortOrder); err != nil {
			return nil, wrap(tableChampionships, "select", err)
		}
		c.WonDate = fromPgDate(wd)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(tableChampionships, "select", err)
	}
	return out, nil
}

func (s *Store) InsertChampionship(ctx context.Context, nc types.NewChampionship) (*types.Championship, error) {
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(tableChampionships)
	ib.Cols("promotion_id", "name", "current_champion_id", "current_champion_2_id", "won_date", "is_active", "sort_order")
	ib.Values(nc.PromotionID, nc.Name, nc.CurrentChampionID, nc.CurrentChampion2ID, toPgDate(nc.WonDate), nc.IsActive, nc.SortOrder)

	var (
		c  types.Championship
		wd pgtype.Date
	)
	if err := s.insertReturning(ctx, ib, tableChampionships, championshipCols,
		&c.ID, &c.PromotionID, &c.Name, &c.CurrentChampionID, &c.CurrentChampion2ID, &wd, &c.IsActive, &c.SortOrder); err != nil {
		return nil, err
	}
	c.WonDate = fromPgDate(wd)
	return &c, nil
}

func (s *Store) UpdateChampionship(ctx context.Context, championshipID string, h types.ChampionshipHolders) error {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(tableChampionships)
	ub.Set(
		ub.Assign("current_champion_id", h.CurrentChampionID),
		ub.Assign("current_champion_2_id", h.CurrentChampion2ID),
		ub.Assign("won_date", toPgDate(h.WonDate)),
	)
	ub.Where(ub.Equal("id", championshipID))
	return s.exec(ctx, ub, tableChampionships)
}

func (s *Store) queryRow(ctx context.Context, sb *sqlbuilder.SelectBuilder, table string, dest ...any) error {
	query, args := sb.Build()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.pool.QueryRow(ctx, query, args...).Scan(dest...); err != nil {
		return wrap(table, "select", err)
	}
	return nil
}

func (s *Store) insertReturning(ctx context.Context, ib *sqlbuilder.InsertBuilder, table string, cols []string, dest ...any) error {
	query, args := ib.Build()
	query += " RETURNING " + strings.Join(cols, ", ")

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.pool.QueryRow(ctx, query, args...).Scan(dest...); err != nil {
		return wrap(table, "insert", err)
	}
	s.logger.Debug("row inserted", "table", table)
	return nil
}

func (s *Store) exec(ctx context.Context, ub *sqlbuilder.UpdateBuilder, table string) error {
	query, args := ub.Build()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return wrap(table, "update", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap(table, "update", pgx.ErrNoRows)
	}
	s.logger.Debug("row updated", "table", table)
	return nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// wrap converts pgx errors into StoreErrors carrying the SQLSTATE code.
func wrap(table, op string, err error) error {
	storeErr := &types.StoreError{Backend: config.DriverPostgres, Table: table, Op: op, Err: err}

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		storeErr.Err = types.ErrNotFound
	case errors.As(err, &pgErr):
		storeErr.Code = pgErr.Code
	}
	return storeErr
}

func toPgDate(d *types.Date) pgtype.Date {
	if d == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

func fromPgDate(d pgtype.Date) *types.Date {
	if !d.Valid {
		return nil
	}
	out := types.NewDate(d.Time)
	return &out
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
