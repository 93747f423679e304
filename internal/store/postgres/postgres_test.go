package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/IshaanNene/HotTag/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE promotions (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	name text NOT NULL,
	slug text NOT NULL UNIQUE,
	cagematch_id text
);

CREATE TABLE wrestlers (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	name text NOT NULL,
	slug text NOT NULL UNIQUE,
	cagematch_id text UNIQUE,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE wrestler_promotions (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	wrestler_id uuid NOT NULL REFERENCES wrestlers(id),
	promotion_id uuid NOT NULL REFERENCES promotions(id),
	is_active boolean NOT NULL DEFAULT true,
	UNIQUE (wrestler_id, promotion_id)
);

CREATE TABLE promotion_championships (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	promotion_id uuid NOT NULL REFERENCES promotions(id),
	name text NOT NULL,
	current_champion_id uuid REFERENCES wrestlers(id),
	current_champion_2_id uuid REFERENCES wrestlers(id),
	won_date date,
	is_active boolean NOT NULL DEFAULT true,
	sort_order integer NOT NULL DEFAULT 0
);
`

func startPostgres(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "hottag",
				"POSTGRES_PASSWORD": "hottag",
				"POSTGRES_DB":       "hottag",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://hottag:hottag@%s:%s/hottag?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, schema)
	require.NoError(t, err)

	s := NewWithPool(pool, 10*time.Second, testLogger)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPostgresStore(t *testing.T) {
	s := startPostgres(t)
	ctx := context.Background()

	var promotionID string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO promotions (name, slug, cagematch_id) VALUES ('Example Wrestling Alliance', 'ewa', '2287') RETURNING id::text`,
	).Scan(&promotionID)
	require.NoError(t, err)
	_, err = s.pool.Exec(ctx, `INSERT INTO promotions (name, slug) VALUES ('Unlinked', 'unlinked')`)
	require.NoError(t, err)

	t.Run("promotions", func(t *testing.T) {
		list, err := s.ListPromotionsWithSource(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "2287", list[0].SourceID())

		p, err := s.PromotionBySlug(ctx, "ewa")
		require.NoError(t, err)
		assert.Equal(t, promotionID, p.ID)

		_, err = s.PromotionBySlug(ctx, "missing")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	var wrestlerID string
	t.Run("wrestlers", func(t *testing.T) {
		w, err := s.CreateWrestler(ctx, types.NewWrestler{Name: "Alex Storm", Slug: "alex-storm"})
		require.NoError(t, err)
		wrestlerID = w.ID
		assert.Nil(t, w.CagematchID)

		_, err = s.CreateWrestler(ctx, types.NewWrestler{Name: "Alex Storm II", Slug: "alex-storm"})
		assert.ErrorIs(t, err, types.ErrUniqueViolation)

		got, err := s.WrestlerByName(ctx, "alex STORM")
		require.NoError(t, err)
		assert.Equal(t, wrestlerID, got.ID)

		_, err = s.WrestlerByName(ctx, "alex%")
		assert.ErrorIs(t, err, types.ErrNotFound)

		require.NoError(t, s.SetWrestlerSourceID(ctx, wrestlerID, "501"))
		got, err = s.WrestlerBySourceID(ctx, "501")
		require.NoError(t, err)
		assert.Equal(t, wrestlerID, got.ID)
	})

	t.Run("roster", func(t *testing.T) {
		m, err := s.InsertRosterMembership(ctx, wrestlerID, promotionID)
		require.NoError(t, err)
		assert.True(t, m.IsActive)

		_, err = s.pool.Exec(ctx, `UPDATE wrestler_promotions SET is_active = false WHERE id = $1`, m.ID)
		require.NoError(t, err)
		require.NoError(t, s.ActivateRosterMembership(ctx, m.ID))

		got, err := s.RosterMembership(ctx, wrestlerID, promotionID)
		require.NoError(t, err)
		assert.True(t, got.IsActive)
	})

	t.Run("championships", func(t *testing.T) {
		d, err := types.ParseDate("2024-03-15")
		require.NoError(t, err)

		c, err := s.InsertChampionship(ctx, types.NewChampionship{
			PromotionID:       promotionID,
			Name:              "World Title",
			CurrentChampionID: &wrestlerID,
			WonDate:           &d,
			IsActive:          true,
		})
		require.NoError(t, err)
		assert.True(t, c.WonDate.Equal(&d))

		require.NoError(t, s.UpdateChampionship(ctx, c.ID, types.ChampionshipHolders{}))

		list, err := s.ChampionshipsByPromotion(ctx, promotionID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Nil(t, list[0].CurrentChampionID)
		assert.Nil(t, list[0].WonDate)
		assert.True(t, list[0].IsActive)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% \_real\_ a\\b`, escapeLike(`100% _real_ a\b`))
}
