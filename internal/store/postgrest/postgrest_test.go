package postgrest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/HotTag/internal/config"
	"github.com/IshaanNene/HotTag/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestStore(t *testing.T, h http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	s, err := New(&config.StoreConfig{
		URL:        srv.URL,
		ServiceKey: "service-role-key",
		Timeout:    5 * time.Second,
	}, testLogger)
	require.NoError(t, err)
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(&config.StoreConfig{URL: "https://db.example.com"}, testLogger)
	require.Error(t, err)
}

func TestWrestlerBySourceIDSendsAuthAndFilter(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/wrestlers", r.URL.Path)
		assert.Equal(t, "service-role-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-role-key", r.Header.Get("Authorization"))
		assert.Equal(t, "eq.501", r.URL.Query().Get("cagematch_id"))
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "w1", "name": "Alex Storm", "slug": "alex-storm", "cagematch_id": "501"},
		})
	})

	got, err := s.WrestlerBySourceID(context.Background(), "501")
	require.NoError(t, err)
	assert.Equal(t, "w1", got.ID)
	assert.True(t, got.HasSourceID())
}

func TestWrestlerByNameExactMatchOnly(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `ilike.Kid\_Lykos 100\%`, r.URL.Query().Get("name"))
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "w2", "name": "KidXLykos 100%", "slug": "kidxlykos-100"},
			{"id": "w3", "name": "kid_lykos 100%", "slug": "kid_lykos-100"},
		})
	})

	got, err := s.WrestlerByName(context.Background(), "Kid_Lykos 100%")
	require.NoError(t, err)
	assert.Equal(t, "w3", got.ID)
}

func TestLookupNotFound(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})

	_, err := s.PromotionBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = s.RosterMembership(context.Background(), "w1", "p1")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCreateWrestlerUniqueViolation(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		writeJSON(w, http.StatusConflict, map[string]any{
			"code":    "23505",
			"message": `duplicate key value violates unique constraint "wrestlers_slug_key"`,
			"details": "Key (slug)=(rook) already exists.",
		})
	})

	_, err := s.CreateWrestler(context.Background(), types.NewWrestler{Name: "Rook", Slug: "rook"})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUniqueViolation)
}

func TestInsertChampionshipBody(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "World Title", body["name"])
		assert.Equal(t, "2024-03-15", body["won_date"])
		assert.Nil(t, body["current_champion_2_id"])
		assert.Equal(t, true, body["is_active"])

		writeJSON(w, http.StatusCreated, []map[string]any{{
			"id": "c1", "promotion_id": "p1", "name": "World Title",
			"current_champion_id": "w1", "current_champion_2_id": nil,
			"won_date": "2024-03-15", "is_active": true, "sort_order": 0,
		}})
	})

	d, err := types.ParseDate("2024-03-15")
	require.NoError(t, err)

	got, err := s.InsertChampionship(context.Background(), types.NewChampionship{
		PromotionID:       "p1",
		Name:              "World Title",
		CurrentChampionID: types.StringPtr("w1"),
		WonDate:           &d,
		IsActive:          true,
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
	assert.Nil(t, got.CurrentChampion2ID)
	assert.True(t, got.WonDate.Equal(&d))
}

func TestUpdateChampionshipPatchesByID(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.c1", r.URL.Query().Get("id"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "current_champion_id")
		assert.Nil(t, body["current_champion_id"])
		assert.Nil(t, body["won_date"])
		w.WriteHeader(http.StatusNoContent)
	})

	err := s.UpdateChampionship(context.Background(), "c1", types.ChampionshipHolders{})
	require.NoError(t, err)
}

func TestServerErrorWithoutBody(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := s.ListPromotionsWithSource(context.Background())
	require.Error(t, err)

	var storeErr *types.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, tablePromotions, storeErr.Table)
	assert.NotErrorIs(t, err, types.ErrUniqueViolation)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d_e`, EscapeLike(`a%b_c\d*e`))
}
