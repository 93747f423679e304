package upserter

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/HotTag/internal/store/memory"
	"github.com/IshaanNene/HotTag/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const promotionID = "promo-1"

func load(t *testing.T, s *memory.Store) *Existing {
	t.Helper()
	rows, err := s.ChampionshipsByPromotion(context.Background(), promotionID)
	require.NoError(t, err)
	return NewExisting(rows)
}

func date(t *testing.T, s string) *types.Date {
	t.Helper()
	d, err := types.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func TestInsertNewTitle(t *testing.T) {
	s := memory.New()
	u := New(s, testLogger)
	existing := load(t, s)

	out := u.Upsert(context.Background(), promotionID, existing, types.ScrapedChampionship{
		Name:    "World Title",
		WonDate: date(t, "2024-03-15"),
	}, []string{"w1"})

	assert.Equal(t, ActionCreated, out.Action)
	assert.NotEmpty(t, out.ChampionshipID)

	rows := load(t, s).rows
	require.Len(t, rows, 1)
	assert.Equal(t, "w1", *rows[0].CurrentChampionID)
	assert.Nil(t, rows[0].CurrentChampion2ID)
	assert.Equal(t, "2024-03-15", rows[0].WonDate.String())
	assert.True(t, rows[0].IsActive)
	assert.Equal(t, 0, rows[0].SortOrder)
}

func TestVacantWithoutMatchIsSkipped(t *testing.T) {
	s := memory.New()
	u := New(s, testLogger)

	out := u.Upsert(context.Background(), promotionID, load(t, s), types.ScrapedChampionship{
		Name:     "Tag Titles",
		IsVacant: true,
	}, nil)

	assert.Equal(t, ActionSkipped, out.Action)
	assert.Equal(t, ReasonVacant, out.Reason)
	assert.Equal(t, 0, s.Writes())
}

func TestVacantWithMatchClearsHolders(t *testing.T) {
	s := memory.New()
	seeded := s.AddChampionship(types.Championship{
		PromotionID:        promotionID,
		Name:               "Tag Titles",
		CurrentChampionID:  types.StringPtr("w3"),
		CurrentChampion2ID: types.StringPtr("w4"),
		WonDate:            date(t, "2023-10-10"),
		IsActive:           true,
		SortOrder:          4,
	})
	u := New(s, testLogger)

	out := u.Upsert(context.Background(), promotionID, load(t, s), types.ScrapedChampionship{
		Name:     "TAG TITLES",
		IsVacant: true,
	}, nil)
	assert.Equal(t, ActionUpdated, out.Action)
	assert.Equal(t, seeded.ID, out.ChampionshipID)

	rows := load(t, s).rows
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].CurrentChampionID)
	assert.Nil(t, rows[0].CurrentChampion2ID)
	assert.Nil(t, rows[0].WonDate)
	assert.Equal(t, "Tag Titles", rows[0].Name)
	assert.Equal(t, 4, rows[0].SortOrder)
	assert.True(t, rows[0].IsActive)
}

func TestUnchangedIssuesNoWrite(t *testing.T) {
	s := memory.New()
	s.AddChampionship(types.Championship{
		PromotionID:       promotionID,
		Name:              "World Title",
		CurrentChampionID: types.StringPtr("w1"),
		WonDate:           date(t, "2024-03-15"),
		IsActive:          true,
	})
	u := New(s, testLogger)

	out := u.Upsert(context.Background(), promotionID, load(t, s), types.ScrapedChampionship{
		Name:    "World Title",
		WonDate: date(t, "2024-03-15"),
	}, []string{"w1"})

	assert.Equal(t, ActionUnchanged, out.Action)
	assert.Equal(t, 0, s.Writes())
}

func TestTagTeamFillsTwoSlots(t *testing.T) {
	s := memory.New()
	u := New(s, testLogger)

	out := u.Upsert(context.Background(), promotionID, load(t, s), types.ScrapedChampionship{
		Name: "Tag Team Titles",
	}, []string{"w3", "w4", "w5"})
	require.Equal(t, ActionCreated, out.Action)

	rows := load(t, s).rows
	require.Len(t, rows, 1)
	assert.Equal(t, "w3", *rows[0].CurrentChampionID)
	assert.Equal(t, "w4", *rows[0].CurrentChampion2ID)
}

func TestSortOrderFollowsRunCreatedCount(t *testing.T) {
	s := memory.New()
	u := New(s, testLogger)
	ctx := context.Background()

	u.Upsert(ctx, promotionID, load(t, s), types.ScrapedChampionship{Name: "A"}, []string{"w1"})
	other := NewExisting(nil)
	u.Upsert(ctx, "promo-2", other, types.ScrapedChampionship{Name: "B"}, []string{"w2"})

	rows, err := s.ChampionshipsByPromotion(ctx, "promo-2")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].SortOrder)
	assert.Equal(t, 2, u.Created())
}

func TestDuplicateRowInSamePageUpdates(t *testing.T) {
	s := memory.New()
	u := New(s, testLogger)
	ctx := context.Background()
	existing := load(t, s)

	first := u.Upsert(ctx, promotionID, existing, types.ScrapedChampionship{Name: "World Title"}, []string{"w1"})
	second := u.Upsert(ctx, promotionID, existing, types.ScrapedChampionship{Name: "world title"}, []string{"w2"})

	assert.Equal(t, ActionCreated, first.Action)
	assert.Equal(t, ActionUpdated, second.Action)
	assert.Equal(t, first.ChampionshipID, second.ChampionshipID)
	assert.Len(t, load(t, s).rows, 1)
}

func TestWriteFailureIsSkipped(t *testing.T) {
	s := memory.New()
	boom := errors.New("statement timeout")
	s.SetFault(func(op, key string) error {
		if op == memory.OpInsertChampionship {
			return boom
		}
		return nil
	})
	u := New(s, testLogger)

	out := u.Upsert(context.Background(), promotionID, load(t, s), types.ScrapedChampionship{Name: "World Title"}, []string{"w1"})
	assert.Equal(t, ActionSkipped, out.Action)
	assert.Equal(t, ReasonWriteFailed, out.Reason)
	assert.ErrorIs(t, out.Err, boom)

	var upsertErr *types.UpsertError
	require.ErrorAs(t, out.Err, &upsertErr)
	assert.Equal(t, "insert", upsertErr.Op)
	assert.Equal(t, 0, u.Created())
}
