package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/HotTag/internal/types"
)

func TestWrestlerLookups(t *testing.T) {
	ctx := context.Background()
	s := New()
	seeded := s.AddWrestler(types.Wrestler{Name: "Alex Storm", Slug: "alex-storm", CagematchID: types.StringPtr("501")})

	w, err := s.WrestlerBySourceID(ctx, "501")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, w.ID)

	w, err = s.WrestlerByName(ctx, "ALEX storm")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, w.ID)

	_, err = s.WrestlerBySourceID(ctx, "999")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = s.WrestlerByName(ctx, "Alex")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCreateWrestlerSlugUnique(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.CreateWrestler(ctx, types.NewWrestler{Name: "Rook", Slug: "rook"})
	require.NoError(t, err)

	_, err = s.CreateWrestler(ctx, types.NewWrestler{Name: "ROOK", Slug: "rook"})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUniqueViolation)
	assert.Equal(t, 1, s.Writes())
}

func TestRosterMembership(t *testing.T) {
	ctx := context.Background()
	s := New()

	m, err := s.InsertRosterMembership(ctx, "w1", "p1")
	require.NoError(t, err)
	assert.True(t, m.IsActive)

	_, err = s.InsertRosterMembership(ctx, "w1", "p1")
	assert.ErrorIs(t, err, types.ErrUniqueViolation)

	inactive := s.AddRosterMembership(types.RosterMembership{WrestlerID: "w2", PromotionID: "p1"})
	require.NoError(t, s.ActivateRosterMembership(ctx, inactive.ID))

	got, err := s.RosterMembership(ctx, "w2", "p1")
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestChampionshipWrites(t *testing.T) {
	ctx := context.Background()
	s := New()

	c, err := s.InsertChampionship(ctx, types.NewChampionship{PromotionID: "p1", Name: "World Title", IsActive: true})
	require.NoError(t, err)

	d, err := types.ParseDate("2024-03-15")
	require.NoError(t, err)
	require.NoError(t, s.UpdateChampionship(ctx, c.ID, types.ChampionshipHolders{
		CurrentChampionID: types.StringPtr("w1"),
		WonDate:           &d,
	}))

	list, err := s.ChampionshipsByPromotion(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "w1", *list[0].CurrentChampionID)
	assert.Equal(t, "2024-03-15", list[0].WonDate.String())

	err = s.UpdateChampionship(ctx, "missing", types.ChampionshipHolders{})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestFaultInjection(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("connection reset")
	s.SetFault(func(op, key string) error {
		if op == OpInsertChampionship && key == "Tag Titles" {
			return boom
		}
		return nil
	})

	_, err := s.InsertChampionship(ctx, types.NewChampionship{PromotionID: "p1", Name: "Tag Titles"})
	assert.ErrorIs(t, err, boom)

	_, err = s.InsertChampionship(ctx, types.NewChampionship{PromotionID: "p1", Name: "World Title"})
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Writes())
}

func TestListPromotionsWithSource(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.AddPromotion(types.Promotion{Name: "Linked", Slug: "linked", CagematchID: types.StringPtr("2287")})
	s.AddPromotion(types.Promotion{Name: "Unlinked", Slug: "unlinked"})

	list, err := s.ListPromotionsWithSource(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "linked", list[0].Slug)

	p, err := s.PromotionBySlug(ctx, "unlinked")
	require.NoError(t, err)
	assert.Nil(t, p.CagematchID)

	_, err = s.PromotionBySlug(ctx, "nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
