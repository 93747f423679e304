// Package memory is an in-process store used by tests and local parse runs.
// It enforces the same uniqueness rules as the hosted schema.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/IshaanNene/HotTag/internal/types"
)

// Operation names passed to a Fault.
const (
	OpCreateWrestler      = "create_wrestler"
	OpSetWrestlerSourceID = "set_wrestler_source_id"
	OpInsertRoster        = "insert_roster"
	OpActivateRoster      = "activate_roster"
	OpInsertChampionship  = "insert_championship"
	OpUpdateChampionship  = "update_championship"
	OpWrestlerBySourceID  = "wrestler_by_source_id"
	OpWrestlerByName      = "wrestler_by_name"
	OpListChampionships   = "list_championships"
)

// Fault decides whether an operation should fail. key is the wrestler or
// championship name the operation concerns, or the promotion id for
// OpListChampionships.
type Fault func(op, key string) error

// Store holds all rows in memory. It is safe for concurrent use.
type Store struct {
	mu            sync.Mutex
	promotions    []types.Promotion
	wrestlers     []types.Wrestler
	roster        []types.RosterMembership
	championships []types.Championship
	fault         Fault
	writes        int
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

func (s *Store) Name() string { return "memory" }

func (s *Store) Close() error { return nil }

// SetFault installs a fault hook. A nil hook disables fault injection.
func (s *Store) SetFault(f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = f
}

// Writes returns the number of successful write operations.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// AddPromotion seeds a promotion and returns it with an assigned id.
func (s *Store) AddPromotion(p types.Promotion) types.Promotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.promotions = append(s.promotions, p)
	return p
}

// AddWrestler seeds a wrestler and returns it with an assigned id.
func (s *Store) AddWrestler(w types.Wrestler) types.Wrestler {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	s.wrestlers = append(s.wrestlers, w)
	return w
}

// AddRosterMembership seeds a roster row.
func (s *Store) AddRosterMembership(m types.RosterMembership) types.RosterMembership {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	s.roster = append(s.roster, m)
	return m
}

// AddChampionship seeds a championship.
func (s *Store) AddChampionship(c types.Championship) types.Championship {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.championships = append(s.championships, c)
	return c
}

// Wrestlers returns a copy of all wrestler rows.
func (s *Store) Wrestlers() []types.Wrestler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Wrestler(nil), s.wrestlers...)
}

// Roster returns a copy of all membership rows.
func (s *Store) Roster() []types.RosterMembership {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.RosterMembership(nil), s.roster...)
}

func (s *Store) ListPromotionsWithSource(_ context.Context) ([]types.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []types.Promotion
	for _, p := range s.promotions {
		if p.CagematchID != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) PromotionBySlug(_ context.Context, slug string) (*types.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.promotions {
		if p.Slug == slug {
			p := p
			return &p, nil
		}
	}
	return nil, notFound("promotions", "select")
}

func (s *Store) WrestlerBySourceID(_ context.Context, sourceID string) (*types.Wrestler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.injected(OpWrestlerBySourceID, sourceID); err != nil {
		return nil, err
	}
	for _, w := range s.wrestlers {
		if w.CagematchID != nil && *w.CagematchID == sourceID {
			w := w
			return &w, nil
		}
	}
	return nil, notFound("wrestlers", "select")
}

func (s *Store) WrestlerByName(_ context.Context, name string) (*types.Wrestler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.injected(OpWrestlerByName, name); err != nil {
		return nil, err
	}
	for _, w := range s.wrestlers {
		if strings.EqualFold(w.Name, name) {
			w := w
			return &w, nil
		}
	}
	return nil, notFound("wrestlers", "select")
}

func (s *Store) CreateWrestler(_ context.Context, nw types.NewWrestler) (*types.Wrestler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.injected(OpCreateWrestler, nw.Name); err != nil {
		return nil, err
	}
	for _, w := range s.wrestlers {
		if w.Slug == nw.Slug {
			return nil, uniqueViolation("wrestlers", "wrestlers_slug_key")
		}
		if nw.CagematchID != nil && w.CagematchID != nil && *w.CagematchID == *nw.CagematchID {
			return nil, uniqueViolation("wrestlers", "wrestlers_cagematch_id_key")
		}
	}

	w := types.Wrestler{
		ID:          uuid.NewString(),
		Name:        nw.Name,
		Slug:        nw.Slug,
		CagematchID: nw.CagematchID,
	}
	s.wrestlers = append(s.wrestlers, w)
	s.writes++
	return &w, nil
}

func (s *Store) SetWrestlerSourceID(_ context.Context, wrestlerID, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.wrestlers {
		if s.wrestlers[i].ID != wrestlerID {
			continue
		}
		if err := s.injected(OpSetWrestlerSourceID, s.wrestlers[i].Name); err != nil {
			return err
		}
		id := sourceID
		s.wrestlers[i].CagematchID = &id
		s.writes++
		return nil
	}
	return notFound("wrestlers", "update")
}

func (s *Store) RosterMembership(_ context.Context, wrestlerID, promotionID string) (*types.RosterMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.roster {
		if m.WrestlerID == wrestlerID && m.PromotionID == promotionID {
			m := m
			return &m, nil
		}
	}
	return nil, notFound("wrestler_promotions", "select")
}

func (s *Store) InsertRosterMembership(_ context.Context, wrestlerID, promotionID string) (*types.RosterMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.injected(OpInsertRoster, s.wrestlerName(wrestlerID)); err != nil {
		return nil, err
	}
	for _, m := range s.roster {
		if m.WrestlerID == wrestlerID && m.PromotionID == promotionID {
			return nil, uniqueViolation("wrestler_promotions", "wrestler_promotions_wrestler_id_promotion_id_key")
		}
	}

	m := types.RosterMembership{
		ID:          uuid.NewString(),
		WrestlerID:  wrestlerID,
		PromotionID: promotionID,
		IsActive:    true,
	}
	s.roster = append(s.roster, m)
	s.writes++
	return &m, nil
}

func (s *Store) ActivateRosterMembership(_ context.Context, membershipID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.roster {
		if s.roster[i].ID != membershipID {
			continue
		}
		if err := s.injected(OpActivateRoster, s.wrestlerName(s.roster[i].WrestlerID)); err != nil {
			return err
		}
		s.roster[i].IsActive = true
		s.writes++
		return nil
	}
	return notFound("wrestler_promotions", "update")
}

func (s *Store) ChampionshipsByPromotion(_ context.Context, promotionID string) ([]types.Championship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.injected(OpListChampionships, promotionID); err != nil {
		return nil, err
	}
	var out []types.Championship
	for _, c := range s.championships {
		if c.PromotionID == promotionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) InsertChampionship(_ context.Context, nc types.NewChampionship) (*types.Championship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.injected(OpInsertChampionship, nc.Name); err != nil {
		return nil, err
	}

	c := types.Championship{
		ID:                 uuid.NewString(),
		PromotionID:        nc.PromotionID,
		Name:               nc.Name,
		CurrentChampionID:  nc.CurrentChampionID,
		CurrentChampion2ID: nc.CurrentChampion2ID,
		WonDate:            nc.WonDate,
		IsActive:           nc.IsActive,
		SortOrder:          nc.SortOrder,
	}
	s.championships = append(s.championships, c)
	s.writes++
	return &c, nil
}

func (s *Store) UpdateChampionship(_ context.Context, championshipID string, h types.ChampionshipHolders) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.championships {
		c := &s.championships[i]
		if c.ID != championshipID {
			continue
		}
		if err := s.injected(OpUpdateChampionship, c.Name); err != nil {
			return err
		}
		c.CurrentChampionID = h.CurrentChampionID
		c.CurrentChampion2ID = h.CurrentChampion2ID
		c.WonDate = h.WonDate
		s.writes++
		return nil
	}
	return notFound("promotion_championships", "update")
}

// injected must be called with s.mu held.
func (s *Store) injected(op, key string) error {
	if s.fault == nil {
		return nil
	}
	if err := s.fault(op, key); err != nil {
		return &types.StoreError{Backend: "memory", Op: op, Err: err}
	}
	return nil
}

// wrestlerName must be called with s.mu held.
func (s *Store) wrestlerName(id string) string {
	for _, w := range s.wrestlers {
		if w.ID == id {
			return w.Name
		}
	}
	return ""
}

func notFound(table, op string) error {
	return &types.StoreError{Backend: "memory", Table: table, Op: op, Err: types.ErrNotFound}
}

func uniqueViolation(table, constraint string) error {
	return &types.StoreError{
		Backend: "memory",
		Table:   table,
		Op:      "insert",
		Code:    types.UniqueViolationCode,
		Err:     fmt.Errorf("duplicate key value violates unique constraint %q", constraint),
	}
}
