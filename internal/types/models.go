package types

import "strings"

// Promotion is a wrestling promotion listed on Hot Tag.
type Promotion struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	CagematchID *string `json:"cagematch_id"`
}

// SourceID returns the promotion's Cagematch id, or "" if unset or blank.
func (p Promotion) SourceID() string {
	if p.CagematchID == nil {
		return ""
	}
	return strings.TrimSpace(*p.CagematchID)
}

// Wrestler is a wrestler profile.
type Wrestler struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	CagematchID *string `json:"cagematch_id"`
}

// HasSourceID reports whether the wrestler is linked to a Cagematch profile.
func (w Wrestler) HasSourceID() bool {
	return w.CagematchID != nil && *w.CagematchID != ""
}

// NewWrestler holds the columns written when a wrestler is created.
type NewWrestler struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	CagematchID *string `json:"cagematch_id,omitempty"`
}

// RosterMembership links a wrestler to a promotion's roster.
type RosterMembership struct {
	ID          string `json:"id"`
	WrestlerID  string `json:"wrestler_id"`
	PromotionID string `json:"promotion_id"`
	IsActive    bool   `json:"is_active"`
}

// Championship is a promotion-scoped title record.
type Championship struct {
	ID                 string  `json:"id"`
	PromotionID        string  `json:"promotion_id"`
	Name               string  `json:"name"`
	CurrentChampionID  *string `json:"current_champion_id"`
	CurrentChampion2ID *string `json:"current_champion_2_id"`
	WonDate            *Date   `json:"won_date"`
	IsActive           bool    `json:"is_active"`
	SortOrder          int     `json:"sort_order"`
}

// NewChampionship holds the columns written when a championship is created.
type NewChampionship struct {
	PromotionID        string  `json:"promotion_id"`
	Name               string  `json:"name"`
	CurrentChampionID  *string `json:"current_champion_id"`
	CurrentChampion2ID *string `json:"current_champion_2_id"`
	WonDate            *Date   `json:"won_date"`
	IsActive           bool    `json:"is_active"`
	SortOrder          int     `json:"sort_order"`
}

// ChampionshipHolders is the set of columns an update rewrites.
type ChampionshipHolders struct {
	CurrentChampionID  *string `json:"current_champion_id"`
	CurrentChampion2ID *string `json:"current_champion_2_id"`
	WonDate            *Date   `json:"won_date"`
}

// Holders returns the championship's current holder columns.
func (c Championship) Holders() ChampionshipHolders {
	return ChampionshipHolders{
		CurrentChampionID:  c.CurrentChampionID,
		CurrentChampion2ID: c.CurrentChampion2ID,
		WonDate:            c.WonDate,
	}
}

// Equal reports whether both holder sets name the same champions and date.
func (h ChampionshipHolders) Equal(o ChampionshipHolders) bool {
	return equalString(h.CurrentChampionID, o.CurrentChampionID) &&
		equalString(h.CurrentChampion2ID, o.CurrentChampion2ID) &&
		h.WonDate.Equal(o.WonDate)
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
