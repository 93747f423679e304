package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// ScrapedChampion is a champion link found on a source title page.
type ScrapedChampion struct {
	SourceID string `json:"source_id,omitempty"`
	Name     string `json:"name"`
}

// ScrapedChampionship is one title row parsed from a source page.
type ScrapedChampionship struct {
	Name      string            `json:"name"`
	Champions []ScrapedChampion `json:"champions"`
	WonDate   *Date             `json:"won_date"`
	IsVacant  bool              `json:"is_vacant"`
}

// Date is a calendar date without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const (
	isoDateLayout    = "2006-01-02"
	sourceDateLayout = "02.01.2006"
)

// NewDate converts t to a Date using t's own location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseSourceDate parses a DD.MM.YYYY date. ok is false for impossible dates.
func ParseSourceDate(s string) (Date, bool) {
	t, err := time.Parse(sourceDateLayout, s)
	if err != nil {
		return Date{}, false
	}
	return NewDate(t), true
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDate(t), nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time().Format(isoDateLayout)
}

// Equal reports whether two optional dates are the same. Nil equals nil.
func (d *Date) Equal(o *Date) bool {
	if d == nil || o == nil {
		return d == nil && o == nil
	}
	return *d == *o
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" and full timestamps.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if len(s) > len(isoDateLayout) {
		s = s[:len(isoDateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
