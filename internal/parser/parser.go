// Package parser extracts championship records from Cagematch promotion
// title pages.
//
// Three strategies walk the markup differently (goquery, XPath, raw
// regular expressions) but all reduce a page to rows of cells and links and
// then apply the same rules, so they agree on every page.
package parser

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/IshaanNene/HotTag/internal/types"
)

// Parser extracts championship records from a title page.
type Parser interface {
	// Parse returns the championships on the page in document order.
	Parse(body []byte) ([]types.ScrapedChampionship, error)

	// Strategy returns the strategy identifier.
	Strategy() string
}

// RowClassMarker identifies title rows by their class attribute.
const RowClassMarker = "TRow"

// Link patterns accept both the entity-escaped separator found in raw markup
// and the decoded one found in attribute values.
var (
	titleLinkPattern    = regexp.MustCompile(`(?:^|[?&;])id=5(?:&amp;|&)nr=(\d+)`)
	wrestlerLinkPattern = regexp.MustCompile(`(?:^|[?&;])id=2(?:&amp;|&)nr=(\d+)`)
	datePattern         = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
)

// New creates the parser for a strategy name: css, xpath or regex.
func New(strategy string, logger *slog.Logger) (Parser, error) {
	switch strategy {
	case "css", "":
		return NewCSSParser(logger), nil
	case "xpath":
		return NewXPathParser(logger), nil
	case "regex":
		return NewRegexParser(logger), nil
	default:
		return nil, fmt.Errorf("unsupported parser strategy: %s", strategy)
	}
}

// link is an anchor with its href and visible text.
type link struct {
	href string
	text string
}

// cell is one table cell reduced to its text and anchors.
type cell struct {
	text  string
	links []link
}

// row is one marked table row.
type row struct {
	cells []cell
}

func (r row) text() string {
	parts := make([]string, len(r.cells))
	for i, c := range r.cells {
		parts[i] = c.text
	}
	return strings.Join(parts, " ")
}

// recordFromRow applies the title, champion, vacancy and date rules to a row.
// ok is false for rows that carry no title link.
func recordFromRow(r row) (types.ScrapedChampionship, bool) {
	titleCell := -1
	var name string
	for i, c := range r.cells {
		for _, l := range c.links {
			if titleLinkPattern.MatchString(l.href) {
				titleCell = i
				name = cleanText(l.text)
				break
			}
		}
		if titleCell >= 0 {
			break
		}
	}
	if titleCell < 0 || name == "" {
		return types.ScrapedChampionship{}, false
	}

	rec := types.ScrapedChampionship{
		Name:      name,
		Champions: []types.ScrapedChampion{},
	}

	var champText string
	if titleCell+1 < len(r.cells) {
		champCell := r.cells[titleCell+1]
		champText = champCell.text
		for _, l := range champCell.links {
			m := wrestlerLinkPattern.FindStringSubmatch(l.href)
			if m == nil {
				continue
			}
			champName := cleanText(l.text)
			if champName == "" {
				continue
			}
			rec.Champions = append(rec.Champions, types.ScrapedChampion{SourceID: m[1], Name: champName})
		}
	}

	rec.IsVacant = len(rec.Champions) == 0 || strings.Contains(strings.ToLower(champText), "vacant")

	if raw := datePattern.FindString(r.text()); raw != "" {
		if d, ok := types.ParseSourceDate(raw); ok {
			rec.WonDate = &d
		}
	}

	return rec, true
}

// recordsFromRows keeps document order and drops rows without a title.
func recordsFromRows(rows []row) []types.ScrapedChampionship {
	records := make([]types.ScrapedChampionship, 0, len(rows))
	for _, r := range rows {
		if rec, ok := recordFromRow(r); ok {
			records = append(records, rec)
		}
	}
	return records
}

// cleanText trims and collapses internal whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func hasRowMarker(class string) bool {
	return strings.Contains(class, RowClassMarker)
}
