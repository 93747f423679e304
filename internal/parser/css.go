package parser

import (
	"bytes"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/HotTag/internal/types"
)

// CSSParser walks title rows with goquery selectors.
type CSSParser struct {
	logger *slog.Logger
}

// NewCSSParser creates a new CSS selector parser.
func NewCSSParser(logger *slog.Logger) *CSSParser {
	return &CSSParser{
		logger: logger.With("component", "css_parser"),
	}
}

// Strategy implements Parser.
func (p *CSSParser) Strategy() string { return "css" }

// Parse implements Parser.
func (p *CSSParser) Parse(body []byte) ([]types.ScrapedChampionship, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &types.ParseError{Strategy: p.Strategy(), Err: err}
	}
	return p.ParseDocument(doc), nil
}

// ParseDocument extracts records from an already parsed document.
func (p *CSSParser) ParseDocument(doc *goquery.Document) []types.ScrapedChampionship {
	var rows []row

	doc.Find(`tr[class*="` + RowClassMarker + `"]`).Each(func(_ int, tr *goquery.Selection) {
		var r row
		tr.ChildrenFiltered("td").Each(func(_ int, td *goquery.Selection) {
			c := cell{text: cleanText(td.Text())}
			td.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
				href, _ := a.Attr("href")
				c.links = append(c.links, link{href: href, text: a.Text()})
			})
			r.cells = append(r.cells, c)
		})
		rows = append(rows, r)
	})

	records := recordsFromRows(rows)
	p.logger.Debug("parsed title rows", "rows", len(rows), "championships", len(records))
	return records
}
