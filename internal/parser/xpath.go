package parser

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/HotTag/internal/types"
)

const (
	rowXPath  = `//tr[contains(@class, "` + RowClassMarker + `")]`
	cellXPath = `./td`
	linkXPath = `.//a[@href]`
)

// XPathParser walks title rows with XPath expressions.
type XPathParser struct {
	logger *slog.Logger
}

// NewXPathParser creates a new XPath parser.
func NewXPathParser(logger *slog.Logger) *XPathParser {
	return &XPathParser{
		logger: logger.With("component", "xpath_parser"),
	}
}

// Strategy implements Parser.
func (p *XPathParser) Strategy() string { return "xpath" }

// Parse implements Parser.
func (p *XPathParser) Parse(body []byte) ([]types.ScrapedChampionship, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &types.ParseError{Strategy: p.Strategy(), Err: err}
	}

	trs, err := htmlquery.QueryAll(doc, rowXPath)
	if err != nil {
		return nil, &types.ParseError{Strategy: p.Strategy(), Err: fmt.Errorf("query rows: %w", err)}
	}

	rows := make([]row, 0, len(trs))
	for _, tr := range trs {
		tds, err := htmlquery.QueryAll(tr, cellXPath)
		if err != nil {
			return nil, &types.ParseError{Strategy: p.Strategy(), Err: fmt.Errorf("query cells: %w", err)}
		}

		var r row
		for _, td := range tds {
			c := cell{text: cleanText(htmlquery.InnerText(td))}
			anchors, err := htmlquery.QueryAll(td, linkXPath)
			if err != nil {
				return nil, &types.ParseError{Strategy: p.Strategy(), Err: fmt.Errorf("query links: %w", err)}
			}
			for _, a := range anchors {
				c.links = append(c.links, link{
					href: htmlquery.SelectAttr(a, "href"),
					text: htmlquery.InnerText(a),
				})
			}
			r.cells = append(r.cells, c)
		}
		rows = append(rows, r)
	}

	records := recordsFromRows(rows)
	p.logger.Debug("parsed title rows", "rows", len(rows), "championships", len(records))
	return records, nil
}
