package parser

import (
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/IshaanNene/HotTag/internal/types"
)

var (
	rowSplit       = regexp.MustCompile(`(?i)<tr\b`)
	rowEndPattern  = regexp.MustCompile(`(?i)</(?:tr|tbody|thead|tfoot|table)\s*>`)
	classPattern   = regexp.MustCompile(`(?is)\bclass\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+))`)
	cellSplit      = regexp.MustCompile(`(?i)<td\b`)
	cellEndPattern = regexp.MustCompile(`(?i)</td\s*>`)
	anchorPattern  = regexp.MustCompile(`(?is)<a\b[^>]*?\bhref\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+))[^>]*>(.*?)</a>`)
	tagPattern     = regexp.MustCompile(`(?s)<[^>]*>`)
)

// RegexParser extracts title rows from raw markup with regular expressions.
// It needs no DOM, so it tolerates markup an HTML parser would restructure.
type RegexParser struct {
	logger *slog.Logger
}

// NewRegexParser creates a new regex parser.
func NewRegexParser(logger *slog.Logger) *RegexParser {
	return &RegexParser{
		logger: logger.With("component", "regex_parser"),
	}
}

// Strategy implements Parser.
func (p *RegexParser) Strategy() string { return "regex" }

// Parse implements Parser.
func (p *RegexParser) Parse(body []byte) ([]types.ScrapedChampionship, error) {
	var rows []row

	// Rows are cut at each <tr opening tag, so omitted </tr> end tags do
	// not hide the rows that follow.
	parts := rowSplit.Split(string(body), -1)
	for _, part := range parts[1:] {
		end := strings.IndexByte(part, '>')
		if end < 0 {
			continue
		}
		attrs, inner := part[:end], part[end+1:]
		if !hasRowMarker(attrValue(classPattern.FindStringSubmatch(attrs))) {
			continue
		}
		if loc := rowEndPattern.FindStringIndex(inner); loc != nil {
			inner = inner[:loc[0]]
		}
		rows = append(rows, splitRow(inner))
	}

	records := recordsFromRows(rows)
	p.logger.Debug("parsed title rows", "rows", len(rows), "championships", len(records))
	return records, nil
}

// splitRow cuts a row's inner markup at each <td opening tag, so a missing
// </td> does not merge neighbouring cells.
func splitRow(inner string) row {
	var r row
	parts := cellSplit.Split(inner, -1)
	for _, part := range parts[1:] {
		// Drop the remainder of the opening tag.
		if i := strings.IndexByte(part, '>'); i >= 0 {
			part = part[i+1:]
		}
		if loc := cellEndPattern.FindStringIndex(part); loc != nil {
			part = part[:loc[0]]
		}

		c := cell{text: cleanText(stripTags(part))}
		for _, a := range anchorPattern.FindAllStringSubmatch(part, -1) {
			c.links = append(c.links, link{
				href: html.UnescapeString(attrValue(a[:4])),
				text: stripTags(a[4]),
			})
		}
		r.cells = append(r.cells, c)
	}
	return r
}

// attrValue returns the double-quoted, single-quoted or unquoted value
// captured by an attribute pattern match.
func attrValue(m []string) string {
	if len(m) < 2 {
		return ""
	}
	for _, v := range m[1:] {
		if v != "" {
			return v
		}
	}
	return ""
}

// stripTags removes markup and decodes entities.
func stripTags(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, " "))
}
