package parser

import (
	"log/slog"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/HotTag/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func date(t *testing.T, s string) *types.Date {
	t.Helper()
	d, err := types.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func allParsers() []Parser {
	return []Parser{
		NewCSSParser(testLogger),
		NewXPathParser(testLogger),
		NewRegexParser(testLogger),
	}
}

func TestParseFixture(t *testing.T) {
	body, err := os.ReadFile("testdata/titles.html")
	require.NoError(t, err)

	want := []types.ScrapedChampionship{
		{
			Name:      "World Title",
			Champions: []types.ScrapedChampion{{SourceID: "501", Name: "Alex Storm"}},
			WonDate:   date(t, "2024-03-15"),
		},
		{
			Name:      "Tag Titles",
			Champions: []types.ScrapedChampion{},
			IsVacant:  true,
		},
		{
			Name:      "Women's Title",
			Champions: []types.ScrapedChampion{{SourceID: "502", Name: "Jade Vex"}},
			WonDate:   date(t, "2023-02-01"),
		},
		{
			Name: "Tag Team Titles",
			Champions: []types.ScrapedChampion{
				{SourceID: "503", Name: "Rook"},
				{SourceID: "504", Name: "Bishop"},
			},
			WonDate: date(t, "2023-10-10"),
		},
		{
			Name:      "Cruiserweight Title",
			Champions: []types.ScrapedChampion{{SourceID: "505", Name: "Kid Lykos"}},
			IsVacant:  true,
		},
	}

	for _, p := range allParsers() {
		t.Run(p.Strategy(), func(t *testing.T) {
			got, err := p.Parse(body)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseUnescapedLinks(t *testing.T) {
	body := []byte(`<table><tr class="TRow1"><td>1</td>` +
		`<td><a href="?id=5&nr=1">Openweight Title</a></td>` +
		`<td><a href="?id=2&nr=42">Ivy Lane</a></td>` +
		`<td>07.07.2021</td></tr></table>`)

	for _, p := range allParsers() {
		t.Run(p.Strategy(), func(t *testing.T) {
			got, err := p.Parse(body)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "Openweight Title", got[0].Name)
			assert.Equal(t, []types.ScrapedChampion{{SourceID: "42", Name: "Ivy Lane"}}, got[0].Champions)
			assert.Equal(t, "2021-07-07", got[0].WonDate.String())
			assert.False(t, got[0].IsVacant)
		})
	}
}

func TestParseLooseMarkup(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []types.ScrapedChampionship
	}{
		{
			name: "unquoted class",
			body: `<table><tr class=TRow1><td>1</td>` +
				`<td><a href="?id=5&amp;nr=1">Openweight Title</a></td>` +
				`<td><a href="?id=2&amp;nr=42">Ivy Lane</a></td>` +
				`<td>07.07.2021</td></tr></table>`,
			want: []types.ScrapedChampionship{{
				Name:      "Openweight Title",
				Champions: []types.ScrapedChampion{{SourceID: "42", Name: "Ivy Lane"}},
				WonDate:   date(t, "2021-07-07"),
			}},
		},
		{
			name: "omitted end tags",
			body: "<table>\n" +
				`<tr class="TRow1"><td>1<td><a href="?id=5&amp;nr=1">Openweight Title</a>` +
				`<td><a href="?id=2&amp;nr=42">Ivy Lane</a><td>07.07.2021` + "\n" +
				`<tr class="TRow2"><td>2<td><a href="?id=5&amp;nr=2">Tag Titles</a><td>Vacant<td>` + "\n" +
				"</table>\n<p>Last updated 01.01.2025</p>",
			want: []types.ScrapedChampionship{
				{
					Name:      "Openweight Title",
					Champions: []types.ScrapedChampion{{SourceID: "42", Name: "Ivy Lane"}},
					WonDate:   date(t, "2021-07-07"),
				},
				{
					Name:      "Tag Titles",
					Champions: []types.ScrapedChampion{},
					IsVacant:  true,
				},
			},
		},
		{
			name: "unquoted href",
			body: `<table><tr class=TRow1><td><a href=?id=5&amp;nr=1>Openweight Title</a></td>` +
				`<td><a href=?id=2&nr=42>Ivy Lane</a></td></tr></table>`,
			want: []types.ScrapedChampionship{{
				Name:      "Openweight Title",
				Champions: []types.ScrapedChampion{{SourceID: "42", Name: "Ivy Lane"}},
			}},
		},
	}

	for _, tt := range tests {
		for _, p := range allParsers() {
			t.Run(tt.name+"/"+p.Strategy(), func(t *testing.T) {
				got, err := p.Parse([]byte(tt.body))
				require.NoError(t, err)
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestParseDateGluedToText(t *testing.T) {
	body := []byte(`<table><tr class="TRow1"><td><a href="?id=5&amp;nr=1">Openweight Title</a></td>` +
		`<td><a href="?id=2&amp;nr=42">Ivy Lane</a> since15.03.2024</td></tr></table>`)

	for _, p := range allParsers() {
		t.Run(p.Strategy(), func(t *testing.T) {
			got, err := p.Parse(body)
			require.NoError(t, err)
			require.Len(t, got, 1)
			require.NotNil(t, got[0].WonDate)
			assert.Equal(t, "2024-03-15", got[0].WonDate.String())
		})
	}
}

func TestParseTitleWithoutChampionCell(t *testing.T) {
	body := []byte(`<table><tr class="TRow2"><td><a href="?id=5&amp;nr=3">Hardcore Title</a></td></tr></table>`)

	for _, p := range allParsers() {
		t.Run(p.Strategy(), func(t *testing.T) {
			got, err := p.Parse(body)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.True(t, got[0].IsVacant)
			assert.Empty(t, got[0].Champions)
			assert.Nil(t, got[0].WonDate)
		})
	}
}

func TestParseIgnoresUnmarkedRows(t *testing.T) {
	body := []byte(`<table>` +
		`<tr class="THeaderRow"><td><a href="?id=5&amp;nr=3">Header Link</a></td><td>x</td></tr>` +
		`<tr><td><a href="?id=5&amp;nr=4">Plain Row</a></td><td>y</td></tr>` +
		`</table>`)

	for _, p := range allParsers() {
		t.Run(p.Strategy(), func(t *testing.T) {
			got, err := p.Parse(body)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestParseEmptyPage(t *testing.T) {
	for _, p := range allParsers() {
		t.Run(p.Strategy(), func(t *testing.T) {
			got, err := p.Parse([]byte("<html><body><p>No titles.</p></body></html>"))
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"css", "xpath", "regex"} {
		p, err := New(name, testLogger)
		require.NoError(t, err)
		assert.Equal(t, name, p.Strategy())
	}

	p, err := New("", testLogger)
	require.NoError(t, err)
	assert.Equal(t, "css", p.Strategy())

	_, err = New("llm", testLogger)
	assert.Error(t, err)
}
