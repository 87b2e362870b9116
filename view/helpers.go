package view

import (
	"fmt"
	"html/template"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/smallhorseman/SEM37/analyzer"
	"github.com/smallhorseman/SEM37/tool"
)

// Direction is the fixed trend a stat card shows, independent of the sign
// of its delta.
type Direction string

const (
	Positive Direction = "positive"
	Negative Direction = "negative"
)

// StatCard is one summary tile of the domain analysis.
type StatCard struct {
	Title     string
	Value     analyzer.Scalar
	Change    analyzer.Scalar
	Direction Direction
	Icon      string
}

func (c StatCard) TrendClass() string {
	if c.Direction == Positive {
		return "delta-up"
	}
	return "delta-down"
}

func (c StatCard) TrendIcon() string {
	if c.Direction == Positive {
		return "trend-up"
	}
	return "trend-down"
}

// StatCards lays out the four domain summary tiles.
func StatCards(r analyzer.AnalysisResult) []StatCard {
	return []StatCard{
		{Title: "Organic Keywords", Value: r.OrganicKeywords, Change: r.OrganicKeywordsChange, Direction: Positive, Icon: "bolt"},
		{Title: "Paid Keywords", Value: r.PaidKeywords, Change: r.PaidKeywordsChange, Direction: Negative, Icon: "cash"},
		{Title: "Monthly Traffic", Value: r.MonthlyTraffic, Change: r.MonthlyTrafficChange, Direction: Positive, Icon: "trend-up"},
		{Title: "Domain Authority", Value: r.DomainAuthority, Change: r.DomainAuthorityChange, Direction: Positive, Icon: "search"},
	}
}

var iconPaths = map[string]string{
	"bolt":       "M3.75 13.5l10.5-11.25L12 10.5h8.25L9.75 21.75 12 13.5H3.75z",
	"cash":       "M2.25 18.75a60.07 60.07 0 0115.797 2.101c.727.198 1.453-.342 1.453-1.096V18.75M3.75 4.5v.75A.75.75 0 013 6h-.75m0 0v-.75A.75.75 0 013 4.5h.75m0 0h.75A.75.75 0 015.25 6v.75m0 0v-.75A.75.75 0 015.25 4.5h-.75m0 0h.75A.75.75 0 016.75 6v.75m0 0v-.75A.75.75 0 016.75 4.5h.75m-13.5 6.75v.75c0 .414.336.75.75.75h3a.75.75 0 00.75-.75v-.75",
	"trend-up":   "M2.25 18L9 11.25l4.328 4.329 7.37-7.37",
	"trend-down": "M2.25 6L9 12.75l4.328-4.329 7.37 7.37",
	"search":     "M10.5 6a7.5 7.5 0 100 15 7.5 7.5 0 000-15zM21 21l-6-6",
	"magnifier":  "M21 21l-5.197-5.197m0 0A7.5 7.5 0 105.196 5.196a7.5 7.5 0 0010.607 10.607z",
	"beaker":     "M9.75 3.104v5.714a2.25 2.25 0 01-.5 1.591L5.25 12.5M9.75 3.104a2.25 2.25 0 00-3.422-.243L4.25 5.5M9.75 3.104a2.25 2.25 0 013.422-.243l2.028 2.646M21 12a9 9 0 11-18 0 9 9 0 0118 0z",
}

// Icon renders an outline SVG icon. Unknown names render nothing.
func Icon(name, class string) template.HTML {
	path, ok := iconPaths[name]
	if !ok {
		return ""
	}
	return template.HTML(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor" class="%s" aria-hidden="true"><path stroke-linecap="round" stroke-linejoin="round" d="%s"/></svg>`,
		template.HTMLEscapeString(class), path))
}

// Badge renders a status pill such as "Good" or "Warning".
func Badge(status analyzer.Status) template.HTML {
	s := string(status)
	switch status {
	case analyzer.StatusGood, analyzer.StatusWarning, analyzer.StatusError:
	default:
		s = "unknown"
	}
	return template.HTML(fmt.Sprintf(`<span class="badge badge-%s">%s</span>`,
		s, template.HTMLEscapeString(capitalize(string(status)))))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// DifficultyStatus grades a keyword difficulty score.
func DifficultyStatus(d int) analyzer.Status {
	switch {
	case d > 80:
		return analyzer.StatusError
	case d > 60:
		return analyzer.StatusWarning
	default:
		return analyzer.StatusGood
	}
}

// Comma formats integers and floats with thousands separators.
func Comma(v any) string {
	switch n := v.(type) {
	case int:
		return humanize.Comma(int64(n))
	case int64:
		return humanize.Comma(n)
	case float64:
		return humanize.Commaf(n)
	default:
		return fmt.Sprint(v)
	}
}

// Money formats a cost per click as "$1.50".
func Money(f float64) string {
	return fmt.Sprintf("$%.2f", f)
}

// Spend formats a budget as "$4,500".
func Spend(f float64) string {
	return "$" + humanize.Commaf(f)
}

// KeywordRows returns the rows to list, or nil while a request is running.
func KeywordRows(s tool.State[[]analyzer.KeywordRecord]) []analyzer.KeywordRecord {
	if s.Loading || s.Result == nil {
		return nil
	}
	return *s.Result
}

// KeywordPlaceholder is the message shown in place of keyword rows, or ""
// when there are rows to show.
func KeywordPlaceholder(s tool.State[[]analyzer.KeywordRecord]) string {
	switch {
	case s.Loading:
		return "Fetching keyword data..."
	case len(KeywordRows(s)) > 0:
		return ""
	case s.HasSubmitted:
		return "No results found."
	default:
		return "Your results will appear here."
	}
}
