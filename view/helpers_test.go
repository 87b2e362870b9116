package view

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/smallhorseman/SEM37/analyzer"
)

func TestDifficultyStatus(t *testing.T) {
	tests := []struct {
		difficulty int
		want       analyzer.Status
	}{
		{0, analyzer.StatusGood},
		{60, analyzer.StatusGood},
		{61, analyzer.StatusWarning},
		{80, analyzer.StatusWarning},
		{81, analyzer.StatusError},
		{100, analyzer.StatusError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DifficultyStatus(tt.difficulty), "difficulty %d", tt.difficulty)
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,500", Comma(1500))
	assert.Equal(t, "12,000", Comma(int64(12000)))
	assert.Equal(t, "999", Comma(999))
	assert.Equal(t, "$4.20", Money(4.2))
	assert.Equal(t, "$0.00", Money(0))
	assert.Equal(t, "$4,500", Spend(4500))
	assert.Equal(t, "$1,234,567", Spend(1234567))
}

func TestBadge(t *testing.T) {
	assert.Equal(t, `<span class="badge badge-good">Good</span>`, string(Badge(analyzer.StatusGood)))
	assert.Equal(t, `<span class="badge badge-warning">Warning</span>`, string(Badge(analyzer.StatusWarning)))
	assert.Equal(t, `<span class="badge badge-unknown">&lt;b&gt;</span>`, string(Badge("<b>")))

	badge := string(Badge("élevé"))
	assert.True(t, utf8.ValidString(badge))
	assert.Contains(t, badge, ">Élevé</span>")
}

func TestStatCardDirectionsAreFixed(t *testing.T) {
	cards := StatCards(analyzer.AnalysisResult{
		OrganicKeywordsChange: analyzer.Text("-10%"),
		PaidKeywordsChange:    analyzer.Text("+10%"),
	})
	var dirs []Direction
	for _, c := range cards {
		dirs = append(dirs, c.Direction)
	}
	assert.Equal(t, []Direction{Positive, Negative, Positive, Positive}, dirs)
	assert.Equal(t, "delta-up", cards[0].TrendClass())
	assert.Equal(t, "trend-down", cards[1].TrendIcon())
}

func TestIcon(t *testing.T) {
	assert.Contains(t, string(Icon("bolt", "icon")), `class="icon"`)
	assert.Empty(t, Icon("missing", "icon"))
}

func TestMarkdownSanitizes(t *testing.T) {
	md := NewMarkdown()
	src := "# Heading\n\nSome **bold** text with a [link](javascript:alert(1)).\n\n<iframe src=\"https://evil.test\"></iframe>\n\n1. first\n2. second\n"
	out := string(md.Render(&src))

	assert.Contains(t, out, "<h1>Heading</h1>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<ol>")
	assert.NotContains(t, out, "<a")
	assert.NotContains(t, out, "javascript")
	assert.NotContains(t, out, "iframe")
	assert.Contains(t, out, "link")

	assert.Empty(t, md.Render(nil))
	empty := ""
	assert.Empty(t, md.Render(&empty))
}

func TestParseTheme(t *testing.T) {
	th, err := ParseTheme("light")
	assert.NoError(t, err)
	assert.Equal(t, Light, th)

	th, err = ParseTheme("")
	assert.NoError(t, err)
	assert.True(t, th.Dark)

	_, err = ParseTheme("neon")
	assert.Error(t, err)
}
