package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallhorseman/SEM37/analyzer"
	"github.com/smallhorseman/SEM37/tool"
)

func render(t *testing.T, p Page) *goquery.Document {
	t.Helper()
	r, err := NewRenderer(Studio)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, p))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func ptr[T any](v T) *T { return &v }

func sampleAnalysis() analyzer.AnalysisResult {
	return analyzer.AnalysisResult{
		OrganicKeywords:       analyzer.Number(1200),
		OrganicKeywordsChange: analyzer.Text("+4.2%"),
		PaidKeywords:          analyzer.Text("1,234"),
		PaidKeywordsChange:    analyzer.Text("-2.1%"),
		MonthlyTraffic:        analyzer.Text("54.3K"),
		MonthlyTrafficChange:  analyzer.Text("+12.0%"),
		DomainAuthority:       analyzer.Number(71),
		DomainAuthorityChange: analyzer.Text("+1.5%"),
		TopOrganicKeywords:    []analyzer.OrganicKeyword{{Keyword: "seo tools", Position: 1, Volume: analyzer.Number(5400)}},
		TopPaidKeywords:       []analyzer.PaidKeyword{{Keyword: "seo software", CPC: 12.5, AdSpend: 4500}},
	}
}

func TestTabsAndActiveTool(t *testing.T) {
	doc := render(t, Page{Active: tool.OnPage})

	var titles []string
	doc.Find("nav.tabs a.tab").Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, s.Text())
	})
	assert.Equal(t, []string{"Competitor Analysis", "On-Page SEO Checker", "Keyword Finder"}, titles)
	assert.Equal(t, "On-Page SEO Checker", doc.Find("a.tab-active").Text())
	assert.Equal(t, "onpage", doc.Find("#tool").AttrOr("data-tool", ""))
	assert.Equal(t, 1, doc.Find(`form[action="/tools/onpage"]`).Length())
	assert.Equal(t, "SEM37 Toolkit", doc.Find(".hero h1").Text())
	assert.Equal(t, "Studio 37", doc.Find(".brand").Text())
	assert.True(t, doc.Find("body").HasClass("theme-studio"))
}

func TestDomainSummaryRendersVerbatim(t *testing.T) {
	doc := render(t, Page{
		Active: tool.Domain,
		Domain: tool.State[analyzer.AnalysisResult]{
			Input:        "example.com",
			Result:       ptr(sampleAnalysis()),
			HasSubmitted: true,
			Phase:        tool.PhaseSuccess,
		},
	})

	cards := doc.Find(".stat-card")
	require.Equal(t, 4, cards.Length())
	first := cards.First()
	assert.Equal(t, "Organic Keywords", first.Find(".stat-title").Text())
	assert.Equal(t, "1200", first.Find(".stat-value").Text())
	assert.Equal(t, "+4.2%", first.Find(".delta").Text())
	assert.Contains(t, first.Find(".stat-delta").Text(), "from last month")

	assert.True(t, first.Find(".stat-delta").HasClass("delta-up"))
	assert.True(t, cards.Eq(1).Find(".stat-delta").HasClass("delta-down"), "paid keywords trend is always negative")
	assert.True(t, cards.Eq(2).Find(".stat-delta").HasClass("delta-up"))
	assert.True(t, cards.Eq(3).Find(".stat-delta").HasClass("delta-up"))
	assert.Equal(t, "1,234", cards.Eq(1).Find(".stat-value").Text())

	paid := doc.Find("#paid-keywords tbody td")
	assert.Equal(t, "$12.50", paid.Eq(1).Text())
	assert.Equal(t, "$4,500", paid.Eq(2).Text())
	assert.Equal(t, "5400", doc.Find("#organic-keywords tbody td").Eq(2).Text())

	assert.Equal(t, "example.com", doc.Find(`input[name="input"]`).AttrOr("value", ""))
	assert.Equal(t, 0, doc.Find(`meta[http-equiv="refresh"]`).Length())
}

func TestLoadingRefreshesAndDisablesSubmit(t *testing.T) {
	doc := render(t, Page{
		Active: tool.Domain,
		Domain: tool.State[analyzer.AnalysisResult]{Input: "example.com", Loading: true, HasSubmitted: true, Phase: tool.PhaseLoading},
	})

	assert.Equal(t, "1", doc.Find(`meta[http-equiv="refresh"]`).AttrOr("content", ""))
	button := doc.Find(`form[action="/tools/domain"] button`)
	_, disabled := button.Attr("disabled")
	assert.True(t, disabled)
	assert.Equal(t, "Analyzing...", strings.TrimSpace(button.Text()))
	assert.Equal(t, 1, doc.Find(".spinner").Length())
}

func TestBackgroundLoadingDoesNotRefresh(t *testing.T) {
	doc := render(t, Page{
		Active:  tool.Domain,
		Keyword: tool.State[[]analyzer.KeywordRecord]{Loading: true, HasSubmitted: true},
	})
	assert.Equal(t, 0, doc.Find(`meta[http-equiv="refresh"]`).Length())
}

func TestKeywordPlaceholders(t *testing.T) {
	tests := []struct {
		name  string
		state tool.State[[]analyzer.KeywordRecord]
		want  string
	}{
		{name: "pristine", state: tool.State[[]analyzer.KeywordRecord]{}, want: "Your results will appear here."},
		{name: "loading", state: tool.State[[]analyzer.KeywordRecord]{Loading: true, HasSubmitted: true}, want: "Fetching keyword data..."},
		{name: "empty result", state: tool.State[[]analyzer.KeywordRecord]{Result: ptr([]analyzer.KeywordRecord{}), HasSubmitted: true}, want: "No results found."},
		{name: "failed", state: tool.State[[]analyzer.KeywordRecord]{Error: "Failed to get keywords. Make sure the backend server is running.", HasSubmitted: true}, want: "No results found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := render(t, Page{Active: tool.Keyword, Keyword: tt.state})
			assert.Equal(t, tt.want, doc.Find("#keyword-results tr.placeholder").Text())
		})
	}
}

func TestKeywordRows(t *testing.T) {
	records := []analyzer.KeywordRecord{
		{Keyword: "seo pricing", Volume: 1500, CPC: 4.2, Difficulty: 81},
		{Keyword: "best seo tools", Volume: 12000, CPC: 0, Difficulty: 61},
		{Keyword: "seo basics", Volume: 90, CPC: 1, Difficulty: 60},
	}
	doc := render(t, Page{
		Active:  tool.Keyword,
		Keyword: tool.State[[]analyzer.KeywordRecord]{Result: &records, HasSubmitted: true},
	})

	rows := doc.Find("#keyword-results tbody tr")
	require.Equal(t, 3, rows.Length())
	assert.Equal(t, 0, doc.Find("tr.placeholder").Length())

	first := rows.First().Find("td")
	assert.Equal(t, "seo pricing", first.Eq(0).Text())
	assert.Equal(t, "1,500", first.Eq(1).Text())
	assert.Equal(t, "$4.20", first.Eq(2).Text())
	assert.True(t, first.Eq(3).Find("span").HasClass("badge-error"))

	assert.Equal(t, "12,000", rows.Eq(1).Find("td").Eq(1).Text())
	assert.True(t, rows.Eq(1).Find(".badge").HasClass("badge-warning"))
	assert.True(t, rows.Eq(2).Find(".badge").HasClass("badge-good"))
}

func TestOnPageServerError(t *testing.T) {
	doc := render(t, Page{
		Active: tool.OnPage,
		OnPage: tool.State[analyzer.PageAudit]{Input: "notaurl", Error: "Invalid URL", HasSubmitted: true, Phase: tool.PhaseFailure},
	})
	assert.Equal(t, "Invalid URL", doc.Find("p.error").Text())
	assert.Equal(t, 0, doc.Find(".audit").Length())
}

func TestOnPageAudit(t *testing.T) {
	audit := analyzer.PageAudit{
		Title:           analyzer.TextCheck{Text: "Example Domain", Length: 14, Status: analyzer.StatusWarning},
		MetaDescription: analyzer.TextCheck{Status: analyzer.StatusError},
		H1:              analyzer.HeadingCheck{Count: 0, Status: analyzer.StatusError},
		WordCount:       12345,
		Recommendations: ptr("## Improve the title\n\n- Add *keywords*\n\n<script>alert(1)</script>"),
	}
	doc := render(t, Page{
		Active: tool.OnPage,
		OnPage: tool.State[analyzer.PageAudit]{Result: &audit, HasSubmitted: true},
	})

	assert.Equal(t, `"Example Domain"`, doc.Find("#audit-title .mono").Text())
	assert.Equal(t, "Warning", doc.Find("#audit-title .badge").Text())
	assert.Contains(t, doc.Find("#audit-title .check").Text(), "Length: 14 characters (Recommended: 50-60)")
	assert.Equal(t, `"Not Found"`, doc.Find("#audit-meta .panel p").First().Text())
	assert.Contains(t, doc.Find("#audit-meta .check").Text(), "(Recommended: 150-160)")
	assert.Equal(t, "No H1 tags found.", doc.Find("#audit-h1 li").Text())
	assert.Contains(t, doc.Find("#audit-h1 .check").Text(), "Found: 0 (Recommended: 1)")
	assert.Equal(t, "12,345", doc.Find("#audit-content strong").Text())
	assert.Equal(t, "No images found.", doc.Find("#audit-images li").Text())

	rec := doc.Find("#audit-recommendations .prose")
	assert.Equal(t, "Improve the title", rec.Find("h2").Text())
	assert.Equal(t, "keywords", rec.Find("li em").Text())
	assert.Equal(t, 0, rec.Find("script").Length())
}

func TestOnPageImages(t *testing.T) {
	audit := analyzer.PageAudit{
		H1: analyzer.HeadingCheck{Tags: []string{"Welcome"}, Count: 1, Status: analyzer.StatusGood},
		Images: []analyzer.ImageCheck{
			{Src: "https://example.com/a.png", Alt: "A", Status: analyzer.StatusGood},
			{Src: "https://example.com/b.png", Status: analyzer.StatusError},
		},
	}
	doc := render(t, Page{Active: tool.OnPage, OnPage: tool.State[analyzer.PageAudit]{Result: &audit, HasSubmitted: true}})

	assert.Equal(t, "Welcome", doc.Find("#audit-h1 li").Text())
	images := doc.Find("#audit-images li")
	require.Equal(t, 2, images.Length())
	assert.Equal(t, "Image", images.Eq(1).Find("img").AttrOr("alt", ""))
	assert.Equal(t, "Error", images.Eq(1).Find(".badge").Text())
	assert.Equal(t, 0, doc.Find("#audit-recommendations").Length())
}

func TestLogoutOnlyWhenLoggedIn(t *testing.T) {
	doc := render(t, Page{Active: tool.Domain, AuthEnabled: true, LoggedIn: true})
	assert.Equal(t, 1, doc.Find(`form[action="/logout"]`).Length())

	doc = render(t, Page{Active: tool.Domain})
	assert.Equal(t, 0, doc.Find(`form[action="/logout"]`).Length())
}

func TestRenderLogin(t *testing.T) {
	r, err := NewRenderer(Light)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderLogin(&buf, LoginPage{Email: "a@b.c", Failed: true}))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	assert.True(t, doc.Find("body").HasClass("theme-light"))
	assert.Equal(t, "a@b.c", doc.Find(`input[name="email"]`).AttrOr("value", ""))
	assert.Equal(t, "Login failed. Check your email and password.", doc.Find("p.error").Text())
	assert.Equal(t, 0, doc.Find(`form[action="/logout"]`).Length())
}
