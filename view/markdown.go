package view

import (
	"bytes"
	"html"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// Markdown renders backend-authored recommendations. Only headings, lists,
// emphasis and paragraphs survive; raw HTML and links are dropped.
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewMarkdown() *Markdown {
	p := bluemonday.NewPolicy()
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6", "p", "br", "ul", "ol", "li", "em", "strong")
	return &Markdown{md: goldmark.New(), policy: p}
}

// Render converts src to sanitized HTML. An empty or nil source renders
// nothing.
func (m *Markdown) Render(src *string) template.HTML {
	if src == nil || *src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(*src), &buf); err != nil {
		return template.HTML("<p>" + html.EscapeString(*src) + "</p>")
	}
	return template.HTML(m.policy.SanitizeBytes(buf.Bytes()))
}
