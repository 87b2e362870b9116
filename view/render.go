// Package view renders workspace snapshots as HTML. Rendering reads state
// and never changes it.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/smallhorseman/SEM37/analyzer"
	"github.com/smallhorseman/SEM37/tool"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the stylesheet and other assets served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Page is the snapshot of one workspace that the shell template renders.
type Page struct {
	Active  tool.Kind
	Domain  tool.State[analyzer.AnalysisResult]
	OnPage  tool.State[analyzer.PageAudit]
	Keyword tool.State[[]analyzer.KeywordRecord]

	AuthEnabled bool
	LoggedIn    bool
}

// Loading reports whether the active tool is waiting on the backend.
func (p Page) Loading() bool {
	switch p.Active {
	case tool.Domain:
		return p.Domain.Loading
	case tool.OnPage:
		return p.OnPage.Loading
	case tool.Keyword:
		return p.Keyword.Loading
	}
	return false
}

// LoginPage is the data behind the login form.
type LoginPage struct {
	Email  string
	Failed bool
}

// Tab is one entry of the tab bar.
type Tab struct {
	Kind   tool.Kind
	Title  string
	Active bool
}

type headData struct {
	Theme      Theme
	Refresh    bool
	ShowLogout bool
}

type shellData struct {
	Page
	Theme Theme
	Tabs  []Tab
}

type loginData struct {
	LoginPage
	Theme Theme
}

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl  *template.Template
	theme Theme
}

func NewRenderer(theme Theme) (*Renderer, error) {
	md := NewMarkdown()
	funcs := template.FuncMap{
		"badge":              Badge,
		"difficulty":         DifficultyStatus,
		"statCards":          StatCards,
		"icon":               Icon,
		"markdown":           md.Render,
		"comma":              Comma,
		"money":              Money,
		"spend":              Spend,
		"keywordRows":        KeywordRows,
		"keywordPlaceholder": KeywordPlaceholder,
		"headData": func(t Theme, refresh, showLogout bool) headData {
			return headData{Theme: t, Refresh: refresh, ShowLogout: showLogout}
		},
	}

	tmpl, err := template.New("sem37").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, theme: theme}, nil
}

func (r *Renderer) Theme() Theme { return r.theme }

// Render writes the full shell page with the active tool.
func (r *Renderer) Render(w io.Writer, p Page) error {
	tabs := make([]Tab, 0, len(tool.Kinds))
	for _, k := range tool.Kinds {
		tabs = append(tabs, Tab{Kind: k, Title: k.Title(), Active: k == p.Active})
	}
	return r.tmpl.ExecuteTemplate(w, "shell", shellData{Page: p, Theme: r.theme, Tabs: tabs})
}

// RenderLogin writes the login page.
func (r *Renderer) RenderLogin(w io.Writer, p LoginPage) error {
	return r.tmpl.ExecuteTemplate(w, "login", loginData{LoginPage: p, Theme: r.theme})
}
