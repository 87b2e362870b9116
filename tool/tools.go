package tool

import (
	"context"

	"github.com/smallhorseman/SEM37/analyzer"
)

// Kind names one of the fixed tools.
type Kind string

const (
	Domain  Kind = "domain"
	OnPage  Kind = "onpage"
	Keyword Kind = "keyword"
)

// Kinds lists the tools in tab order.
var Kinds = []Kind{Domain, OnPage, Keyword}

// ParseKind maps a route segment to a Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Title is the tab label.
func (k Kind) Title() string {
	switch k {
	case Domain:
		return "Competitor Analysis"
	case OnPage:
		return "On-Page SEO Checker"
	case Keyword:
		return "Keyword Finder"
	default:
		return string(k)
	}
}

// Backend is the slice of the analysis API the tools call.
type Backend interface {
	AnalyzeDomain(ctx context.Context, domain string, opts ...analyzer.CallOption) (*analyzer.AnalysisResult, error)
	FindKeywords(ctx context.Context, seed string, opts ...analyzer.CallOption) ([]analyzer.KeywordRecord, error)
	CheckPage(ctx context.Context, url string, opts ...analyzer.CallOption) (*analyzer.PageAudit, error)
}

// TokenSource supplies the session token sent with tool requests.
type TokenSource interface {
	Token() string
}

func bearer(tokens TokenSource) analyzer.CallOption {
	if tokens == nil {
		return analyzer.WithBearer("")
	}
	return analyzer.WithBearer(tokens.Token())
}

var (
	DomainMessages = Messages{
		Empty:    "Please enter a domain to analyze.",
		Fallback: "Failed to get analysis. Make sure the backend server is running.",
	}
	KeywordMessages = Messages{
		Empty:    "Please enter a keyword to search.",
		Fallback: "Failed to get keywords. Make sure the backend server is running.",
	}
	OnPageMessages = Messages{
		Empty:    "Please enter a URL to analyze.",
		Fallback: "Failed to audit page. Make sure the backend server is running.",
	}
)

type (
	DomainAnalysis   = Controller[analyzer.AnalysisResult]
	KeywordFinder    = Controller[[]analyzer.KeywordRecord]
	OnPageSeoChecker = Controller[analyzer.PageAudit]
)

func NewDomainAnalysis(b Backend, tokens TokenSource, opts Options) *DomainAnalysis {
	fetch := func(ctx context.Context, domain string) (analyzer.AnalysisResult, error) {
		res, err := b.AnalyzeDomain(ctx, domain, bearer(tokens))
		if err != nil {
			return analyzer.AnalysisResult{}, err
		}
		return *res, nil
	}
	return NewController(Domain, fetch, DomainMessages, opts)
}

func NewKeywordFinder(b Backend, tokens TokenSource, opts Options) *KeywordFinder {
	fetch := func(ctx context.Context, seed string) ([]analyzer.KeywordRecord, error) {
		return b.FindKeywords(ctx, seed, bearer(tokens))
	}
	return NewController(Keyword, fetch, KeywordMessages, opts)
}

func NewOnPageSeoChecker(b Backend, tokens TokenSource, opts Options) *OnPageSeoChecker {
	fetch := func(ctx context.Context, url string) (analyzer.PageAudit, error) {
		audit, err := b.CheckPage(ctx, url, bearer(tokens))
		if err != nil {
			return analyzer.PageAudit{}, err
		}
		return *audit, nil
	}
	return NewController(OnPage, fetch, OnPageMessages, opts)
}
