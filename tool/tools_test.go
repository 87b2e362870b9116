package tool

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallhorseman/SEM37/analyzer"
)

type fakeBackend struct {
	mu      sync.Mutex
	inputs  []string
	headers []string

	domain   *analyzer.AnalysisResult
	keywords []analyzer.KeywordRecord
	audit    *analyzer.PageAudit
	err      error
}

func (f *fakeBackend) record(input string, opts []analyzer.CallOption) {
	req, _ := http.NewRequest(http.MethodPost, "http://backend.test", nil)
	for _, opt := range opts {
		opt(req)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	f.headers = append(f.headers, req.Header.Get("Authorization"))
}

func (f *fakeBackend) AnalyzeDomain(_ context.Context, domain string, opts ...analyzer.CallOption) (*analyzer.AnalysisResult, error) {
	f.record(domain, opts)
	return f.domain, f.err
}

func (f *fakeBackend) FindKeywords(_ context.Context, seed string, opts ...analyzer.CallOption) ([]analyzer.KeywordRecord, error) {
	f.record(seed, opts)
	return f.keywords, f.err
}

func (f *fakeBackend) CheckPage(_ context.Context, url string, opts ...analyzer.CallOption) (*analyzer.PageAudit, error) {
	f.record(url, opts)
	return f.audit, f.err
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestDomainAnalysisSendsTrimmedInputAndToken(t *testing.T) {
	b := &fakeBackend{domain: &analyzer.AnalysisResult{OrganicKeywords: analyzer.Number(1200)}}
	c := NewDomainAnalysis(b, staticToken("abc"), Options{})
	t.Cleanup(c.Close)

	require.NoError(t, c.Submit("  example.com \n"))
	c.Wait()

	state := c.Snapshot()
	require.NotNil(t, state.Result)
	assert.Equal(t, "1200", state.Result.OrganicKeywords.String())
	assert.Equal(t, []string{"example.com"}, b.inputs)
	assert.Equal(t, []string{"Bearer abc"}, b.headers)
}

func TestKeywordFinderWithoutToken(t *testing.T) {
	b := &fakeBackend{keywords: []analyzer.KeywordRecord{}}
	c := NewKeywordFinder(b, nil, Options{})
	t.Cleanup(c.Close)

	require.NoError(t, c.Submit("seo"))
	c.Wait()

	state := c.Snapshot()
	require.NotNil(t, state.Result)
	assert.Empty(t, *state.Result)
	assert.True(t, state.HasSubmitted)
	assert.Equal(t, []string{""}, b.headers)
}

func TestOnPageSeoCheckerMessages(t *testing.T) {
	b := &fakeBackend{err: &analyzer.ServerError{StatusCode: 500}}
	c := NewOnPageSeoChecker(b, staticToken(""), Options{})
	t.Cleanup(c.Close)

	var vErr *ValidationError
	require.ErrorAs(t, c.Submit(""), &vErr)
	assert.Equal(t, "Please enter a URL to analyze.", c.Snapshot().Error)
	assert.Empty(t, b.inputs)

	require.NoError(t, c.Submit("https://example.com"))
	c.Wait()
	assert.Equal(t, "Failed to audit page. Make sure the backend server is running.", c.Snapshot().Error)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, ok := ParseKind(string(k))
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("backlinks")
	assert.False(t, ok)

	assert.Equal(t, []Kind{Domain, OnPage, Keyword}, Kinds)
	assert.Equal(t, "Competitor Analysis", Domain.Title())
}
