package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Backend endpoints.
const (
	EndpointAnalyze       = "/analyze"
	EndpointKeywordFinder = "/keyword_finder"
	EndpointOnPageCheck   = "/on_page_seo_check"
	EndpointLogin         = "/api/auth/login"
)

const maxResponseBytes = 8 << 20

var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// Client posts JSON to the SEO backend (or the auth service, which speaks
// the same dialect) and decodes JSON answers.
type Client struct {
	baseURL string
	client  *http.Client
	metrics *Metrics
	logger  *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled HTTP client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for baseURL. timeout bounds every request.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CallOption adjusts a single outgoing request.
type CallOption func(*http.Request)

// WithBearer attaches a session token. An empty token adds nothing.
func WithBearer(token string) CallOption {
	return func(req *http.Request) {
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// AnalyzeDomain fetches the competitor overview for domain.
func (c *Client) AnalyzeDomain(ctx context.Context, domain string, opts ...CallOption) (*AnalysisResult, error) {
	var out AnalysisResult
	if err := c.PostJSON(ctx, EndpointAnalyze, map[string]string{"domain": domain}, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindKeywords returns keyword suggestions for seed in backend order.
func (c *Client) FindKeywords(ctx context.Context, seed string, opts ...CallOption) ([]KeywordRecord, error) {
	var out []KeywordRecord
	if err := c.PostJSON(ctx, EndpointKeywordFinder, map[string]string{"keyword": seed}, &out, opts...); err != nil {
		return nil, err
	}
	if out == nil {
		out = []KeywordRecord{}
	}
	return out, nil
}

// CheckPage audits the on-page SEO elements of url.
func (c *Client) CheckPage(ctx context.Context, url string, opts ...CallOption) (*PageAudit, error) {
	var out PageAudit
	if err := c.PostJSON(ctx, EndpointOnPageCheck, map[string]string{"url": url}, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostJSON sends in as JSON to path and decodes a 2xx body into out. Errors
// are *NetworkError, *ServerError or *ParseError.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any, opts ...CallOption) error {
	start := time.Now()
	c.metrics.Start()

	err := c.post(ctx, path, in, out, opts)

	outcome := Outcome(err)
	c.metrics.Observe(path, outcome, time.Since(start))
	if err != nil {
		c.logger.Debug("backend request failed",
			zap.String("endpoint", path),
			zap.String("outcome", outcome),
			zap.Error(err))
	}
	return err
}

func (c *Client) post(ctx context.Context, path string, in, out any, opts []CallOption) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &NetworkError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "SEM37/1.0")
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Op: "send", Err: err}
	}
	defer resp.Body.Close()

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if _, err := io.Copy(buf, io.LimitReader(resp.Body, maxResponseBytes)); err != nil {
		return &NetworkError{Op: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{StatusCode: resp.StatusCode, Message: errorField(buf.Bytes())}
	}

	if err := json.Unmarshal(buf.Bytes(), out); err != nil {
		return &ParseError{Err: err}
	}
	return nil
}

// errorField extracts {"error": "..."} from a failure body, if any.
func errorField(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Error)
}
