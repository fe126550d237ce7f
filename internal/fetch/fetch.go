package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Request describes one page retrieval.
type Request struct {
	// URL is the absolute endpoint address.
	URL string
	// Method is GET or POST; empty means GET.
	Method string
	// Form carries query parameters (GET) or the form body (POST).
	Form url.Values
}

// Page is one page of raw content returned by a source.
type Page struct {
	// Body is the raw response content.
	Body []byte
	// FinalURL is the address the content was served from, after redirects.
	// Relative next-page links resolve against it.
	FinalURL string
}

// Fetcher retrieves one page per call.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Page, error)
}

// maxPageBytes bounds a single page read; result tables are far smaller.
const maxPageBytes = 8 << 20

// HTTPFetcher implements Fetcher over net/http.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

var _ Fetcher = (*HTTPFetcher)(nil)

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithClient overrides the default HTTP client.
func WithClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// NewHTTPFetcher creates a transport with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string, opts ...Option) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: strings.TrimSpace(userAgent),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs the request and returns the page body.
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (*Page, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	target := req.URL
	var body io.Reader
	switch method {
	case http.MethodGet:
		if len(req.Form) > 0 {
			separator := "?"
			if strings.Contains(target, "?") {
				separator = "&"
			}
			target += separator + req.Form.Encode()
		}
	case http.MethodPost:
		body = strings.NewReader(req.Form.Encode())
	default:
		return nil, fmt.Errorf("unsupported method %q", req.Method)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		httpReq.Header.Set("User-Agent", f.userAgent)
	}
	if method == http.MethodPost {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read page body: %w", err)
	}

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &Page{Body: content, FinalURL: finalURL}, nil
}

// ResolveLink resolves a possibly relative href against the page it appeared
// on.
func ResolveLink(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
