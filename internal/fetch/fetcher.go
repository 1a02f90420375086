// Package fetch retrieves page sources over HTTP for clipping.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/starford/vaultclip/internal/apperr"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "vaultclip/1.0 (+https://github.com/starford/vaultclip)"
	DefaultMaxBytes  = 10 << 20
)

// Page is a fetched HTML document.
type Page struct {
	// URL is the final location after redirects.
	URL        string
	StatusCode int
	HTML       string
}

// Fetcher retrieves the HTML for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// HTTPFetcher fetches web pages via HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTimeout sets the whole-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBytes caps how much of the body is read.
func WithMaxBytes(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithTransport replaces the HTTP transport, mostly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *HTTPFetcher) { f.client.Transport = rt }
}

// New creates an HTTPFetcher with sensible defaults.
func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		maxBytes:  DefaultMaxBytes,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch retrieves the HTML content of the given URL and decodes it to UTF-8.
// Every failure wraps apperr.ErrFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: unsupported url %q", apperr.ErrFetch, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", apperr.ErrFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", apperr.ErrFetch, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d for %s", apperr.ErrFetch, resp.StatusCode, rawURL)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", apperr.ErrFetch, rawURL, err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", apperr.ErrFetch, err)
	}

	return &Page{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		HTML:       string(data),
	}, nil
}
