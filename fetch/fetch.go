// Package fetch performs HTTP retrieval for page loads and downloads, with an
// optional fixed local proxy route.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"skiff/search"
)

const maxRedirects = 10

// Options configures a Client.
type Options struct {
	ProxyURL          string // fixed local proxy endpoint
	BrowseUserAgent   string
	DownloadUserAgent string
	BrowseTimeout     time.Duration
	MaxPageSize       int64 // cap on decoded page bodies, bytes
}

// Client holds the pre-built HTTP clients: direct and proxied, each in a
// browsing flavour (bounded timeout) and a download flavour (no overall
// deadline, transfers can be long).
type Client struct {
	browseDirect   *http.Client
	browseProxy    *http.Client
	downloadDirect *http.Client
	downloadProxy  *http.Client

	browseUA    string
	downloadUA  string
	maxPageSize int64
}

// NewClient builds a client. The proxy endpoint is validated here so a bad
// config fails at startup, not on first toggle.
func NewClient(opts Options) (*Client, error) {
	if opts.BrowseUserAgent == "" {
		opts.BrowseUserAgent = "Mozilla/5.0 (compatible; skiff/1.0)"
	}
	if opts.DownloadUserAgent == "" {
		opts.DownloadUserAgent = opts.BrowseUserAgent
	}
	if opts.BrowseTimeout == 0 {
		opts.BrowseTimeout = 30 * time.Second
	}
	if opts.MaxPageSize == 0 {
		opts.MaxPageSize = 10 * 1024 * 1024
	}
	if opts.ProxyURL == "" {
		opts.ProxyURL = "http://127.0.0.1:4444"
	}

	proxyURL, err := url.Parse(opts.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy URL %q: %w", opts.ProxyURL, err)
	}
	proxied := &http.Transport{Proxy: http.ProxyURL(proxyURL)}

	redirectCap := func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}

	return &Client{
		browseDirect:   &http.Client{Timeout: opts.BrowseTimeout, CheckRedirect: redirectCap},
		browseProxy:    &http.Client{Timeout: opts.BrowseTimeout, Transport: proxied, CheckRedirect: redirectCap},
		downloadDirect: &http.Client{CheckRedirect: redirectCap},
		downloadProxy:  &http.Client{Transport: proxied, CheckRedirect: redirectCap},
		browseUA:       opts.BrowseUserAgent,
		downloadUA:     opts.DownloadUserAgent,
		maxPageSize:    opts.MaxPageSize,
	}, nil
}

// Page is a fetched document: UTF-8 body, final URL after redirects, and the
// reported content type.
type Page struct {
	Body        string
	FinalURL    string
	ContentType string
}

// FetchPage retrieves a page for display. The body is capped at the
// configured size and decoded to UTF-8 from the response charset.
func (c *Client) FetchPage(ctx context.Context, rawURL string, proxy bool) (*Page, error) {
	client := c.browseDirect
	if proxy {
		client = c.browseProxy
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.browseUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching %s: HTTP %d %s", rawURL, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	limited := io.LimitReader(resp.Body, c.maxPageSize)
	decoded, err := charset.NewReader(limited, contentType)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", rawURL, err)
	}
	body, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Page{
		Body:        string(body),
		FinalURL:    finalURL,
		ContentType: contentType,
	}, nil
}

// Stream opens a response body for a download. The caller owns the body and
// must close it; cancellation arrives through the context at the next read.
func (c *Client) Stream(ctx context.Context, rawURL string, proxy bool) (*http.Response, error) {
	client := c.downloadDirect
	if proxy {
		client = c.downloadProxy
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.downloadUA)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: HTTP %d %s", rawURL, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return resp, nil
}

// NormalizeAddress turns address-bar input into a URL. Input with an explicit
// http or https scheme navigates directly; everything else becomes a query
// against the search provider.
func NormalizeAddress(input string, provider search.Provider) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return input
	}
	return provider.SearchURL(input)
}

// Resolve resolves a possibly-relative href against the page URL.
func Resolve(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing base URL %q: %w", base, err)
	}
	h, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parsing link %q: %w", href, err)
	}
	return b.ResolveReference(h).String(), nil
}
