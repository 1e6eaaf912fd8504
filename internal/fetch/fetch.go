package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oscarandresgarntor/reading-backlog/internal/extract"
)

// ErrUnsupportedMedia marks a local file the backlog cannot ingest.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// Some sites refuse requests without a browser-looking agent.
const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

const defaultRedirectHops = 5

// Client fetches documents for the extraction pipeline. It follows redirects
// up to a cap, reports the final URL, and treats any non-2xx status as an
// error. Retries and TLS tuning stay out; callers that need them wrap the
// HTTPClient.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds each request; zero means 30s.
	Timeout time.Duration
	// RedirectMaxHops caps redirect following; zero means 5.
	RedirectMaxHops int
}

// Get downloads rawURL and packages the response for the pipeline.
func (c *Client) Get(ctx context.Context, rawURL string) (extract.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return extract.Document{}, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return extract.Document{}, fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(req.Context(), timeout)
	defer cancel()
	req = req.WithContext(ctx)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return extract.Document{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return extract.Document{}, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return extract.Document{}, fmt.Errorf("read body: %w", err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return extract.Document{
		URL:         finalURL,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach the redirect policy without mutating the
		// caller's client.
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirect()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirect()}
}

func (c *Client) checkRedirect() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = defaultRedirectHops
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// ReadLocalPDF ingests a PDF from disk, bypassing the network entirely. Only
// .pdf files are accepted; anything else is ErrUnsupportedMedia before the
// pipeline ever runs.
func ReadLocalPDF(path string) (extract.Document, error) {
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return extract.Document{}, fmt.Errorf("%w: %s (only PDF files are supported)", ErrUnsupportedMedia, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return extract.Document{}, fmt.Errorf("resolve path: %w", err)
	}
	body, err := os.ReadFile(abs)
	if err != nil {
		return extract.Document{}, fmt.Errorf("read %s: %w", abs, err)
	}
	return extract.Document{
		URL:         "file://" + abs,
		ContentType: "application/pdf",
		Body:        body,
	}, nil
}
