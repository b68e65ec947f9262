package insideairbnb

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
)

// Ensure Client implements the interfaces.
var (
	_ driven.DatasetIndex = (*Client)(nil)
	_ driven.Downloader   = (*Client)(nil)
)

const userAgent = "cloudcluster (+https://github.com/PieMyth/CloudCluster)"

// Config configures a Client.
type Config struct {
	// IndexURL is the dataset listing page.
	IndexURL string

	// RequestsPerSecond caps the request rate across all calls.
	RequestsPerSecond float64

	// HTTPClient defaults to a client with a 10 minute timeout.
	HTTPClient *http.Client
}

// Client talks to the Inside Airbnb website.
type Client struct {
	http     *http.Client
	indexURL string
	limiter  *rate.Limiter
}

// New creates a client.
func New(cfg Config) *Client {
	if cfg.IndexURL == "" {
		cfg.IndexURL = domain.DefaultIndexURL
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Client{
		http:     cfg.HTTPClient,
		indexURL: cfg.IndexURL,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", rawURL, resp.Status)
	}
	return resp, nil
}

// List scrapes the listing page for listings and reviews archives, ordered
// by download path.
func (c *Client) List(ctx context.Context) ([]domain.DatasetLink, error) {
	base, err := url.Parse(c.indexURL)
	if err != nil {
		return nil, fmt.Errorf("%w: index url: %w", domain.ErrInvalidInput, err)
	}

	resp, err := c.get(ctx, c.indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset index: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse dataset index: %w", err)
	}

	seen := make(map[string]bool)
	var links []domain.DatasetLink
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		link, ok := ParseLink(base.ResolveReference(ref).String())
		if !ok || seen[link.URL] {
			return
		}
		seen[link.URL] = true
		link.Archived = a.ParentsFiltered("tr.archived").Length() > 0
		links = append(links, link)
	})

	sort.Slice(links, func(i, j int) bool { return links[i].RelPath() < links[j].RelPath() })
	return links, nil
}

// ParseLink recognises archive URLs shaped like
// .../<country>/<region>/<city>/<YYYY-MM-DD>/data/<kind>.csv.gz.
func ParseLink(rawURL string) (domain.DatasetLink, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return domain.DatasetLink{}, false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 6 {
		return domain.DatasetLink{}, false
	}
	parts = parts[len(parts)-6:]
	if parts[4] != "data" || !strings.HasSuffix(parts[5], ".csv.gz") {
		return domain.DatasetLink{}, false
	}
	kind := domain.RecordKind(strings.TrimSuffix(parts[5], ".csv.gz"))
	if !kind.IsValid() {
		return domain.DatasetLink{}, false
	}
	if _, err := time.Parse("2006-01-02", parts[3]); err != nil {
		return domain.DatasetLink{}, false
	}
	for _, p := range parts[:3] {
		if p == "" || p == "." || p == ".." {
			return domain.DatasetLink{}, false
		}
	}
	return domain.DatasetLink{
		URL:     u.String(),
		Country: parts[0],
		Region:  parts[1],
		City:    parts[2],
		Date:    parts[3],
		Kind:    kind,
	}, true
}

// Download fetches link and writes the decompressed CSV to dest. The file
// appears only once complete. Bodies without a gzip header are written as is.
func (c *Client) Download(ctx context.Context, link domain.DatasetLink, dest string) (int64, error) {
	resp, err := c.get(ctx, link.URL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body := bufio.NewReader(resp.Body)
	var content io.Reader = body
	if magic, err := body.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return 0, fmt.Errorf("gunzip %s: %w", link.URL, err)
		}
		defer gz.Close()
		content = gz
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(tmp, content)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return n, fmt.Errorf("download %s: %w", link.URL, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return n, err
	}
	return n, nil
}
