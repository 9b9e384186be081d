// Package catalog queries an external product catalog for whisky pricing,
// images and product links. The catalog has no API; results come from the
// structured data embedded in its search page.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/freemaltson/whiskynights/internal/log"
	"github.com/freemaltson/whiskynights/internal/metrics"
)

// DefaultSearchLimit caps the product list returned by Search.
const DefaultSearchLimit = 8

// Browser-shaped headers: the catalog serves a different (script-free) page
// to clients it does not recognise.
var requestHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-AU,en;q=0.9",
}

// Product is one catalog listing.
type Product struct {
	Name     string
	URL      string
	Price    *float64
	ImageURL string
}

// Client fetches and parses catalog search pages. Outbound traffic is rate
// limited and concurrent identical queries are collapsed into one fetch.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	group   singleflight.Group
	logger  zerolog.Logger
}

// New builds a catalog client against base. A zero timeout defaults to 10s.
func New(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
		// One request a second with a small burst keeps bulk enrichment
		// from hammering the catalog.
		limiter: rate.NewLimiter(rate.Limit(1), 3),
		logger:  log.WithComponent("catalog"),
	}
}

// Search returns up to limit products matching the query, in catalog order.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	products, err := c.fetchProducts(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, limit)
	for _, p := range products {
		if p.Name == "" {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Lookup returns the top product for the query, or nil when the catalog has
// no match.
func (c *Client) Lookup(ctx context.Context, query string) (*Product, error) {
	products, err := c.Search(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	p := products[0]
	return &p, nil
}

func (c *Client) fetchProducts(ctx context.Context, query string) ([]Product, error) {
	v, err, _ := c.group.Do(strings.ToLower(strings.TrimSpace(query)), func() (any, error) {
		return c.fetchProductsOnce(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Product), nil
}

func (c *Client) fetchProductsOnce(ctx context.Context, query string) ([]Product, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	u := c.base + "/search?searchTerm=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range requestHeaders {
		req.Header.Set(k, v)
	}

	res, err := c.http.Do(req)
	if err != nil {
		metrics.RecordCatalogRequest("error", time.Since(start))
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		metrics.RecordCatalogRequest("error", time.Since(start))
		return nil, fmt.Errorf("catalog search: unexpected status %d", res.StatusCode)
	}

	products, err := parseSearchPage(res.Body)
	if err != nil {
		metrics.RecordCatalogRequest("error", time.Since(start))
		return nil, fmt.Errorf("catalog search: %w", err)
	}

	for i := range products {
		if products[i].URL != "" && !strings.HasPrefix(products[i].URL, "http") {
			products[i].URL = c.base + products[i].URL
		}
	}

	outcome := "success"
	if len(products) == 0 {
		outcome = "empty"
	}
	metrics.RecordCatalogRequest(outcome, time.Since(start))
	c.logger.Debug().
		Str("query", query).
		Int("products", len(products)).
		Msg("catalog search complete")
	return products, nil
}
