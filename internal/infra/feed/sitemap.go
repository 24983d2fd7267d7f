package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"news-cadence/internal/resilience/circuitbreaker"
	"news-cadence/internal/resilience/retry"
	"news-cadence/internal/usecase/harvest"

	"github.com/araddon/dateparse"
)

const (
	// maxChildSitemaps bounds sitemap index traversal; large sites publish
	// hundreds of child sitemaps and we only need the recent ones.
	maxChildSitemaps = 25

	// maxSitemapBody bounds a single sitemap payload read.
	maxSitemapBody = 16 << 20
)

// SitemapFetcher acquires article locations from XML sitemaps, following one
// level of sitemap index indirection. lastmod timestamps are parsed leniently;
// entries without one come back with PublishedKnown false.
type SitemapFetcher struct {
	client         *http.Client
	limiter        harvest.Waiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	maxItems       int
}

// NewSitemapFetcher creates a SitemapFetcher that stops collecting after
// maxItems entries.
func NewSitemapFetcher(client *http.Client, limiter harvest.Waiter, maxItems int) *SitemapFetcher {
	return &SitemapFetcher{
		client:         client,
		limiter:        limiter,
		circuitBreaker: circuitbreaker.New(circuitbreaker.SitemapFetchConfig()),
		retryConfig:    retry.SitemapFetchConfig(),
		maxItems:       maxItems,
	}
}

type sitemapURLSet struct {
	URLs []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type sitemapIndex struct {
	XMLName  xml.Name       `xml:"sitemapindex"`
	Sitemaps []sitemapEntry `xml:"sitemap"`
}

type sitemapEntry struct {
	Loc string `xml:"loc"`
}

// Fetch retrieves the sitemap at the given URL. If it is a sitemap index,
// child sitemaps are fetched in order until maxItems entries are collected or
// maxChildSitemaps children have been visited.
func (f *SitemapFetcher) Fetch(ctx context.Context, sitemapURL string) ([]harvest.Item, error) {
	body, err := f.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err == nil && len(index.Sitemaps) > 0 {
		return f.fetchIndex(ctx, index)
	}

	return parseURLSet(body)
}

func (f *SitemapFetcher) fetchIndex(ctx context.Context, index sitemapIndex) ([]harvest.Item, error) {
	children := index.Sitemaps
	if len(children) > maxChildSitemaps {
		children = children[:maxChildSitemaps]
	}

	var items []harvest.Item
	for _, child := range children {
		if child.Loc == "" {
			continue
		}
		body, err := f.get(ctx, child.Loc)
		if err != nil {
			// A dead child sitemap is not terminal; the rest may work.
			continue
		}
		childItems, err := parseURLSet(body)
		if err != nil {
			continue
		}
		items = append(items, childItems...)
		if f.maxItems > 0 && len(items) >= f.maxItems {
			return items[:f.maxItems], nil
		}
	}
	return items, nil
}

func parseURLSet(body []byte) ([]harvest.Item, error) {
	var urlset sitemapURLSet
	if err := xml.Unmarshal(body, &urlset); err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	items := make([]harvest.Item, 0, len(urlset.URLs))
	for _, u := range urlset.URLs {
		if u.Loc == "" {
			continue
		}
		item := harvest.Item{URL: u.Loc}
		if u.LastMod != "" {
			if ts, err := dateparse.ParseAny(u.LastMod); err == nil {
				item.Published = ts
				item.PublishedKnown = true
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (f *SitemapFetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return err
		}
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doGet(ctx, rawURL)
		})
		if err != nil {
			return err
		}
		body = cbResult.([]byte)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return body, nil
}

func (f *SitemapFetcher) doGet(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: "sitemap fetch"}
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxSitemapBody))
}
