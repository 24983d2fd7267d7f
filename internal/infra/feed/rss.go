package feed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"news-cadence/internal/resilience/circuitbreaker"
	"news-cadence/internal/resilience/retry"
	"news-cadence/internal/usecase/harvest"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

// userAgent identifies the harvester to outlet servers.
const userAgent = "news-cadence/1.0"

// RSSFetcher fetches RSS/Atom feeds using the gofeed library, with circuit
// breaker and retry logic around the network call and a per-host limiter for
// politeness.
type RSSFetcher struct {
	client         *http.Client
	limiter        harvest.Waiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewRSSFetcher creates a new RSSFetcher with the given HTTP client and host limiter.
func NewRSSFetcher(client *http.Client, limiter harvest.Waiter) *RSSFetcher {
	return &RSSFetcher{
		client:         client,
		limiter:        limiter,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

// Fetch retrieves and parses a feed from the given URL.
// Entries without a parseable publish time come back with PublishedKnown
// false; the harvester stamps them with the retrieval time.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]harvest.Item, error) {
	var items []harvest.Item

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		if err := f.limiter.Wait(ctx, feedURL); err != nil {
			return err
		}

		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, feedURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("url", feedURL),
					slog.String("state", f.circuitBreaker.State().String()))
			}
			return err
		}

		items = cbResult.([]harvest.Item)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return items, nil
}

func (f *RSSFetcher) doFetch(ctx context.Context, feedURL string) ([]harvest.Item, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = f.client

	parsed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	items := make([]harvest.Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		item := harvest.Item{
			Title: it.Title,
			URL:   it.Link,
		}
		switch {
		case it.PublishedParsed != nil:
			item.Published = *it.PublishedParsed
			item.PublishedKnown = true
		case it.UpdatedParsed != nil:
			item.Published = *it.UpdatedParsed
			item.PublishedKnown = true
		}
		items = append(items, item)
	}

	return items, nil
}
