// Package robots consults crawl-exclusion rules for target hosts.
package robots

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// UserAgent is the token matched against robots.txt groups.
const UserAgent = "news-cadence"

// Waiter gates outbound requests; satisfied by throttle.HostLimiter.
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Checker fetches and caches robots.txt per host.
// A robots file that cannot be retrieved is treated as allowing everything
// (permissive default) but the failure is logged.
type Checker struct {
	client  *http.Client
	limiter Waiter

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData // nil entry: fetch failed, allow all
}

// NewChecker creates a Checker using the given HTTP client and host limiter.
func NewChecker(client *http.Client, limiter Waiter) *Checker {
	return &Checker{
		client:  client,
		limiter: limiter,
		cache:   make(map[string]*robotstxt.RobotsData),
	}
}

// IsAllowed reports whether fetching rawURL is permitted by the host's
// robots.txt for our user agent.
func (c *Checker) IsAllowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}

	data := c.dataFor(ctx, u)
	if data == nil {
		return true
	}
	return data.FindGroup(UserAgent).Test(u.Path)
}

// Sitemaps returns the sitemap locations declared in the host's robots.txt.
// The robots file is fetched (and cached) if it has not been seen yet.
func (c *Checker) Sitemaps(ctx context.Context, rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	data := c.dataFor(ctx, u)
	if data == nil {
		return nil
	}
	return data.Sitemaps
}

func (c *Checker) dataFor(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	key := u.Scheme + "://" + u.Host

	c.mu.Lock()
	data, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return data
	}

	data = c.fetch(ctx, key)

	c.mu.Lock()
	c.cache[key] = data
	c.mu.Unlock()
	return data
}

func (c *Checker) fetch(ctx context.Context, origin string) *robotstxt.RobotsData {
	robotsURL := origin + "/robots.txt"
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, robotsURL); err != nil {
			return nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("robots.txt retrieval failed, defaulting to allowed",
			slog.String("url", robotsURL),
			slog.Any("error", err))
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		slog.Warn("robots.txt read failed, defaulting to allowed",
			slog.String("url", robotsURL),
			slog.Any("error", err))
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		slog.Warn("robots.txt parse failed, defaulting to allowed",
			slog.String("url", robotsURL),
			slog.Any("error", fmt.Errorf("parse: %w", err)))
		return nil
	}
	return data
}
