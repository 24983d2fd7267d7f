package feed

import (
	"context"
	"net/http"
	"strings"

	"news-cadence/internal/usecase/harvest"

	"github.com/PuerkitoBio/goquery"
)

// Discoverer finds an outlet's feed URL from its homepage HTML when neither
// the registry nor the well-known paths supplied one. It looks for
// <link rel="alternate"> elements advertising an RSS or Atom type.
type Discoverer struct {
	client  *http.Client
	limiter harvest.Waiter
}

func NewDiscoverer(client *http.Client, limiter harvest.Waiter) *Discoverer {
	return &Discoverer{client: client, limiter: limiter}
}

// DiscoverFeed returns the first advertised feed URL on the homepage,
// resolved against it, or "" when none is found.
func (d *Discoverer) DiscoverFeed(ctx context.Context, homepageURL string) (string, error) {
	if err := d.limiter.Wait(ctx, homepageURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, homepageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	var found string
	doc.Find(`link[rel="alternate"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		linkType := strings.ToLower(sel.AttrOr("type", ""))
		if !strings.Contains(linkType, "rss") && !strings.Contains(linkType, "atom") {
			return true
		}
		href := sel.AttrOr("href", "")
		if href == "" {
			return true
		}
		found = resolveRef(homepageURL, href)
		return false
	})

	return found, nil
}
