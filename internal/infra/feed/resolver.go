// Package feed implements article metadata acquisition: planning which
// locations to try for an outlet, and fetching them as structured feeds or
// sitemaps.
package feed

import (
	"net/url"

	"news-cadence/internal/domain/entity"
	"news-cadence/internal/usecase/harvest"
)

// wellKnownFeedPaths are probed relative to the homepage when an outlet has
// no declared feed URL.
var wellKnownFeedPaths = []string{"/feed", "/rss", "/rss.xml", "/feed.xml", "/index.xml"}

// Resolver plans the ordered acquisition attempts for an outlet. It performs
// no network access; executing the plan is the harvester's job.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Plan returns the acquisition attempts for an outlet, in order:
// the declared feed URL if present, otherwise well-known feed paths relative
// to the homepage, then exactly one sitemap fallback. robotsSitemaps, when
// non-empty, supplies the fallback location instead of the conventional
// /sitemap.xml. An outlet with neither homepage nor feed URL gets a nil plan.
func (r *Resolver) Plan(outlet *entity.Outlet, robotsSitemaps []string) []harvest.Attempt {
	if !outlet.Resolvable() {
		return nil
	}

	var attempts []harvest.Attempt
	if outlet.FeedURL != "" {
		attempts = append(attempts, harvest.Attempt{Method: entity.MethodFeed, URL: outlet.FeedURL})
	} else {
		for _, path := range wellKnownFeedPaths {
			if probe := resolveRef(outlet.HomepageURL, path); probe != "" {
				attempts = append(attempts, harvest.Attempt{Method: entity.MethodFeed, URL: probe})
			}
		}
	}

	if outlet.HomepageURL != "" {
		sitemapURL := ""
		if len(robotsSitemaps) > 0 {
			sitemapURL = robotsSitemaps[0]
		} else {
			sitemapURL = resolveRef(outlet.HomepageURL, "/sitemap.xml")
		}
		if sitemapURL != "" {
			attempts = append(attempts, harvest.Attempt{Method: entity.MethodSitemap, URL: sitemapURL})
		}
	}

	return attempts
}

// resolveRef joins ref against base without normalizing: fetchable locations
// keep their query strings, unlike identity-normalized article URLs.
func resolveRef(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return b.ResolveReference(r).String()
}
