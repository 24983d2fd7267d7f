// Package harvest orchestrates article metadata acquisition: planning
// acquisition attempts per outlet, enforcing crawl policy, falling back from
// feed to sitemap, deduplicating, and persisting new records.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"news-cadence/internal/domain/entity"
	"news-cadence/internal/observability/metrics"
	"news-cadence/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Item is a candidate article entry produced by a fetcher, before
// normalization and deduplication.
type Item struct {
	Title string
	URL   string
	// Published is the source-supplied publish time; only meaningful when
	// PublishedKnown is true.
	Published      time.Time
	PublishedKnown bool
}

// Fetcher acquires candidate items from a URL. Implementations exist for
// structured feeds and for sitemaps.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]Item, error)
}

// Discoverer finds a feed URL from an outlet homepage when the registry has
// none and the well-known paths yielded nothing.
type Discoverer interface {
	DiscoverFeed(ctx context.Context, homepageURL string) (string, error)
}

// PolicyChecker consults a host's crawl-exclusion rules.
type PolicyChecker interface {
	IsAllowed(ctx context.Context, url string) bool
	Sitemaps(ctx context.Context, url string) []string
}

// Waiter gates outbound requests per host; the harvester itself never calls
// it directly (fetchers do) but shares one instance across all of them.
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Attempt is one planned acquisition location.
type Attempt struct {
	Method entity.AcquisitionMethod
	URL    string
}

// Planner produces the ordered acquisition attempts for an outlet.
type Planner interface {
	Plan(outlet *entity.Outlet, robotsSitemaps []string) []Attempt
}

// Service runs harvests. All collaborators are injected; the only state
// shared between parallel outlet harvests lives behind the PolicyChecker and
// the fetchers' host limiter.
type Service struct {
	ArticleRepo    repository.ArticleRepository
	Planner        Planner
	FeedFetcher    Fetcher
	SitemapFetcher Fetcher
	Discoverer     Discoverer
	Policy         PolicyChecker

	now func() time.Time
}

// NewService creates a harvest Service with the provided dependencies.
func NewService(
	articleRepo repository.ArticleRepository,
	planner Planner,
	feedFetcher Fetcher,
	sitemapFetcher Fetcher,
	discoverer Discoverer,
	policy PolicyChecker,
) Service {
	return Service{
		ArticleRepo:    articleRepo,
		Planner:        planner,
		FeedFetcher:    feedFetcher,
		SitemapFetcher: sitemapFetcher,
		Discoverer:     discoverer,
		Policy:         policy,
		now:            time.Now,
	}
}

// HarvestAll harvests every outlet in the list with bounded parallelism.
// Per-outlet failures are recorded in the summary, never propagated; the only
// errors returned are context cancellation and broken dedup invariants
// (duplicate-key writes outside the dedup path), both of which abort the run.
func (s *Service) HarvestAll(ctx context.Context, outlets []*entity.Outlet, windowStart time.Time, maxItems, parallelism int) (*Summary, error) {
	if parallelism < 1 {
		parallelism = 1
	}

	summary := &Summary{
		RunID:       uuid.NewString(),
		WindowStart: windowStart,
		Results:     make(map[string]Result, len(outlets)),
		Outlets:     len(outlets),
	}
	startAll := s.now()
	logger := slog.Default().With(slog.String("run_id", summary.RunID))

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelism)

	for _, outlet := range outlets {
		o := outlet

		// Cancellation is honored at outlet boundaries; records already
		// persisted stay valid because re-harvest is idempotent.
		if err := egCtx.Err(); err != nil {
			break
		}

		eg.Go(func() error {
			start := s.now()
			res := s.Harvest(egCtx, o, windowStart, maxItems)
			duration := s.now().Sub(start)

			metrics.RecordOutletHarvest(string(res.Status), duration)
			metrics.RecordArticles(res.Inserted, res.Duplicated)

			if res.Err != nil && errors.Is(res.Err, entity.ErrDuplicateArticle) {
				return fmt.Errorf("outlet %s: %w", o.ID, res.Err)
			}

			logger.Info("outlet harvested",
				slog.String("outlet_id", o.ID),
				slog.String("status", string(res.Status)),
				slog.String("method", string(res.Method)),
				slog.Int("fetched", res.Fetched),
				slog.Int64("inserted", res.Inserted),
				slog.Int64("duplicated", res.Duplicated),
				slog.Duration("duration", duration))

			mu.Lock()
			summary.Results[o.ID] = res
			if res.Status == StatusOK {
				summary.Processed++
			}
			summary.Inserted += res.Inserted
			summary.Duplicated += res.Duplicated
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return summary, err
	}

	summary.Duration = s.now().Sub(startAll)
	logger.Info("harvest run completed",
		slog.Int("outlets", summary.Outlets),
		slog.Int("processed", summary.Processed),
		slog.Int64("inserted", summary.Inserted),
		slog.Int64("duplicated", summary.Duplicated),
		slog.Duration("duration", summary.Duration))

	return summary, nil
}

// Harvest acquires, filters, deduplicates and persists one outlet's articles.
// The result carries the outlet's status; Err is informational except for
// dedup-invariant violations, which HarvestAll escalates.
func (s *Service) Harvest(ctx context.Context, outlet *entity.Outlet, windowStart time.Time, maxItems int) Result {
	if !outlet.Resolvable() {
		slog.Warn("outlet unresolvable, skipping",
			slog.String("outlet_id", outlet.ID))
		return Result{Status: StatusSkippedConfig, Err: entity.ErrUnresolvable}
	}

	policyProbe := outlet.HomepageURL
	if policyProbe == "" {
		policyProbe = outlet.FeedURL
	}
	robotsSitemaps := s.Policy.Sitemaps(ctx, policyProbe)

	plan := s.Planner.Plan(outlet, robotsSitemaps)
	if len(plan) == 0 {
		return Result{Status: StatusSkippedConfig, Err: entity.ErrUnresolvable}
	}

	allowed := plan[:0:0]
	for _, attempt := range plan {
		if s.Policy.IsAllowed(ctx, attempt.URL) {
			allowed = append(allowed, attempt)
		}
	}
	if len(allowed) == 0 {
		return Result{Status: StatusSkippedPolicy}
	}

	items, method, err := s.acquire(ctx, outlet, allowed)
	if err != nil {
		return Result{Status: StatusFailed, Err: err}
	}

	candidates := s.normalize(outlet, items, method, windowStart, maxItems)

	inserted, duplicated, err := s.persist(ctx, candidates)
	if err != nil {
		return Result{Status: StatusFailed, Method: method, Fetched: len(candidates), Err: err}
	}

	return Result{
		Status:     StatusOK,
		Method:     method,
		Fetched:    len(candidates),
		Inserted:   inserted,
		Duplicated: duplicated,
	}
}

// acquire executes the plan: feed attempts in order, then homepage discovery
// when the registry declared no feed, then the sitemap fallback exactly once.
func (s *Service) acquire(ctx context.Context, outlet *entity.Outlet, attempts []Attempt) ([]Item, entity.AcquisitionMethod, error) {
	var feedErr error

	var sitemapAttempt *Attempt
	for i := range attempts {
		attempt := attempts[i]
		if attempt.Method == entity.MethodSitemap {
			if sitemapAttempt == nil {
				sitemapAttempt = &attempts[i]
			}
			continue
		}

		items, err := s.FeedFetcher.Fetch(ctx, attempt.URL)
		if err != nil {
			feedErr = err
			metrics.RecordAcquisitionError(string(entity.MethodFeed))
			slog.Debug("feed attempt failed",
				slog.String("outlet_id", outlet.ID),
				slog.String("url", attempt.URL),
				slog.Any("error", err))
			continue
		}
		if len(items) > 0 {
			return items, entity.MethodFeed, nil
		}
	}

	// No declared feed and the well-known paths came up empty: ask the
	// homepage HTML before giving up on the feed method.
	if outlet.FeedURL == "" && outlet.HomepageURL != "" && s.Discoverer != nil {
		if discovered, err := s.Discoverer.DiscoverFeed(ctx, outlet.HomepageURL); err == nil && discovered != "" {
			if s.Policy.IsAllowed(ctx, discovered) {
				items, err := s.FeedFetcher.Fetch(ctx, discovered)
				if err != nil {
					feedErr = err
					metrics.RecordAcquisitionError(string(entity.MethodFeed))
				} else if len(items) > 0 {
					return items, entity.MethodFeed, nil
				}
			}
		}
	}

	if sitemapAttempt == nil {
		if feedErr != nil {
			return nil, "", fmt.Errorf("feed acquisition failed, no fallback available: %w", feedErr)
		}
		return nil, entity.MethodFeed, nil
	}

	items, err := s.SitemapFetcher.Fetch(ctx, sitemapAttempt.URL)
	if err != nil {
		metrics.RecordAcquisitionError(string(entity.MethodSitemap))
		if feedErr != nil {
			return nil, "", fmt.Errorf("both methods failed: feed: %v; sitemap: %w", feedErr, err)
		}
		return nil, "", fmt.Errorf("sitemap acquisition failed: %w", err)
	}
	return items, entity.MethodSitemap, nil
}

// normalize turns raw items into article records: canonical URL + identity
// hash, approximate-timestamp stamping, window filtering, most-recent-first
// truncation, and in-call dedup.
func (s *Service) normalize(outlet *entity.Outlet, items []Item, method entity.AcquisitionMethod, windowStart time.Time, maxItems int) []*entity.Article {
	retrievedAt := s.now()

	candidates := make([]*entity.Article, 0, len(items))
	for _, item := range items {
		normalized := entity.NormalizeURL(outlet.HomepageURL, item.URL)
		if normalized == "" {
			continue
		}

		article := &entity.Article{
			OutletID:    outlet.ID,
			URL:         normalized,
			Title:       item.Title,
			Source:      method,
			RetrievedAt: retrievedAt,
			URLHash:     entity.HashURL(normalized),
		}
		if item.PublishedKnown {
			// Known timestamps outside the window are dropped; approximate
			// ones are kept and flagged rather than silently discarded.
			if item.Published.Before(windowStart) {
				continue
			}
			article.PublishedAt = item.Published
		} else {
			article.PublishedAt = retrievedAt
			article.TimestampApprox = true
		}
		candidates = append(candidates, article)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].PublishedAt.After(candidates[j].PublishedAt)
	})
	if maxItems > 0 && len(candidates) > maxItems {
		candidates = candidates[:maxItems]
	}

	seen := make(map[string]bool, len(candidates))
	deduped := candidates[:0]
	for _, c := range candidates {
		if seen[c.URLHash] {
			continue
		}
		seen[c.URLHash] = true
		deduped = append(deduped, c)
	}
	return deduped
}

// persist writes candidates that are not already stored for the outlet.
// The batch pre-check avoids pointless inserts; ON CONFLICT in the repository
// covers the race with concurrent workers.
func (s *Service) persist(ctx context.Context, candidates []*entity.Article) (inserted, duplicated int64, err error) {
	if len(candidates) == 0 {
		return 0, 0, nil
	}

	outletID := candidates[0].OutletID
	hashes := make([]string, 0, len(candidates))
	for _, c := range candidates {
		hashes = append(hashes, c.URLHash)
	}

	existing, err := s.ArticleRepo.ExistsByHashBatch(ctx, outletID, hashes)
	if err != nil {
		return 0, 0, fmt.Errorf("check existing hashes: %w", err)
	}

	fresh := make([]*entity.Article, 0, len(candidates))
	for _, c := range candidates {
		if existing[c.URLHash] {
			duplicated++
			continue
		}
		fresh = append(fresh, c)
	}

	inserted, err = s.ArticleRepo.InsertIfAbsent(ctx, fresh)
	if err != nil {
		return inserted, duplicated, fmt.Errorf("persist articles: %w", err)
	}
	// Rows skipped by ON CONFLICT lost the race to a concurrent worker;
	// count them as duplicates, same as the pre-check hits.
	duplicated += int64(len(fresh)) - inserted
	return inserted, duplicated, nil
}
