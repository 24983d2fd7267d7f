// Package cadence computes publication-cadence metrics from harvested article
// records: per-outlet activity over a window, and per-region composites built
// by splitting each outlet's output equally across the regions it covers.
package cadence

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"news-cadence/internal/domain/entity"
	"news-cadence/internal/repository"
)

// Service computes and persists cadence snapshots.
type Service struct {
	OutletRepo  repository.OutletRepository
	ArticleRepo repository.ArticleRepository
	MetricRepo  repository.MetricRepository

	now func() time.Time
}

func NewService(
	outletRepo repository.OutletRepository,
	articleRepo repository.ArticleRepository,
	metricRepo repository.MetricRepository,
) Service {
	return Service{
		OutletRepo:  outletRepo,
		ArticleRepo: articleRepo,
		MetricRepo:  metricRepo,
		now:         time.Now,
	}
}

// Run computes metrics for the trailing window of the given length and
// persists both snapshot levels. Persistence is all-or-nothing: a failed
// write leaves no partial snapshot behind because both upserts are keyed on
// the same window and the next successful run overwrites them whole.
func (s *Service) Run(ctx context.Context, windowDays int) error {
	if windowDays < 1 {
		return fmt.Errorf("Run: %w: window must cover at least one day", entity.ErrInvalidInput)
	}

	windowEnd := s.now().UTC()
	windowStart := windowEnd.AddDate(0, 0, -windowDays)

	outlets, err := s.OutletRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("Run: list outlets: %w", err)
	}
	articles, err := s.ArticleRepo.ListInWindow(ctx, windowStart, windowEnd)
	if err != nil {
		return fmt.Errorf("Run: list articles: %w", err)
	}

	outletMetrics, regionMetrics := Compute(outlets, articles, windowStart, windowEnd)

	if err := s.MetricRepo.UpsertOutletMetrics(ctx, outletMetrics); err != nil {
		return fmt.Errorf("Run: upsert outlet metrics: %w", err)
	}
	if err := s.MetricRepo.UpsertRegionMetrics(ctx, regionMetrics); err != nil {
		return fmt.Errorf("Run: upsert region metrics: %w", err)
	}

	slog.Info("cadence snapshot persisted",
		slog.Time("window_start", windowStart),
		slog.Time("window_end", windowEnd),
		slog.Int("outlets", len(outletMetrics)),
		slog.Int("regions", len(regionMetrics)))
	return nil
}

// Compute derives both metric levels from an outlet registry and the window's
// article records. Every registry outlet gets an outlet snapshot, including
// outlets with no articles in the window; regions appear only when at least
// one outlet covers them.
func Compute(outlets []*entity.Outlet, articles []*entity.Article, windowStart, windowEnd time.Time) ([]*entity.OutletMetric, []*entity.RegionMetric) {
	windowDays := windowEnd.Sub(windowStart).Hours() / 24
	if windowDays < 1 {
		windowDays = 1
	}

	byOutlet := make(map[string][]*entity.Article, len(outlets))
	for _, article := range articles {
		byOutlet[article.OutletID] = append(byOutlet[article.OutletID], article)
	}

	outletMetrics := make([]*entity.OutletMetric, 0, len(outlets))
	metricByOutlet := make(map[string]*entity.OutletMetric, len(outlets))
	for _, outlet := range outlets {
		m := computeOutlet(outlet.ID, byOutlet[outlet.ID], windowStart, windowEnd, windowDays)
		outletMetrics = append(outletMetrics, m)
		metricByOutlet[outlet.ID] = m
	}

	// Region snapshots are keyed by calendar date, not the exact run instant,
	// so re-running within one day overwrites rather than accumulates.
	regionMetrics := rollupRegions(outlets, metricByOutlet, windowEnd.UTC().Truncate(24*time.Hour))

	return outletMetrics, regionMetrics
}

// computeOutlet builds one outlet's snapshot. Approximate timestamps count
// toward totals and active days but never toward freshness, so an outlet
// whose source carries no dates shows volume without pretending recency.
func computeOutlet(outletID string, articles []*entity.Article, windowStart, windowEnd time.Time, windowDays float64) *entity.OutletMetric {
	metric := &entity.OutletMetric{
		OutletID:    outletID,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}

	days := make(map[string]bool)
	var newest time.Time
	var haveReliable bool
	for _, article := range articles {
		metric.TotalArticles++
		days[article.PublishedAt.UTC().Format("2006-01-02")] = true

		if article.TimestampApprox {
			continue
		}
		if !haveReliable || article.PublishedAt.After(newest) {
			newest = article.PublishedAt
			haveReliable = true
		}
	}

	metric.DaysActive = len(days)
	metric.PostsPerDay = float64(metric.TotalArticles) / windowDays
	if haveReliable {
		freshness := windowEnd.Sub(newest).Hours() / 24
		if freshness < 0 {
			freshness = 0
		}
		metric.FreshnessDays = &freshness
	}
	return metric
}

// rollupRegions attributes each outlet's output equally across its declared
// regions and aggregates per region. An outlet with no regions contributes
// nowhere; that is a registry gap worth surfacing, not an error.
func rollupRegions(outlets []*entity.Outlet, metricByOutlet map[string]*entity.OutletMetric, metricDate time.Time) []*entity.RegionMetric {
	type accumulator struct {
		metric    *entity.RegionMetric
		ppdSum    float64
		freshness []float64
	}
	regions := make(map[string]*accumulator)

	for _, outlet := range outlets {
		metric := metricByOutlet[outlet.ID]
		if metric == nil {
			continue
		}
		if len(outlet.Regions) == 0 {
			slog.Warn("outlet covers no regions, excluded from rollup",
				slog.String("outlet_id", outlet.ID))
			continue
		}

		split := float64(len(outlet.Regions))
		for _, regionID := range outlet.Regions {
			acc := regions[regionID]
			if acc == nil {
				acc = &accumulator{metric: &entity.RegionMetric{
					RegionID:   regionID,
					MetricDate: metricDate,
				}}
				regions[regionID] = acc
			}

			acc.metric.OutletsCovering++
			acc.metric.CFI += metric.PostsPerDay / split
			acc.metric.TotalArticles += float64(metric.TotalArticles) / split
			if metric.PostsPerDay > 0 {
				acc.metric.OutletsActive++
			}
			acc.ppdSum += metric.PostsPerDay
			if metric.FreshnessDays != nil {
				acc.freshness = append(acc.freshness, *metric.FreshnessDays)
			}
		}
	}

	result := make([]*entity.RegionMetric, 0, len(regions))
	for _, acc := range regions {
		acc.metric.AvgPostsPerDay = acc.ppdSum / float64(acc.metric.OutletsCovering)
		acc.metric.FreshnessP50Days = median(acc.freshness)
		result = append(result, acc.metric)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RegionID < result[j].RegionID })
	return result
}

// median returns the middle value of the samples, averaging the two middle
// values for even counts, or nil for an empty set.
func median(samples []float64) *float64 {
	if len(samples) == 0 {
		return nil
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	var m float64
	if len(sorted)%2 == 1 {
		m = sorted[mid]
	} else {
		m = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &m
}
