package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"news-cadence/internal/domain/entity"
	"news-cadence/internal/repository"
)

type MetricRepo struct {
	db *sql.DB
}

func NewMetricRepo(db *sql.DB) repository.MetricRepository {
	return &MetricRepo{db: db}
}

// UpsertOutletMetrics overwrites the snapshot for each (outlet, window) key.
func (repo *MetricRepo) UpsertOutletMetrics(ctx context.Context, metrics []*entity.OutletMetric) error {
	const query = `
INSERT INTO outlet_metrics
       (outlet_id, window_start, window_end, total_articles, days_active, posts_per_day, freshness_days)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (outlet_id, window_start, window_end) DO UPDATE SET
       total_articles = EXCLUDED.total_articles,
       days_active    = EXCLUDED.days_active,
       posts_per_day  = EXCLUDED.posts_per_day,
       freshness_days = EXCLUDED.freshness_days`
	for _, m := range metrics {
		if _, err := repo.db.ExecContext(ctx, query,
			m.OutletID, m.WindowStart, m.WindowEnd,
			m.TotalArticles, m.DaysActive, m.PostsPerDay,
			nullFloat(m.FreshnessDays),
		); err != nil {
			return fmt.Errorf("UpsertOutletMetrics: %w", err)
		}
	}
	return nil
}

// UpsertRegionMetrics overwrites the snapshot for each (region, date) key.
func (repo *MetricRepo) UpsertRegionMetrics(ctx context.Context, metrics []*entity.RegionMetric) error {
	const query = `
INSERT INTO region_metrics
       (region_id, metric_date, cfi, total_articles, outlets_active, outlets_covering, avg_posts_per_day, freshness_p50_days)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (region_id, metric_date) DO UPDATE SET
       cfi                = EXCLUDED.cfi,
       total_articles     = EXCLUDED.total_articles,
       outlets_active     = EXCLUDED.outlets_active,
       outlets_covering   = EXCLUDED.outlets_covering,
       avg_posts_per_day  = EXCLUDED.avg_posts_per_day,
       freshness_p50_days = EXCLUDED.freshness_p50_days`
	for _, m := range metrics {
		if _, err := repo.db.ExecContext(ctx, query,
			m.RegionID, m.MetricDate, m.CFI, m.TotalArticles,
			m.OutletsActive, m.OutletsCovering, m.AvgPostsPerDay,
			nullFloat(m.FreshnessP50Days),
		); err != nil {
			return fmt.Errorf("UpsertRegionMetrics: %w", err)
		}
	}
	return nil
}

func (repo *MetricRepo) ListRegionMetrics(ctx context.Context, metricDate time.Time) ([]*entity.RegionMetric, error) {
	const query = `
SELECT region_id, metric_date, cfi, total_articles, outlets_active, outlets_covering, avg_posts_per_day, freshness_p50_days
FROM region_metrics
WHERE metric_date = $1
ORDER BY region_id`
	rows, err := repo.db.QueryContext(ctx, query, metricDate)
	if err != nil {
		return nil, fmt.Errorf("ListRegionMetrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	metrics := make([]*entity.RegionMetric, 0, 64)
	for rows.Next() {
		var m entity.RegionMetric
		var freshness sql.NullFloat64
		if err := rows.Scan(&m.RegionID, &m.MetricDate, &m.CFI,
			&m.TotalArticles, &m.OutletsActive, &m.OutletsCovering,
			&m.AvgPostsPerDay, &freshness); err != nil {
			return nil, fmt.Errorf("ListRegionMetrics: Scan: %w", err)
		}
		if freshness.Valid {
			v := freshness.Float64
			m.FreshnessP50Days = &v
		}
		metrics = append(metrics, &m)
	}
	return metrics, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
