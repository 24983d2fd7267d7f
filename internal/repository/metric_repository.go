package repository

import (
	"context"
	"time"

	"news-cadence/internal/domain/entity"
)

// MetricRepository persists computed cadence snapshots.
// Both write paths are upserts keyed on (outlet_id, window) and
// (region_id, metric_date) respectively, so re-running a window overwrites
// the earlier snapshot instead of duplicating it.
type MetricRepository interface {
	UpsertOutletMetrics(ctx context.Context, metrics []*entity.OutletMetric) error
	UpsertRegionMetrics(ctx context.Context, metrics []*entity.RegionMetric) error
	// ListRegionMetrics is the presentation layer's read path.
	ListRegionMetrics(ctx context.Context, metricDate time.Time) ([]*entity.RegionMetric, error)
}
