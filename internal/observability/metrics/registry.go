// Package metrics provides centralized Prometheus metrics for the harvester.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Harvest metrics track acquisition behavior per run.
var (
	// OutletsHarvestedTotal counts harvested outlets by final status.
	OutletsHarvestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outlets_harvested_total",
			Help: "Total number of outlet harvest attempts by status",
		},
		[]string{"status"},
	)

	// ArticlesInsertedTotal counts newly persisted article records.
	ArticlesInsertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_inserted_total",
			Help: "Total number of new article records persisted",
		},
	)

	// ArticlesDuplicatedTotal counts candidates dropped by the dedup path.
	ArticlesDuplicatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_duplicated_total",
			Help: "Total number of candidate articles dropped as duplicates",
		},
	)

	// AcquisitionErrorsTotal counts fetch failures by acquisition method.
	AcquisitionErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acquisition_errors_total",
			Help: "Total number of acquisition failures by method",
		},
		[]string{"method"},
	)

	// OutletHarvestDuration measures the wall time of one outlet's harvest.
	OutletHarvestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "outlet_harvest_duration_seconds",
			Help:    "Duration of a single outlet harvest in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ArticlesTotal tracks the total article count in the store.
	ArticlesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "articles_total",
			Help: "Total number of article records in the database",
		},
	)
)
