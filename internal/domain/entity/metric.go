package entity

import "time"

// OutletMetric is the per-outlet cadence snapshot for one window.
// Snapshots are recomputed fully on every metrics run and supersede earlier
// runs for the same window, they are never merged.
type OutletMetric struct {
	OutletID      string
	WindowStart   time.Time
	WindowEnd     time.Time
	TotalArticles int
	// DaysActive is the number of distinct calendar days with at least one
	// article in the window.
	DaysActive  int
	PostsPerDay float64
	// FreshnessDays is the number of days between the window end and the most
	// recent reliably-timestamped article. nil means the outlet had no
	// reliable timestamp in the window ("never", not zero).
	FreshnessDays *float64
}

// RegionMetric is the per-region composite snapshot for one metric date.
type RegionMetric struct {
	RegionID   string
	MetricDate time.Time
	// CFI is the composite frequency index: the sum over covering outlets of
	// posts-per-day divided by the number of regions that outlet covers.
	CFI float64
	// TotalArticles is the window article count attributed to this region
	// under the same equal-split divisor, so it is fractional.
	TotalArticles   float64
	OutletsActive   int
	OutletsCovering int
	AvgPostsPerDay  float64
	// FreshnessP50Days is the median freshness across covering outlets with a
	// defined freshness; nil when every covering outlet is undefined.
	FreshnessP50Days *float64
}
