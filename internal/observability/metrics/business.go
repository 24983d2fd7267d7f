package metrics

import "time"

// RecordOutletHarvest records the outcome of one outlet's harvest.
// Status matches the run summary values: ok, skipped-policy, skipped-config, failed.
func RecordOutletHarvest(status string, duration time.Duration) {
	OutletsHarvestedTotal.WithLabelValues(status).Inc()
	OutletHarvestDuration.Observe(duration.Seconds())
}

// RecordArticles records the insert/duplicate split for one outlet's harvest.
func RecordArticles(inserted, duplicated int64) {
	ArticlesInsertedTotal.Add(float64(inserted))
	ArticlesDuplicatedTotal.Add(float64(duplicated))
}

// RecordAcquisitionError records a fetch failure for an acquisition method.
func RecordAcquisitionError(method string) {
	AcquisitionErrorsTotal.WithLabelValues(method).Inc()
}

// UpdateArticlesTotal updates the stored-article gauge.
// Updated after each run rather than on a timer; harvests are batch jobs.
func UpdateArticlesTotal(count int64) {
	ArticlesTotal.Set(float64(count))
}
