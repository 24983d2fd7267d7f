package harvest

import (
	"time"

	"news-cadence/internal/domain/entity"
)

// Status is an outlet's final state for one harvest run.
type Status string

const (
	// StatusOK means the outlet was acquired and its records persisted.
	StatusOK Status = "ok"
	// StatusSkippedPolicy means crawl-exclusion rules forbade the fetch.
	// This is a deliberate no-op, not an error.
	StatusSkippedPolicy Status = "skipped-policy"
	// StatusSkippedConfig means the outlet had nothing to resolve
	// (no homepage and no feed URL).
	StatusSkippedConfig Status = "skipped-config"
	// StatusFailed means both acquisition methods failed for this run.
	StatusFailed Status = "failed"
)

// Result reports one outlet's harvest outcome.
type Result struct {
	Status Status
	// Method is the acquisition path that supplied the records, empty when
	// nothing was acquired.
	Method     entity.AcquisitionMethod
	Fetched    int
	Inserted   int64
	Duplicated int64
	Err        error
}

// Summary aggregates a whole run. Individual outlet failures never abort the
// batch; callers inspect Processed to decide the exit code.
type Summary struct {
	RunID       string
	WindowStart time.Time
	Results     map[string]Result
	Outlets     int
	// Processed counts outlets that finished with StatusOK.
	Processed  int
	Inserted   int64
	Duplicated int64
	Duration   time.Duration
}
