package repository

import (
	"context"
	"time"

	"news-cadence/internal/domain/entity"
)

type ArticleRepository interface {
	// InsertIfAbsent persists the given articles, silently skipping any whose
	// (outlet_id, url_hash) pair already exists. Returns the number actually
	// inserted. Safe under concurrent appends from multiple outlet workers.
	InsertIfAbsent(ctx context.Context, articles []*entity.Article) (int64, error)
	// ExistsByHashBatch checks which of the given url hashes are already
	// persisted for the outlet, in one round trip.
	ExistsByHashBatch(ctx context.Context, outletID string, hashes []string) (map[string]bool, error)
	// ListInWindow returns all articles with a publish timestamp inside
	// [start, end], across all outlets.
	ListInWindow(ctx context.Context, start, end time.Time) ([]*entity.Article, error)
	CountArticles(ctx context.Context) (int64, error)
}
