package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"news-cadence/internal/domain/entity"
	"news-cadence/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

type ArticleRepo struct {
	db *sql.DB
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

// InsertIfAbsent persists articles, skipping rows whose (outlet_id, url_hash)
// already exists. ON CONFLICT DO NOTHING makes the write path tolerate
// concurrent appends from parallel outlet workers without violating the
// uniqueness invariant.
func (repo *ArticleRepo) InsertIfAbsent(ctx context.Context, articles []*entity.Article) (int64, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	const query = `
INSERT INTO articles
       (outlet_id, url, title, published_at, timestamp_approx, source, retrieved_at, url_hash)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (outlet_id, url_hash) DO NOTHING`

	var inserted int64
	for _, article := range articles {
		res, err := repo.db.ExecContext(ctx, query,
			article.OutletID, article.URL, article.Title, article.PublishedAt,
			article.TimestampApprox, string(article.Source),
			article.RetrievedAt, article.URLHash,
		)
		if err != nil {
			// A unique violation here means the write slipped past both the
			// hash pre-check and ON CONFLICT; surface it as an integrity
			// failure so the run aborts instead of silently double-counting.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return inserted, fmt.Errorf("InsertIfAbsent: %w", entity.ErrDuplicateArticle)
			}
			return inserted, fmt.Errorf("InsertIfAbsent: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("InsertIfAbsent: RowsAffected: %w", err)
		}
		inserted += n
	}
	return inserted, nil
}

// ExistsByHashBatch checks which url hashes are already persisted for the
// outlet in a single round trip.
func (repo *ArticleRepo) ExistsByHashBatch(ctx context.Context, outletID string, hashes []string) (map[string]bool, error) {
	if len(hashes) == 0 {
		return make(map[string]bool), nil
	}

	const query = `SELECT url_hash FROM articles WHERE outlet_id = $1 AND url_hash = ANY($2)`
	rows, err := repo.db.QueryContext(ctx, query, outletID, pq.Array(hashes))
	if err != nil {
		return nil, fmt.Errorf("ExistsByHashBatch: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool)
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("ExistsByHashBatch: Scan: %w", err)
		}
		result[hash] = true
	}
	return result, rows.Err()
}

func (repo *ArticleRepo) ListInWindow(ctx context.Context, start, end time.Time) ([]*entity.Article, error) {
	const query = `
SELECT id, outlet_id, url, title, published_at, timestamp_approx, source, retrieved_at, url_hash
FROM articles
WHERE published_at >= $1 AND published_at <= $2
ORDER BY published_at DESC`
	rows, err := repo.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("ListInWindow: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 256)
	for rows.Next() {
		var article entity.Article
		var source string
		if err := rows.Scan(&article.ID, &article.OutletID, &article.URL,
			&article.Title, &article.PublishedAt, &article.TimestampApprox,
			&source, &article.RetrievedAt, &article.URLHash); err != nil {
			return nil, fmt.Errorf("ListInWindow: Scan: %w", err)
		}
		article.Source = entity.AcquisitionMethod(source)
		articles = append(articles, &article)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) CountArticles(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM articles`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountArticles: %w", err)
	}
	return count, nil
}
