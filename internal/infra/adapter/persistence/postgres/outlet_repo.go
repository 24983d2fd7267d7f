package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"news-cadence/internal/domain/entity"
	"news-cadence/internal/repository"

	"github.com/lib/pq"
)

type OutletRepo struct {
	db *sql.DB
}

func NewOutletRepo(db *sql.DB) repository.OutletRepository {
	return &OutletRepo{db: db}
}

func (repo *OutletRepo) Get(ctx context.Context, id string) (*entity.Outlet, error) {
	const query = `
SELECT outlet_id, name, homepage_url, feed_url, category, owner, regions
FROM outlets
WHERE outlet_id = $1
LIMIT 1`
	var outlet entity.Outlet
	err := repo.db.QueryRowContext(ctx, query, id).
		Scan(&outlet.ID, &outlet.Name, &outlet.HomepageURL, &outlet.FeedURL,
			&outlet.Category, &outlet.Owner, pq.Array(&outlet.Regions))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &outlet, nil
}

func (repo *OutletRepo) List(ctx context.Context) ([]*entity.Outlet, error) {
	const query = `
SELECT outlet_id, name, homepage_url, feed_url, category, owner, regions
FROM outlets
ORDER BY outlet_id`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	outlets := make([]*entity.Outlet, 0, 64)
	for rows.Next() {
		var outlet entity.Outlet
		if err := rows.Scan(&outlet.ID, &outlet.Name, &outlet.HomepageURL,
			&outlet.FeedURL, &outlet.Category, &outlet.Owner,
			pq.Array(&outlet.Regions)); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		outlets = append(outlets, &outlet)
	}
	return outlets, rows.Err()
}

// ReplaceAll swaps the outlet table for the seed list in one transaction.
func (repo *OutletRepo) ReplaceAll(ctx context.Context, outlets []*entity.Outlet) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ReplaceAll: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM outlets`); err != nil {
		return fmt.Errorf("ReplaceAll: delete: %w", err)
	}

	const query = `
INSERT INTO outlets
       (outlet_id, name, homepage_url, feed_url, category, owner, regions)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, outlet := range outlets {
		if _, err := tx.ExecContext(ctx, query,
			outlet.ID, outlet.Name, outlet.HomepageURL, outlet.FeedURL,
			outlet.Category, outlet.Owner, pq.Array(outlet.Regions),
		); err != nil {
			return fmt.Errorf("ReplaceAll: insert %s: %w", outlet.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ReplaceAll: commit: %w", err)
	}
	return nil
}
