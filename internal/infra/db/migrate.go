package db

import "database/sql"

// MigrateUp creates the schema.
//
// articles carries UNIQUE(outlet_id, url_hash): the dedup invariant lives in
// the database so concurrent outlet workers cannot violate it, and the
// harvester's InsertIfAbsent relies on ON CONFLICT against this constraint.
// Metric tables carry the upsert keys for snapshot overwrites.
func MigrateUp(database *sql.DB) error {
	if _, err := database.Exec(`
CREATE TABLE IF NOT EXISTS outlets (
    outlet_id    TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    homepage_url TEXT NOT NULL DEFAULT '',
    feed_url     TEXT NOT NULL DEFAULT '',
    category     TEXT NOT NULL DEFAULT '',
    owner        TEXT NOT NULL DEFAULT '',
    regions      TEXT[] NOT NULL DEFAULT '{}'
)`); err != nil {
		return err
	}

	if _, err := database.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id               BIGSERIAL PRIMARY KEY,
    outlet_id        TEXT NOT NULL REFERENCES outlets(outlet_id),
    url              TEXT NOT NULL,
    title            TEXT NOT NULL DEFAULT '',
    published_at     TIMESTAMPTZ NOT NULL,
    timestamp_approx BOOLEAN NOT NULL DEFAULT FALSE,
    source           VARCHAR(10) NOT NULL CHECK (source IN ('feed', 'sitemap')),
    retrieved_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    url_hash         CHAR(40) NOT NULL,
    UNIQUE(outlet_id, url_hash)
)`); err != nil {
		return err
	}

	if _, err := database.Exec(`
CREATE TABLE IF NOT EXISTS outlet_metrics (
    outlet_id      TEXT NOT NULL REFERENCES outlets(outlet_id),
    window_start   TIMESTAMPTZ NOT NULL,
    window_end     TIMESTAMPTZ NOT NULL,
    total_articles BIGINT NOT NULL,
    days_active    BIGINT NOT NULL,
    posts_per_day  DOUBLE PRECISION NOT NULL,
    freshness_days DOUBLE PRECISION,
    PRIMARY KEY (outlet_id, window_start, window_end)
)`); err != nil {
		return err
	}

	if _, err := database.Exec(`
CREATE TABLE IF NOT EXISTS region_metrics (
    region_id          TEXT NOT NULL,
    metric_date        DATE NOT NULL,
    cfi                DOUBLE PRECISION NOT NULL,
    total_articles     DOUBLE PRECISION NOT NULL,
    outlets_active     BIGINT NOT NULL,
    outlets_covering   BIGINT NOT NULL,
    avg_posts_per_day  DOUBLE PRECISION NOT NULL,
    freshness_p50_days DOUBLE PRECISION,
    PRIMARY KEY (region_id, metric_date)
)`); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_outlet_id ON articles(outlet_id)`,
	}
	for _, idx := range indexes {
		if _, err := database.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown drops the derived tables. Articles and outlets are kept:
// articles are append-only history and outlets are registry data, both are
// expensive or impossible to regenerate.
func MigrateDown(database *sql.DB) error {
	drops := []string{
		`DROP TABLE IF EXISTS region_metrics`,
		`DROP TABLE IF EXISTS outlet_metrics`,
	}
	for _, stmt := range drops {
		if _, err := database.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
