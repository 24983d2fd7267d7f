// Package registry loads the outlet registry from its YAML source and syncs
// it into the database, which is the single source the harvester and metrics
// jobs read from.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"news-cadence/internal/domain/entity"
	"news-cadence/internal/repository"

	"gopkg.in/yaml.v3"
)

type outletDoc struct {
	Outlets []outletEntry `yaml:"outlets"`
}

type outletEntry struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	HomepageURL string   `yaml:"homepage_url"`
	FeedURL     string   `yaml:"feed_url"`
	Category    string   `yaml:"category"`
	Owner       string   `yaml:"owner"`
	Regions     []string `yaml:"regions"`
}

// Load reads and validates the outlet registry file. Malformed YAML fails the
// load; individually invalid outlets are dropped with a warning so one bad
// entry cannot take the whole registry down.
func Load(path string) ([]*entity.Outlet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	var doc outletDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("Load: parse %s: %w", path, err)
	}

	outlets := make([]*entity.Outlet, 0, len(doc.Outlets))
	seen := make(map[string]bool, len(doc.Outlets))
	for _, entry := range doc.Outlets {
		outlet := &entity.Outlet{
			ID:          entry.ID,
			Name:        entry.Name,
			HomepageURL: entry.HomepageURL,
			FeedURL:     entry.FeedURL,
			Category:    entry.Category,
			Owner:       entry.Owner,
			Regions:     entry.Regions,
		}
		if err := outlet.Validate(); err != nil {
			slog.Warn("invalid outlet entry dropped",
				slog.String("outlet_id", entry.ID),
				slog.Any("error", err))
			continue
		}
		if seen[outlet.ID] {
			slog.Warn("duplicate outlet id dropped",
				slog.String("outlet_id", outlet.ID))
			continue
		}
		seen[outlet.ID] = true
		outlets = append(outlets, outlet)
	}
	return outlets, nil
}

// Sync replaces the persisted registry with the file contents. The harvester
// runs Sync before each batch so registry edits take effect without a deploy.
func Sync(ctx context.Context, path string, repo repository.OutletRepository) ([]*entity.Outlet, error) {
	outlets, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := repo.ReplaceAll(ctx, outlets); err != nil {
		return nil, fmt.Errorf("Sync: %w", err)
	}
	slog.Info("outlet registry synced",
		slog.String("path", path),
		slog.Int("outlets", len(outlets)))
	return outlets, nil
}
