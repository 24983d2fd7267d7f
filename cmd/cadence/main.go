package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	pgRepo "news-cadence/internal/infra/adapter/persistence/postgres"
	"news-cadence/internal/infra/db"
	"news-cadence/internal/observability/logging"
	"news-cadence/internal/repository"
	"news-cadence/internal/usecase/cadence"
	"news-cadence/pkg/config"
)

type options struct {
	Days int `long:"days" default:"365" description:"Metrics window length in days"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("schema migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	metricRepo := pgRepo.NewMetricRepo(database)
	svc := cadence.NewService(
		pgRepo.NewOutletRepo(database),
		pgRepo.NewArticleRepo(database),
		metricRepo,
	)

	ctx, cancel := context.WithTimeout(context.Background(),
		config.GetEnvDuration("CADENCE_TIMEOUT", 10*time.Minute))
	defer cancel()

	if err := svc.Run(ctx, opts.Days); err != nil {
		logger.Error("cadence run failed", slog.Any("error", err))
		os.Exit(1)
	}

	printRegionSummary(ctx, logger, metricRepo)
}

// printRegionSummary logs the freshly written region snapshot, one line per
// region, so a manual run shows its output without a database client.
func printRegionSummary(ctx context.Context, logger *slog.Logger, metricRepo repository.MetricRepository) {
	metricDate := time.Now().UTC().Truncate(24 * time.Hour)
	regionMetrics, err := metricRepo.ListRegionMetrics(ctx, metricDate)
	if err != nil {
		logger.Warn("could not read back region metrics", slog.Any("error", err))
		return
	}
	for _, m := range regionMetrics {
		attrs := []slog.Attr{
			slog.String("region", m.RegionID),
			slog.Float64("cfi", m.CFI),
			slog.Float64("articles", m.TotalArticles),
			slog.Int("outlets_active", m.OutletsActive),
			slog.Int("outlets_covering", m.OutletsCovering),
		}
		if m.FreshnessP50Days != nil {
			attrs = append(attrs, slog.Float64("freshness_p50_days", *m.FreshnessP50Days))
		}
		logger.LogAttrs(ctx, slog.LevelInfo, "region cadence", attrs...)
	}
}
