package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/robfig/cron/v3"

	"news-cadence/internal/domain/entity"
	pgRepo "news-cadence/internal/infra/adapter/persistence/postgres"
	"news-cadence/internal/infra/db"
	"news-cadence/internal/infra/feed"
	"news-cadence/internal/infra/registry"
	"news-cadence/internal/infra/robots"
	"news-cadence/internal/infra/throttle"
	"news-cadence/internal/observability/logging"
	"news-cadence/internal/observability/metrics"
	"news-cadence/internal/repository"
	"news-cadence/internal/usecase/harvest"
	"news-cadence/pkg/config"
)

type options struct {
	Days         int    `long:"days" default:"365" description:"Harvest window length in days"`
	MaxPerOutlet int    `long:"max-per-outlet" default:"2000" description:"Maximum articles persisted per outlet per run"`
	Parallelism  int    `long:"parallelism" default:"1" description:"Number of outlets harvested concurrently"`
	OnlyOutlet   string `long:"only-outlet" description:"Harvest a single outlet by id"`
	OutletsFile  string `long:"outlets-file" default:"outlets.yaml" description:"Path to the outlet registry YAML"`
	Schedule     string `long:"schedule" description:"Cron expression; run once and exit when empty"`
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startMetricsServer(ctx, logger)

	svc, outletRepo, articleRepo := setupHarvestService(database, opts.MaxPerOutlet)

	if opts.Schedule == "" {
		summary := runHarvest(ctx, logger, &svc, outletRepo, articleRepo, opts)
		// Individual outlet failures do not fail the run; only an aborted run
		// or a run where nothing at all could be processed does.
		if summary == nil || (summary.Outlets > 0 && summary.Processed == 0) {
			os.Exit(1)
		}
		return
	}

	startCronHarvester(ctx, logger, &svc, outletRepo, articleRepo, opts)
}

// setupHarvestService wires the acquisition stack: one shared HTTP client and
// host limiter behind the fetchers, the robots checker, and the planner.
func setupHarvestService(database *sql.DB, maxPerOutlet int) (harvest.Service, repository.OutletRepository, repository.ArticleRepository) {
	outletRepo := pgRepo.NewOutletRepo(database)
	articleRepo := pgRepo.NewArticleRepo(database)

	httpClient := newHTTPClient()
	limiter := throttle.NewHostLimiter(config.GetEnvDuration("HOST_THROTTLE_DELAY", time.Second))

	svc := harvest.NewService(
		articleRepo,
		feed.NewResolver(),
		feed.NewRSSFetcher(httpClient, limiter),
		feed.NewSitemapFetcher(httpClient, limiter, maxPerOutlet),
		feed.NewDiscoverer(httpClient, limiter),
		robots.NewChecker(httpClient, limiter),
	)
	return svc, outletRepo, articleRepo
}

// runHarvest syncs the registry, harvests it, and refreshes the stored-article
// gauge. A nil summary means the run could not start at all.
func runHarvest(ctx context.Context, logger *slog.Logger, svc *harvest.Service, outletRepo repository.OutletRepository, articleRepo repository.ArticleRepository, opts options) *harvest.Summary {
	outlets, err := registry.Sync(ctx, opts.OutletsFile, outletRepo)
	if err != nil {
		logger.Error("registry sync failed", slog.Any("error", err))
		return nil
	}

	if opts.OnlyOutlet != "" {
		outlets = filterOutlet(outlets, opts.OnlyOutlet)
		if len(outlets) == 0 {
			logger.Error("outlet not found in registry",
				slog.String("outlet_id", opts.OnlyOutlet))
			return nil
		}
	}

	windowStart := time.Now().UTC().AddDate(0, 0, -opts.Days)
	summary, err := svc.HarvestAll(ctx, outlets, windowStart, opts.MaxPerOutlet, opts.Parallelism)
	if err != nil {
		// Run-aborting faults (broken dedup invariants, cancellation) fail the
		// whole run regardless of how many outlets finished first.
		logger.Error("harvest run aborted", slog.Any("error", err))
		return nil
	}

	if count, err := articleRepo.CountArticles(ctx); err == nil {
		metrics.UpdateArticlesTotal(count)
	}
	return summary
}

func filterOutlet(outlets []*entity.Outlet, id string) []*entity.Outlet {
	for _, outlet := range outlets {
		if outlet.ID == id {
			return []*entity.Outlet{outlet}
		}
	}
	return nil
}

// startCronHarvester runs harvests on the given cron schedule until the
// process is stopped.
func startCronHarvester(ctx context.Context, logger *slog.Logger, svc *harvest.Service, outletRepo repository.OutletRepository, articleRepo repository.ArticleRepository, opts options) {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(opts.Schedule, func() {
		jobCtx, cancel := context.WithTimeout(ctx, config.GetEnvDuration("HARVEST_TIMEOUT", 2*time.Hour))
		defer cancel()
		runHarvest(jobCtx, logger, svc, outletRepo, articleRepo, opts)
	})
	if err != nil {
		logger.Error("invalid cron schedule",
			slog.String("schedule", opts.Schedule),
			slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	logger.Info("harvester started", slog.String("schedule", opts.Schedule))
	select {}
}

// newHTTPClient builds the outbound client shared by all fetchers.
// TLS 1.2+ is enforced.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: config.GetEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}
