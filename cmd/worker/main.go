package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/linkforge/linkforge/internal/acquisition"
	"github.com/linkforge/linkforge/internal/affiliate"
	"github.com/linkforge/linkforge/internal/app"
	"github.com/linkforge/linkforge/internal/catalog"
	jobmetrics "github.com/linkforge/linkforge/internal/jobs"
	"github.com/linkforge/linkforge/internal/observability"
	"github.com/linkforge/linkforge/internal/platform/cache"
	"github.com/linkforge/linkforge/internal/platform/db"
	"github.com/linkforge/linkforge/internal/scrape"
	"github.com/linkforge/linkforge/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, search cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	metrics := observability.NewMetrics()

	fetcher := scrape.NewFetcher(scrape.FetcherOptions{
		Timeout:           cfg.ScrapeTimeout,
		RequestsPerMinute: cfg.ScrapeRequestsPerMinute,
	})
	scraper := scrape.NewScraper(fetcher, logger)

	providers := make([]affiliate.ProviderClient, 0)
	for _, pc := range cfg.ProviderConfigs() {
		providers = append(providers, affiliate.NewClient(pc, logger))
	}
	aggregator := affiliate.NewAggregator(providers, logger)

	repo := catalog.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("ensure schema", slog.Any("error", err))
		os.Exit(1)
	}
	var searchCache *acquisition.Cache
	if redisClient != nil {
		searchCache = acquisition.NewCache(redisClient, cfg.SearchCacheTTL)
	}
	service := acquisition.NewService(repo, scraper, aggregator, searchCache, metrics, logger)

	refreshTask, err := jobs.NewCatalogRefreshTask(jobs.CatalogRefreshPayload{
		Keywords: cfg.RefreshKeywordList(),
		Category: cfg.RefreshCategory,
	})
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	jobMetrics := jobmetrics.NewMetrics(nil)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeBulkImport, Handler: jobs.NewBulkImportHandler(service, jobMetrics, logger)},
			{Type: jobs.TaskTypeCatalogRefresh, Handler: jobs.NewCatalogRefreshHandler(service, jobMetrics, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.CatalogRefreshCron, Task: refreshTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
