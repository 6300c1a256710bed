package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/linkforge/linkforge/internal/acquisition"
	acquisitionhttp "github.com/linkforge/linkforge/internal/acquisition/http"
	"github.com/linkforge/linkforge/internal/affiliate"
	"github.com/linkforge/linkforge/internal/app"
	"github.com/linkforge/linkforge/internal/catalog"
	"github.com/linkforge/linkforge/internal/observability"
	"github.com/linkforge/linkforge/internal/platform/cache"
	"github.com/linkforge/linkforge/internal/platform/db"
	"github.com/linkforge/linkforge/internal/scrape"
	"github.com/linkforge/linkforge/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	acquisitionHandler := acquisitionhttp.NewHandler(logger, service)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	queueClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, queueClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AcquisitionHandler: acquisitionHandler,
		JobHandler:         jobHandler,
		Pool:               pool,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
