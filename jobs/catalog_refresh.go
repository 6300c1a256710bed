package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/linkforge/linkforge/internal/acquisition"
	"github.com/linkforge/linkforge/internal/affiliate"
	jobmetrics "github.com/linkforge/linkforge/internal/jobs"
)

const (
	// TaskTypeCatalogRefresh re-runs provider searches for the configured
	// keywords so the catalog does not grow stale between manual imports.
	TaskTypeCatalogRefresh = "catalog:refresh"
)

// CatalogRefreshPayload carries the keyword set to refresh.
type CatalogRefreshPayload struct {
	Keywords     []string  `json:"keywords"`
	Category     string    `json:"category"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewCatalogRefreshTask constructs an Asynq task for a catalog refresh run.
func NewCatalogRefreshTask(payload CatalogRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeCatalogRefresh, data, asynq.Queue(QueueDefault)), nil
}

// NewCatalogRefreshHandler processes TaskTypeCatalogRefresh tasks. Each
// keyword is searched independently so one provider outage cannot sink the
// whole run. metrics may be nil.
func NewCatalogRefreshHandler(service *acquisition.Service, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload CatalogRefreshPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track(TaskTypeCatalogRefresh)
		total := 0
		for _, keyword := range payload.Keywords {
			result, err := service.SearchProviders(ctx, affiliate.SearchQuery{
				Keyword:  keyword,
				Category: payload.Category,
				Limit:    50,
			})
			if err != nil {
				logger.Warn("catalog refresh keyword",
					slog.String("keyword", keyword),
					slog.Any("error", err))
				continue
			}
			total += len(result.Products)
		}
		logger.Info("catalog refresh done",
			slog.Int("keywords", len(payload.Keywords)),
			slog.Int("products", total))
		return tracker.End(nil)
	}
}
